package brain

import "dutch/internal/domain"

// MaxSlot returns the first own slot, by index, holding the highest known point value,
// or -1 when nothing is known.
func (m *Memory) MaxSlot() int {
	best := -1
	for slot := 0; slot < domain.DeckSlots; slot++ {
		c, ok := m.known[m.self][slot]
		if !ok {
			continue
		}
		if best < 0 || c.Point() > m.known[m.self][best].Point() {
			best = slot
		}
	}
	return best
}

// SwitchMax returns MaxSlot when that card is worth more than c, otherwise -1.
func (m *Memory) SwitchMax(c domain.Card) int {
	slot := m.MaxSlot()
	if slot < 0 {
		return -1
	}
	if m.known[m.self][slot].Point() > c.Point() {
		return slot
	}
	return -1
}

// NextUnknown returns the first own slot without a belief, or -1 when all are known.
func (m *Memory) NextUnknown() int {
	return m.NextUnknownOf(m.self)
}

// NextUnknownOf returns the first slot of seat without a belief, or -1.
func (m *Memory) NextUnknownOf(seat int) int {
	if seat < 0 || seat >= len(m.known) {
		return -1
	}
	for slot := 0; slot < domain.DeckSlots; slot++ {
		if _, ok := m.known[seat][slot]; !ok {
			return slot
		}
	}
	return -1
}

// MinOpponent returns the lowest-valued card believed to sit in front of an opponent.
// Ties go to the lowest seat id, then the lowest slot.
func (m *Memory) MinOpponent() (seat, slot int, card domain.Card, ok bool) {
	for s := range m.known {
		if s == m.self {
			continue
		}
		for sl := 0; sl < domain.DeckSlots; sl++ {
			c, known := m.known[s][sl]
			if !known {
				continue
			}
			if !ok || c.Point() < card.Point() {
				seat, slot, card, ok = s, sl, c, true
			}
		}
	}
	return seat, slot, card, ok
}

// FewestKnownOpponent returns the opponent about whom the seat knows the least.
func (m *Memory) FewestKnownOpponent() int {
	best := -1
	for s := range m.known {
		if s == m.self {
			continue
		}
		if best < 0 || len(m.known[s]) < len(m.known[best]) {
			best = s
		}
	}
	return best
}
