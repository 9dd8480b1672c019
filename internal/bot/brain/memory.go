package brain

import (
	"math/rand"

	"dutch/internal/domain"
)

const (
	// Forget probabilities are kept in percent so the wrap point is exact.
	forgetStart = 10
	forgetStep  = 5
	forgetMax   = 100
)

// Memory stores an AI seat's private, decaying view of the table:
// for every seat id a partial slot -> card mapping.
type Memory struct {
	self   int
	known  []map[int]domain.Card
	forget int
	rng    *rand.Rand
}

// NewMemory initializes an empty memory for seat self at a table of the given size.
func NewMemory(self, seats int, rng *rand.Rand) *Memory {
	m := &Memory{self: self, forget: forgetStart, rng: rng}
	m.known = make([]map[int]domain.Card, seats)
	for i := range m.known {
		m.known[i] = make(map[int]domain.Card)
	}
	return m
}

// Self returns the seat id that owns this memory.
func (m *Memory) Self() int { return m.self }

// Seats returns the table size the memory was built for.
func (m *Memory) Seats() int { return len(m.known) }

// Size returns how many of its own slots the seat believes it knows.
func (m *Memory) Size() int { return len(m.known[m.self]) }

// Own returns the believed card in one of the seat's own slots.
func (m *Memory) Own(slot int) (domain.Card, bool) {
	return m.Known(m.self, slot)
}

// Known returns the believed card at seat/slot.
func (m *Memory) Known(seat, slot int) (domain.Card, bool) {
	if !m.valid(seat, slot) {
		return domain.Card{}, false
	}
	c, ok := m.known[seat][slot]
	return c, ok
}

// KnownCount returns how many slots of seat are believed known.
func (m *Memory) KnownCount(seat int) int {
	if seat < 0 || seat >= len(m.known) {
		return 0
	}
	return len(m.known[seat])
}

// Learn records the card seen at seat/slot.
func (m *Memory) Learn(seat, slot int, c domain.Card) {
	if !m.valid(seat, slot) {
		return
	}
	m.known[seat][slot] = c
}

// Forget drops the belief about seat/slot.
func (m *Memory) Forget(seat, slot int) {
	if !m.valid(seat, slot) {
		return
	}
	delete(m.known[seat], slot)
}

// Swap mirrors a swap of two slots on the table.
func (m *Memory) Swap(seatA, slotA, seatB, slotB int) {
	if !m.valid(seatA, slotA) || !m.valid(seatB, slotB) {
		return
	}
	a, okA := m.known[seatA][slotA]
	b, okB := m.known[seatB][slotB]
	delete(m.known[seatA], slotA)
	delete(m.known[seatB], slotB)
	if okB {
		m.known[seatA][slotA] = b
	}
	if okA {
		m.known[seatB][slotB] = a
	}
}

// ForgetProbability returns the current chance of losing an own fact on Decay.
func (m *Memory) ForgetProbability() float64 {
	return float64(m.forget) / 100
}

// Decay raises the forget probability by one step, wrapping back after certainty, then
// rolls it: on a hit the highest known own slot is forgotten and the probability resets.
// It reports whether a fact was lost.
func (m *Memory) Decay() bool {
	if m.forget >= forgetMax {
		m.forget = forgetStart
	}
	m.forget += forgetStep

	if m.rng.Intn(100) >= m.forget {
		return false
	}
	m.forget = forgetStart
	for slot := domain.DeckSlots - 1; slot >= 0; slot-- {
		if _, ok := m.known[m.self][slot]; ok {
			delete(m.known[m.self], slot)
			return true
		}
	}
	return false
}

// Score sums the believed points of the seat's own known slots.
func (m *Memory) Score() int {
	sum := 0
	for _, c := range m.known[m.self] {
		sum += c.Point()
	}
	return sum
}

// Clear forgets everything, typically between rounds.
func (m *Memory) Clear() {
	for i := range m.known {
		m.known[i] = make(map[int]domain.Card)
	}
	m.forget = forgetStart
}

func (m *Memory) valid(seat, slot int) bool {
	return seat >= 0 && seat < len(m.known) && slot >= 0 && slot < domain.DeckSlots
}
