package bot

import "dutch/internal/domain"

// HardBot decides from what it remembers of the table.
type HardBot struct {
	base
}

func (b *HardBot) WantDiscard(top domain.Card, ok bool) int {
	if !ok {
		return -1
	}
	mem := b.mem

	if mem.Size() == 0 {
		if top.Point() >= hardTakeFirst {
			return -1
		}
		return b.keep(mem.NextUnknown(), top)
	}

	if top.Point() < hardTakeLow {
		slot := mem.NextUnknown()
		if slot < 0 {
			slot = mem.SwitchMax(top)
		}
		if slot < 0 {
			return -1
		}
		return b.keep(slot, top)
	}

	if slot := mem.SwitchMax(top); slot >= 0 && top.Point() < hardTakeSwitch {
		return b.keep(slot, top)
	}
	return -1
}

// keep memorizes c at slot and lets memory decay, returning slot.
func (b *HardBot) keep(slot int, c domain.Card) int {
	b.mem.Learn(b.self, slot, c)
	b.mem.Decay()
	return slot
}

func (b *HardBot) ChooseAction(drawn domain.Card) Action {
	defer b.mem.Decay()
	mem := b.mem

	if mem.Size() == 0 {
		if !drawn.HasPower() || drawn.Point() == 0 {
			return b.swapInto(mem.NextUnknown(), drawn)
		}
		return b.usePower(drawn)
	}

	if slot := mem.SwitchMax(drawn); slot >= 0 {
		return b.swapInto(slot, drawn)
	}
	if drawn.HasPower() {
		return b.usePower(drawn)
	}
	if drawn.Point() < hardKeepDrawn && mem.Size() < domain.DeckSlots {
		return b.swapInto(mem.NextUnknown(), drawn)
	}
	return Discard
}

func (b *HardBot) swapInto(slot int, c domain.Card) Action {
	if slot < 0 {
		return Discard
	}
	b.mem.Learn(b.self, slot, c)
	return Action{Kind: ActionSwap, Slot: slot}
}

func (b *HardBot) usePower(c domain.Card) Action {
	mem := b.mem
	switch c.Power() {
	case domain.PowerLookOwn:
		if slot := mem.NextUnknown(); slot >= 0 {
			return Action{Kind: ActionLookOwn, Slot: slot}
		}
		return Discard

	case domain.PowerLookAny:
		if slot := mem.NextUnknown(); slot >= 0 {
			return Action{Kind: ActionLookAny, Seat: b.self, Slot: slot}
		}
		seat := mem.FewestKnownOpponent()
		slot := mem.NextUnknownOf(seat)
		if slot < 0 {
			slot = domain.DeckSlots - 1
		}
		return Action{Kind: ActionLookAny, Seat: seat, Slot: slot}

	case domain.PowerBlindSwap:
		seat, slot, low, ok := mem.MinOpponent()
		if max := mem.MaxSlot(); ok && max >= 0 {
			if own, _ := mem.Own(max); low.Point() < own.Point() {
				return Action{Kind: ActionBlindSwap, Seat: seat, Slot: slot, OtherSeat: b.self, OtherSlot: max}
			}
		}
		return Action{
			Kind:      ActionBlindSwap,
			Seat:      b.randomOpponent(),
			Slot:      b.randomSlot(),
			OtherSeat: b.randomOpponent(),
			OtherSlot: b.randomSlot(),
		}

	case domain.PowerKing:
		seat, slot, _, ok := mem.MinOpponent()
		if !ok {
			seat, slot = b.randomOpponent(), b.randomSlot()
		}
		own := mem.NextUnknown()
		if own < 0 {
			own = mem.MaxSlot()
		}
		return Action{Kind: ActionKing, Seat: seat, Slot: slot, OtherSeat: b.self, OtherSlot: own}
	}
	return Discard
}

// AcceptKingSwap takes the opposing card when the own candidate is known to be worse;
// without a belief about the candidate it flips a coin.
func (b *HardBot) AcceptKingSwap(a Action, seen domain.Card) bool {
	own, ok := b.mem.Own(a.OtherSlot)
	if !ok {
		return b.coin()
	}
	return own.Point() > seen.Point()
}

func (b *HardBot) CallEnd() bool {
	n := b.rng.Intn(hardEndOdds) + 1
	size, score := b.mem.Size(), b.mem.Score()
	switch {
	case size == 3 && score < hardEndThree && n == hardEndOdds:
		return true
	case size == domain.DeckSlots && score < hardEndFour:
		return true
	}
	return false
}
