package bot

import "dutch/internal/domain"

// EasyBot plays coin flips. It ignores its memory entirely.
type EasyBot struct {
	base
}

func (b *EasyBot) WantDiscard(top domain.Card, ok bool) int {
	if !ok || !b.coin() {
		return -1
	}
	return b.randomSlot()
}

func (b *EasyBot) ChooseAction(drawn domain.Card) Action {
	if b.coin() {
		return Action{Kind: ActionSwap, Slot: b.randomSlot()}
	}
	if drawn.HasPower() {
		return b.randomPower(drawn)
	}
	return Discard
}

func (b *EasyBot) AcceptKingSwap(Action, domain.Card) bool {
	return b.coin()
}

// CallEnd fires on four independent coin flips, regardless of the deck.
func (b *EasyBot) CallEnd() bool {
	return b.coin() && b.coin() && b.coin() && b.coin()
}
