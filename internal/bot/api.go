package bot

import (
	"dutch/internal/bot/brain"
	"dutch/internal/domain"
)

// ActionKind identifies how a drawn card is resolved.
type ActionKind int

const (
	ActionDiscard ActionKind = iota
	ActionSwap
	ActionLookOwn
	ActionLookAny
	ActionBlindSwap
	ActionKing
)

func (k ActionKind) String() string {
	switch k {
	case ActionDiscard:
		return "discard"
	case ActionSwap:
		return "swap"
	case ActionLookOwn:
		return "look-own"
	case ActionLookAny:
		return "look-any"
	case ActionBlindSwap:
		return "blind-swap"
	case ActionKing:
		return "king"
	default:
		return "unknown"
	}
}

// Action is the decision made by the AI for the card in hand.
//
//	Swap, LookOwn: Slot is the own slot.
//	LookAny:       Seat/Slot is the looked-at position.
//	BlindSwap:     Seat/Slot and OtherSeat/OtherSlot are exchanged.
//	King:          Seat/Slot is the opposing position looked at, OtherSlot the own
//	               candidate it may be exchanged with (OtherSeat is the actor).
type Action struct {
	Kind      ActionKind
	Seat      int
	Slot      int
	OtherSeat int
	OtherSlot int
}

// Discard is the fallback action.
var Discard = Action{Kind: ActionDiscard}

// Brain is the interface that all bot strategies must implement.
type Brain interface {
	// WantDiscard returns the own slot the discard top should replace, or -1 to draw instead.
	WantDiscard(top domain.Card, ok bool) int
	// ChooseAction resolves a card drawn from the pile.
	ChooseAction(drawn domain.Card) Action
	// AcceptKingSwap decides whether to complete a King swap after seeing the opposing card.
	AcceptKingSwap(a Action, seen domain.Card) bool
	// CallEnd reports whether the seat announces the end of the round after its turn.
	CallEnd() bool
	// Memory exposes the belief store fed by table observations.
	Memory() *brain.Memory
}

// Valid reports whether a is structurally playable by seat self at a table of seats seats.
func (a Action) Valid(self, seats int) bool {
	seatOK := func(s int) bool { return s >= 0 && s < seats }
	slotOK := func(s int) bool { return s >= 0 && s < domain.DeckSlots }
	switch a.Kind {
	case ActionDiscard:
		return true
	case ActionSwap, ActionLookOwn:
		return slotOK(a.Slot)
	case ActionLookAny:
		return seatOK(a.Seat) && slotOK(a.Slot)
	case ActionBlindSwap:
		return seatOK(a.Seat) && slotOK(a.Slot) && seatOK(a.OtherSeat) && slotOK(a.OtherSlot)
	case ActionKing:
		return seatOK(a.Seat) && a.Seat != self && slotOK(a.Slot) && a.OtherSeat == self && slotOK(a.OtherSlot)
	default:
		return false
	}
}

// Uses reports whether the action consumes the given power.
func (a Action) Uses(p domain.Power) bool {
	switch a.Kind {
	case ActionLookOwn:
		return p == domain.PowerLookOwn
	case ActionLookAny:
		return p == domain.PowerLookAny
	case ActionBlindSwap:
		return p == domain.PowerBlindSwap
	case ActionKing:
		return p == domain.PowerKing
	default:
		return false
	}
}
