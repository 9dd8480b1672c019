package bot

import (
	"math/rand"

	"dutch/internal/domain"
)

// Agent represents an autonomous bot seated at a table.
type Agent struct {
	Seat       int
	Name       string
	Difficulty domain.Difficulty
	Strategy   Brain

	seats int
}

// NewAgent builds an agent for seat at a table of seats seats.
func NewAgent(seat, seats int, name string, level domain.Difficulty, rng *rand.Rand) (*Agent, error) {
	strategy, err := NewBrain(level, seat, seats, rng)
	if err != nil {
		return nil, err
	}
	return &Agent{Seat: seat, Name: name, Difficulty: level, Strategy: strategy, seats: seats}, nil
}

// Occupant returns the domain occupant matching this agent.
func (a *Agent) Occupant() domain.Occupant {
	return domain.Computer{Name: a.Name, Difficulty: a.Difficulty}
}

// WantDiscard asks whether to take the discard top; it returns the slot to replace or -1.
func (a *Agent) WantDiscard(top domain.Card, ok bool) int {
	if !ok {
		return -1
	}
	slot := a.Strategy.WantDiscard(top, ok)
	if slot < 0 || slot >= domain.DeckSlots {
		return -1
	}
	return slot
}

// Decide resolves a drawn card. Anything the table could not play falls back to a discard.
func (a *Agent) Decide(drawn domain.Card) Action {
	act := a.Strategy.ChooseAction(drawn)
	if !act.Valid(a.Seat, a.seats) {
		return Discard
	}
	if act.Kind != ActionDiscard && act.Kind != ActionSwap && (!drawn.HasPower() || !act.Uses(drawn.Power())) {
		return Discard
	}
	return act
}

// AcceptKingSwap decides the second half of a King power.
func (a *Agent) AcceptKingSwap(act Action, seen domain.Card) bool {
	return a.Strategy.AcceptKingSwap(act, seen)
}

// CallEnd asks whether the agent announces the end of the round.
func (a *Agent) CallEnd() bool {
	return a.Strategy.CallEnd()
}

// Observe records a card the agent has seen at seat/slot.
func (a *Agent) Observe(seat, slot int, c domain.Card) {
	a.Strategy.Memory().Learn(seat, slot, c)
}

// ObserveSwap mirrors a public swap between two slots.
func (a *Agent) ObserveSwap(seatA, slotA, seatB, slotB int) {
	a.Strategy.Memory().Swap(seatA, slotA, seatB, slotB)
}

// ObserveReplace records that seat put a new card in slot. When the card came face up
// from the discard pile everyone knows it; otherwise the old belief is dropped.
func (a *Agent) ObserveReplace(seat, slot int, c domain.Card, public bool) {
	mem := a.Strategy.Memory()
	switch {
	case public:
		mem.Learn(seat, slot, c)
	case seat != a.Seat:
		mem.Forget(seat, slot)
	}
}

// Reset clears what the agent remembers, typically between rounds.
func (a *Agent) Reset() {
	a.Strategy.Memory().Clear()
}
