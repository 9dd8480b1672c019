package bot

import (
	"math/rand"
	"time"

	"dutch/internal/bot/brain"
	"dutch/internal/domain"
)

// base carries what every strategy needs: its seat, the table size, randomness and memory.
type base struct {
	self  int
	seats int
	rng   *rand.Rand
	mem   *brain.Memory
}

func newBase(self, seats int, rng *rand.Rand) base {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return base{self: self, seats: seats, rng: rng, mem: brain.NewMemory(self, seats, rng)}
}

func (b *base) Memory() *brain.Memory { return b.mem }

func (b *base) coin() bool { return b.rng.Intn(2) == 0 }

func (b *base) randomSlot() int { return b.rng.Intn(domain.DeckSlots) }

func (b *base) randomSeat() int { return b.rng.Intn(b.seats) }

// randomOpponent picks any seat but self.
func (b *base) randomOpponent() int {
	s := b.rng.Intn(b.seats - 1)
	if s >= b.self {
		s++
	}
	return s
}

// randomPower resolves a power with uniformly random targets.
func (b *base) randomPower(c domain.Card) Action {
	switch c.Power() {
	case domain.PowerLookOwn:
		return Action{Kind: ActionLookOwn, Slot: b.randomSlot()}
	case domain.PowerLookAny:
		return Action{Kind: ActionLookAny, Seat: b.randomSeat(), Slot: b.randomSlot()}
	case domain.PowerBlindSwap:
		return Action{
			Kind:      ActionBlindSwap,
			Seat:      b.randomSeat(),
			Slot:      b.randomSlot(),
			OtherSeat: b.randomSeat(),
			OtherSlot: b.randomSlot(),
		}
	case domain.PowerKing:
		return Action{
			Kind:      ActionKing,
			Seat:      b.randomOpponent(),
			Slot:      b.randomSlot(),
			OtherSeat: b.self,
			OtherSlot: b.randomSlot(),
		}
	default:
		return Discard
	}
}
