package bot

import (
	"fmt"
	"math/rand"

	"dutch/internal/domain"
)

// NewBrain creates a new AI brain for seat self at a table of the given size.
func NewBrain(level domain.Difficulty, self, seats int, rng *rand.Rand) (Brain, error) {
	if self < 0 || self >= seats {
		return nil, fmt.Errorf("seat %d outside table of %d", self, seats)
	}
	switch level {
	case domain.DifficultyEasy:
		return &EasyBot{base: newBase(self, seats, rng)}, nil
	case domain.DifficultyHard:
		return &HardBot{base: newBase(self, seats, rng)}, nil
	default:
		return nil, fmt.Errorf("unknown bot level: %d", level)
	}
}
