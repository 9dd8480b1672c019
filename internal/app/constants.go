package app

import "dutch/internal/domain"

const (
	// MaxClients caps concurrently registered clients; ids wrap around below it.
	MaxClients = 250
	// MinRequiredSeats is the smallest table, humans and AI seats together.
	MinRequiredSeats = 2
	// DefaultSpeed is the animation speed of a client that never sent one.
	DefaultSpeed = 1.5

	codeLength   = 6
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	// seatOrderAt is the countdown tick that carries the seat order.
	seatOrderAt = 5
)

// DefaultDifficulty is the AI tier of a fresh table.
const DefaultDifficulty = domain.DifficultyEasy
