package domain

const (
	// DeckSlots is the number of face-down cards in front of each seat.
	DeckSlots = 4
	MinSeats  = 2
	MaxSeats  = 10

	// DefaultDeckSize is the online deck: two full 52-card decks.
	DefaultDeckSize         = 104
	DefaultEndgameScore     = 50
	DefaultAnnouncerPenalty = 10
)
