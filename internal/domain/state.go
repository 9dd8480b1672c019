package domain

// Difficulty selects the AI tier of a computer seat.
type Difficulty int

const (
	DifficultyEasy Difficulty = iota
	DifficultyHard
)

// Occupant is whoever sits in a seat: a Human or a Computer.
type Occupant interface {
	occupant()
	DisplayName() string
}

// Human is a seat driven by a connected client.
type Human struct {
	ClientID int
	Name     string
}

// Computer is a seat driven by an AI brain.
type Computer struct {
	Name       string
	Difficulty Difficulty
}

func (Human) occupant()    {}
func (Computer) occupant() {}

func (h Human) DisplayName() string    { return h.Name }
func (c Computer) DisplayName() string { return c.Name }

// Seat is one place at the table.
type Seat struct {
	ID       int
	Occupant Occupant
	// Deck holds DeckSlots cards during play and is empty between rounds.
	Deck []Card
	// Hand is the drawn card waiting to be resolved, nil when empty.
	Hand  *Card
	Score int
}

// IsComputer reports whether the seat is AI driven.
func (s *Seat) IsComputer() bool {
	_, ok := s.Occupant.(Computer)
	return ok
}

// DeckScore sums the points of the seat's deck.
func (s *Seat) DeckScore() int {
	sum := 0
	for _, c := range s.Deck {
		sum += c.Point()
	}
	return sum
}

// CardCount returns the cards held by the seat, deck and hand included.
func (s *Seat) CardCount() int {
	n := len(s.Deck)
	if s.Hand != nil {
		n++
	}
	return n
}
