package domain

import "fmt"

// Suit is a card suit. The numeric value is the wire ordinal.
type Suit int8

const (
	Heart Suit = iota
	Diamond
	Spade
	Club
)

// Suits lists every suit in wire order.
var Suits = [...]Suit{Heart, Diamond, Spade, Club}

func (s Suit) String() string {
	switch s {
	case Heart:
		return "H"
	case Diamond:
		return "D"
	case Spade:
		return "S"
	case Club:
		return "C"
	default:
		return "?"
	}
}

// Red reports whether the suit is a red one.
func (s Suit) Red() bool {
	return s == Heart || s == Diamond
}

// Rank is a card rank from Ace (0) to King (12). The numeric value is the wire ordinal.
type Rank int8

const (
	Ace Rank = iota
	Two
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
)

var rankNames = [...]string{"A", "2", "3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K"}

func (r Rank) String() string {
	if r < Ace || r > King {
		return "?"
	}
	return rankNames[r]
}

// Card is a single playing card.
type Card struct {
	Suit Suit
	Rank Rank
	// Spent is set once the card has been through the discard pile; a spent card has no power.
	Spent bool
}

// NewCard returns an unspent card.
func NewCard(s Suit, r Rank) Card {
	return Card{Suit: s, Rank: r}
}

// Valid reports whether suit and rank are in range.
func (c Card) Valid() bool {
	return c.Suit >= Heart && c.Suit <= Club && c.Rank >= Ace && c.Rank <= King
}

// Same reports whether both cards share suit and rank.
func (c Card) Same(o Card) bool {
	return c.Suit == o.Suit && c.Rank == o.Rank
}

// Point returns the scoring value of the card.
// Ace..Ten count face value, Jack and Queen 10, a red King 0 and a black King 15.
func (c Card) Point() int {
	switch {
	case c.Rank <= Ten:
		return int(c.Rank) + 1
	case c.Rank == King:
		if c.Suit.Red() {
			return 0
		}
		return 15
	default:
		return 10
	}
}

// HasPower reports whether drawing the card unlocks a special action.
func (c Card) HasPower() bool {
	return c.Rank >= Seven && !c.Spent
}

// Power returns the special action tied to the card rank.
func (c Card) Power() Power {
	switch c.Rank {
	case Seven, Eight:
		return PowerLookOwn
	case Nine, Ten:
		return PowerLookAny
	case Jack, Queen:
		return PowerBlindSwap
	case King:
		return PowerKing
	default:
		return PowerNone
	}
}

func (c Card) String() string {
	return fmt.Sprintf("%s%s", c.Rank, c.Suit)
}

// Power identifies the special action unlocked by a drawn card.
type Power int

const (
	PowerNone Power = iota
	// PowerLookOwn reveals one of the actor's own slots.
	PowerLookOwn
	// PowerLookAny reveals one slot of any seat.
	PowerLookAny
	// PowerBlindSwap swaps two slots between any seats without looking.
	PowerBlindSwap
	// PowerKing reveals one opposing slot, then optionally swaps it with an own slot.
	PowerKing
)
