package domain

import (
	"errors"
	"fmt"
	"math/rand"
	"time"
)

var (
	ErrSeatCount    = errors.New("seat count out of range")
	ErrUnknownSeat  = errors.New("seat not found")
	ErrBadSlot      = errors.New("slot out of range")
	ErrHandFull     = errors.New("hand already holds a card")
	ErrHandEmpty    = errors.New("hand is empty")
	ErrDiscardEmpty = errors.New("discard pile is empty")
	ErrAlreadyDealt = errors.New("cards already dealt")
	ErrRoundScored  = errors.New("round already scored")
)

// Options tunes a Game. Zero values fall back to the defaults.
type Options struct {
	DeckSize         int
	EndgameScore     int
	AnnouncerPenalty int
	Rand             *rand.Rand
}

func (o Options) withDefaults() Options {
	if o.DeckSize == 0 {
		o.DeckSize = DefaultDeckSize
	}
	if o.EndgameScore == 0 {
		o.EndgameScore = DefaultEndgameScore
	}
	if o.AnnouncerPenalty == 0 {
		o.AnnouncerPenalty = DefaultAnnouncerPenalty
	}
	if o.Rand == nil {
		o.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return o
}

// Game is the authoritative state of a multi-round Dutch game.
// It trusts its caller: turn ownership is checked before any call reaches it.
type Game struct {
	opts Options

	seats     []*Seat
	queue     []int // circular turn order; head is the next seat to play
	active    int
	announcer int // -1 when nobody announced
	piles     *Piles
	round     int
	scored    bool
	over      bool
}

// NewGame seats the occupants with ids in the given order and makes seat 0 active.
func NewGame(occupants []Occupant, opts Options) (*Game, error) {
	if len(occupants) < MinSeats || len(occupants) > MaxSeats {
		return nil, fmt.Errorf("%w: %d", ErrSeatCount, len(occupants))
	}
	opts = opts.withDefaults()
	piles, err := NewPiles(opts.DeckSize, opts.Rand)
	if err != nil {
		return nil, err
	}
	if opts.DeckSize < len(occupants)*DeckSlots+1 {
		return nil, fmt.Errorf("%w: %d cards for %d seats", ErrDeckSize, opts.DeckSize, len(occupants))
	}

	g := &Game{opts: opts, piles: piles, announcer: -1, round: 1}
	for i, occ := range occupants {
		g.seats = append(g.seats, &Seat{ID: i, Occupant: occ})
		g.queue = append(g.queue, i)
	}
	g.NextPlayer()
	return g, nil
}

// Seats returns the seats ordered by id.
func (g *Game) Seats() []*Seat {
	out := make([]*Seat, len(g.seats))
	copy(out, g.seats)
	return out
}

// Seat looks a seat up by id.
func (g *Game) Seat(id int) (*Seat, bool) {
	if id < 0 || id >= len(g.seats) {
		return nil, false
	}
	return g.seats[id], true
}

// SeatCount returns the number of seats.
func (g *Game) SeatCount() int { return len(g.seats) }

// Piles exposes the draw and discard piles.
func (g *Game) Piles() *Piles { return g.piles }

// Round returns the 1-based round number.
func (g *Game) Round() int { return g.round }

// Active returns the seat whose turn it is.
func (g *Game) Active() *Seat { return g.seats[g.active] }

// ActiveID returns the id of the active seat.
func (g *Game) ActiveID() int { return g.active }

// NextUp returns the seat that NextPlayer would activate.
func (g *Game) NextUp() int { return g.queue[0] }

// Queue returns a copy of the turn order, head first.
func (g *Game) Queue() []int {
	out := make([]int, len(g.queue))
	copy(out, g.queue)
	return out
}

// NextPlayer rotates the queue one step; the former head becomes active.
func (g *Game) NextPlayer() *Seat {
	head := g.queue[0]
	g.queue = append(g.queue[1:], head)
	g.active = head
	return g.seats[head]
}

// Distribute deals DeckSlots cards to every seat, one at a time, lowest seat id first.
func (g *Game) Distribute() error {
	for _, s := range g.seats {
		if len(s.Deck) != 0 {
			return ErrAlreadyDealt
		}
	}
	for n := 0; n < DeckSlots; n++ {
		for _, s := range g.seats {
			c, err := g.piles.Draw()
			if err != nil {
				return fmt.Errorf("distribute: %w", err)
			}
			s.Deck = append(s.Deck, c)
		}
	}
	return nil
}

// DrawFromPile draws a card into the active seat's hand.
func (g *Game) DrawFromPile() (Card, error) {
	s := g.Active()
	if s.Hand != nil {
		return Card{}, ErrHandFull
	}
	c, err := g.piles.Draw()
	if err != nil {
		return Card{}, err
	}
	s.Hand = &c
	return c, nil
}

// TakeDiscard moves the discard top into the active seat's hand.
func (g *Game) TakeDiscard() (Card, error) {
	s := g.Active()
	if s.Hand != nil {
		return Card{}, ErrHandFull
	}
	c, ok := g.piles.PopDiscard()
	if !ok {
		return Card{}, ErrDiscardEmpty
	}
	s.Hand = &c
	return c, nil
}

// SwapHandIntoDeck puts the active hand into slot and discards the card it displaces.
func (g *Game) SwapHandIntoDeck(slot int) (Card, error) {
	s := g.Active()
	if s.Hand == nil {
		return Card{}, ErrHandEmpty
	}
	if slot < 0 || slot >= len(s.Deck) {
		return Card{}, fmt.Errorf("%w: %d", ErrBadSlot, slot)
	}
	out := s.Deck[slot]
	s.Deck[slot] = *s.Hand
	s.Hand = nil
	g.piles.Discard(out)
	return out, nil
}

// DiscardHand discards the active seat's hand.
func (g *Game) DiscardHand() (Card, error) {
	s := g.Active()
	if s.Hand == nil {
		return Card{}, ErrHandEmpty
	}
	c := *s.Hand
	s.Hand = nil
	g.piles.Discard(c)
	return c, nil
}

// CardAt returns the card lying in a seat's slot.
func (g *Game) CardAt(seat, slot int) (Card, error) {
	s, ok := g.Seat(seat)
	if !ok {
		return Card{}, fmt.Errorf("%w: %d", ErrUnknownSeat, seat)
	}
	if slot < 0 || slot >= len(s.Deck) {
		return Card{}, fmt.Errorf("%w: %d", ErrBadSlot, slot)
	}
	return s.Deck[slot], nil
}

// SwapSlots exchanges two deck slots, possibly of the same seat.
func (g *Game) SwapSlots(seatA, slotA, seatB, slotB int) error {
	if _, err := g.CardAt(seatA, slotA); err != nil {
		return err
	}
	if _, err := g.CardAt(seatB, slotB); err != nil {
		return err
	}
	a, b := g.seats[seatA], g.seats[seatB]
	a.Deck[slotA], b.Deck[slotB] = b.Deck[slotB], a.Deck[slotA]
	return nil
}

// Announce records seat as the announcer of the end of the round.
// It reports false when someone already announced.
func (g *Game) Announce(seat int) bool {
	if g.announcer >= 0 {
		return false
	}
	if _, ok := g.Seat(seat); !ok {
		return false
	}
	g.announcer = seat
	return true
}

// Announcer returns the seat that announced the end of the round.
func (g *Game) Announcer() (int, bool) {
	return g.announcer, g.announcer >= 0
}

// RoundOver reports whether the turn order has come back to the announcer.
func (g *Game) RoundOver() bool {
	return g.announcer >= 0 && g.queue[0] == g.announcer
}

// Replace swaps the occupant of a seat, keeping its cards, score and announcer status.
func (g *Game) Replace(seat int, occ Occupant) error {
	s, ok := g.Seat(seat)
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownSeat, seat)
	}
	s.Occupant = occ
	return nil
}

// CardCount returns every card in play plus both piles; it always equals the deck size.
func (g *Game) CardCount() int {
	n := g.piles.DrawCount() + g.piles.DiscardCount()
	for _, s := range g.seats {
		n += s.CardCount()
	}
	return n
}
