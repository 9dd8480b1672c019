package domain

import (
	"errors"
	"fmt"
	"math/rand"
)

var (
	ErrDeckSize  = errors.New("deck size must be a positive multiple of 32 or 52")
	ErrEmptyPile = errors.New("draw pile is empty")
)

// NewDeck returns the ordered cards of a deck of the given size.
// Sizes divisible by 32 use the short deck (Ace and Seven..King); other multiples of 52 use
// full decks.
func NewDeck(size int) ([]Card, error) {
	if size <= 0 || (size%32 != 0 && size%52 != 0) {
		return nil, fmt.Errorf("%w: %d", ErrDeckSize, size)
	}
	short := size%32 == 0
	copies := size / 52
	if short {
		copies = size / 32
	}

	cards := make([]Card, 0, size)
	for i := 0; i < copies; i++ {
		for _, s := range Suits {
			for r := Ace; r <= King; r++ {
				if short && r != Ace && r < Seven {
					continue
				}
				cards = append(cards, NewCard(s, r))
			}
		}
	}
	return cards, nil
}

// Piles holds the draw pile and the discard pile of one round.
type Piles struct {
	size    int
	draw    []Card
	discard []Card
	rng     *rand.Rand
}

// NewPiles builds a full draw pile of the given size and an empty discard pile.
func NewPiles(size int, rng *rand.Rand) (*Piles, error) {
	cards, err := NewDeck(size)
	if err != nil {
		return nil, err
	}
	return &Piles{size: size, draw: cards, rng: rng}, nil
}

// Size returns the configured deck size.
func (p *Piles) Size() int { return p.size }

// DrawCount returns the number of cards left in the draw pile.
func (p *Piles) DrawCount() int { return len(p.draw) }

// DiscardCount returns the number of cards in the discard pile.
func (p *Piles) DiscardCount() int { return len(p.discard) }

// Draw removes a uniformly random card from the draw pile.
// When the pile holds its last card, the discard pile minus its top is moved back into the
// draw pile so the draw pile never runs dry mid-round.
func (p *Piles) Draw() (Card, error) {
	switch len(p.draw) {
	case 0:
		return Card{}, ErrEmptyPile
	case 1:
		last := p.draw[0]
		p.draw = p.draw[:0]
		top, ok := p.PopDiscard()
		p.draw = append(p.draw, p.discard...)
		p.discard = p.discard[:0]
		if ok {
			p.discard = append(p.discard, top)
		}
		return last, nil
	}

	i := p.rng.Intn(len(p.draw))
	c := p.draw[i]
	p.draw[i] = p.draw[len(p.draw)-1]
	p.draw = p.draw[:len(p.draw)-1]
	return c, nil
}

// Discard pushes a card on the discard pile and marks it spent.
func (p *Piles) Discard(c Card) {
	c.Spent = true
	p.discard = append(p.discard, c)
}

// TopDiscard returns the top of the discard pile.
func (p *Piles) TopDiscard() (Card, bool) {
	if len(p.discard) < 1 {
		return Card{}, false
	}
	return p.discard[len(p.discard)-1], true
}

// SecondDiscard returns the card just below the discard top.
func (p *Piles) SecondDiscard() (Card, bool) {
	if len(p.discard) < 2 {
		return Card{}, false
	}
	return p.discard[len(p.discard)-2], true
}

// PopDiscard removes and returns the discard top.
func (p *Piles) PopDiscard() (Card, bool) {
	c, ok := p.TopDiscard()
	if !ok {
		return Card{}, false
	}
	p.discard = p.discard[:len(p.discard)-1]
	c.Spent = true
	return c, true
}
