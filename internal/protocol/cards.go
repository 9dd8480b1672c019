package protocol

import "dutch/internal/domain"

// appendCard writes suit and rank, or End End when ok is false.
func appendCard(b []byte, c domain.Card, ok bool) []byte {
	if !ok {
		return append(b, End, End)
	}
	return append(b, byte(c.Suit), byte(c.Rank))
}

// readCard decodes a suit/rank pair; the End End pair decodes as no card.
func readCard(suit, rank byte) (domain.Card, bool, error) {
	if suit == End && rank == End {
		return domain.Card{}, false, nil
	}
	c := domain.NewCard(domain.Suit(suit), domain.Rank(rank))
	if !c.Valid() {
		return domain.Card{}, false, ErrMalformed
	}
	return c, true, nil
}
