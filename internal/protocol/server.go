package protocol

import "dutch/internal/domain"

// Hello carries the id assigned to a freshly connected client.
func Hello(id int) []byte { return []byte{OpHello, byte(id)} }

// ActiveSeat announces whose turn it is.
func ActiveSeat(seat int) []byte { return []byte{OpGame, EvActive, byte(seat)} }

// HandCard privately shows the card now in the actor's hand.
func HandCard(c domain.Card, fromDiscard bool) []byte {
	b := appendCard([]byte{OpGame, EvHand}, c, true)
	if fromDiscard {
		b = append(b, 0)
	}
	return b
}

// DrawNotice tells everyone the active seat drew from the pile.
func DrawNotice() []byte { return []byte{OpGame, EvDrawNotice} }

// SwapHand reports a hand card swapped into seat/slot with the resulting discard top and
// the card below it.
func SwapHand(seat, slot int, top domain.Card, topOK bool, below domain.Card, belowOK bool) []byte {
	b := []byte{OpGame, EvSwapHand, byte(seat), byte(slot)}
	b = appendCard(b, top, topOK)
	return appendCard(b, below, belowOK)
}

// Reveal privately shows the card at seat/slot.
func Reveal(c domain.Card, seat, slot int) []byte {
	return append(appendCard([]byte{OpGame, EvReveal}, c, true), byte(seat), byte(slot))
}

// Hide privately turns the card at seat/slot face down again.
func Hide(c domain.Card, seat, slot int) []byte {
	return append(appendCard([]byte{OpGame, EvHide}, c, true), byte(seat), byte(slot))
}

// Discarded reports a card thrown on the discard pile and the card now below it.
func Discarded(top domain.Card, below domain.Card, belowOK bool) []byte {
	b := appendCard([]byte{OpGame, EvDiscard}, top, true)
	return appendCard(b, below, belowOK)
}

// TookDiscard reports the discard top being picked up and the card it uncovered.
func TookDiscard(taken domain.Card, below domain.Card, belowOK bool) []byte {
	b := appendCard([]byte{OpGame, EvTookDiscard}, taken, true)
	return appendCard(b, below, belowOK)
}

// SwapSeats reports two slots exchanged between seats.
func SwapSeats(seatA, seatB, slotA, slotB int) []byte {
	return []byte{OpGame, EvSwapSeats, byte(seatA), byte(seatB), byte(slotA), byte(slotB)}
}

// Announce reports the seat that announced the end of the round.
func Announce(seat int) []byte { return []byte{OpGame, EvAnnounce, byte(seat)} }

// RevealAll lays every deck face up: (seat (suit rank)x4 Sep)* End.
func RevealAll(decks []domain.DeckView) []byte {
	b := []byte{OpGame, EvRevealAll}
	for _, d := range decks {
		b = append(b, byte(d.Seat))
		for _, c := range d.Cards {
			b = appendCard(b, c, true)
		}
		b = append(b, Sep)
	}
	return append(b, End)
}

// Scores is the round scoreboard: (seat score)* End.
func Scores(entries []domain.ScoreEntry) []byte {
	return appendScores([]byte{OpGame, EvScores}, entries)
}

// GameOver carries the host-left flag, the winner and the final scoreboard.
func GameOver(hostLeft bool, winner int, entries []domain.ScoreEntry) []byte {
	return appendScores([]byte{OpGame, EvGameOver, boolByte(hostLeft), byte(winner)}, entries)
}

func appendScores(b []byte, entries []domain.ScoreEntry) []byte {
	for _, e := range entries {
		b = append(b, byte(e.Seat), byte(e.Score))
	}
	return append(b, End)
}

// NewRound announces the next round of the same game.
func NewRound() []byte { return []byte{OpGame, EvNewRound} }

// BackToLobby returns every view to the waiting room.
func BackToLobby() []byte { return []byte{OpGame, EvLobby} }

// JoinRefused explains why a join request failed.
func JoinRefused(reason byte) []byte { return []byte{OpJoin, reason} }

// ReadyFlag reports a client's ready toggle.
func ReadyFlag(id int, ready bool) []byte { return []byte{OpReady, byte(id), boolByte(ready)} }

// DifficultyChanged reports the AI difficulty of the table.
func DifficultyChanged(d domain.Difficulty) []byte { return []byte{OpDifficulty, byte(d)} }

// ClientLeft reports a client leaving the table.
func ClientLeft(id int) []byte { return []byte{OpLeave, byte(id)} }

// Countdown is one tick of the start countdown.
func Countdown(n int) []byte { return []byte{OpCountdownBase + byte(n)} }

// AIRemoved reports one AI seat removed.
func AIRemoved() []byte { return []byte{OpRemoveAI} }

// Privacy reports the table privacy to the requester.
func Privacy(private bool) []byte { return []byte{OpPrivacy, boolByte(private)} }

// SeatOrder lists seat ids starting with the receiving client's own seat.
func SeatOrder(order []int) []byte {
	b := make([]byte, 0, len(order)+1)
	b = append(b, OpSeatOrder)
	for _, s := range order {
		b = append(b, byte(s))
	}
	return b
}

// Kicked tells a client it was removed by the host.
func Kicked() []byte { return []byte{OpKicked} }

func boolByte(v bool) byte {
	if v {
		return 1
	}
	return 0
}
