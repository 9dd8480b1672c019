package protocol

import (
	"fmt"

	"dutch/internal/domain"
)

// Event is a decoded server message, as consumed by a remote view.
// Only the fields relevant to Op/Sub are set.
type Event struct {
	Op  byte
	Sub byte

	ID        int
	Seat      int
	Slot      int
	OtherSeat int
	OtherSlot int
	Value     int
	Flag      bool

	Card        domain.Card
	HasCard     bool
	Below       domain.Card
	HasBelow    bool
	FromDiscard bool

	Decks  []domain.DeckView
	Scores []domain.ScoreEntry
	Order  []int
	Roster Roster
}

// ParseEvent decodes a server payload.
func ParseEvent(p []byte) (Event, error) {
	if len(p) == 0 {
		return Event{}, ErrMalformed
	}
	ev := Event{Op: p[0]}
	need := func(n int) error {
		if len(p) < n {
			return fmt.Errorf("%w: op %d needs %d bytes, got %d", ErrMalformed, p[0], n, len(p))
		}
		return nil
	}

	switch {
	case ev.Op == OpHello:
		if err := need(2); err != nil {
			return ev, err
		}
		ev.ID = int(p[1])
	case ev.Op == OpGame:
		if err := need(2); err != nil {
			return ev, err
		}
		ev.Sub = p[1]
		return parseGame(ev, p)
	case ev.Op == OpJoin, ev.Op == OpDifficulty, ev.Op == OpLeave, ev.Op == OpPrivacy:
		if err := need(2); err != nil {
			return ev, err
		}
		ev.Value = int(p[1])
		ev.ID = int(p[1])
		ev.Flag = p[1] == 1
	case ev.Op == OpRoster:
		r, err := DecodeRoster(p)
		if err != nil {
			return ev, err
		}
		ev.Roster = r
	case ev.Op == OpReady:
		if err := need(3); err != nil {
			return ev, err
		}
		ev.ID = int(p[1])
		ev.Flag = p[2] == 1
	case ev.Op > OpCountdownBase && ev.Op <= OpCountdownBase+10:
		ev.Value = int(ev.Op - OpCountdownBase)
	case ev.Op == OpSeatOrder:
		ev.Order = ints(p[1:])
	case ev.Op == OpRemoveAI, ev.Op == OpKicked:
	default:
		return ev, fmt.Errorf("%w: op %d", ErrMalformed, ev.Op)
	}
	return ev, nil
}

func parseGame(ev Event, p []byte) (Event, error) {
	need := func(n int) error {
		if len(p) < n {
			return fmt.Errorf("%w: event %d needs %d bytes, got %d", ErrMalformed, int8(ev.Sub), n, len(p))
		}
		return nil
	}
	var err error

	switch ev.Sub {
	case EvActive, EvAnnounce:
		if err = need(3); err == nil {
			ev.Seat = int(p[2])
		}
	case EvHand:
		if err = need(4); err == nil {
			ev.Card, ev.HasCard, err = readCard(p[2], p[3])
			ev.FromDiscard = len(p) > 4
		}
	case EvDrawNotice, EvNewRound, EvLobby:
	case EvSwapHand:
		if err = need(8); err == nil {
			ev.Seat, ev.Slot = int(p[2]), int(p[3])
			ev, err = readPair(ev, p[4:8])
		}
	case EvHide, EvReveal:
		if err = need(6); err == nil {
			ev.Card, ev.HasCard, err = readCard(p[2], p[3])
			ev.Seat, ev.Slot = int(p[4]), int(p[5])
		}
	case EvDiscard, EvTookDiscard:
		if err = need(6); err == nil {
			ev, err = readPair(ev, p[2:6])
		}
	case EvSwapSeats:
		if err = need(6); err == nil {
			ev.Seat, ev.OtherSeat, ev.Slot, ev.OtherSlot = int(p[2]), int(p[3]), int(p[4]), int(p[5])
		}
	case EvRevealAll:
		ev.Decks, err = readDecks(p[2:])
	case EvScores:
		ev.Scores, err = readScores(p[2:])
	case EvGameOver:
		if err = need(5); err == nil {
			ev.Flag = p[2] == 1
			ev.Seat = int(p[3])
			ev.Scores, err = readScores(p[4:])
		}
	default:
		err = fmt.Errorf("%w: event %d", ErrMalformed, int8(ev.Sub))
	}
	return ev, err
}

func readPair(ev Event, b []byte) (Event, error) {
	var err error
	if ev.Card, ev.HasCard, err = readCard(b[0], b[1]); err != nil {
		return ev, err
	}
	ev.Below, ev.HasBelow, err = readCard(b[2], b[3])
	return ev, err
}

func readDecks(b []byte) ([]domain.DeckView, error) {
	var out []domain.DeckView
	for len(b) > 0 && b[0] != End {
		d := domain.DeckView{Seat: int(b[0])}
		b = b[1:]
		for len(b) > 0 && b[0] != Sep {
			if len(b) < 2 {
				return nil, ErrMalformed
			}
			c, ok, err := readCard(b[0], b[1])
			if err != nil || !ok {
				return nil, ErrMalformed
			}
			d.Cards = append(d.Cards, c)
			b = b[2:]
		}
		if len(b) == 0 {
			return nil, ErrMalformed
		}
		b = b[1:]
		out = append(out, d)
	}
	if len(b) == 0 {
		return nil, ErrMalformed
	}
	return out, nil
}

func readScores(b []byte) ([]domain.ScoreEntry, error) {
	var out []domain.ScoreEntry
	for len(b) > 0 && b[0] != End {
		if len(b) < 2 {
			return nil, ErrMalformed
		}
		out = append(out, domain.ScoreEntry{Seat: int(b[0]), Score: int(b[1])})
		b = b[2:]
	}
	if len(b) == 0 {
		return nil, ErrMalformed
	}
	return out, nil
}
