// Package client keeps a remote view of a table in sync with the server's event stream and
// forwards every visible change to a Renderer.
package client

import (
	"fmt"
	"sync"

	"dutch/internal/domain"
	"dutch/internal/protocol"
)

// HandSlot stands for the card held in hand in a RenderSwap call.
const HandSlot = -1

// Sound is a cue played alongside a render call.
type Sound int

const (
	SoundCardFlip Sound = iota
	SoundCountdown
	SoundAnnounce
	SoundVictory
)

// Renderer draws table changes. Calls are fire-and-forget and must not block the view.
type Renderer interface {
	RenderReveal(seat, slot int, card domain.Card, blocking bool)
	RenderHide(seat, slot int, card domain.Card, blocking bool)
	RenderSwap(seatA, slotA, seatB, slotB int)
	RenderDrawFromPile()
	RenderDrawFromDiscard(card domain.Card, below domain.Card, hasBelow bool)
	RenderDiscard(card domain.Card, below domain.Card, hasBelow bool)
	RenderScoreboard(entries []domain.ScoreEntry)
	RenderWinner(seat int, entries []domain.ScoreEntry)
	PlaySound(s Sound)
}

// Phase is where the view stands in the table lifecycle.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLobby
	PhaseCountdown
	PhaseGame
	PhaseOver
)

type slotKey struct{ seat, slot int }

// State is a copy of what the view currently knows.
type State struct {
	ID         int
	Phase      Phase
	Roster     protocol.Roster
	Ready      map[int]bool
	Difficulty domain.Difficulty
	Countdown  int
	// Refused holds the last join refusal reason, or -1.
	Refused    int
	Kicked     bool

	Order     []int
	Active    int
	Announcer int
	Hand      domain.Card
	HasHand   bool
	Discard   domain.Card
	Below     domain.Card
	HasTop    bool
	HasBelow  bool
	known     map[slotKey]domain.Card
	Scores    []domain.ScoreEntry
	Winner    int
	HostLeft  bool
}

// Card returns the face of seat/slot if this view has seen it and it has not moved since.
func (s State) Card(seat, slot int) (domain.Card, bool) {
	c, ok := s.known[slotKey{seat, slot}]
	return c, ok
}

// View applies server events to a State and drives a Renderer.
type View struct {
	r Renderer

	mu sync.Mutex
	s  State
}

func NewView(r Renderer) *View {
	if r == nil {
		r = nopRenderer{}
	}
	v := &View{r: r}
	v.s.ID = -1
	v.s.Refused = -1
	v.resetGame()
	return v
}

// Snapshot returns a copy of the current state.
func (v *View) Snapshot() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	s := v.s
	s.Ready = make(map[int]bool, len(v.s.Ready))
	for k, r := range v.s.Ready {
		s.Ready[k] = r
	}
	s.known = make(map[slotKey]domain.Card, len(v.s.known))
	for k, c := range v.s.known {
		s.known[k] = c
	}
	s.Order = append([]int(nil), v.s.Order...)
	s.Scores = append([]domain.ScoreEntry(nil), v.s.Scores...)
	s.Roster.Members = append([]protocol.RosterMember(nil), v.s.Roster.Members...)
	s.Roster.AIs = append([]protocol.RosterAI(nil), v.s.Roster.AIs...)
	return s
}

// ApplyPayload decodes a raw server payload and applies it.
func (v *View) ApplyPayload(p []byte) error {
	ev, err := protocol.ParseEvent(p)
	if err != nil {
		return err
	}
	return v.Apply(ev)
}

// Apply folds one decoded event into the view.
func (v *View) Apply(ev protocol.Event) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	s := &v.s

	if ev.Op > protocol.OpCountdownBase && ev.Op <= protocol.OpCountdownBase+10 {
		s.Countdown = ev.Value
		s.Phase = PhaseCountdown
		v.r.PlaySound(SoundCountdown)
		return nil
	}

	switch ev.Op {
	case protocol.OpHello:
		s.ID = ev.ID
	case protocol.OpJoin:
		s.Refused = ev.Value
	case protocol.OpRoster:
		s.Roster = ev.Roster
		s.Refused = -1
		s.Kicked = false
		s.Ready = make(map[int]bool, len(ev.Roster.Members))
		for _, m := range ev.Roster.Members {
			s.Ready[m.ID] = m.Ready
		}
		if s.Phase == PhaseIdle || s.Phase == PhaseCountdown {
			s.Phase = PhaseLobby
		}
	case protocol.OpReady:
		s.Ready[ev.ID] = ev.Flag
		if !ev.Flag && s.Phase == PhaseCountdown {
			s.Phase = PhaseLobby
		}
	case protocol.OpDifficulty:
		s.Difficulty = domain.Difficulty(ev.Value)
		for i := range s.Roster.AIs {
			s.Roster.AIs[i].Difficulty = s.Difficulty
		}
	case protocol.OpLeave:
		delete(s.Ready, ev.ID)
		for i, m := range s.Roster.Members {
			if m.ID == ev.ID {
				s.Roster.Members = append(s.Roster.Members[:i], s.Roster.Members[i+1:]...)
				break
			}
		}
	case protocol.OpRemoveAI:
		if n := len(s.Roster.AIs); n > 0 {
			s.Roster.AIs = s.Roster.AIs[:n-1]
		}
	case protocol.OpPrivacy:
		s.Roster.Private = ev.Flag
	case protocol.OpSeatOrder:
		s.Order = ev.Order
	case protocol.OpKicked:
		s.Kicked = true
		s.Phase = PhaseIdle
		s.Roster = protocol.Roster{}
	case protocol.OpGame:
		return v.applyGame(ev)
	default:
		return fmt.Errorf("client: unhandled op %d", ev.Op)
	}
	return nil
}

func (v *View) applyGame(ev protocol.Event) error {
	s := &v.s
	switch ev.Sub {
	case protocol.EvActive:
		if s.Phase != PhaseGame {
			v.resetGame()
			s.Phase = PhaseGame
		}
		s.Active = ev.Seat
		s.HasHand = false
	case protocol.EvHand:
		s.Hand, s.HasHand = ev.Card, true
		v.r.PlaySound(SoundCardFlip)
	case protocol.EvDrawNotice:
		v.r.RenderDrawFromPile()
	case protocol.EvSwapHand:
		delete(s.known, slotKey{ev.Seat, ev.Slot})
		s.HasHand = false
		v.setDiscard(ev)
		v.r.RenderSwap(ev.Seat, ev.Slot, ev.Seat, HandSlot)
		v.r.RenderDiscard(ev.Card, ev.Below, ev.HasBelow)
		v.r.PlaySound(SoundCardFlip)
	case protocol.EvReveal:
		s.known[slotKey{ev.Seat, ev.Slot}] = ev.Card
		v.r.RenderReveal(ev.Seat, ev.Slot, ev.Card, false)
		v.r.PlaySound(SoundCardFlip)
	case protocol.EvHide:
		delete(s.known, slotKey{ev.Seat, ev.Slot})
		v.r.RenderHide(ev.Seat, ev.Slot, ev.Card, false)
		v.r.PlaySound(SoundCardFlip)
	case protocol.EvDiscard:
		s.HasHand = false
		v.setDiscard(ev)
		v.r.RenderDiscard(ev.Card, ev.Below, ev.HasBelow)
		v.r.PlaySound(SoundCardFlip)
	case protocol.EvTookDiscard:
		s.Hand, s.HasHand = ev.Card, true
		s.Discard, s.HasTop = ev.Below, ev.HasBelow
		s.HasBelow = false
		v.r.RenderDrawFromDiscard(ev.Card, ev.Below, ev.HasBelow)
	case protocol.EvSwapSeats:
		a, b := slotKey{ev.Seat, ev.Slot}, slotKey{ev.OtherSeat, ev.OtherSlot}
		ca, okA := s.known[a]
		cb, okB := s.known[b]
		delete(s.known, a)
		delete(s.known, b)
		if okA {
			s.known[b] = ca
		}
		if okB {
			s.known[a] = cb
		}
		v.r.RenderSwap(ev.Seat, ev.Slot, ev.OtherSeat, ev.OtherSlot)
	case protocol.EvAnnounce:
		s.Announcer = ev.Seat
		v.r.PlaySound(SoundAnnounce)
	case protocol.EvRevealAll:
		for _, d := range ev.Decks {
			for slot, c := range d.Cards {
				s.known[slotKey{d.Seat, slot}] = c
				v.r.RenderReveal(d.Seat, slot, c, true)
			}
		}
	case protocol.EvScores:
		s.Scores = ev.Scores
		v.r.RenderScoreboard(ev.Scores)
	case protocol.EvGameOver:
		s.Phase = PhaseOver
		s.HostLeft = ev.Flag
		s.Winner = ev.Seat
		s.Scores = ev.Scores
		v.r.RenderWinner(ev.Seat, ev.Scores)
		v.r.PlaySound(SoundVictory)
	case protocol.EvNewRound:
		scores := s.Scores
		v.resetGame()
		s.Scores = scores
		s.Phase = PhaseGame
	case protocol.EvLobby:
		v.resetGame()
		s.Phase = PhaseLobby
		for id := range s.Ready {
			s.Ready[id] = false
		}
	default:
		return fmt.Errorf("client: unhandled event %d", int8(ev.Sub))
	}
	return nil
}

func (v *View) setDiscard(ev protocol.Event) {
	v.s.Discard, v.s.HasTop = ev.Card, ev.HasCard
	v.s.Below, v.s.HasBelow = ev.Below, ev.HasBelow
}

func (v *View) resetGame() {
	s := &v.s
	s.Active = -1
	s.Announcer = -1
	s.Winner = -1
	s.HostLeft = false
	s.HasHand = false
	s.HasTop = false
	s.HasBelow = false
	s.Countdown = 0
	s.known = make(map[slotKey]domain.Card)
	s.Scores = nil
	if s.Ready == nil {
		s.Ready = make(map[int]bool)
	}
}

type nopRenderer struct{}

func (nopRenderer) RenderReveal(int, int, domain.Card, bool)             {}
func (nopRenderer) RenderHide(int, int, domain.Card, bool)               {}
func (nopRenderer) RenderSwap(int, int, int, int)                        {}
func (nopRenderer) RenderDrawFromPile()                                  {}
func (nopRenderer) RenderDrawFromDiscard(domain.Card, domain.Card, bool) {}
func (nopRenderer) RenderDiscard(domain.Card, domain.Card, bool)         {}
func (nopRenderer) RenderScoreboard([]domain.ScoreEntry)                 {}
func (nopRenderer) RenderWinner(int, []domain.ScoreEntry)                {}
func (nopRenderer) PlaySound(Sound)                                      {}
