package app

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"dutch/internal/bot"
	"dutch/internal/domain"
	"dutch/internal/protocol"
)

// Service contains Dutch use-cases operating on a Match. It is owned by a single table
// goroutine and is not safe for concurrent use.
type Service struct {
	rng  *rand.Rand
	opts domain.Options
	log  Logger
}

// NewService constructs a Service with provided rng or a time-seeded default.
func NewService(rng *rand.Rand, opts domain.Options, log Logger) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if log == nil {
		log = NopLogger()
	}
	opts.Rand = rng
	return &Service{rng: rng, opts: opts, log: log}
}

var (
	ErrNotYourTurn   = errors.New("not the seat's turn")
	ErrIllegalAction = errors.New("action not allowed now")
	ErrTooFewSeats   = errors.New("not enough seats to start")
	ErrMatchOver     = errors.New("match is over")
)

// StartMatch seats the humans first and AI agents after them, deals and opens the first
// turn with seat 0 active.
func (s *Service) StartMatch(humans []domain.Human, ais int, level domain.Difficulty, pace Pacing) (*Match, []Event, error) {
	n := len(humans) + ais
	if n < MinRequiredSeats || len(humans) == 0 {
		return nil, nil, ErrTooFewSeats
	}

	occupants := make([]domain.Occupant, 0, n)
	for _, h := range humans {
		occupants = append(occupants, h)
	}
	agents := make(map[int]*bot.Agent, ais)
	for i := 0; i < ais; i++ {
		seat := len(humans) + i
		a, err := bot.NewAgent(seat, n, bot.Name(i), level, s.rng)
		if err != nil {
			return nil, nil, err
		}
		agents[seat] = a
		occupants = append(occupants, a.Occupant())
	}

	g, err := domain.NewGame(occupants, s.opts)
	if err != nil {
		return nil, nil, err
	}
	if err := g.Distribute(); err != nil {
		return nil, nil, err
	}

	m := &Match{Game: g, agents: agents, level: level, pace: pace}
	return m, s.beginTurn(m), nil
}

// beginTurn announces the active seat and either waits for its human or schedules the AI.
func (s *Service) beginTurn(m *Match) []Event {
	seat := m.Game.Active()
	evs := []Event{broadcast(EventActiveSeat, protocol.ActiveSeat(seat.ID))}

	a, ok := m.agents[seat.ID]
	if !ok {
		m.turn = turnState{phase: turnAwaiting, seat: seat.ID}
		return evs
	}
	m.turn = turnState{phase: turnIdle}
	return append(evs, after(m.pace.Step, func() []Event { return s.aiTurn(m, a) }))
}

// endTurn closes the active turn; the next one begins after a step.
func (s *Service) endTurn(m *Match) []Event {
	m.turn = turnState{phase: turnIdle}
	return []Event{after(m.pace.Step, func() []Event { return s.nextTurn(m) })}
}

// nextTurn rotates to the next seat, or closes the round once the queue is back at the
// announcer.
func (s *Service) nextTurn(m *Match) []Event {
	if m.Game.RoundOver() {
		return s.endRound(m)
	}
	m.Game.NextPlayer()
	return s.beginTurn(m)
}

// endRound reveals every deck, scores the round, then starts the next round or ends the
// match.
func (s *Service) endRound(m *Match) []Event {
	m.turn = turnState{phase: turnIdle}
	reveal := broadcast(EventRevealAll, protocol.RevealAll(m.Game.Decks()))
	reveal.Delay = m.pace.RoundEnd

	score := after(m.pace.RevealPerSeat*time.Duration(m.Game.SeatCount()), func() []Event {
		over, err := m.Game.AddScore()
		if err != nil {
			s.log.Error("add score: %v", err)
			return nil
		}
		board := m.Game.Scoreboard()
		return []Event{
			broadcast(EventScores, protocol.Scores(board)),
			after(m.pace.Scoreboard, func() []Event {
				if over {
					return s.finishMatch(m)
				}
				return s.nextRound(m)
			}),
		}
	})
	return []Event{reveal, score}
}

func (s *Service) finishMatch(m *Match) []Event {
	ev := broadcast(EventGameOver, protocol.GameOver(m.HostLeft, m.Game.Winner(), m.Game.Scoreboard()))
	if err := m.Game.Restart(); err != nil {
		s.log.Error("restart after game over: %v", err)
	}
	m.over = true
	return []Event{ev}
}

func (s *Service) nextRound(m *Match) []Event {
	evs := []Event{broadcast(EventNewRound, protocol.NewRound())}
	if err := m.Game.Restart(); err != nil {
		s.log.Error("restart: %v", err)
		return evs
	}
	if err := m.Game.Distribute(); err != nil {
		s.log.Error("distribute: %v", err)
		return evs
	}
	for _, a := range m.agents {
		a.Reset()
	}
	m.shown = nil
	return append(evs, s.nextTurn(m)...)
}

// TakeOver hands seat to an AI agent that keeps its cards, score and announcer status.
// When the seat was in the middle of its turn the agent finishes it.
func (s *Service) TakeOver(m *Match, seat int) ([]Event, error) {
	if m.over {
		return nil, ErrMatchOver
	}
	if _, ok := m.agents[seat]; ok {
		return nil, nil
	}
	// Agents are never removed, so len(m.agents) is the next unused AI index.
	a, err := bot.NewAgent(seat, m.Game.SeatCount(), bot.Name(len(m.agents)), m.level, s.rng)
	if err != nil {
		return nil, err
	}
	if err := m.Game.Replace(seat, a.Occupant()); err != nil {
		return nil, err
	}
	m.agents[seat] = a
	delete(m.shown, seat)

	if m.turn.phase == turnIdle || m.turn.seat != seat {
		return nil, nil
	}
	st := m.turn
	m.turn = turnState{phase: turnIdle}

	switch st.phase {
	case turnAwaiting:
		return s.aiDraw(m, a), nil
	case turnHolding:
		hand := m.Game.Active().Hand
		if hand == nil {
			return nil, fmt.Errorf("seat %d holding without a hand card", seat)
		}
		return s.aiResolve(m, a, *hand, st.fromDiscard), nil
	default:
		return s.aiDiscard(m, a), nil
	}
}
