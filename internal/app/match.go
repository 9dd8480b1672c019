package app

import (
	"dutch/internal/bot"
	"dutch/internal/domain"
)

type turnPhase int

const (
	turnIdle turnPhase = iota
	turnAwaiting
	turnHolding
	turnPowerUsed
	turnKing
)

// turnState tracks how far the active human got in the current turn.
type turnState struct {
	phase       turnPhase
	seat        int
	fromDiscard bool
	kingSeat    int
	kingSlot    int
}

// reveal is the face-down card a seat was last shown by a look power.
type reveal struct {
	seat, slot int
	card       domain.Card
}

// Match is a game in progress at a table: the authoritative Game plus the AI agents
// sitting next to it.
type Match struct {
	Game *domain.Game
	// HostLeft is set once the client that started the game left it.
	HostLeft bool

	agents map[int]*bot.Agent
	level  domain.Difficulty
	pace   Pacing
	turn   turnState
	over   bool
	// shown holds each seat's last unhidden look.
	shown map[int]reveal
}

// Agent returns the AI agent playing seat.
func (m *Match) Agent(seat int) (*bot.Agent, bool) {
	a, ok := m.agents[seat]
	return a, ok
}

// Over reports whether the final scoreboard has been sent.
func (m *Match) Over() bool { return m.over }

// Awaiting returns the human seat whose action the match is waiting for.
func (m *Match) Awaiting() (int, bool) {
	if m.turn.phase == turnIdle {
		return 0, false
	}
	return m.turn.seat, true
}

func (m *Match) remember(seat int, r reveal) {
	if m.shown == nil {
		m.shown = make(map[int]reveal)
	}
	m.shown[seat] = r
}

func (m *Match) observeReplace(seat, slot int, c domain.Card, public bool) {
	for _, a := range m.agents {
		a.ObserveReplace(seat, slot, c, public)
	}
}

func (m *Match) observeSwap(seatA, slotA, seatB, slotB int) {
	for _, a := range m.agents {
		a.ObserveSwap(seatA, slotA, seatB, slotB)
	}
}

func (m *Match) discardTops() (top domain.Card, topOK bool, below domain.Card, belowOK bool) {
	p := m.Game.Piles()
	top, topOK = p.TopDiscard()
	below, belowOK = p.SecondDiscard()
	return
}
