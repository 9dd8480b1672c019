package domain

import "fmt"

// ScoreEntry pairs a seat with its cumulative score.
type ScoreEntry struct {
	Seat  int
	Score int
}

// DeckView is a seat's deck as revealed at the end of a round.
type DeckView struct {
	Seat  int
	Cards []Card
}

// AddScore closes the round: the announcer pays the penalty unless their deck scored the
// round minimum, then every deck sum is added to its seat. It reports whether any cumulative
// score now exceeds the endgame threshold. Restart must run before the next call.
func (g *Game) AddScore() (bool, error) {
	if g.scored {
		return g.over, ErrRoundScored
	}
	g.scored = true

	if a, ok := g.Announcer(); ok {
		min := g.seats[0].DeckScore()
		for _, s := range g.seats[1:] {
			if v := s.DeckScore(); v < min {
				min = v
			}
		}
		if g.seats[a].DeckScore() > min {
			g.seats[a].Score += g.opts.AnnouncerPenalty
		}
	}

	over := false
	for _, s := range g.seats {
		s.Score += s.DeckScore()
		if s.Score > g.opts.EndgameScore {
			over = true
		}
	}
	g.over = over
	return over, nil
}

// Scored reports whether the current round has been scored.
func (g *Game) Scored() bool { return g.scored }

// Over reports whether the last scoring ended the game.
func (g *Game) Over() bool { return g.over }

// Scoreboard lists cumulative scores by seat id.
func (g *Game) Scoreboard() []ScoreEntry {
	out := make([]ScoreEntry, 0, len(g.seats))
	for _, s := range g.seats {
		out = append(out, ScoreEntry{Seat: s.ID, Score: s.Score})
	}
	return out
}

// Decks lists every seat's deck by seat id.
func (g *Game) Decks() []DeckView {
	out := make([]DeckView, 0, len(g.seats))
	for _, s := range g.seats {
		cards := make([]Card, len(s.Deck))
		copy(cards, s.Deck)
		out = append(out, DeckView{Seat: s.ID, Cards: cards})
	}
	return out
}

// Winner returns the seat with the lowest cumulative score, lowest id on ties.
func (g *Game) Winner() int {
	best := 0
	for _, s := range g.seats[1:] {
		if s.Score < g.seats[best].Score {
			best = s.ID
		}
	}
	return best
}

// Restart clears hands and decks, builds fresh piles and opens the next round.
// Cumulative scores and the turn order carry over.
func (g *Game) Restart() error {
	piles, err := NewPiles(g.opts.DeckSize, g.opts.Rand)
	if err != nil {
		return fmt.Errorf("restart: %w", err)
	}
	for _, s := range g.seats {
		s.Deck = nil
		s.Hand = nil
	}
	g.piles = piles
	g.announcer = -1
	g.scored = false
	g.round++
	return nil
}

// ResetScores zeroes every cumulative score for a new game with the same seats.
func (g *Game) ResetScores() {
	for _, s := range g.seats {
		s.Score = 0
	}
	g.over = false
	g.round = 1
}
