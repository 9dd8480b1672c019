package domain

import (
	"errors"
	"math/rand"
	"testing"
)

func newTestGame(t *testing.T, seats int, seed int64) *Game {
	t.Helper()
	occ := make([]Occupant, 0, seats)
	for i := 0; i < seats; i++ {
		occ = append(occ, Human{ClientID: i, Name: "p"})
	}
	g, err := NewGame(occ, Options{DeckSize: 52, Rand: rand.New(rand.NewSource(seed))})
	if err != nil {
		t.Fatalf("NewGame: %v", err)
	}
	return g
}

func TestNewGameSeatBounds(t *testing.T) {
	for _, n := range []int{0, 1, 11} {
		occ := make([]Occupant, n)
		for i := range occ {
			occ[i] = Computer{Name: "ai"}
		}
		if _, err := NewGame(occ, Options{}); !errors.Is(err, ErrSeatCount) {
			t.Errorf("NewGame(%d seats) err = %v, want ErrSeatCount", n, err)
		}
	}
}

func TestNewGameActivatesSeatZero(t *testing.T) {
	g := newTestGame(t, 4, 1)
	if g.ActiveID() != 0 {
		t.Fatalf("ActiveID = %d, want 0", g.ActiveID())
	}
	if g.NextUp() != 1 {
		t.Fatalf("NextUp = %d, want 1", g.NextUp())
	}
}

func TestNextPlayerFullRotation(t *testing.T) {
	for n := MinSeats; n <= MaxSeats; n++ {
		occ := make([]Occupant, n)
		for i := range occ {
			occ[i] = Computer{Name: "ai"}
		}
		g, err := NewGame(occ, Options{Rand: rand.New(rand.NewSource(int64(n)))})
		if err != nil {
			t.Fatal(err)
		}
		start := g.ActiveID()
		seen := make(map[int]int)
		for i := 0; i < n; i++ {
			seen[g.NextPlayer().ID]++
		}
		if g.ActiveID() != start {
			t.Errorf("%d seats: active after full rotation = %d, want %d", n, g.ActiveID(), start)
		}
		for id := 0; id < n; id++ {
			if seen[id] != 1 {
				t.Errorf("%d seats: seat %d visited %d times", n, id, seen[id])
			}
		}
	}
}

func TestDistribute(t *testing.T) {
	g := newTestGame(t, 3, 2)
	if err := g.Distribute(); err != nil {
		t.Fatal(err)
	}
	for _, s := range g.Seats() {
		if len(s.Deck) != DeckSlots {
			t.Errorf("seat %d has %d cards", s.ID, len(s.Deck))
		}
	}
	if g.Piles().DrawCount() != 52-3*DeckSlots {
		t.Errorf("DrawCount = %d", g.Piles().DrawCount())
	}
	if err := g.Distribute(); !errors.Is(err, ErrAlreadyDealt) {
		t.Errorf("second Distribute err = %v, want ErrAlreadyDealt", err)
	}
}

func TestPileConservationRandomPlay(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	g := newTestGame(t, 4, 42)
	if err := g.Distribute(); err != nil {
		t.Fatal(err)
	}
	for turn := 0; turn < 500; turn++ {
		var err error
		if _, ok := g.Piles().TopDiscard(); ok && rng.Intn(3) == 0 {
			_, err = g.TakeDiscard()
		} else {
			_, err = g.DrawFromPile()
		}
		if err != nil {
			t.Fatalf("turn %d draw: %v", turn, err)
		}
		if got := g.CardCount(); got != 52 {
			t.Fatalf("turn %d: card count = %d after draw", turn, got)
		}
		if rng.Intn(2) == 0 {
			_, err = g.SwapHandIntoDeck(rng.Intn(DeckSlots))
		} else {
			_, err = g.DiscardHand()
		}
		if err != nil {
			t.Fatalf("turn %d resolve: %v", turn, err)
		}
		if rng.Intn(5) == 0 {
			if err := g.SwapSlots(rng.Intn(4), rng.Intn(DeckSlots), rng.Intn(4), rng.Intn(DeckSlots)); err != nil {
				t.Fatalf("turn %d swap: %v", turn, err)
			}
		}
		if got := g.CardCount(); got != 52 {
			t.Fatalf("turn %d: card count = %d", turn, got)
		}
		g.NextPlayer()
	}
}

func TestTurnActionsRejectIllegalState(t *testing.T) {
	g := newTestGame(t, 2, 5)
	if err := g.Distribute(); err != nil {
		t.Fatal(err)
	}
	if _, err := g.DiscardHand(); !errors.Is(err, ErrHandEmpty) {
		t.Errorf("DiscardHand err = %v, want ErrHandEmpty", err)
	}
	if _, err := g.TakeDiscard(); !errors.Is(err, ErrDiscardEmpty) {
		t.Errorf("TakeDiscard err = %v, want ErrDiscardEmpty", err)
	}
	if _, err := g.DrawFromPile(); err != nil {
		t.Fatal(err)
	}
	if _, err := g.DrawFromPile(); !errors.Is(err, ErrHandFull) {
		t.Errorf("second draw err = %v, want ErrHandFull", err)
	}
	if _, err := g.SwapHandIntoDeck(4); !errors.Is(err, ErrBadSlot) {
		t.Errorf("SwapHandIntoDeck(4) err = %v, want ErrBadSlot", err)
	}
	if _, err := g.CardAt(9, 0); !errors.Is(err, ErrUnknownSeat) {
		t.Errorf("CardAt(9,0) err = %v, want ErrUnknownSeat", err)
	}
}

func TestSwapHandIntoDeckDiscardsDisplaced(t *testing.T) {
	g := newTestGame(t, 2, 9)
	if err := g.Distribute(); err != nil {
		t.Fatal(err)
	}
	old := g.Active().Deck[2]
	drawn, err := g.DrawFromPile()
	if err != nil {
		t.Fatal(err)
	}
	out, err := g.SwapHandIntoDeck(2)
	if err != nil {
		t.Fatal(err)
	}
	if !out.Same(old) {
		t.Errorf("displaced = %v, want %v", out, old)
	}
	if !g.Active().Deck[2].Same(drawn) {
		t.Errorf("slot 2 = %v, want %v", g.Active().Deck[2], drawn)
	}
	if top, _ := g.Piles().TopDiscard(); !top.Same(old) {
		t.Errorf("discard top = %v, want %v", top, old)
	}
	if g.Active().Hand != nil {
		t.Errorf("hand should be empty")
	}
}

func TestRoundTerminatesAfterAnnouncement(t *testing.T) {
	for n := MinSeats; n <= 6; n++ {
		g := newTestGame(t, n, int64(n))
		// Let a few turns pass so the announcer is not seat 0.
		for i := 0; i < n+1; i++ {
			g.NextPlayer()
		}
		announcer := g.ActiveID()
		if !g.Announce(announcer) {
			t.Fatalf("Announce failed")
		}
		if g.Announce((announcer + 1) % n) {
			t.Fatalf("second Announce should be refused")
		}
		calls := 0
		for !g.RoundOver() {
			g.NextPlayer()
			calls++
			if calls > n {
				t.Fatalf("%d seats: round did not end", n)
			}
		}
		if calls != n-1 {
			t.Errorf("%d seats: round ended after %d rotations, want %d", n, calls, n-1)
		}
	}
}

func TestReplaceKeepsCards(t *testing.T) {
	g := newTestGame(t, 3, 11)
	if err := g.Distribute(); err != nil {
		t.Fatal(err)
	}
	g.Announce(1)
	s, _ := g.Seat(1)
	s.Score = 17
	deck := append([]Card(nil), s.Deck...)

	if err := g.Replace(1, Computer{Name: "ai 0", Difficulty: DifficultyHard}); err != nil {
		t.Fatal(err)
	}
	s, _ = g.Seat(1)
	if !s.IsComputer() {
		t.Fatalf("seat 1 should be a computer")
	}
	if s.Score != 17 {
		t.Errorf("Score = %d, want 17", s.Score)
	}
	for i := range deck {
		if !s.Deck[i].Same(deck[i]) {
			t.Errorf("slot %d = %v, want %v", i, s.Deck[i], deck[i])
		}
	}
	if a, _ := g.Announcer(); a != 1 {
		t.Errorf("Announcer = %d, want 1", a)
	}
}
