package app

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dutch/internal/domain"
	"dutch/internal/protocol"
)

// run plays a script the way a table with zero pacing does and returns what it delivered.
func run(evs []Event) []Event {
	var out []Event
	for i, ev := range evs {
		if ev.Payload != nil {
			out = append(out, ev)
		}
		if ev.Then != nil {
			return append(out, run(append(ev.Then(), evs[i+1:]...))...)
		}
	}
	return out
}

func kinds(evs []Event) []EventKind {
	out := make([]EventKind, len(evs))
	for i, ev := range evs {
		out[i] = ev.Kind
	}
	return out
}

func newTestService(seed int64) *Service {
	return NewService(rand.New(rand.NewSource(seed)), domain.Options{EndgameScore: 1000}, nil)
}

// startHumans starts a match between n humans with zero pacing.
func startHumans(t *testing.T, n int) (*Service, *Match) {
	t.Helper()
	svc := newTestService(1)
	humans := make([]domain.Human, n)
	for i := range humans {
		humans[i] = domain.Human{ClientID: 10 + i, Name: Pseudonym(i)}
	}
	m, evs, err := svc.StartMatch(humans, 0, domain.DifficultyEasy, Pacing{})
	require.NoError(t, err)
	require.Equal(t, []EventKind{EventActiveSeat}, kinds(run(evs)))
	return svc, m
}

func act(t *testing.T, svc *Service, m *Match, seat int, payload []byte) []Event {
	t.Helper()
	cmd, err := protocol.ParseCommand(payload)
	require.NoError(t, err)
	evs, err := svc.Act(m, seat, cmd)
	require.NoError(t, err)
	return run(evs)
}

func actErr(svc *Service, m *Match, seat int, payload []byte) error {
	cmd, err := protocol.ParseCommand(payload)
	if err != nil {
		return err
	}
	_, err = svc.Act(m, seat, cmd)
	return err
}

func TestStartMatchSeatsAndDeals(t *testing.T) {
	svc := newTestService(1)
	m, evs, err := svc.StartMatch([]domain.Human{{ClientID: 3, Name: "Badger"}}, 2, domain.DifficultyHard, Pacing{})
	require.NoError(t, err)

	require.Equal(t, 3, m.Game.SeatCount())
	assert.Equal(t, 0, m.Game.ActiveID())
	assert.False(t, m.Game.Seats()[0].IsComputer())
	for seat := 1; seat < 3; seat++ {
		_, ok := m.Agent(seat)
		assert.True(t, ok, "seat %d should be AI driven", seat)
		assert.True(t, m.Game.Seats()[seat].IsComputer())
	}
	for _, s := range m.Game.Seats() {
		assert.Len(t, s.Deck, domain.DeckSlots)
	}
	assert.Equal(t, m.Game.Piles().Size(), m.Game.CardCount())

	first := run(evs)
	require.NotEmpty(t, first)
	assert.Equal(t, protocol.ActiveSeat(0), first[0].Payload)
	seat, ok := m.Awaiting()
	assert.True(t, ok)
	assert.Equal(t, 0, seat)
}

func TestStartMatchTooFewSeats(t *testing.T) {
	svc := newTestService(1)
	_, _, err := svc.StartMatch([]domain.Human{{ClientID: 1}}, 0, domain.DifficultyEasy, Pacing{})
	assert.ErrorIs(t, err, ErrTooFewSeats)
	_, _, err = svc.StartMatch(nil, 3, domain.DifficultyEasy, Pacing{})
	assert.ErrorIs(t, err, ErrTooFewSeats)
}

func TestActRejectsOtherSeat(t *testing.T) {
	svc, m := startHumans(t, 2)
	assert.ErrorIs(t, actErr(svc, m, 1, protocol.Draw()), ErrNotYourTurn)
	assert.ErrorIs(t, actErr(svc, m, 0, protocol.DiscardHand()), ErrIllegalAction)
	assert.ErrorIs(t, actErr(svc, m, 0, protocol.AnnounceEnd(1)), ErrIllegalAction)
}

func TestDrawThenDiscardPassesTurn(t *testing.T) {
	svc, m := startHumans(t, 2)
	size := m.Game.Piles().Size()

	cmd, err := protocol.ParseCommand(protocol.Draw())
	require.NoError(t, err)
	raw, err := svc.Act(m, 0, cmd)
	require.NoError(t, err)
	require.Len(t, raw, 2)
	assert.Equal(t, EventDrew, raw[0].Kind)
	assert.Empty(t, raw[0].Seats)
	assert.Equal(t, EventHandCard, raw[1].Kind)
	assert.Equal(t, []int{0}, raw[1].Seats)
	require.NotNil(t, m.Game.Active().Hand)

	assert.ErrorIs(t, actErr(svc, m, 0, protocol.Draw()), ErrIllegalAction)

	evs := act(t, svc, m, 0, protocol.DiscardHand())
	assert.Equal(t, []EventKind{EventDiscarded, EventActiveSeat}, kinds(evs))
	assert.Equal(t, protocol.ActiveSeat(1), evs[1].Payload)
	assert.Nil(t, m.Game.Seats()[0].Hand)
	assert.Equal(t, 1, m.Game.Piles().DiscardCount())
	assert.Equal(t, size, m.Game.CardCount())

	seat, ok := m.Awaiting()
	assert.True(t, ok)
	assert.Equal(t, 1, seat)
}

func TestSwapHandReplacesSlot(t *testing.T) {
	svc, m := startHumans(t, 2)
	act(t, svc, m, 0, protocol.Draw())
	drawn := *m.Game.Active().Hand
	old, err := m.Game.CardAt(0, 2)
	require.NoError(t, err)

	evs := act(t, svc, m, 0, protocol.SwapHandInto(2))
	assert.Equal(t, []EventKind{EventSwappedHand, EventActiveSeat}, kinds(evs))

	now, err := m.Game.CardAt(0, 2)
	require.NoError(t, err)
	assert.True(t, now.Same(drawn))
	top, ok := m.Game.Piles().TopDiscard()
	require.True(t, ok)
	assert.True(t, top.Same(old))
}

func TestTakeDiscardFromEmptyPileRepeatsActiveSeat(t *testing.T) {
	svc, m := startHumans(t, 2)
	evs := act(t, svc, m, 0, protocol.TakeDiscard())
	assert.Equal(t, []EventKind{EventActiveSeat}, kinds(evs))
	assert.Nil(t, m.Game.Active().Hand)

	seat, ok := m.Awaiting()
	assert.True(t, ok)
	assert.Equal(t, 0, seat)
}

func TestTakenDiscardHasNoPower(t *testing.T) {
	svc, m := startHumans(t, 2)
	act(t, svc, m, 0, protocol.Draw())
	*m.Game.Active().Hand = domain.NewCard(domain.Heart, domain.Nine)
	act(t, svc, m, 0, protocol.DiscardHand())

	evs := act(t, svc, m, 1, protocol.TakeDiscard())
	assert.Equal(t, []EventKind{EventTookDiscard, EventHandCard}, kinds(evs))
	assert.Equal(t, []int{1}, evs[1].Seats)
	assert.ErrorIs(t, actErr(svc, m, 1, protocol.Look(0, 0)), ErrIllegalAction)
}

func TestLookOwnPower(t *testing.T) {
	svc, m := startHumans(t, 2)
	act(t, svc, m, 0, protocol.Draw())
	*m.Game.Active().Hand = domain.NewCard(domain.Spade, domain.Seven)

	assert.ErrorIs(t, actErr(svc, m, 0, protocol.Look(1, 0)), ErrIllegalAction)

	evs := act(t, svc, m, 0, protocol.Look(0, 3))
	require.Equal(t, []EventKind{EventRevealed}, kinds(evs))
	assert.Equal(t, []int{0}, evs[0].Seats)
	c, err := m.Game.CardAt(0, 3)
	require.NoError(t, err)
	assert.Equal(t, protocol.Reveal(c, 0, 3), evs[0].Payload)

	assert.ErrorIs(t, actErr(svc, m, 0, protocol.Look(0, 2)), ErrIllegalAction, "power is single use")
	assert.Equal(t, []EventKind{EventDiscarded, EventActiveSeat}, kinds(act(t, svc, m, 0, protocol.DiscardHand())))
}

func TestBlindSwapPower(t *testing.T) {
	svc, m := startHumans(t, 3)
	act(t, svc, m, 0, protocol.Draw())
	*m.Game.Active().Hand = domain.NewCard(domain.Club, domain.Jack)

	a, _ := m.Game.CardAt(1, 0)
	b, _ := m.Game.CardAt(2, 1)
	evs := act(t, svc, m, 0, protocol.SwapBetween(1, 2, 0, 1))
	require.Equal(t, []EventKind{EventSwapSeats}, kinds(evs))
	assert.Empty(t, evs[0].Seats)

	gotA, _ := m.Game.CardAt(1, 0)
	gotB, _ := m.Game.CardAt(2, 1)
	assert.True(t, gotA.Same(b))
	assert.True(t, gotB.Same(a))
}

func TestKingLooksThenSwaps(t *testing.T) {
	svc, m := startHumans(t, 2)
	act(t, svc, m, 0, protocol.Draw())
	*m.Game.Active().Hand = domain.NewCard(domain.Club, domain.King)

	assert.ErrorIs(t, actErr(svc, m, 0, protocol.Look(0, 1)), ErrIllegalAction, "king looks at an opponent")
	assert.ErrorIs(t, actErr(svc, m, 0, protocol.SwapBetween(0, 1, 0, 2)), ErrIllegalAction, "king looks first")

	theirs, _ := m.Game.CardAt(1, 2)
	mine, _ := m.Game.CardAt(0, 0)
	evs := act(t, svc, m, 0, protocol.Look(1, 2))
	require.Equal(t, []EventKind{EventRevealed}, kinds(evs))
	assert.Equal(t, protocol.Reveal(theirs, 1, 2), evs[0].Payload)

	assert.ErrorIs(t, actErr(svc, m, 0, protocol.SwapBetween(1, 1, 2, 0)), ErrIllegalAction, "only the looked-at slot")

	evs = act(t, svc, m, 0, protocol.SwapBetween(0, 1, 0, 2))
	require.Equal(t, []EventKind{EventSwapSeats}, kinds(evs))
	got0, _ := m.Game.CardAt(0, 0)
	got1, _ := m.Game.CardAt(1, 2)
	assert.True(t, got0.Same(theirs))
	assert.True(t, got1.Same(mine))

	evs = act(t, svc, m, 0, protocol.DiscardHand())
	assert.Equal(t, []EventKind{EventDiscarded, EventActiveSeat}, kinds(evs))
	top, _ := m.Game.Piles().TopDiscard()
	assert.Equal(t, domain.King, top.Rank)
}

func TestHideRequiresOwnLook(t *testing.T) {
	svc, m := startHumans(t, 2)

	cmd, err := protocol.ParseCommand(protocol.Unlook(0, 0))
	require.NoError(t, err)
	evs, err := svc.Act(m, 1, cmd)
	assert.ErrorIs(t, err, ErrNotYourTurn, "nothing was looked at")
	assert.Empty(t, evs)

	act(t, svc, m, 0, protocol.Draw())
	*m.Game.Active().Hand = domain.NewCard(domain.Spade, domain.Nine)
	seen, _ := m.Game.CardAt(1, 2)
	act(t, svc, m, 0, protocol.Look(1, 2))

	assert.ErrorIs(t, actErr(svc, m, 1, protocol.Unlook(1, 2)), ErrNotYourTurn, "only the viewer hides")
	assert.ErrorIs(t, actErr(svc, m, 0, protocol.Unlook(1, 3)), ErrIllegalAction, "only the looked-at slot")

	evs = act(t, svc, m, 0, protocol.Unlook(1, 2))
	require.Equal(t, []EventKind{EventHidden}, kinds(evs))
	assert.Equal(t, []int{0}, evs[0].Seats)
	assert.Equal(t, protocol.Hide(seen, 1, 2), evs[0].Payload)

	assert.ErrorIs(t, actErr(svc, m, 0, protocol.Unlook(1, 2)), ErrNotYourTurn, "hidden once")
}

func TestHideAfterTurnEchoesSeenCard(t *testing.T) {
	svc, m := startHumans(t, 2)
	act(t, svc, m, 0, protocol.Draw())
	*m.Game.Active().Hand = domain.NewCard(domain.Heart, domain.Seven)
	seen, _ := m.Game.CardAt(0, 1)
	act(t, svc, m, 0, protocol.Look(0, 1))
	act(t, svc, m, 0, protocol.DiscardHand())

	act(t, svc, m, 1, protocol.Draw())
	act(t, svc, m, 1, protocol.SwapHandInto(0))
	act(t, svc, m, 0, protocol.Draw())
	act(t, svc, m, 0, protocol.SwapHandInto(1))

	evs := act(t, svc, m, 0, protocol.Unlook(0, 1))
	require.Equal(t, []EventKind{EventHidden}, kinds(evs))
	assert.Equal(t, protocol.Hide(seen, 0, 1), evs[0].Payload, "the card now in the slot stays unseen")
}

func TestLookOutOfRangeKeepsPower(t *testing.T) {
	svc, m := startHumans(t, 2)
	act(t, svc, m, 0, protocol.Draw())
	*m.Game.Active().Hand = domain.NewCard(domain.Club, domain.Eight)

	assert.ErrorIs(t, actErr(svc, m, 0, protocol.Look(0, domain.DeckSlots)), ErrIllegalAction)
	assert.ErrorIs(t, actErr(svc, m, 0, protocol.Unlook(0, domain.DeckSlots)), ErrNotYourTurn)

	evs := act(t, svc, m, 0, protocol.Look(0, 0))
	assert.Equal(t, []EventKind{EventRevealed}, kinds(evs))
}

func TestAnnounceEndsRoundAfterLap(t *testing.T) {
	svc, m := startHumans(t, 2)

	evs := act(t, svc, m, 0, protocol.AnnounceEnd(0))
	assert.Equal(t, []EventKind{EventAnnounced}, kinds(evs))
	assert.ErrorIs(t, actErr(svc, m, 0, protocol.AnnounceEnd(0)), ErrIllegalAction)

	act(t, svc, m, 0, protocol.Draw())
	act(t, svc, m, 0, protocol.DiscardHand())
	act(t, svc, m, 1, protocol.Draw())
	evs = act(t, svc, m, 1, protocol.DiscardHand())

	assert.Equal(t, []EventKind{
		EventDiscarded, EventRevealAll, EventScores, EventNewRound, EventActiveSeat,
	}, kinds(evs))
	assert.Equal(t, 2, m.Game.Round())
	assert.False(t, m.Over())
	for _, s := range m.Game.Seats() {
		assert.Len(t, s.Deck, domain.DeckSlots)
	}
	assert.Equal(t, m.Game.Piles().Size(), m.Game.CardCount())
}

func TestMatchEndsPastEndgameScore(t *testing.T) {
	svc := NewService(rand.New(rand.NewSource(2)), domain.Options{EndgameScore: 1}, nil)
	m, _, err := svc.StartMatch([]domain.Human{{ClientID: 1}, {ClientID: 2}}, 0, domain.DifficultyEasy, Pacing{})
	require.NoError(t, err)

	act(t, svc, m, 0, protocol.AnnounceEnd(0))
	act(t, svc, m, 0, protocol.Draw())
	act(t, svc, m, 0, protocol.DiscardHand())
	act(t, svc, m, 1, protocol.Draw())
	evs := act(t, svc, m, 1, protocol.DiscardHand())

	require.NotEmpty(t, evs)
	last := evs[len(evs)-1]
	assert.Equal(t, EventGameOver, last.Kind)
	assert.True(t, m.Over())
	assert.ErrorIs(t, actErr(svc, m, 0, protocol.Draw()), ErrMatchOver)
}

func TestTakeOverFinishesHeldCard(t *testing.T) {
	svc, m := startHumans(t, 2)
	act(t, svc, m, 0, protocol.Draw())
	held := *m.Game.Active().Hand
	draws := m.Game.Piles().DrawCount()

	evs, err := svc.TakeOver(m, 0)
	require.NoError(t, err)
	evs = run(evs)

	require.NotEmpty(t, evs)
	assert.NotContains(t, kinds(evs), EventDrew, "the held card is played, not replaced")
	assert.Equal(t, draws, m.Game.Piles().DrawCount())
	assert.Equal(t, EventActiveSeat, evs[len(evs)-1].Kind)
	assert.True(t, m.Game.Seats()[0].IsComputer())
	assert.Nil(t, m.Game.Seats()[0].Hand)
	assert.Equal(t, m.Game.Piles().Size(), m.Game.CardCount())

	kept := false
	if top, ok := m.Game.Piles().TopDiscard(); ok && top.Same(held) {
		kept = true
	}
	for slot := 0; slot < domain.DeckSlots; slot++ {
		if c, err := m.Game.CardAt(0, slot); err == nil && c.Same(held) {
			kept = true
		}
	}
	assert.True(t, kept, "held card %v is neither in the deck nor on the discard pile", held)

	seat, ok := m.Awaiting()
	assert.True(t, ok)
	assert.Equal(t, 1, seat)
}

func TestTakeOverNamesAreUnique(t *testing.T) {
	svc := newTestService(1)
	m, _, err := svc.StartMatch([]domain.Human{{ClientID: 1, Name: "Badger"}, {ClientID: 2, Name: "Otter"}}, 2, domain.DifficultyEasy, Pacing{})
	require.NoError(t, err)

	_, err = svc.TakeOver(m, 1)
	require.NoError(t, err)
	_, err = svc.TakeOver(m, 0)
	require.NoError(t, err)

	names := map[string]bool{}
	for _, s := range m.Game.Seats() {
		name := s.Occupant.DisplayName()
		assert.False(t, names[name], "duplicate name %q", name)
		names[name] = true
	}
	assert.Len(t, names, 4)
}

func TestTakeOverWaitingSeatPlaysLater(t *testing.T) {
	svc, m := startHumans(t, 2)

	evs, err := svc.TakeOver(m, 1)
	require.NoError(t, err)
	assert.Empty(t, evs)
	_, ok := m.Agent(1)
	require.True(t, ok)

	again, err := svc.TakeOver(m, 1)
	require.NoError(t, err)
	assert.Empty(t, again)

	act(t, svc, m, 0, protocol.Draw())
	evs = act(t, svc, m, 0, protocol.DiscardHand())

	// The AI plays seat 1 and hands the turn back to the human.
	assert.Equal(t, protocol.ActiveSeat(1), evs[1].Payload)
	assert.Equal(t, protocol.ActiveSeat(0), evs[len(evs)-1].Payload)
	seat, ok := m.Awaiting()
	assert.True(t, ok)
	assert.Equal(t, 0, seat)
	assert.Equal(t, m.Game.Piles().Size(), m.Game.CardCount())
}
