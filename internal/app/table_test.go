package app

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dutch/internal/protocol"
)

// closeRecorder notes the table observer calls.
type closeRecorder struct {
	detached chan int
	closed   chan struct{}
}

func (r *closeRecorder) Detached(_ *Table, id int) { r.detached <- id }
func (r *closeRecorder) Closed(*Table)             { close(r.closed) }

func newTestTable(t *testing.T, countdown int, tickEvery time.Duration) (*Table, *closeRecorder) {
	t.Helper()
	obs := &closeRecorder{detached: make(chan int, 4), closed: make(chan struct{})}
	tbl := NewTable("TEST01", false, TableOptions{
		Pacing:    Pacing{Tick: tickEvery},
		Countdown: countdown,
		Rand:      rand.New(rand.NewSource(3)),
		Observer:  obs,
	})
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go tbl.Run(ctx)
	return tbl, obs
}

func TestCountdownSendsSeatOrderThenStarts(t *testing.T) {
	tbl, _ := newTestTable(t, 6, time.Millisecond)
	c := &recordConn{}
	require.NoError(t, tbl.Join(context.Background(), Peer{ID: 4, Name: "Egret", Conn: c}))

	tbl.Handle(4, protocol.Command{Op: protocol.OpReady})
	require.Eventually(t, func() bool { return tbl.Info().Started }, waitFor, tick)

	for n := 6; n >= 1; n-- {
		assert.Equal(t, 1, c.count(protocol.Countdown(n)), "tick %d", n)
	}
	assert.Equal(t, 1, c.count(protocol.SeatOrder([]int{0, 1})))

	var order []byte
	c.mu.Lock()
	for _, m := range c.msgs {
		if m[0] == protocol.OpSeatOrder || (m[0] > protocol.OpCountdownBase && m[0] <= protocol.OpCountdownBase+6) {
			order = append(order, m[0])
		}
	}
	c.mu.Unlock()
	want := []byte{
		protocol.OpCountdownBase + 6,
		protocol.OpCountdownBase + 5, protocol.OpSeatOrder,
		protocol.OpCountdownBase + 4, protocol.OpCountdownBase + 3,
		protocol.OpCountdownBase + 2, protocol.OpCountdownBase + 1,
	}
	assert.Equal(t, want, order)
}

func TestUnreadyCancelsCountdown(t *testing.T) {
	tbl, _ := newTestTable(t, 3, 20*time.Millisecond)
	c := &recordConn{}
	require.NoError(t, tbl.Join(context.Background(), Peer{ID: 1, Conn: c}))

	tbl.Handle(1, protocol.Command{Op: protocol.OpReady})
	require.Eventually(t, func() bool { return c.got(protocol.Countdown(3)) }, waitFor, tick)
	tbl.Handle(1, protocol.Command{Op: protocol.OpReady})

	assert.Never(t, func() bool { return tbl.Info().Started }, 150*time.Millisecond, tick)
	assert.True(t, c.got(protocol.ReadyFlag(1, false)))
}

func TestJoinRefusals(t *testing.T) {
	tbl, obs := newTestTable(t, 0, 0)
	ctx := context.Background()
	require.NoError(t, tbl.Join(ctx, Peer{ID: 1, Conn: &recordConn{}}))
	require.NoError(t, tbl.Join(ctx, Peer{ID: 2, Conn: &recordConn{}}))
	assert.ErrorIs(t, tbl.Join(ctx, Peer{ID: 3, Conn: &recordConn{}}), ErrTableFull)

	tbl.Handle(1, protocol.Command{Op: protocol.OpReady})
	tbl.Handle(2, protocol.Command{Op: protocol.OpReady})
	require.Eventually(t, func() bool { return tbl.Info().Started }, waitFor, tick)
	assert.ErrorIs(t, tbl.Join(ctx, Peer{ID: 3, Conn: &recordConn{}}), ErrTableStarted)

	tbl.Leave(1)
	tbl.Leave(2)
	select {
	case <-obs.closed:
	case <-time.After(waitFor):
		t.Fatal("table did not close after the last member left")
	}
	<-tbl.Done()
	assert.ErrorIs(t, tbl.Join(ctx, Peer{ID: 3, Conn: &recordConn{}}), ErrTableClosed)
}

func TestHostSpeedScalesPacing(t *testing.T) {
	p := Pacing{Step: time.Second, Swap: 6 * time.Second, Draw: 3 * time.Second}
	fast := p.Scale(2)
	assert.Equal(t, time.Second, fast.Step)
	assert.Equal(t, 3*time.Second, fast.Swap)
	assert.Equal(t, 1500*time.Millisecond, fast.Draw)
	assert.Equal(t, p, p.Scale(0))
}
