package app

import (
	"context"
	"errors"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"dutch/internal/config"
	"dutch/internal/domain"
	"dutch/internal/protocol"
)

var (
	ErrTableFull    = errors.New("table is full")
	ErrTableStarted = errors.New("table already started")
	ErrTableClosed  = errors.New("table is closed")
)

// Conn is the sending half of a client connection. Send must not block on the network.
type Conn interface {
	Send(payload []byte) error
	Close() error
}

// Peer is a connected client as seen by a table.
type Peer struct {
	ID    int
	Name  string
	Conn  Conn
	Speed float64
}

// TableObserver hears about membership changes the table makes on its own.
type TableObserver interface {
	// Detached reports a client removed by the table itself (kicked).
	Detached(t *Table, clientID int)
	// Closed reports the last human leaving; the table accepts nothing afterwards.
	Closed(t *Table)
}

// TableOptions configures a table.
type TableOptions struct {
	Game      domain.Options
	Pacing    Pacing
	Countdown int
	Log       Logger
	Rand      *rand.Rand
	Observer  TableObserver
}

// TableOptionsFrom builds table options from the server configuration.
func TableOptionsFrom(c *config.ServerConfig, log Logger) TableOptions {
	return TableOptions{
		Game: domain.Options{
			DeckSize:         c.DeckSize,
			EndgameScore:     c.EndgameScore,
			AnnouncerPenalty: c.AnnouncerPenalty,
		},
		Pacing:    NewPacing(c.Pacing),
		Countdown: c.CountdownSeconds,
		Log:       log,
	}
}

// TableInfo is a read-only snapshot of a table, safe to read from any goroutine.
type TableInfo struct {
	ID         string   `json:"id"`
	Code       string   `json:"code"`
	Private    bool     `json:"private"`
	Started    bool     `json:"started"`
	Humans     int      `json:"humans"`
	Seats      int      `json:"seats"`
	Difficulty int      `json:"difficulty"`
	Round      int      `json:"round"`
	Members    []string `json:"members"`
}

// Open reports whether the table accepts joins.
func (i TableInfo) Open() bool { return !i.Started && i.Humans < i.Seats }

type member struct {
	Peer
	ready bool
	seat  int
}

// Table is a waiting room and, once everyone is ready, the game played in it.
// All state is owned by the goroutine running Run; other goroutines talk to it through
// the inbox.
type Table struct {
	id   string
	code string
	opts TableOptions
	svc  *Service
	log  Logger

	inbox chan func()
	done  chan struct{}
	info  atomic.Pointer[TableInfo]

	members  []*member
	required int
	level    domain.Difficulty
	private  bool
	started  bool
	hostID   int
	match    *Match
	gen      uint64
	counting bool
	closed   bool
}

// NewTable builds a table; the caller starts it with Run.
func NewTable(code string, private bool, opts TableOptions) *Table {
	if opts.Log == nil {
		opts.Log = NopLogger()
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	t := &Table{
		id:       uuid.NewString(),
		code:     code,
		opts:     opts,
		log:      opts.Log,
		svc:      NewService(opts.Rand, opts.Game, opts.Log),
		inbox:    make(chan func(), 64),
		done:     make(chan struct{}),
		required: MinRequiredSeats,
		level:    DefaultDifficulty,
		private:  private,
	}
	t.publish()
	return t
}

func (t *Table) ID() string   { return t.id }
func (t *Table) Code() string { return t.code }

// Info returns the latest snapshot.
func (t *Table) Info() TableInfo { return *t.info.Load() }

// Done is closed once Run returned.
func (t *Table) Done() <-chan struct{} { return t.done }

// Run processes the inbox until the last human leaves or ctx is cancelled.
func (t *Table) Run(ctx context.Context) {
	defer close(t.done)
	for {
		select {
		case <-ctx.Done():
			t.gen++
			return
		case fn := <-t.inbox:
			fn()
			t.publish()
			if t.closed {
				return
			}
		}
	}
}

// Join seats a peer in the waiting room.
func (t *Table) Join(ctx context.Context, p Peer) error {
	return t.call(ctx, func() error { return t.join(p) })
}

// Handle posts a decoded command from a member; commands from non-members are dropped.
func (t *Table) Handle(clientID int, cmd protocol.Command) {
	t.post(func() { t.handle(clientID, cmd) })
}

// Leave removes a member. A member leaving a running game is replaced by an AI.
func (t *Table) Leave(clientID int) {
	t.post(func() { t.leave(clientID) })
}

func (t *Table) post(fn func()) bool {
	select {
	case t.inbox <- fn:
		return true
	case <-t.done:
		return false
	}
}

func (t *Table) call(ctx context.Context, fn func() error) error {
	errc := make(chan error, 1)
	select {
	case t.inbox <- func() {
		err := fn()
		t.publish()
		errc <- err
	}:
	case <-t.done:
		return ErrTableClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-errc:
		return err
	case <-t.done:
		select {
		case err := <-errc:
			return err
		default:
			return ErrTableClosed
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}

// schedule runs fn on the table goroutine after d; a zero delay runs it right away.
func (t *Table) schedule(d time.Duration, fn func()) {
	if d <= 0 {
		fn()
		return
	}
	time.AfterFunc(d, func() { t.post(fn) })
}

// play delivers a script of events, pausing on delays without blocking the inbox.
// Scripts of an older generation are dropped.
func (t *Table) play(gen uint64, evs []Event) {
	for i, ev := range evs {
		if gen != t.gen {
			return
		}
		if ev.Delay > 0 {
			rest := append([]Event(nil), evs[i:]...)
			rest[0].Delay = 0
			t.schedule(ev.Delay, func() { t.play(gen, rest) })
			return
		}
		t.deliver(ev)
		if ev.Then != nil {
			t.play(gen, append(ev.Then(), evs[i+1:]...))
			return
		}
	}
}

func (t *Table) deliver(ev Event) {
	if ev.Payload == nil {
		return
	}
	if len(ev.Seats) == 0 {
		t.broadcast(ev.Payload)
		return
	}
	for _, seat := range ev.Seats {
		for _, mb := range t.members {
			if mb.seat == seat {
				t.send(mb, ev.Payload)
			}
		}
	}
}

func (t *Table) broadcast(payload []byte) {
	for _, mb := range t.members {
		t.send(mb, payload)
	}
}

func (t *Table) send(mb *member, payload []byte) {
	if err := mb.Conn.Send(payload); err != nil {
		t.log.Debug("table %s: send to client %d: %v", t.code, mb.ID, err)
	}
}

func (t *Table) member(id int) (int, *member) {
	for i, mb := range t.members {
		if mb.ID == id {
			return i, mb
		}
	}
	return -1, nil
}

func (t *Table) publish() {
	info := &TableInfo{
		ID:         t.id,
		Code:       t.code,
		Private:    t.private,
		Started:    t.started,
		Humans:     len(t.members),
		Seats:      t.required,
		Difficulty: int(t.level),
	}
	if t.match != nil {
		info.Round = t.match.Game.Round()
	}
	for _, mb := range t.members {
		info.Members = append(info.Members, mb.Name)
	}
	t.info.Store(info)
}

func (t *Table) handle(id int, cmd protocol.Command) {
	_, mb := t.member(id)
	if mb == nil {
		t.log.Debug("table %s: command %d from non-member %d", t.code, cmd.Op, id)
		return
	}

	switch cmd.Op {
	case protocol.OpSpeed:
		mb.Speed = float64(cmd.Args[0]) / 10
		return
	case protocol.OpAction:
		t.act(mb, cmd)
		return
	case protocol.OpLobby:
		t.backToLobby()
		return
	}

	if t.started {
		t.log.Debug("table %s: lobby command %d during a game", t.code, cmd.Op)
		return
	}
	switch cmd.Op {
	case protocol.OpReady:
		t.toggleReady(mb)
	case protocol.OpDifficulty:
		t.setDifficulty(cmd.Args[0])
	case protocol.OpKick:
		t.kick(mb, cmd.Args[0])
	case protocol.OpAddAI:
		t.addAI()
	case protocol.OpRemoveAI:
		t.removeAI()
	case protocol.OpPrivacy:
		t.private = !t.private
		t.send(mb, protocol.Privacy(t.private))
	default:
		t.log.Debug("table %s: unhandled command %d", t.code, cmd.Op)
	}
}

func (t *Table) act(mb *member, cmd protocol.Command) {
	if !t.started || t.match == nil {
		t.log.Debug("table %s: action from client %d outside a game", t.code, mb.ID)
		return
	}
	evs, err := t.svc.Act(t.match, mb.seat, cmd)
	if err != nil {
		t.log.Debug("table %s: client %d action %d: %v", t.code, mb.ID, int8(cmd.Action), err)
		return
	}
	t.play(t.gen, evs)
}
