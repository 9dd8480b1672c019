package app

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"dutch/internal/protocol"
)

var (
	ErrLobbyFull     = errors.New("lobby is full")
	ErrUnknownClient = errors.New("client not registered")
)

// LobbyOptions configures the client registry and the tables it creates.
type LobbyOptions struct {
	MaxClients int
	Table      TableOptions
	Log        Logger
	Rand       *rand.Rand
}

type client struct {
	id    int
	name  string
	conn  Conn
	speed float64
	table *Table
}

// Lobby registers clients, routes them to tables and forwards their commands.
type Lobby struct {
	ctx  context.Context
	opts LobbyOptions
	log  Logger

	mu      sync.Mutex
	rng     *rand.Rand
	clients map[int]*client
	next    int
	tables  []*Table
}

// NewLobby builds a lobby whose tables live until ctx is cancelled.
func NewLobby(ctx context.Context, opts LobbyOptions) *Lobby {
	if opts.MaxClients <= 0 || opts.MaxClients > MaxClients {
		opts.MaxClients = MaxClients
	}
	if opts.Log == nil {
		opts.Log = NopLogger()
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if opts.Table.Log == nil {
		opts.Table.Log = opts.Log
	}
	return &Lobby{
		ctx:     ctx,
		opts:    opts,
		log:     opts.Log,
		rng:     opts.Rand,
		clients: make(map[int]*client),
	}
}

// Register assigns the next free client id and greets the connection with it.
func (l *Lobby) Register(conn Conn) (int, error) {
	l.mu.Lock()
	if len(l.clients) >= l.opts.MaxClients {
		l.mu.Unlock()
		return 0, ErrLobbyFull
	}
	id := l.next % l.opts.MaxClients
	for l.clients[id] != nil {
		id = (id + 1) % l.opts.MaxClients
	}
	l.next++
	c := &client{id: id, name: Pseudonym(id), conn: conn, speed: DefaultSpeed}
	l.clients[id] = c
	l.mu.Unlock()

	l.log.Info("client %d connected as %s", id, c.name)
	if err := conn.Send(protocol.Hello(id)); err != nil {
		l.log.Debug("client %d: hello: %v", id, err)
	}
	return id, nil
}

// Disconnect forgets a client; a table it sat at sees it leave.
func (l *Lobby) Disconnect(id int) {
	l.mu.Lock()
	c := l.clients[id]
	delete(l.clients, id)
	var t *Table
	if c != nil {
		t = c.table
	}
	l.mu.Unlock()
	if c == nil {
		return
	}
	if t != nil {
		t.Leave(id)
	}
	l.log.Info("client %d disconnected", id)
}

// Handle decodes and routes one payload from client id. Malformed payloads are dropped.
func (l *Lobby) Handle(ctx context.Context, id int, payload []byte) {
	cmd, err := protocol.ParseCommand(payload)
	if err != nil {
		l.log.Debug("client %d: %v", id, err)
		return
	}

	l.mu.Lock()
	c := l.clients[id]
	var t *Table
	if c != nil {
		t = c.table
		if cmd.Op == protocol.OpSpeed {
			c.speed = float64(cmd.Args[0]) / 10
		}
	}
	l.mu.Unlock()
	if c == nil {
		l.log.Debug("command from unknown client %d", id)
		return
	}

	switch cmd.Op {
	case protocol.OpJoin:
		if t == nil {
			l.join(ctx, c, cmd.Code)
		}
	case protocol.OpCreate:
		if t == nil {
			l.create(ctx, c, true)
		}
	case protocol.OpLeave:
		if t != nil {
			l.Detached(t, id)
			t.Leave(id)
		}
	default:
		if t != nil {
			t.Handle(id, cmd)
		}
	}
}

func (l *Lobby) join(ctx context.Context, c *client, code string) {
	if code != "" {
		t, ok := l.Table(code)
		if !ok {
			l.refuse(c, protocol.JoinNotFound)
			return
		}
		if err := l.attach(ctx, c, t); err != nil {
			l.log.Debug("client %d: join %s: %v", c.id, code, err)
			l.refuse(c, protocol.JoinFull)
		}
		return
	}

	for _, t := range l.openTables() {
		if err := l.attach(ctx, c, t); err == nil {
			return
		}
	}
	l.create(ctx, c, false)
}

func (l *Lobby) refuse(c *client, reason byte) {
	if err := c.conn.Send(protocol.JoinRefused(reason)); err != nil {
		l.log.Debug("client %d: refuse: %v", c.id, err)
	}
}

func (l *Lobby) create(ctx context.Context, c *client, private bool) {
	l.mu.Lock()
	code := NewCode(l.rng)
	for l.byCode(code) != nil {
		code = NewCode(l.rng)
	}
	opts := l.opts.Table
	opts.Observer = l
	opts.Rand = rand.New(rand.NewSource(l.rng.Int63()))
	t := NewTable(code, private, opts)
	l.tables = append(l.tables, t)
	l.mu.Unlock()

	go t.Run(l.ctx)
	l.log.Info("table %s created (private=%v)", code, private)
	if err := l.attach(ctx, c, t); err != nil {
		l.log.Warn("client %d: join own table %s: %v", c.id, code, err)
	}
}

func (l *Lobby) attach(ctx context.Context, c *client, t *Table) error {
	l.mu.Lock()
	speed := c.speed
	l.mu.Unlock()

	if err := t.Join(ctx, Peer{ID: c.id, Name: c.name, Conn: c.conn, Speed: speed}); err != nil {
		return err
	}

	l.mu.Lock()
	gone := l.clients[c.id] != c
	if !gone {
		c.table = t
	}
	l.mu.Unlock()
	if gone {
		t.Leave(c.id)
		return ErrUnknownClient
	}
	return nil
}

func (l *Lobby) openTables() []*Table {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []*Table
	for _, t := range l.tables {
		if info := t.Info(); info.Open() && !info.Private {
			out = append(out, t)
		}
	}
	return out
}

func (l *Lobby) byCode(code string) *Table {
	for _, t := range l.tables {
		if t.Code() == code {
			return t
		}
	}
	return nil
}

// Table finds a live table by join code.
func (l *Lobby) Table(code string) (*Table, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	t := l.byCode(code)
	return t, t != nil
}

// Tables snapshots every live table in creation order.
func (l *Lobby) Tables() []TableInfo {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]TableInfo, 0, len(l.tables))
	for _, t := range l.tables {
		out = append(out, t.Info())
	}
	return out
}

// Clients returns the number of registered clients.
func (l *Lobby) Clients() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}

// Detached implements TableObserver.
func (l *Lobby) Detached(t *Table, clientID int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if c := l.clients[clientID]; c != nil && c.table == t {
		c.table = nil
	}
}

// Closed implements TableObserver.
func (l *Lobby) Closed(t *Table) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, o := range l.tables {
		if o == t {
			l.tables = append(l.tables[:i], l.tables[i+1:]...)
			break
		}
	}
	for _, c := range l.clients {
		if c.table == t {
			c.table = nil
		}
	}
	l.log.Info("table %s closed", t.Code())
}
