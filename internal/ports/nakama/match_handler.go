package nakama

import (
	"context"
	"database/sql"
	"math/rand"
	"sync"
	"time"

	"dutch/internal/app"
	"dutch/internal/config"
	"dutch/internal/protocol"

	"github.com/heroiclabs/nakama-common/runtime"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// MatchState holds the authoritative runtime state for the Nakama match handler.
type MatchState struct {
	Table     *app.Table                  // Table played in this match
	Presences map[string]runtime.Presence // Map UserId -> Presence for targeted messaging
	Clients   map[string]int              // Map UserId -> table client id
	Users     map[int]string              // Map table client id -> UserId
	Label     string                      // Last label pushed to Nakama

	outbox *outbox
	nextID int
	cancel context.CancelFunc
}

// delivery is one payload, or a kick, addressed to a table client.
type delivery struct {
	clientID int
	payload  []byte
	kick     bool
}

// outbox buffers what the table goroutine sends until the next match tick; the
// dispatcher may only be used from match callbacks.
type outbox struct {
	mu     sync.Mutex
	queue  []delivery
	closed bool
}

func (o *outbox) push(d delivery) {
	o.mu.Lock()
	o.queue = append(o.queue, d)
	o.mu.Unlock()
}

func (o *outbox) drain() ([]delivery, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	q := o.queue
	o.queue = nil
	return q, o.closed
}

// Detached implements app.TableObserver.
func (o *outbox) Detached(_ *app.Table, clientID int) {
	o.push(delivery{clientID: clientID, kick: true})
}

// Closed implements app.TableObserver.
func (o *outbox) Closed(*app.Table) {
	o.mu.Lock()
	o.closed = true
	o.mu.Unlock()
}

// presenceConn is the table's view of a Nakama presence.
type presenceConn struct {
	id  int
	box *outbox
}

func (c presenceConn) Send(payload []byte) error {
	c.box.push(delivery{clientID: c.id, payload: payload})
	return nil
}

func (c presenceConn) Close() error { return nil }

// NewMatch is the factory function registered with Nakama.
func NewMatch(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule) (runtime.Match, error) {
	return newMatchHandler(), nil
}

type matchHandler struct{}

func newMatchHandler() *matchHandler {
	return &matchHandler{}
}

// loadConfig reads DUTCH_* keys from the Nakama runtime env on top of the defaults.
func loadConfig(ctx context.Context, logger runtime.Logger) *config.ServerConfig {
	env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)
	cfg, err := config.Parse(nil, env)
	if err != nil {
		logger.Warn("Invalid runtime env, using defaults: %v", err)
		return config.GetServerConfig()
	}
	return cfg
}

// MatchInit is called when the match is created. Params may carry a join code reserved by
// the caller and the privacy flag.
func (mh *matchHandler) MatchInit(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, params map[string]interface{}) (interface{}, int, string) {
	cfg := loadConfig(ctx, logger)
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	code, _ := params["code"].(string)
	if code == "" {
		code = app.NewCode(rng)
	}
	private, _ := params["private"].(bool)

	box := &outbox{}
	opts := app.TableOptionsFrom(cfg, logger)
	opts.Rand = rng
	opts.Observer = box

	tctx, cancel := context.WithCancel(context.Background())
	state := &MatchState{
		Table:     app.NewTable(code, private, opts),
		Presences: make(map[string]runtime.Presence),
		Clients:   make(map[string]int),
		Users:     make(map[int]string),
		outbox:    box,
		cancel:    cancel,
	}
	go state.Table.Run(tctx)

	label, err := matchLabel(state.Table.Info())
	if err != nil {
		logger.Error("MatchInit: Failed to encode label: %v", err)
	}
	state.Label = label
	logger.Debug("MatchInit: Table %s ready (private=%v).", code, private)
	return state, matchTickRate, label
}

// MatchJoinAttempt admits presences while the table sits in its waiting room and has room.
func (mh *matchHandler) MatchJoinAttempt(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presence runtime.Presence, metadata map[string]string) (interface{}, bool, string) {
	matchState := state.(*MatchState)
	if _, ok := matchState.Clients[presence.GetUserId()]; ok {
		return matchState, false, "Already at this table"
	}
	info := matchState.Table.Info()
	if info.Started {
		return matchState, false, "Game in progress"
	}
	if !info.Open() {
		return matchState, false, "Table full"
	}
	return matchState, true, ""
}

// MatchJoin greets each presence with its client id and seats it in the waiting room.
func (mh *matchHandler) MatchJoin(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState := state.(*MatchState)
	for _, p := range presences {
		id := matchState.nextID
		matchState.nextID++
		matchState.Presences[p.GetUserId()] = p
		matchState.Clients[p.GetUserId()] = id
		matchState.Users[id] = p.GetUserId()

		conn := presenceConn{id: id, box: matchState.outbox}
		_ = conn.Send(protocol.Hello(id))
		peer := app.Peer{ID: id, Name: p.GetUsername(), Conn: conn, Speed: app.DefaultSpeed}
		if err := matchState.Table.Join(ctx, peer); err != nil {
			logger.Warn("MatchJoin: User %s could not sit down: %v", p.GetUserId(), err)
			matchState.outbox.Detached(matchState.Table, id)
			continue
		}
		logger.Debug("MatchJoin: User %s is client %d.", p.GetUserId(), id)
	}
	mh.flush(matchState, dispatcher, logger)
	return matchState
}

// MatchLeave hands the seats of leaving presences to the table, which puts an AI in them
// when a game is running.
func (mh *matchHandler) MatchLeave(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState := state.(*MatchState)
	for _, p := range presences {
		mh.forget(matchState, p.GetUserId(), logger)
	}
	return matchState
}

func (mh *matchHandler) forget(s *MatchState, userID string, logger runtime.Logger) {
	id, ok := s.Clients[userID]
	if !ok {
		return
	}
	delete(s.Clients, userID)
	delete(s.Users, id)
	delete(s.Presences, userID)
	s.Table.Leave(id)
	logger.Debug("MatchLeave: User %s (client %d) left.", userID, id)
}

// MatchLoop forwards client payloads to the table and flushes what the table sent since
// the previous tick. Returning nil ends the match once the table has closed.
func (mh *matchHandler) MatchLoop(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, messages []runtime.MatchData) interface{} {
	matchState := state.(*MatchState)

	for _, msg := range messages {
		mh.handleMessage(matchState, msg, logger)
	}

	if closed := mh.flush(matchState, dispatcher, logger); closed {
		logger.Info("MatchLoop: Table %s closed, ending match.", matchState.Table.Code())
		matchState.cancel()
		return nil
	}
	mh.updateLabel(matchState, dispatcher, logger)
	return matchState
}

func (mh *matchHandler) handleMessage(s *MatchState, msg runtime.MatchData, logger runtime.Logger) {
	if msg.GetOpCode() != OpPayload {
		logger.Debug("MatchLoop: Ignoring op code %d from %s.", msg.GetOpCode(), msg.GetUserId())
		return
	}
	id, ok := s.Clients[msg.GetUserId()]
	if !ok {
		return
	}
	cmd, err := protocol.ParseCommand(msg.GetData())
	if err != nil {
		logger.Debug("MatchLoop: Client %d sent a malformed payload: %v", id, err)
		return
	}

	switch cmd.Op {
	case protocol.OpJoin, protocol.OpCreate:
		// Matchmaking goes through RpcFindMatch.
	case protocol.OpLeave:
		// Nakama reports the kicked presence through MatchLeave, which forgets it.
		s.Table.Leave(id)
		s.outbox.Detached(s.Table, id)
	default:
		s.Table.Handle(id, cmd)
	}
}

// flush delivers queued payloads and kicks. It reports whether the table has closed.
func (mh *matchHandler) flush(s *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) bool {
	queue, closed := s.outbox.drain()
	for _, d := range queue {
		userID := s.Users[d.clientID]
		p, ok := s.Presences[userID]
		if !ok {
			continue
		}
		target := []runtime.Presence{p}
		if d.kick {
			if err := dispatcher.MatchKick(target); err != nil {
				logger.Warn("Failed to kick client %d: %v", d.clientID, err)
			}
			delete(s.Presences, userID)
			continue
		}
		if err := dispatcher.BroadcastMessage(OpPayload, d.payload, target, nil, true); err != nil {
			logger.Warn("Failed to send to client %d: %v", d.clientID, err)
		}
	}
	return closed
}

func (mh *matchHandler) updateLabel(s *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	label, err := matchLabel(s.Table.Info())
	if err != nil {
		logger.Error("Failed to encode label: %v", err)
		return
	}
	if label == s.Label {
		return
	}
	if err := dispatcher.MatchLabelUpdate(label); err != nil {
		logger.Warn("Failed to update label: %v", err)
		return
	}
	s.Label = label
}

// MatchTerminate stops the table goroutine.
func (mh *matchHandler) MatchTerminate(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, graceSeconds int) interface{} {
	matchState := state.(*MatchState)
	matchState.cancel()
	logger.Info("MatchTerminate: Table %s stopped.", matchState.Table.Code())
	return matchState
}

// MatchSignal is unused.
func (mh *matchHandler) MatchSignal(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, data string) (interface{}, string) {
	return state, ""
}

// matchLabel encodes the fields matchmaking queries filter on.
func matchLabel(info app.TableInfo) (string, error) {
	s, err := structpb.NewStruct(map[string]interface{}{
		"game":    labelGame,
		"code":    info.Code,
		"open":    info.Open(),
		"started": info.Started,
		"private": info.Private,
		"humans":  info.Humans,
		"seats":   info.Seats,
	})
	if err != nil {
		return "", err
	}
	b, err := protojson.Marshal(s)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
