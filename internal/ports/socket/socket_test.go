package socket

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dutch/internal/app"
	"dutch/internal/protocol"
)

const (
	waitFor = 2 * time.Second
	tick    = 5 * time.Millisecond
)

// echoHandler greets clients with their id and echoes each payload back reversed.
type echoHandler struct {
	mu      sync.Mutex
	conns   map[int]app.Conn
	gone    []int
	handled [][]byte
	next    int
}

func newEchoHandler() *echoHandler {
	return &echoHandler{conns: make(map[int]app.Conn)}
}

func (h *echoHandler) Register(c app.Conn) (int, error) {
	h.mu.Lock()
	id := h.next
	h.next++
	h.conns[id] = c
	h.mu.Unlock()
	return id, c.Send(protocol.Hello(id))
}

func (h *echoHandler) Disconnect(id int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns, id)
	h.gone = append(h.gone, id)
}

func (h *echoHandler) Handle(_ context.Context, id int, payload []byte) {
	h.mu.Lock()
	h.handled = append(h.handled, payload)
	c := h.conns[id]
	h.mu.Unlock()
	out := make([]byte, len(payload))
	for i, b := range payload {
		out[len(payload)-1-i] = b
	}
	_ = c.Send(out)
}

func (h *echoHandler) disconnected() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.gone)
}

func (h *echoHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.handled)
}

func serve(t *testing.T, h Handler) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- NewServer(h, nil).Serve(ctx, ln) }()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(waitFor):
			t.Error("server did not stop")
		}
	})
	return ln.Addr().String()
}

func dial(t *testing.T, addr string) *websocket.Conn {
	t.Helper()
	ws, _, err := websocket.DefaultDialer.Dial("ws://"+addr+"/", nil)
	require.NoError(t, err)
	t.Cleanup(func() { ws.Close() })
	return ws
}

func readBinary(t *testing.T, ws *websocket.Conn) []byte {
	t.Helper()
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(waitFor)))
	kind, p, err := ws.ReadMessage()
	require.NoError(t, err)
	require.Equal(t, websocket.BinaryMessage, kind)
	return p
}

func TestAcceptKey(t *testing.T) {
	// Sample key and answer of the WebSocket handshake RFC.
	assert.Equal(t, "s3pPLMBiTxaQ9kYGzzhZRbK+xOo=", AcceptKey("dGhlIHNhbXBsZSBub25jZQ=="))
}

func TestReadFrameUnmasksExtendedLengths(t *testing.T) {
	for _, n := range []int{0, 5, 125, 126, 300, 70000} {
		payload := bytes.Repeat([]byte{0xAB}, n)
		mask := [4]byte{1, 2, 3, 4}

		var b bytes.Buffer
		b.WriteByte(frameBinary)
		switch {
		case n <= maxShort:
			b.WriteByte(maskBit | byte(n))
		case n <= maxMedium:
			b.Write([]byte{maskBit | len16, byte(n >> 8), byte(n)})
		default:
			b.Write([]byte{maskBit | len64, 0, 0, 0, 0, byte(n >> 24), byte(n >> 16), byte(n >> 8), byte(n)})
		}
		b.Write(mask[:])
		for i, v := range payload {
			b.WriteByte(v ^ mask[i%4])
		}

		first, got, err := readFrame(&b, 1<<20)
		require.NoError(t, err, "length %d", n)
		assert.Equal(t, frameBinary, first)
		assert.Equal(t, payload, got, "length %d", n)
	}
}

func TestReadFrameLimits(t *testing.T) {
	frame := appendFrame(nil, frameBinary, make([]byte, 300))
	_, _, err := readFrame(bytes.NewReader(frame), 200)
	assert.ErrorIs(t, err, ErrFrameTooLarge)

	_, _, err = readFrame(bytes.NewReader(frame[:10]), 1000)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestAppendFrameHeaders(t *testing.T) {
	assert.Equal(t, []byte{0x82, 2, 0, 7}, appendFrame(nil, frameBinary, []byte{0, 7}))

	long := appendFrame(nil, frameBinary, make([]byte, 200))
	assert.Equal(t, []byte{0x82, 126, 0, 200}, long[:4])
	assert.Len(t, long, 204)

	huge := appendFrame(nil, frameBinary, make([]byte, 70000))
	assert.Equal(t, []byte{0x82, 127, 0, 0, 0, 0, 0, 1, 0x11, 0x70}, huge[:10])
}

func TestGorillaClientRoundTrip(t *testing.T) {
	h := newEchoHandler()
	ws := dial(t, serve(t, h))

	assert.Equal(t, protocol.Hello(0), readBinary(t, ws))

	require.NoError(t, ws.WriteMessage(websocket.TextMessage, []byte("ignored")))
	require.NoError(t, ws.WriteMessage(websocket.BinaryMessage, []byte{1, 2, 3}))
	assert.Equal(t, []byte{3, 2, 1}, readBinary(t, ws))

	big := bytes.Repeat([]byte{9}, 1000)
	big[0] = 1
	require.NoError(t, ws.WriteMessage(websocket.BinaryMessage, big))
	got := readBinary(t, ws)
	assert.Len(t, got, 1000)
	assert.Equal(t, byte(1), got[999])
	assert.Equal(t, 2, h.count(), "text frames never reach the handler")

	require.NoError(t, ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
	require.Eventually(t, func() bool { return h.disconnected() == 1 }, waitFor, tick)
}

func TestDroppedConnectionDisconnects(t *testing.T) {
	h := newEchoHandler()
	ws := dial(t, serve(t, h))
	readBinary(t, ws)

	ws.UnderlyingConn().Close()
	require.Eventually(t, func() bool { return h.disconnected() == 1 }, waitFor, tick)
}

func TestHandshakeWithoutKeyIsClosed(t *testing.T) {
	h := newEchoHandler()
	nc, err := net.Dial("tcp", serve(t, h))
	require.NoError(t, err)
	defer nc.Close()

	_, err = io.WriteString(nc, "GET / HTTP/1.1\r\nHost: example\r\n\r\n")
	require.NoError(t, err)
	require.NoError(t, nc.SetReadDeadline(time.Now().Add(waitFor)))
	_, err = bufio.NewReader(nc).ReadByte()
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, 0, h.disconnected(), "no client was registered")
}

func TestHandshakeAnswer(t *testing.T) {
	req := "GET /chat HTTP/1.1\r\nHost: server\r\nUpgrade: websocket\r\nConnection: Upgrade\r\n" +
		"Sec-WebSocket-Key: dGhlIHNhbXBsZSBub25jZQ==\r\n\r\n\x82\x00"
	br := bufio.NewReader(strings.NewReader(req))
	var out bytes.Buffer
	require.NoError(t, handshake(br, &out))
	assert.Contains(t, out.String(), "101 Switching Protocols")
	assert.Contains(t, out.String(), "Sec-WebSocket-Accept: s3pPLMBiTxaQ9kYGzzhZRbK+xOo=\r\n\r\n")

	first, payload, err := readFrame(br, 10)
	require.NoError(t, err, "frames after the request stay readable")
	assert.Equal(t, frameBinary, first)
	assert.Empty(t, payload)
}

func TestLobbyOverSocket(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	lobby := app.NewLobby(ctx, app.LobbyOptions{})
	addr := serve(t, lobby)

	a := dial(t, addr)
	b := dial(t, addr)
	assert.Equal(t, protocol.Hello(0), readBinary(t, a))
	assert.Equal(t, protocol.Hello(1), readBinary(t, b))

	require.NoError(t, a.WriteMessage(websocket.BinaryMessage, protocol.Join("")))
	roster, err := protocol.DecodeRoster(readBinary(t, a))
	require.NoError(t, err)
	require.Len(t, roster.Members, 1)

	require.NoError(t, b.WriteMessage(websocket.BinaryMessage, protocol.Join(roster.Code)))
	roster, err = protocol.DecodeRoster(readBinary(t, b))
	require.NoError(t, err)
	assert.Len(t, roster.Members, 2)

	b.Close()
	require.Eventually(t, func() bool {
		tables := lobby.Tables()
		return len(tables) == 1 && tables[0].Humans == 1
	}, waitFor, tick)
}
