package client

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const writeWait = 5 * time.Second

// Client is a remote view connected to a table server.
type Client struct {
	ws   *websocket.Conn
	view *View
	log  *zap.Logger

	wmu sync.Mutex
}

// Dial connects to addr, either host:port or a ws:// URL, and feeds r from the server's events
// once Run is called.
func Dial(ctx context.Context, addr string, r Renderer, log *zap.Logger) (*Client, error) {
	if log == nil {
		log = zap.NewNop()
	}
	url := addr
	if !strings.HasPrefix(url, "ws://") && !strings.HasPrefix(url, "wss://") {
		url = "ws://" + addr + "/"
	}
	ws, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	return &Client{ws: ws, view: NewView(r), log: log.With(zap.String("server", url))}, nil
}

func (c *Client) View() *View { return c.view }

// Send writes one command payload, as built by the protocol package.
func (c *Client) Send(payload []byte) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	return c.ws.WriteMessage(websocket.BinaryMessage, payload)
}

// Run reads server events until the connection ends or ctx is cancelled. A clean close from
// either side returns nil.
func (c *Client) Run(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() { c.ws.Close() })
	defer stop()

	for {
		kind, p, err := c.ws.ReadMessage()
		if err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) {
				return nil
			}
			return err
		}
		if kind != websocket.BinaryMessage {
			continue
		}
		if err := c.view.ApplyPayload(p); err != nil {
			c.log.Debug("dropped server payload", zap.Binary("payload", p), zap.Error(err))
		}
	}
}

// Close says goodbye to the server and closes the connection.
func (c *Client) Close() error {
	err := c.ws.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
	if cerr := c.ws.Close(); err == nil {
		err = cerr
	}
	return err
}
