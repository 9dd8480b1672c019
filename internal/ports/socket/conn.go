package socket

import (
	"errors"
	"net"
	"sync"

	"go.uber.org/zap"
)

const sendBuffer = 256

var ErrConnClosed = errors.New("connection closed")

// Conn is the sending half of a client socket. Payloads are framed and written by a
// dedicated goroutine so table actors never wait on the network.
type Conn struct {
	nc   net.Conn
	log  *zap.Logger
	out  chan []byte
	done chan struct{}
	once sync.Once
}

func newConn(nc net.Conn, log *zap.Logger) *Conn {
	c := &Conn{
		nc:   nc,
		log:  log,
		out:  make(chan []byte, sendBuffer),
		done: make(chan struct{}),
	}
	go c.writeLoop()
	return c
}

// Send queues payload as one binary frame. A client too slow to drain its queue is
// disconnected.
func (c *Conn) Send(payload []byte) error {
	select {
	case <-c.done:
		return ErrConnClosed
	default:
	}
	select {
	case c.out <- payload:
		return nil
	case <-c.done:
		return ErrConnClosed
	default:
		c.log.Warn("send queue full, dropping client")
		c.Close()
		return ErrConnClosed
	}
}

// Close stops the writer and closes the socket; it is safe to call more than once.
func (c *Conn) Close() error {
	var err error
	c.once.Do(func() {
		close(c.done)
		err = c.nc.Close()
	})
	return err
}

func (c *Conn) writeLoop() {
	var buf []byte
	for {
		select {
		case <-c.done:
			return
		case p := <-c.out:
			buf = appendFrame(buf[:0], frameBinary, p)
			if _, err := c.nc.Write(buf); err != nil {
				c.log.Debug("write failed", zap.Error(err))
				c.Close()
				return
			}
		}
	}
}

// closeFrame tells the peer the connection ends; errors are irrelevant at that point.
func (c *Conn) closeFrame() {
	_, _ = c.nc.Write(appendFrame(nil, frameClose, nil))
}
