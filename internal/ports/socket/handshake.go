package socket

import (
	"bufio"
	"crypto/sha1"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// acceptGUID is appended to the client key before hashing.
const acceptGUID = "258EAFA5-E914-47DA-95CA-C5AB0DC85B11"

var ErrHandshake = errors.New("bad upgrade request")

// AcceptKey derives the Sec-WebSocket-Accept value for a client key.
func AcceptKey(key string) string {
	sum := sha1.Sum([]byte(key + acceptGUID))
	return base64.StdEncoding.EncodeToString(sum[:])
}

// handshake reads one upgrade request and answers it. Frames may already sit in br.
func handshake(br *bufio.Reader, w io.Writer) error {
	req, err := http.ReadRequest(br)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrHandshake, err)
	}
	if req.Body != nil {
		req.Body.Close()
	}
	key := strings.TrimSpace(req.Header.Get("Sec-WebSocket-Key"))
	if key == "" {
		return fmt.Errorf("%w: missing Sec-WebSocket-Key", ErrHandshake)
	}

	resp := "HTTP/1.1 101 Switching Protocols\r\n" +
		"Upgrade: websocket\r\n" +
		"Connection: Upgrade\r\n" +
		"Sec-WebSocket-Accept: " + AcceptKey(key) + "\r\n\r\n"
	if _, err := io.WriteString(w, resp); err != nil {
		return fmt.Errorf("write upgrade response: %w", err)
	}
	return nil
}
