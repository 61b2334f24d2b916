// SPDX-FileCopyrightText: 2026 Alvar Penning
//
// SPDX-License-Identifier: GPL-3.0-or-later

package socket

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// closeGracePeriod limits the write of the close message on shutdown.
const closeGracePeriod = time.Second

// WebSocketTransport is a Transport based on a gorilla WebSocket connection, exchanging text messages.
type WebSocketTransport struct {
	conn *websocket.Conn

	closeOnce sync.Once
	closeErr  error
}

// DialWebSocket connects to a Yamcs WebSocket API endpoint, e.g., ws://localhost:8090/api/websocket.
func DialWebSocket(ctx context.Context, url string, header http.Header) (*WebSocketTransport, error) {
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, url, header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dialing %s errored with HTTP status %s: %w", url, resp.Status, err)
		}
		return nil, fmt.Errorf("dialing %s errored: %w", url, err)
	}

	return NewWebSocketTransport(conn), nil
}

// NewWebSocketTransport wraps an already established connection.
func NewWebSocketTransport(conn *websocket.Conn) *WebSocketTransport {
	return &WebSocketTransport{conn: conn}
}

func (wt *WebSocketTransport) Send(ctx context.Context, frame []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	deadline, _ := ctx.Deadline()
	if err := wt.conn.SetWriteDeadline(deadline); err != nil {
		return err
	}

	return wt.conn.WriteMessage(websocket.TextMessage, frame)
}

func (wt *WebSocketTransport) Receive() ([]byte, error) {
	for {
		messageType, data, err := wt.conn.ReadMessage()
		if err != nil {
			return nil, err
		}

		switch messageType {
		case websocket.TextMessage, websocket.BinaryMessage:
			return data, nil
		}
	}
}

// Close sends a close message and closes the underlying connection afterwards.
func (wt *WebSocketTransport) Close() error {
	wt.closeOnce.Do(func() {
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = wt.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(closeGracePeriod))

		wt.closeErr = wt.conn.Close()
	})
	return wt.closeErr
}

// isCloseError checks if the error indicates a regular closed connection.
func isCloseError(err error) bool {
	return websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway)
}
