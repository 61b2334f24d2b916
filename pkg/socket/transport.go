// SPDX-FileCopyrightText: 2026 Alvar Penning
//
// SPDX-License-Identifier: GPL-3.0-or-later

package socket

import (
	"context"
)

// Transport is a message oriented, bidirectional connection.
type Transport interface {
	// Send one frame. The context's deadline, if any, limits the write.
	// A Socket never calls Send concurrently.
	Send(ctx context.Context, frame []byte) error

	// Receive blocks until the next frame is available. Each error is terminal, e.g., the connection was closed.
	// Only the Socket's reader goroutine calls Receive.
	Receive() ([]byte, error)

	// Close the connection. A blocked Receive must return afterwards.
	Close() error
}
