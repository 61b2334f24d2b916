// SPDX-FileCopyrightText: 2026 Alvar Penning
//
// SPDX-License-Identifier: GPL-3.0-or-later

package socket

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"testing"
	"time"
)

// fakeTransport is an in-memory Transport. Frames pushed by the test are received by the Socket's reader, frames
// sent by the Socket are buffered in outbound.
type fakeTransport struct {
	inbound  chan []byte
	outbound chan []byte

	sendErr error

	closed    chan struct{}
	closeOnce sync.Once
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		inbound:  make(chan []byte),
		outbound: make(chan []byte, 128),
		closed:   make(chan struct{}),
	}
}

func (ft *fakeTransport) Send(ctx context.Context, frame []byte) error {
	if ft.sendErr != nil {
		return ft.sendErr
	}

	select {
	case <-ft.closed:
		return io.ErrClosedPipe
	default:
	}

	select {
	case ft.outbound <- frame:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (ft *fakeTransport) Receive() ([]byte, error) {
	select {
	case frame := <-ft.inbound:
		return frame, nil
	case <-ft.closed:
		return nil, io.EOF
	}
}

func (ft *fakeTransport) Close() error {
	ft.closeOnce.Do(func() { close(ft.closed) })
	return nil
}

// push a frame to the reader. When push returns, all previously pushed frames were dispatched.
func (ft *fakeTransport) push(t *testing.T, frame string) {
	t.Helper()

	select {
	case ft.inbound <- []byte(frame):
	case <-time.After(time.Second):
		t.Fatalf("reader did not accept frame %s", frame)
	}
}

// sync waits until all previously pushed frames were dispatched by pushing an unroutable frame.
func (ft *fakeTransport) sync(t *testing.T) {
	t.Helper()
	ft.push(t, `{"type":"time","call":4294967295,"seq":0,"data":{"value":"2024-01-01T00:00:00Z"}}`)
}

// expectSent returns the next outbound frame as a generic JSON object.
func (ft *fakeTransport) expectSent(t *testing.T) map[string]interface{} {
	t.Helper()

	select {
	case frame := <-ft.outbound:
		var m map[string]interface{}
		if err := json.Unmarshal(frame, &m); err != nil {
			t.Fatalf("sent frame %s is no JSON object: %v", frame, err)
		}
		return m

	case <-time.After(time.Second):
		t.Fatal("nothing was sent; time out")
		return nil
	}
}

// expectNothingSent fails if a frame is sent within the duration.
func (ft *fakeTransport) expectNothingSent(t *testing.T, d time.Duration) {
	t.Helper()

	select {
	case frame := <-ft.outbound:
		t.Fatalf("expected no frame, got %s", frame)
	case <-time.After(d):
	}
}
