// SPDX-FileCopyrightText: 2026 Alvar Penning
//
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/dtn7/yamcs-go/pkg/message"
	"github.com/dtn7/yamcs-go/pkg/socket"
)

// yamcsTransport acts like a Yamcs server: each subscription request is acknowledged with the call id 100 + id.
// Time subscriptions receive one time frame right afterwards. Events subscriptions are rejected.
type yamcsTransport struct {
	inbound chan []byte

	mutex    sync.Mutex
	requests []map[string]interface{}

	closed    chan struct{}
	closeOnce sync.Once
}

func newYamcsTransport() *yamcsTransport {
	return &yamcsTransport{
		inbound: make(chan []byte, 64),
		closed:  make(chan struct{}),
	}
}

func (yt *yamcsTransport) Send(_ context.Context, frame []byte) error {
	select {
	case <-yt.closed:
		return io.ErrClosedPipe
	default:
	}

	var req map[string]interface{}
	if err := json.Unmarshal(frame, &req); err != nil {
		return err
	}

	yt.mutex.Lock()
	yt.requests = append(yt.requests, req)
	yt.mutex.Unlock()

	kind, _ := req["type"].(string)
	if !message.Kind(kind).IsSubscription() {
		return nil
	}

	id := uint64(req["id"].(float64))
	if message.Kind(kind) == message.KindEvents {
		yt.inbound <- []byte(fmt.Sprintf(
			`{"type":"reply","call":%d,"data":{"replyTo":%d,"exception":{"code":403,"type":"ForbiddenException","msg":"No events"}}}`,
			100+id, id))
		return nil
	}

	yt.inbound <- []byte(fmt.Sprintf(`{"type":"reply","call":%d,"data":{"replyTo":%d}}`, 100+id, id))

	if message.Kind(kind) == message.KindTime {
		yt.inbound <- []byte(fmt.Sprintf(
			`{"type":"time","call":%d,"seq":0,"data":{"value":"2026-10-19T12:00:00Z"}}`, 100+id))
	}

	return nil
}

func (yt *yamcsTransport) Receive() ([]byte, error) {
	select {
	case frame := <-yt.inbound:
		return frame, nil
	case <-yt.closed:
		return nil, io.EOF
	}
}

func (yt *yamcsTransport) Close() error {
	yt.closeOnce.Do(func() { close(yt.closed) })
	return nil
}

// requestsOf returns all received requests of the given type.
func (yt *yamcsTransport) requestsOf(kind string) (reqs []map[string]interface{}) {
	yt.mutex.Lock()
	defer yt.mutex.Unlock()

	for _, req := range yt.requests {
		if req["type"] == kind {
			reqs = append(reqs, req)
		}
	}
	return
}

// cancelled checks if a cancel request for the call id was received.
func (yt *yamcsTransport) cancelled(call uint64) bool {
	for _, req := range yt.requestsOf("cancel") {
		opts, ok := req["options"].(map[string]interface{})
		if ok && uint64(opts["call"].(float64)) == call {
			return true
		}
	}
	return false
}

// waitFor polls the condition for up to two seconds.
func waitFor(t *testing.T, msg string, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timeout: %s", msg)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

// activeCall returns the call id of the active subscription of this kind, or false.
func activeCall(s *socket.Socket, kind message.Kind) (uint64, bool) {
	for _, entry := range s.Snapshot() {
		if entry.Kind == kind && entry.Active {
			return entry.CallID, true
		}
	}
	return 0, false
}
