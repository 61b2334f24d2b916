// SPDX-FileCopyrightText: 2026 Alvar Penning
//
// SPDX-License-Identifier: GPL-3.0-or-later

package socket

import (
	"sort"
	"sync"

	"github.com/dtn7/yamcs-go/pkg/message"
)

// pendingRequest is a sent subscription request, not yet acknowledged by the server.
type pendingRequest struct {
	kind    message.Kind
	mailbox *mailbox
}

// activeSubscription is an acknowledged subscription, bound to a server assigned call id.
type activeSubscription struct {
	requestID uint64
	kind      message.Kind
	mailbox   *mailbox
}

// table correlates subscription requests and server replies and routes incoming data to the mailboxes.
//
// Each mailbox is referenced either by the pending or by the active map, never by both. The calls map links an
// active subscription's request id to its call id, allowing cancellation by the request id only known to the
// Subscription. The table is safe for concurrent use by the reader goroutine and arbitrary consumers.
type table struct {
	sync.Mutex

	lastID  uint64
	pending map[uint64]pendingRequest
	active  map[uint64]activeSubscription
	calls   map[uint64]uint64

	closed bool
}

func newTable() *table {
	return &table{
		pending: make(map[uint64]pendingRequest),
		active:  make(map[uint64]activeSubscription),
		calls:   make(map[uint64]uint64),
	}
}

// registerPending allocates the next request id and a fresh mailbox for a kind. After drainAll, ErrClosed is
// returned as no reply could ever be received.
func (t *table) registerPending(kind message.Kind) (id uint64, mb *mailbox, err error) {
	t.Lock()
	defer t.Unlock()

	if t.closed {
		err = ErrClosed
		return
	}

	t.lastID++
	id = t.lastID
	mb = newMailbox()

	t.pending[id] = pendingRequest{kind: kind, mailbox: mb}
	return
}

// resolveReply promotes the pending request replyTo to an active subscription at callID. Unknown or stale replies
// are ignored and false is returned.
func (t *table) resolveReply(replyTo, callID uint64) (kind message.Kind, ok bool) {
	t.Lock()
	defer t.Unlock()

	pending, ok := t.pending[replyTo]
	if !ok {
		return
	}

	delete(t.pending, replyTo)

	// A server reusing a call id would orphan the previous mailbox otherwise.
	if prev, exists := t.active[callID]; exists {
		delete(t.calls, prev.requestID)
		prev.mailbox.close()
	}

	t.active[callID] = activeSubscription{requestID: replyTo, kind: pending.kind, mailbox: pending.mailbox}
	t.calls[replyTo] = callID

	return pending.kind, true
}

// rejectReply removes the pending request replyTo and closes its mailbox with err. False is returned for unknown
// request ids.
func (t *table) rejectReply(replyTo uint64, err error) bool {
	t.Lock()
	defer t.Unlock()

	pending, ok := t.pending[replyTo]
	if !ok {
		return false
	}

	delete(t.pending, replyTo)
	pending.mailbox.closeWithError(err)
	return true
}

// routeData offers a payload to the active subscription at callID. False is returned if there is no such
// subscription or its mailbox was already closed.
func (t *table) routeData(callID uint64, payload interface{}) bool {
	t.Lock()
	sub, ok := t.active[callID]
	t.Unlock()

	if !ok {
		return false
	}
	return sub.mailbox.offer(payload)
}

// cancel removes the subscription registered under the request id, wherever it currently is, and closes its
// mailbox. If the subscription was already promoted, its call id is returned with promoted set to true.
func (t *table) cancel(requestID uint64) (callID uint64, promoted bool) {
	t.Lock()
	defer t.Unlock()

	if pending, ok := t.pending[requestID]; ok {
		delete(t.pending, requestID)
		pending.mailbox.close()
		return
	}

	if call, ok := t.calls[requestID]; ok {
		delete(t.calls, requestID)
		if sub, ok := t.active[call]; ok && sub.requestID == requestID {
			delete(t.active, call)
			sub.mailbox.close()
		}
		return call, true
	}

	return
}

// drainAll closes every mailbox, clears the table and refuses further registrations. Calling it twice is harmless.
func (t *table) drainAll() {
	t.Lock()
	defer t.Unlock()

	for id, pending := range t.pending {
		pending.mailbox.close()
		delete(t.pending, id)
	}
	for call, sub := range t.active {
		sub.mailbox.close()
		delete(t.active, call)
	}
	for id := range t.calls {
		delete(t.calls, id)
	}

	t.closed = true
}

// size returns the amount of pending and active entries.
func (t *table) size() (pending, active int) {
	t.Lock()
	defer t.Unlock()

	return len(t.pending), len(t.active)
}

// Entry describes a subscription known to a Socket.
type Entry struct {
	RequestID uint64       `json:"request_id"`
	CallID    uint64       `json:"call_id,omitempty"`
	Kind      message.Kind `json:"kind"`
	Active    bool         `json:"active"`
}

// snapshot lists all entries, sorted by their request id.
func (t *table) snapshot() (entries []Entry) {
	t.Lock()
	defer t.Unlock()

	for id, pending := range t.pending {
		entries = append(entries, Entry{RequestID: id, Kind: pending.kind})
	}
	for call, sub := range t.active {
		entries = append(entries, Entry{RequestID: sub.requestID, CallID: call, Kind: sub.kind, Active: true})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].RequestID < entries[j].RequestID
	})
	return
}
