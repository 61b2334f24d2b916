// SPDX-FileCopyrightText: 2026 Alvar Penning
//
// SPDX-License-Identifier: GPL-3.0-or-later

package socket

import (
	"context"
	"io"
	"sync"
)

// mailbox is an unbounded queue between the reader goroutine, offering payloads, and one consumer, receiving them.
// Offering never blocks; a slow consumer only grows the queue.
//
// A mailbox might be closed from either side. Already queued payloads are still received after closing, afterwards
// receive returns the close error, which is io.EOF unless closeWithError was used.
type mailbox struct {
	sync.Mutex

	items  []interface{}
	closed bool
	err    error

	notify chan struct{}
}

func newMailbox() *mailbox {
	return &mailbox{
		notify: make(chan struct{}, 1),
	}
}

// offer a payload. False is returned if the mailbox is already closed.
func (mb *mailbox) offer(item interface{}) bool {
	mb.Lock()
	defer mb.Unlock()

	if mb.closed {
		return false
	}

	mb.items = append(mb.items, item)

	select {
	case mb.notify <- struct{}{}:
	default:
	}

	return true
}

// receive the next payload, blocking until one is available, the mailbox is closed or the context is done.
func (mb *mailbox) receive(ctx context.Context) (interface{}, error) {
	for {
		mb.Lock()
		if len(mb.items) > 0 {
			item := mb.items[0]
			mb.items[0] = nil
			mb.items = mb.items[1:]
			mb.Unlock()
			return item, nil
		} else if mb.closed {
			err := mb.err
			mb.Unlock()
			return nil, err
		}
		mb.Unlock()

		select {
		case <-mb.notify:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// close this mailbox; receivers get io.EOF after the queue was drained.
func (mb *mailbox) close() {
	mb.closeWithError(io.EOF)
}

// closeWithError closes this mailbox with a custom error for its receivers. Closing twice keeps the first error.
func (mb *mailbox) closeWithError(err error) {
	mb.Lock()
	defer mb.Unlock()

	if mb.closed {
		return
	}

	mb.closed = true
	mb.err = err
	close(mb.notify)
}

// isClosed reports whether this mailbox was closed.
func (mb *mailbox) isClosed() bool {
	mb.Lock()
	defer mb.Unlock()

	return mb.closed
}
