// SPDX-FileCopyrightText: 2026 Alvar Penning
//
// SPDX-License-Identifier: GPL-3.0-or-later

package socket

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"
)

func TestMailboxOrder(t *testing.T) {
	mb := newMailbox()
	for i := 0; i < 100; i++ {
		if !mb.offer(i) {
			t.Fatalf("offer %d failed", i)
		}
	}

	for i := 0; i < 100; i++ {
		if item, err := mb.receive(context.Background()); err != nil {
			t.Fatal(err)
		} else if item.(int) != i {
			t.Fatalf("expected %d, got %v", i, item)
		}
	}
}

func TestMailboxBlockingReceive(t *testing.T) {
	mb := newMailbox()

	go func() {
		time.Sleep(50 * time.Millisecond)
		mb.offer("hello")
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if item, err := mb.receive(ctx); err != nil {
		t.Fatal(err)
	} else if item.(string) != "hello" {
		t.Fatalf("expected hello, got %v", item)
	}
}

func TestMailboxClose(t *testing.T) {
	mb := newMailbox()
	mb.offer(23)
	mb.close()

	if mb.offer(42) {
		t.Fatal("offer on closed mailbox succeeded")
	}

	if item, err := mb.receive(context.Background()); err != nil {
		t.Fatal(err)
	} else if item.(int) != 23 {
		t.Fatalf("expected queued 23, got %v", item)
	}

	for i := 0; i < 2; i++ {
		if _, err := mb.receive(context.Background()); err != io.EOF {
			t.Fatalf("expected io.EOF, got %v", err)
		}
	}

	// Closing again must neither panic nor replace the error.
	mb.closeWithError(errors.New("too late"))
	if _, err := mb.receive(context.Background()); err != io.EOF {
		t.Fatalf("expected io.EOF, got %v", err)
	}
}

func TestMailboxCloseWakesReceiver(t *testing.T) {
	mb := newMailbox()
	reason := errors.New("rejected")

	errChan := make(chan error)
	go func() {
		_, err := mb.receive(context.Background())
		errChan <- err
	}()

	time.Sleep(50 * time.Millisecond)
	mb.closeWithError(reason)

	select {
	case err := <-errChan:
		if err != reason {
			t.Fatalf("expected %v, got %v", reason, err)
		}
	case <-time.After(time.Second):
		t.Fatal("receiver was not woken up")
	}
}

func TestMailboxContext(t *testing.T) {
	mb := newMailbox()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if _, err := mb.receive(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if mb.isClosed() {
		t.Fatal("mailbox must not be closed by a done context")
	}
}
