// SPDX-FileCopyrightText: 2026 Alvar Penning
//
// SPDX-License-Identifier: GPL-3.0-or-later

package socket

import (
	"context"
	"io"
	"sync"
	"testing"

	"github.com/dtn7/yamcs-go/pkg/message"
)

func TestTableRegisterIdsIncrease(t *testing.T) {
	tbl := newTable()

	var last uint64
	for i := 0; i < 1000; i++ {
		id, _, err := tbl.registerPending(message.KindTime)
		if err != nil {
			t.Fatal(err)
		}
		if id <= last {
			t.Fatalf("id %d is not greater than previous %d", id, last)
		}
		last = id

		// Neither promotion nor cancellation might free an id.
		switch i % 3 {
		case 0:
			tbl.resolveReply(id, uint64(i))
		case 1:
			tbl.cancel(id)
		}
	}
}

func TestTableRegisterConcurrent(t *testing.T) {
	tbl := newTable()

	var (
		wg  sync.WaitGroup
		mtx sync.Mutex
		ids = make(map[uint64]struct{})
	)

	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				id, _, err := tbl.registerPending(message.KindPackets)
				if err != nil {
					t.Error(err)
					return
				}

				mtx.Lock()
				if _, known := ids[id]; known {
					t.Errorf("id %d was issued twice", id)
				}
				ids[id] = struct{}{}
				mtx.Unlock()
			}
		}()
	}
	wg.Wait()

	if len(ids) != 1600 {
		t.Fatalf("expected 1600 ids, got %d", len(ids))
	}
}

func TestTableUnknownReply(t *testing.T) {
	tbl := newTable()
	id, _, _ := tbl.registerPending(message.KindTime)

	if _, ok := tbl.resolveReply(id+1, 7); ok {
		t.Fatal("reply to unknown request was resolved")
	}

	if pending, active := tbl.size(); pending != 1 || active != 0 {
		t.Fatalf("expected 1 pending and 0 active, got %d and %d", pending, active)
	}
}

func TestTableResolveAndRoute(t *testing.T) {
	tbl := newTable()

	id, mb, _ := tbl.registerPending(message.KindTime)
	otherID, otherMb, _ := tbl.registerPending(message.KindTime)

	if tbl.routeData(7, "early") {
		t.Fatal("data for an unpromoted call was routed")
	}

	if kind, ok := tbl.resolveReply(id, 7); !ok {
		t.Fatal("reply was not resolved")
	} else if kind != message.KindTime {
		t.Fatalf("expected kind %v, got %v", message.KindTime, kind)
	}

	if !tbl.routeData(7, "payload") {
		t.Fatal("data was not routed")
	}
	if tbl.routeData(8, "payload") {
		t.Fatal("data for unknown call was routed")
	}

	if item, err := mb.receive(context.Background()); err != nil {
		t.Fatal(err)
	} else if item.(string) != "payload" {
		t.Fatalf("expected payload, got %v", item)
	}

	otherMb.Lock()
	queued := len(otherMb.items)
	otherMb.Unlock()
	if queued != 0 {
		t.Fatalf("request %d received %d items", otherID, queued)
	}

	if pending, active := tbl.size(); pending != 1 || active != 1 {
		t.Fatalf("expected 1 pending and 1 active, got %d and %d", pending, active)
	}
}

func TestTableCancel(t *testing.T) {
	tbl := newTable()

	pendingID, pendingMb, _ := tbl.registerPending(message.KindTime)
	activeID, activeMb, _ := tbl.registerPending(message.KindParameters)
	tbl.resolveReply(activeID, 23)

	if _, promoted := tbl.cancel(pendingID); promoted {
		t.Fatal("pending request yielded a call id")
	}
	if !pendingMb.isClosed() {
		t.Fatal("mailbox of cancelled pending request is still open")
	}

	if call, promoted := tbl.cancel(activeID); !promoted {
		t.Fatal("active subscription yielded no call id")
	} else if call != 23 {
		t.Fatalf("expected call 23, got %d", call)
	}
	if !activeMb.isClosed() {
		t.Fatal("mailbox of cancelled subscription is still open")
	}

	if _, promoted := tbl.cancel(activeID); promoted {
		t.Fatal("second cancel yielded a call id")
	}
	if tbl.routeData(23, "late") {
		t.Fatal("data for cancelled call was routed")
	}

	if pending, active := tbl.size(); pending != 0 || active != 0 {
		t.Fatalf("expected an empty table, got %d pending and %d active", pending, active)
	}
}

func TestTableReject(t *testing.T) {
	tbl := newTable()
	id, mb, _ := tbl.registerPending(message.KindTime)

	reason := &RejectedError{RequestID: id}
	if !tbl.rejectReply(id, reason) {
		t.Fatal("rejection was not applied")
	}
	if tbl.rejectReply(id, reason) {
		t.Fatal("second rejection was applied")
	}

	if _, err := mb.receive(context.Background()); err != reason {
		t.Fatalf("expected %v, got %v", reason, err)
	}
}

func TestTableDrainAll(t *testing.T) {
	tbl := newTable()

	_, pendingMb, _ := tbl.registerPending(message.KindTime)
	activeID, activeMb, _ := tbl.registerPending(message.KindTime)
	tbl.resolveReply(activeID, 1)

	tbl.drainAll()
	tbl.drainAll()

	for _, mb := range []*mailbox{pendingMb, activeMb} {
		if _, err := mb.receive(context.Background()); err != io.EOF {
			t.Fatalf("expected io.EOF, got %v", err)
		}
	}

	if tbl.routeData(1, "late") {
		t.Fatal("data was routed after draining")
	}
	if _, _, err := tbl.registerPending(message.KindTime); err != ErrClosed {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
	if entries := tbl.snapshot(); len(entries) != 0 {
		t.Fatalf("expected empty snapshot, got %v", entries)
	}
}

func TestTableSnapshot(t *testing.T) {
	tbl := newTable()

	a, _, _ := tbl.registerPending(message.KindTime)
	b, _, _ := tbl.registerPending(message.KindPackets)
	tbl.resolveReply(b, 42)

	entries := tbl.snapshot()
	if len(entries) != 2 {
		t.Fatalf("expected two entries, got %v", entries)
	}

	if e := entries[0]; e.RequestID != a || e.Active || e.Kind != message.KindTime {
		t.Fatalf("unexpected first entry %v", e)
	}
	if e := entries[1]; e.RequestID != b || !e.Active || e.CallID != 42 || e.Kind != message.KindPackets {
		t.Fatalf("unexpected second entry %v", e)
	}
}
