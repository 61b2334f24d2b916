// SPDX-FileCopyrightText: 2026 Alvar Penning
//
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/dtn7/yamcs-go/pkg/socket"
)

const watchConfigHead = `
[connection]
url = "ws://localhost:8090/api/websocket"
`

const watchConfigClock = `
[[subscription]]
name = "clock"
kind = "time"
instance = "simulator"
processor = "realtime"
`

const watchConfigLinks = `
[[subscription]]
name = "links"
kind = "links"
instance = "simulator"
`

func TestConfigWatcherReload(t *testing.T) {
	filename := writeConfig(t, t.TempDir(), watchConfigHead+watchConfigClock)

	s := socket.New(newYamcsTransport())
	defer s.Close()

	tl := newTail(s, nil)
	defer tl.stopAll()

	conf, err := parseConfig(filename)
	if err != nil {
		t.Fatal(err)
	}
	tl.apply(conf.Subscription)

	cw, err := newConfigWatcher(filename, tl)
	if err != nil {
		t.Fatal(err)
	}
	defer cw.Close()

	writeConfig(t, filepath.Dir(filename), watchConfigHead+watchConfigLinks)

	select {
	case <-cw.reloaded:
	case <-time.After(2 * time.Second):
		t.Fatal("configuration was not reloaded")
	}

	waitFor(t, "links replaced clock", func() bool {
		return reflect.DeepEqual(tl.names(), []string{"links"})
	})
}

func TestConfigWatcherInvalid(t *testing.T) {
	filename := writeConfig(t, t.TempDir(), watchConfigHead+watchConfigClock)

	s := socket.New(newYamcsTransport())
	defer s.Close()

	tl := newTail(s, nil)
	defer tl.stopAll()

	tl.apply([]subscriptionConf{clockConf})

	cw, err := newConfigWatcher(filename, tl)
	if err != nil {
		t.Fatal(err)
	}
	defer cw.Close()

	writeConfig(t, filepath.Dir(filename), "[connection]\nurl = \"\"\n"+watchConfigLinks)

	select {
	case <-cw.reloaded:
		t.Fatal("invalid configuration was applied")
	case <-time.After(500 * time.Millisecond):
	}

	if names := tl.names(); !reflect.DeepEqual(names, []string{"clock"}) {
		t.Fatalf("unexpected subscriptions %v", names)
	}
}
