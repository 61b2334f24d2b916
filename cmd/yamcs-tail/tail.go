// SPDX-FileCopyrightText: 2026 Alvar Penning
//
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"reflect"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/dtn7/yamcs-go/pkg/archive"
	"github.com/dtn7/yamcs-go/pkg/message"
	"github.com/dtn7/yamcs-go/pkg/parameters"
	"github.com/dtn7/yamcs-go/pkg/socket"
)

// runningSubscription is a subscription block currently consumed by the tail.
type runningSubscription struct {
	conf   subscriptionConf
	cancel context.CancelFunc
	done   chan struct{}
}

// tail keeps the subscriptions of a Socket in line with the configuration and logs, and optionally archives, every
// received payload.
type tail struct {
	socket *socket.Socket
	store  *archive.Store

	mutex   sync.Mutex
	running map[string]*runningSubscription
}

func newTail(s *socket.Socket, store *archive.Store) *tail {
	return &tail{
		socket:  s,
		store:   store,
		running: make(map[string]*runningSubscription),
	}
}

// apply a list of subscription blocks. Subscriptions missing in the list are stopped, new ones are started and
// changed ones are restarted. Unchanged subscriptions keep running.
func (t *tail) apply(confs []subscriptionConf) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	wanted := make(map[string]subscriptionConf, len(confs))
	for _, sc := range confs {
		wanted[sc.Name] = sc
	}

	for name, rs := range t.running {
		if sc, ok := wanted[name]; !ok || !reflect.DeepEqual(sc, rs.conf) {
			t.stop(name)
		}
	}

	for _, sc := range confs {
		if _, ok := t.running[sc.Name]; ok {
			continue
		}

		if err := t.start(sc); err != nil {
			log.WithField("subscription", sc.Name).WithError(err).Error("Starting subscription errored")
		}
	}
}

// names of all running subscriptions.
func (t *tail) names() (names []string) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	for name := range t.running {
		names = append(names, name)
	}
	return
}

// start a subscription; the caller must hold the mutex.
func (t *tail) start(sc subscriptionConf) error {
	opts, err := sc.options()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	rs := &runningSubscription{
		conf:   sc,
		cancel: cancel,
		done:   make(chan struct{}),
	}

	var consume func() error
	switch opts := opts.(type) {
	case message.TimeRequest:
		sub, subErr := socket.SubscribeTime(ctx, t.socket, opts)
		if subErr != nil {
			cancel()
			return subErr
		}
		consume = func() error {
			return sub.Consume(ctx, func(info message.TimeInfo) error {
				t.logger(sc).WithField("time", info.Value).Info("Received time")
				return t.archive(sc, info)
			})
		}

	case message.PacketsRequest:
		sub, subErr := socket.SubscribePackets(ctx, t.socket, opts)
		if subErr != nil {
			cancel()
			return subErr
		}
		consume = func() error {
			return sub.Consume(ctx, func(pkt message.TmPacketData) error {
				t.logger(sc).WithFields(log.Fields{
					"packet":   pkt.ID,
					"sequence": pkt.SequenceNumber,
					"size":     len(pkt.Packet),
					"data":     hex.EncodeToString(pkt.Packet),
				}).Info("Received packet")
				return t.archive(sc, pkt)
			})
		}

	case message.ParametersRequest:
		sub, subErr := parameters.Subscribe(ctx, t.socket, opts)
		if subErr != nil {
			cancel()
			return subErr
		}
		consume = func() error {
			defer sub.Close()
			for {
				batch, err := sub.Next(ctx)
				if err != nil {
					return err
				}

				fields := make(log.Fields, len(batch))
				for name, value := range batch {
					if value.EngValue != nil {
						fields[name] = value.EngValue.String()
					} else {
						fields[name] = nil
					}
				}
				t.logger(sc).WithFields(fields).Info("Received parameters")

				if err := t.archive(sc, batch); err != nil {
					return err
				}
			}
		}

	default:
		sub, subErr := socket.SubscribeRaw(ctx, t.socket, opts)
		if subErr != nil {
			cancel()
			return subErr
		}
		consume = func() error {
			return sub.Consume(ctx, func(raw json.RawMessage) error {
				t.logger(sc).WithField("data", string(raw)).Info("Received data")
				return t.archive(sc, raw)
			})
		}
	}

	t.running[sc.Name] = rs
	t.logger(sc).Info("Started subscription")

	go func() {
		err := consume()
		switch {
		case err == nil, errors.Is(err, context.Canceled):
			t.logger(sc).Debug("Subscription ended")
		default:
			t.logger(sc).WithError(err).Warn("Subscription ended with an error")
		}

		// stop holds the mutex while waiting for done, so done must be closed first.
		rs.cancel()
		close(rs.done)
		t.forget(sc.Name, rs)
	}()

	return nil
}

// stop a running subscription and wait for it; the caller must hold the mutex.
func (t *tail) stop(name string) {
	rs, ok := t.running[name]
	if !ok {
		return
	}

	rs.cancel()
	<-rs.done
	delete(t.running, name)

	t.logger(rs.conf).Info("Stopped subscription")
}

// forget a subscription which ended by itself, e.g., rejected by the server or due to a closed Socket. Entries
// already removed or replaced by stop are left untouched.
func (t *tail) forget(name string, rs *runningSubscription) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	if t.running[name] == rs {
		delete(t.running, name)
		t.logger(rs.conf).Info("Subscription ended by itself")
	}
}

// stopAll running subscriptions.
func (t *tail) stopAll() {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	for name := range t.running {
		t.stop(name)
	}
}

// archive a payload, if an archive is configured.
func (t *tail) archive(sc subscriptionConf, payload interface{}) error {
	if t.store == nil {
		return nil
	}

	_, err := t.store.Push(message.Kind(sc.Kind), sc.Name, payload)
	return err
}

func (t *tail) logger(sc subscriptionConf) *log.Entry {
	return log.WithFields(log.Fields{
		"subscription": sc.Name,
		"kind":         sc.Kind,
	})
}
