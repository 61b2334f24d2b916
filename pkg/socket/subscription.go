// SPDX-FileCopyrightText: 2026 Alvar Penning
//
// SPDX-License-Identifier: GPL-3.0-or-later

package socket

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/dtn7/yamcs-go/pkg/message"
)

// Subscription is the consumer's handle of one subscription. Its payloads are expected to be of type T.
//
// A Subscription must be closed to release it, e.g., by a deferred Close. Otherwise it lives until its Socket dies.
type Subscription[T any] struct {
	socket  *Socket
	id      uint64
	kind    message.Kind
	mailbox *mailbox

	closeOnce sync.Once
}

// Subscribe sends a subscription request for the given options. It returns as soon as the request was written; the
// server's acknowledgment is not awaited. If writing fails, the error is returned and nothing is left registered.
func Subscribe[T any](ctx context.Context, s *Socket, opts message.Options) (*Subscription[T], error) {
	id, mb, err := s.subscribe(ctx, opts)
	if err != nil {
		return nil, err
	}

	return &Subscription[T]{
		socket:  s,
		id:      id,
		kind:    opts.Kind(),
		mailbox: mb,
	}, nil
}

// SubscribeTime subscribes to a processor's time.
func SubscribeTime(ctx context.Context, s *Socket, req message.TimeRequest) (*Subscription[message.TimeInfo], error) {
	return Subscribe[message.TimeInfo](ctx, s, req)
}

// SubscribePackets subscribes to TM packets.
func SubscribePackets(ctx context.Context, s *Socket, req message.PacketsRequest) (*Subscription[message.TmPacketData], error) {
	return Subscribe[message.TmPacketData](ctx, s, req)
}

// SubscribeParameters subscribes to parameters without resolving the numeric ids.
// The parameters package offers a Subscription resolving them.
func SubscribeParameters(ctx context.Context, s *Socket, req message.ParametersRequest) (*Subscription[message.ParameterData], error) {
	return Subscribe[message.ParameterData](ctx, s, req)
}

// SubscribeRaw subscribes to any kind, delivering the undecoded data. This is meant for kinds without a decoded
// payload type, e.g., links or events.
func SubscribeRaw(ctx context.Context, s *Socket, opts message.Options) (*Subscription[json.RawMessage], error) {
	return Subscribe[json.RawMessage](ctx, s, opts)
}

// ID is the locally assigned request id.
func (sub *Subscription[T]) ID() uint64 {
	return sub.id
}

// Kind of this subscription.
func (sub *Subscription[T]) Kind() message.Kind {
	return sub.kind
}

// Next blocks until the next payload arrives. After the subscription was closed, either by Close or due to a closed
// Socket, io.EOF is returned. A subscription rejected by the server results in a *RejectedError.
func (sub *Subscription[T]) Next(ctx context.Context) (item T, err error) {
	for {
		var payload interface{}
		if payload, err = sub.mailbox.receive(ctx); err != nil {
			return
		}

		if v, ok := payload.(T); ok {
			return v, nil
		}

		sub.socket.logger.WithFields(log.Fields{
			"request": sub.id,
			"kind":    sub.kind,
			"payload": payload,
		}).Warn("Dropping payload of unexpected type")
	}
}

// Consume calls fn for each payload until the subscription ends, the context is done or fn errors. The
// Subscription is closed afterwards. A regular end of the subscription results in a nil error.
func (sub *Subscription[T]) Consume(ctx context.Context, fn func(T) error) error {
	defer sub.Close()

	for {
		item, err := sub.Next(ctx)
		if errors.Is(err, io.EOF) {
			return nil
		} else if err != nil {
			return err
		}

		if err := fn(item); err != nil {
			return err
		}
	}
}

// Close unregisters this subscription and informs the server, if it already acknowledged the subscription. It is
// safe to call Close multiple times. A failed cancel request is only logged, so Close always returns nil.
func (sub *Subscription[T]) Close() error {
	sub.closeOnce.Do(func() {
		sub.socket.unsubscribe(sub.id, sub.kind)
	})
	return nil
}
