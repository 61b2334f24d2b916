// SPDX-FileCopyrightText: 2026 Alvar Penning
//
// SPDX-License-Identifier: GPL-3.0-or-later

package socket

import (
	"context"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/google/uuid"

	"github.com/dtn7/yamcs-go/pkg/message"
)

// DefaultCancelTimeout limits sending a cancel request when a Subscription is closed.
const DefaultCancelTimeout = 5 * time.Second

// Socket multiplexes subscriptions over one Transport.
type Socket struct {
	id        uuid.UUID
	transport Transport
	codec     message.Codec
	table     *table
	metrics   *Metrics
	logger    *log.Entry

	// writeLock serializes writes to the Transport. It is a channel to allow giving up on a context.
	writeLock     chan struct{}
	cancelTimeout time.Duration

	closeSyn   chan struct{}
	closeOnce  sync.Once
	readerDone chan struct{}
}

// Option configures a Socket on its creation.
type Option func(*Socket)

// WithCodec replaces the default JSONCodec.
func WithCodec(codec message.Codec) Option {
	return func(s *Socket) {
		s.codec = codec
	}
}

// WithMetrics records the Socket's activity.
func WithMetrics(metrics *Metrics) Option {
	return func(s *Socket) {
		s.metrics = metrics
	}
}

// WithCancelTimeout replaces the DefaultCancelTimeout.
func WithCancelTimeout(timeout time.Duration) Option {
	return func(s *Socket) {
		s.cancelTimeout = timeout
	}
}

// WithLogger sets the base logger; a "socket" field will be added.
func WithLogger(logger *log.Entry) Option {
	return func(s *Socket) {
		s.logger = logger
	}
}

// New creates a Socket for an established Transport and starts its reader.
func New(transport Transport, opts ...Option) *Socket {
	s := &Socket{
		id:        uuid.New(),
		transport: transport,
		codec:     message.NewJSONCodec(),
		table:     newTable(),
		logger:    log.NewEntry(log.StandardLogger()),

		writeLock:     make(chan struct{}, 1),
		cancelTimeout: DefaultCancelTimeout,

		closeSyn:   make(chan struct{}),
		readerDone: make(chan struct{}),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.logger = s.logger.WithField("socket", s.id.String())

	go s.handleReader()

	return s
}

// Dial a Yamcs WebSocket API endpoint and create a Socket on top of it.
func Dial(ctx context.Context, url string, opts ...Option) (*Socket, error) {
	transport, err := DialWebSocket(ctx, url, nil)
	if err != nil {
		return nil, err
	}

	return New(transport, opts...), nil
}

// ID identifies this Socket, e.g., in log messages.
func (s *Socket) ID() string {
	return s.id.String()
}

// handleReader receives and dispatches frames until the Transport fails. Afterwards, all subscriptions are closed.
func (s *Socket) handleReader() {
	defer close(s.readerDone)
	defer s.drain()

	for {
		frame, err := s.transport.Receive()
		if err != nil {
			select {
			case <-s.closeSyn:
				s.logger.WithError(err).Debug("Reader stopped due to closed Socket")
			default:
				if isCloseError(err) {
					s.logger.WithError(err).Info("Server closed the connection")
				} else {
					s.logger.WithError(err).Warn("Receiving frame errored")
				}
			}
			return
		}

		s.dispatch(frame)
	}
}

// dispatch a single frame. Undecodable or unroutable frames are dropped.
func (s *Socket) dispatch(frame []byte) {
	env, err := s.codec.Decode(frame)
	if err != nil {
		s.metrics.dropped(dropDecode)
		s.logger.WithError(err).WithField("size", len(frame)).Warn("Dropping undecodable frame")
		return
	}

	s.metrics.received(env.EnvelopeKind().String())

	switch env := env.(type) {
	case message.Reply:
		s.handleReply(env)

	case message.Streamed:
		if !s.table.routeData(env.CallID(), env.Payload()) {
			s.metrics.dropped(dropUnroutable)
			s.logger.WithFields(log.Fields{
				"type": env.EnvelopeKind(),
				"call": env.CallID(),
				"seq":  env.Sequence(),
			}).Debug("Dropping frame for unknown call")
		}

	default:
		s.logger.WithField("type", env.EnvelopeKind()).Info("Received unknown / unsupported envelope")
	}
}

func (s *Socket) handleReply(reply message.Reply) {
	defer s.updateGauge()

	logger := s.logger.WithFields(log.Fields{
		"request": reply.ReplyTo,
		"call":    reply.Call,
	})

	if reply.Exception != nil {
		rejectErr := &RejectedError{RequestID: reply.ReplyTo, Exception: *reply.Exception}
		if s.table.rejectReply(reply.ReplyTo, rejectErr) {
			logger.WithError(rejectErr).Warn("Server rejected subscription")
		} else {
			s.metrics.dropped(dropStaleReply)
			logger.WithError(rejectErr).Debug("Ignoring rejection for unknown request")
		}
		return
	}

	if kind, ok := s.table.resolveReply(reply.ReplyTo, reply.Call); ok {
		logger.WithField("kind", kind).Debug("Subscription activated")
	} else {
		s.metrics.dropped(dropStaleReply)
		logger.Debug("Ignoring reply for unknown request")
	}
}

// drain closes all subscriptions when the reader stops.
func (s *Socket) drain() {
	s.table.drainAll()
	s.updateGauge()

	s.logger.Debug("Closed all subscriptions")
}

func (s *Socket) updateGauge() {
	if s.metrics != nil {
		s.metrics.subscriptions(s.table.size())
	}
}

// send encodes and writes a Request. Only one write happens at a time; waiting for the turn respects the context.
func (s *Socket) send(ctx context.Context, req message.Request) error {
	frame, err := s.codec.Encode(req)
	if err != nil {
		return &SendError{Kind: req.RequestKind(), Err: err}
	}

	select {
	case <-s.closeSyn:
		return &SendError{Kind: req.RequestKind(), Err: ErrClosed}
	default:
	}

	select {
	case s.writeLock <- struct{}{}:
	case <-ctx.Done():
		return &SendError{Kind: req.RequestKind(), Err: ctx.Err()}
	case <-s.closeSyn:
		return &SendError{Kind: req.RequestKind(), Err: ErrClosed}
	}
	defer func() { <-s.writeLock }()

	if err := s.transport.Send(ctx, frame); err != nil {
		return &SendError{Kind: req.RequestKind(), Err: err}
	}

	s.metrics.sent(req.RequestKind().String())
	return nil
}

// subscribe registers a pending request and sends it. On failure, the pending request is released.
func (s *Socket) subscribe(ctx context.Context, opts message.Options) (id uint64, mb *mailbox, err error) {
	if opts == nil {
		err = fmt.Errorf("subscription options are missing")
		return
	}

	if id, mb, err = s.table.registerPending(opts.Kind()); err != nil {
		return
	}
	s.updateGauge()

	logger := s.logger.WithFields(log.Fields{
		"request": id,
		"kind":    opts.Kind(),
	})

	if err = s.send(ctx, message.Subscribe{ID: id, Options: opts}); err != nil {
		s.table.cancel(id)
		s.updateGauge()

		logger.WithError(err).Warn("Sending subscription request errored")
		return 0, nil, err
	}

	logger.Debug("Sent subscription request")
	return
}

// unsubscribe removes a subscription by its request id. A cancel request is sent iff the subscription was already
// promoted. Failures are only logged; this never blocks longer than the cancel timeout.
func (s *Socket) unsubscribe(id uint64, kind message.Kind) {
	call, promoted := s.table.cancel(id)
	s.updateGauge()

	logger := s.logger.WithFields(log.Fields{
		"request": id,
		"kind":    kind,
	})

	if !promoted {
		logger.Debug("Removed subscription without call id, no cancel required")
		return
	}

	logger = logger.WithField("call", call)

	ctx, cancel := context.WithTimeout(context.Background(), s.cancelTimeout)
	defer cancel()

	if err := s.send(ctx, message.Cancel{Call: call}); err != nil {
		logger.WithError(err).Warn("Sending cancel request errored")
	} else {
		logger.Debug("Cancelled subscription")
	}
}

// RequestState asks the server to dump its active calls for this connection, which is useful for debugging.
func (s *Socket) RequestState(ctx context.Context) error {
	return s.send(ctx, message.State{})
}

// Snapshot lists all currently pending and active subscriptions.
func (s *Socket) Snapshot() []Entry {
	return s.table.snapshot()
}

// Done is closed after the Socket's reader stopped, either due to Close or a failed Transport.
func (s *Socket) Done() <-chan struct{} {
	return s.readerDone
}

// Close the Transport and wait until all subscriptions are closed.
func (s *Socket) Close() (err error) {
	s.closeOnce.Do(func() {
		s.logger.Debug("Closing Socket")

		close(s.closeSyn)
		err = s.transport.Close()

		<-s.readerDone
	})
	return
}
