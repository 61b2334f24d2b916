// SPDX-FileCopyrightText: 2026 Alvar Penning
//
// SPDX-License-Identifier: GPL-3.0-or-later

package parameters

import (
	"context"

	"github.com/dtn7/yamcs-go/pkg/message"
	"github.com/dtn7/yamcs-go/pkg/socket"
)

// Subscription to parameters, delivering Batches keyed by name.
type Subscription struct {
	sub    *socket.Subscription[message.ParameterData]
	mapper *Mapper
}

// Subscribe to the parameters of the request.
func Subscribe(ctx context.Context, s *socket.Socket, req message.ParametersRequest) (*Subscription, error) {
	sub, err := socket.SubscribeParameters(ctx, s, req)
	if err != nil {
		return nil, err
	}

	return &Subscription{
		sub:    sub,
		mapper: NewMapper(),
	}, nil
}

// ID is the locally assigned request id.
func (ps *Subscription) ID() uint64 {
	return ps.sub.ID()
}

// Next blocks until the next Batch is available. Updates without a resulting Batch are consumed silently. Errors are
// those of socket.Subscription.Next, e.g., io.EOF after closing.
func (ps *Subscription) Next(ctx context.Context) (Batch, error) {
	for {
		data, err := ps.sub.Next(ctx)
		if err != nil {
			return nil, err
		}

		if batch, ok := ps.mapper.Fold(data); ok {
			return batch, nil
		}
	}
}

// Close the underlying subscription.
func (ps *Subscription) Close() error {
	return ps.sub.Close()
}
