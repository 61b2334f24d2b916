// SPDX-FileCopyrightText: 2026 Alvar Penning
//
// SPDX-License-Identifier: GPL-3.0-or-later

package socket

import (
	"errors"
	"fmt"

	"github.com/dtn7/yamcs-go/pkg/message"
)

// ErrClosed is returned for operations on a Socket whose Transport was already closed.
var ErrClosed = errors.New("socket is closed")

// SendError is returned if a request could not be encoded or written to the Transport.
type SendError struct {
	Kind message.Kind
	Err  error
}

func (e *SendError) Error() string {
	return fmt.Sprintf("sending %s request errored: %v", e.Kind, e.Err)
}

func (e *SendError) Unwrap() error {
	return e.Err
}

// RejectedError is observed by a Subscription's consumer if the server answered its request with an exception.
type RejectedError struct {
	RequestID uint64
	Exception message.Exception
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("request %d was rejected: %v", e.RequestID, e.Exception)
}
