// SPDX-FileCopyrightText: 2026 Alvar Penning
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package socket multiplexes many subscriptions over one Yamcs WebSocket connection.
//
// A Socket owns a Transport. Each Subscribe call registers a pending request under a locally unique id and sends
// the request. The server acknowledges it with a reply, naming a call id, which promotes the pending request to an
// active subscription. All further data frames carry this call id and are routed by a single reader goroutine to the
// subscription's mailbox, from which the consumer reads by Subscription.Next.
//
// Closing a Subscription unregisters it and, if the server already assigned a call id, sends a best-effort cancel.
// If the Transport fails or is closed, every mailbox gets closed and all consumers observe io.EOF.
package socket
