// SPDX-FileCopyrightText: 2026 Alvar Penning
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package message describes the JSON messages exchanged with a Yamcs server over its WebSocket API.
//
// Inbound frames are decoded into an Envelope, which is either a Reply, acknowledging a subscription request, or one
// of the streamed variants carrying data for an already acknowledged call. Outbound frames are Requests: a Subscribe
// wrapping kind specific Options, a Cancel or a State request. The Codec interface bundles both directions; JSONCodec
// is the implementation used by default.
package message
