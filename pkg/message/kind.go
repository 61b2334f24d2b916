// SPDX-FileCopyrightText: 2026 Alvar Penning
//
// SPDX-License-Identifier: GPL-3.0-or-later

package message

// Kind names a message type, used as the "type" field of both requests and envelopes.
type Kind string

const (
	KindReply  Kind = "reply"
	KindCancel Kind = "cancel"
	KindState  Kind = "state"

	KindTime       Kind = "time"
	KindPackets    Kind = "packets"
	KindParameters Kind = "parameters"
	KindContainers Kind = "containers"
	KindLinks      Kind = "links"
	KindStream     Kind = "stream"
	KindAlarms     Kind = "alarms"
	KindEvents     Kind = "events"
	KindCommands   Kind = "commands"
)

// subscriptionKinds are all kinds which might be subscribed to.
var subscriptionKinds = map[Kind]struct{}{
	KindTime:       {},
	KindPackets:    {},
	KindParameters: {},
	KindContainers: {},
	KindLinks:      {},
	KindStream:     {},
	KindAlarms:     {},
	KindEvents:     {},
	KindCommands:   {},
}

// IsSubscription checks if this Kind names a subscription, in contrast to a reply or a control message.
func (k Kind) IsSubscription() bool {
	_, ok := subscriptionKinds[k]
	return ok
}

func (k Kind) String() string {
	return string(k)
}
