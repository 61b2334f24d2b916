// SPDX-FileCopyrightText: 2026 Alvar Penning
//
// SPDX-License-Identifier: GPL-3.0-or-later

package message

import (
	"encoding/json"
)

// Envelope is a decoded inbound message. It is one of Reply, Time, Packets, Parameters or Generic.
type Envelope interface {
	// EnvelopeKind is the value of the envelope's "type" field.
	EnvelopeKind() Kind

	isEnvelope()
}

// Streamed is an Envelope carrying data for an acknowledged call.
type Streamed interface {
	Envelope

	// CallID is the server assigned call this data belongs to.
	CallID() uint64

	// Sequence is the server's sequence number, counting per call.
	Sequence() uint64

	// Payload is the decoded data, e.g., a TimeInfo for a Time envelope.
	Payload() interface{}
}

// Reply acknowledges a Subscribe request. ReplyTo references the request's ID, Call is the server assigned call id
// for all further messages of this subscription.
type Reply struct {
	Call      uint64
	ReplyTo   uint64
	Exception *Exception
}

func (Reply) EnvelopeKind() Kind { return KindReply }
func (Reply) isEnvelope()        {}

// Time carries the mission time.
type Time struct {
	Call uint64
	Seq  uint64
	Data TimeInfo
}

func (Time) EnvelopeKind() Kind     { return KindTime }
func (Time) isEnvelope()            {}
func (t Time) CallID() uint64       { return t.Call }
func (t Time) Sequence() uint64     { return t.Seq }
func (t Time) Payload() interface{} { return t.Data }

// Packets carries a TM packet.
type Packets struct {
	Call uint64
	Seq  uint64
	Data TmPacketData
}

func (Packets) EnvelopeKind() Kind     { return KindPackets }
func (Packets) isEnvelope()            {}
func (p Packets) CallID() uint64       { return p.Call }
func (p Packets) Sequence() uint64     { return p.Seq }
func (p Packets) Payload() interface{} { return p.Data }

// Parameters carries parameter values and, possibly, an updated numeric id mapping.
type Parameters struct {
	Call uint64
	Seq  uint64
	Data ParameterData
}

func (Parameters) EnvelopeKind() Kind     { return KindParameters }
func (Parameters) isEnvelope()            {}
func (p Parameters) CallID() uint64       { return p.Call }
func (p Parameters) Sequence() uint64     { return p.Seq }
func (p Parameters) Payload() interface{} { return p.Data }

// Generic carries the undecoded data of every other subscription kind.
type Generic struct {
	Kind Kind
	Call uint64
	Seq  uint64
	Data json.RawMessage
}

func (g Generic) EnvelopeKind() Kind   { return g.Kind }
func (Generic) isEnvelope()            {}
func (g Generic) CallID() uint64       { return g.Call }
func (g Generic) Sequence() uint64     { return g.Seq }
func (g Generic) Payload() interface{} { return g.Data }
