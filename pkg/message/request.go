// SPDX-FileCopyrightText: 2026 Alvar Penning
//
// SPDX-License-Identifier: GPL-3.0-or-later

package message

import (
	"encoding/json"
)

// Request is an outbound message, sent from the client to the server.
type Request interface {
	// RequestKind is the value of the request's "type" field.
	RequestKind() Kind
}

// Options are the kind specific options of a subscription request.
// Each implementation names the Kind it subscribes to.
type Options interface {
	Kind() Kind
}

// Subscribe requests a new subscription. The ID is chosen by the client and will be referenced by the server's Reply.
type Subscribe struct {
	ID      uint64
	Options Options
}

func (s Subscribe) RequestKind() Kind {
	return s.Options.Kind()
}

func (s Subscribe) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    Kind    `json:"type"`
		ID      uint64  `json:"id"`
		Options Options `json:"options"`
	}{s.Options.Kind(), s.ID, s.Options})
}

// Cancel an active call.
type Cancel struct {
	Call uint64
}

func (c Cancel) RequestKind() Kind {
	return KindCancel
}

func (c Cancel) MarshalJSON() ([]byte, error) {
	type cancelOptions struct {
		Call uint64 `json:"call"`
	}

	return json.Marshal(struct {
		Type    Kind          `json:"type"`
		Options cancelOptions `json:"options"`
	}{KindCancel, cancelOptions{c.Call}})
}

// State requests the server to dump a snapshot of the active calls on this connection. This is intended for debugging.
type State struct{}

func (s State) RequestKind() Kind {
	return KindState
}

func (s State) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type Kind `json:"type"`
	}{KindState})
}

// TimeRequest subscribes to the mission time of a processor.
type TimeRequest struct {
	Instance  string `json:"instance"`
	Processor string `json:"processor"`
}

func (TimeRequest) Kind() Kind { return KindTime }

// PacketsRequest subscribes to TM packets, either of a processor or of a stream.
type PacketsRequest struct {
	Instance  string `json:"instance"`
	Processor string `json:"processor,omitempty"`
	Stream    string `json:"stream,omitempty"`
}

func (PacketsRequest) Kind() Kind { return KindPackets }

// ParametersRequest subscribes to a list of parameters.
type ParametersRequest struct {
	Instance  string          `json:"instance"`
	Processor string          `json:"processor"`
	ID        []NamedObjectID `json:"id"`

	AbortOnInvalid     bool `json:"abortOnInvalid,omitempty"`
	UpdateOnExpiration bool `json:"updateOnExpiration,omitempty"`
	SendFromCache      bool `json:"sendFromCache,omitempty"`
}

func (ParametersRequest) Kind() Kind { return KindParameters }

// ContainersRequest subscribes to containers, identified by their qualified names.
type ContainersRequest struct {
	Instance  string   `json:"instance"`
	Processor string   `json:"processor"`
	Names     []string `json:"names"`
}

func (ContainersRequest) Kind() Kind { return KindContainers }

// LinksRequest subscribes to link status updates.
type LinksRequest struct {
	Instance string `json:"instance"`
}

func (LinksRequest) Kind() Kind { return KindLinks }

// StreamRequest subscribes to the tuples of a stream.
type StreamRequest struct {
	Instance string `json:"instance"`
	Stream   string `json:"stream"`
}

func (StreamRequest) Kind() Kind { return KindStream }

// AlarmsRequest subscribes to alarms.
type AlarmsRequest struct {
	Instance       string `json:"instance"`
	Processor      string `json:"processor"`
	IncludePending bool   `json:"includePending"`
}

func (AlarmsRequest) Kind() Kind { return KindAlarms }

// EventsRequest subscribes to events.
type EventsRequest struct {
	Instance string `json:"instance"`
}

func (EventsRequest) Kind() Kind { return KindEvents }

// CommandsRequest subscribes to issued commands.
type CommandsRequest struct {
	Instance           string `json:"instance"`
	Processor          string `json:"processor"`
	IgnorePastCommands bool   `json:"ignorePastCommands"`
}

func (CommandsRequest) Kind() Kind { return KindCommands }
