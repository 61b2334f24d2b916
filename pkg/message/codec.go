// SPDX-FileCopyrightText: 2026 Alvar Penning
//
// SPDX-License-Identifier: GPL-3.0-or-later

package message

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Codec decodes inbound frames to Envelopes and encodes outbound Requests to frames.
type Codec interface {
	// Decode a raw frame. A malformed or unknown frame results in a *DecodeError.
	Decode(frame []byte) (Envelope, error)

	// Encode a Request to a raw frame.
	Encode(req Request) ([]byte, error)
}

// DecodeError is returned by a Codec for frames which cannot be decoded.
type DecodeError struct {
	// Kind of the frame, if it was possible to extract it.
	Kind Kind
	Err  error
}

func (e *DecodeError) Error() string {
	if e.Kind == "" {
		return fmt.Sprintf("decoding envelope errored: %v", e.Err)
	}
	return fmt.Sprintf("decoding %s envelope errored: %v", e.Kind, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

//go:embed envelope.schema.json
var envelopeSchemaJson []byte

// envelopeSchema checks the common structure of all server messages before decoding the kind specific data.
var envelopeSchema = mustLoadSchema(envelopeSchemaJson)

func mustLoadSchema(data []byte) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(data))
	if err != nil {
		panic(fmt.Sprintf("loading envelope schema errored: %v", err))
	}
	return schema
}

// JSONCodec is the Codec for Yamcs' JSON based WebSocket protocol.
type JSONCodec struct{}

// NewJSONCodec creates a new JSONCodec.
func NewJSONCodec() JSONCodec {
	return JSONCodec{}
}

// rawEnvelope is the common structure of each server message, with the kind specific data left undecoded.
type rawEnvelope struct {
	Type Kind            `json:"type"`
	Call uint64          `json:"call"`
	Seq  uint64          `json:"seq"`
	Data json.RawMessage `json:"data"`
}

type replyData struct {
	ReplyTo   uint64     `json:"replyTo"`
	Exception *Exception `json:"exception,omitempty"`
}

// validate the frame against the envelope schema.
func (JSONCodec) validate(frame []byte) error {
	result, err := envelopeSchema.Validate(gojsonschema.NewBytesLoader(frame))
	if err != nil {
		return err
	}

	if !result.Valid() {
		var descs []string
		for _, desc := range result.Errors() {
			descs = append(descs, fmt.Sprintf("%s: %s", desc.Field(), desc.Description()))
		}
		return fmt.Errorf("schema validation failed: %s", strings.Join(descs, "; "))
	}

	return nil
}

func (c JSONCodec) Decode(frame []byte) (Envelope, error) {
	if err := c.validate(frame); err != nil {
		return nil, &DecodeError{Err: err}
	}

	var raw rawEnvelope
	if err := json.Unmarshal(frame, &raw); err != nil {
		return nil, &DecodeError{Err: err}
	}

	switch raw.Type {
	case KindReply:
		var data replyData
		if err := json.Unmarshal(raw.Data, &data); err != nil {
			return nil, &DecodeError{Kind: raw.Type, Err: err}
		}
		return Reply{Call: raw.Call, ReplyTo: data.ReplyTo, Exception: data.Exception}, nil

	case KindTime:
		env := Time{Call: raw.Call, Seq: raw.Seq}
		if err := json.Unmarshal(raw.Data, &env.Data); err != nil {
			return nil, &DecodeError{Kind: raw.Type, Err: err}
		}
		return env, nil

	case KindPackets:
		env := Packets{Call: raw.Call, Seq: raw.Seq}
		if err := json.Unmarshal(raw.Data, &env.Data); err != nil {
			return nil, &DecodeError{Kind: raw.Type, Err: err}
		}
		return env, nil

	case KindParameters:
		env := Parameters{Call: raw.Call, Seq: raw.Seq}
		if err := json.Unmarshal(raw.Data, &env.Data); err != nil {
			return nil, &DecodeError{Kind: raw.Type, Err: err}
		}
		return env, nil

	default:
		if !raw.Type.IsSubscription() {
			return nil, &DecodeError{Kind: raw.Type, Err: fmt.Errorf("unknown message type")}
		}
		return Generic{Kind: raw.Type, Call: raw.Call, Seq: raw.Seq, Data: raw.Data}, nil
	}
}

func (JSONCodec) Encode(req Request) ([]byte, error) {
	if sub, ok := req.(Subscribe); ok && sub.Options == nil {
		return nil, fmt.Errorf("subscribe request %d has no options", sub.ID)
	}

	return json.Marshal(req)
}
