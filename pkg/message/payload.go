// SPDX-FileCopyrightText: 2026 Alvar Penning
//
// SPDX-License-Identifier: GPL-3.0-or-later

package message

import (
	"encoding/json"
	"fmt"
	"time"
)

// NamedObjectID identifies a Yamcs object, e.g., a parameter, by its name within an optional namespace.
type NamedObjectID struct {
	Name      string `json:"name"`
	Namespace string `json:"namespace,omitempty"`
}

func (id NamedObjectID) String() string {
	if id.Namespace == "" {
		return id.Name
	}
	return fmt.Sprintf("%s/%s", id.Namespace, id.Name)
}

// TimeInfo is the payload of a time subscription.
type TimeInfo struct {
	Value time.Time `json:"value"`
}

// TmPacketData is the payload of a packets subscription.
type TmPacketData struct {
	Packet             []byte        `json:"packet"`
	SequenceNumber     int32         `json:"sequenceNumber"`
	ID                 NamedObjectID `json:"id"`
	GenerationTime     time.Time     `json:"generationTime"`
	ReceptionTime      time.Time     `json:"receptionTime"`
	EarthReceptionTime time.Time     `json:"earthReceptionTime"`
	Link               string        `json:"link,omitempty"`
	Size               int32         `json:"size,omitempty"`
}

// ParameterData is the payload of a parameters subscription.
//
// The server identifies parameters by a numeric id, valid only within one subscription. An update might carry a
// Mapping from those ids to the requested NamedObjectIDs, Values keyed by the numeric id, or both.
type ParameterData struct {
	Mapping map[uint32]NamedObjectID `json:"mapping,omitempty"`
	Values  []ParameterValue         `json:"values,omitempty"`
}

// ParameterValue is a single parameter sample.
type ParameterValue struct {
	NumericID uint32 `json:"numericId"`

	RawValue *Value `json:"rawValue,omitempty"`
	EngValue *Value `json:"engValue,omitempty"`

	AcquisitionTime time.Time `json:"acquisitionTime"`
	GenerationTime  time.Time `json:"generationTime"`

	AcquisitionStatus string `json:"acquisitionStatus,omitempty"`
	MonitoringResult  string `json:"monitoringResult,omitempty"`
	ExpireMillis      int64  `json:"expireMillis,omitempty"`
}

// Value is a Yamcs value. Only the field matching the Type is set.
//
// 64 bit integers are encoded as JSON strings by the server, thus json.Number is used for them.
type Value struct {
	Type string `json:"type"`

	FloatValue     float32     `json:"floatValue,omitempty"`
	DoubleValue    float64     `json:"doubleValue,omitempty"`
	Sint32Value    int32       `json:"sint32Value,omitempty"`
	Uint32Value    uint32      `json:"uint32Value,omitempty"`
	Sint64Value    json.Number `json:"sint64Value,omitempty"`
	Uint64Value    json.Number `json:"uint64Value,omitempty"`
	BooleanValue   bool        `json:"booleanValue,omitempty"`
	StringValue    string      `json:"stringValue,omitempty"`
	BinaryValue    []byte      `json:"binaryValue,omitempty"`
	TimestampValue json.Number `json:"timestampValue,omitempty"`
}

// Interface returns the Value's content for its Type. Unknown types result in nil.
func (v Value) Interface() interface{} {
	switch v.Type {
	case "FLOAT":
		return v.FloatValue
	case "DOUBLE":
		return v.DoubleValue
	case "SINT32":
		return v.Sint32Value
	case "UINT32":
		return v.Uint32Value
	case "SINT64":
		return v.Sint64Value
	case "UINT64":
		return v.Uint64Value
	case "BOOLEAN":
		return v.BooleanValue
	case "STRING", "ENUMERATED":
		return v.StringValue
	case "BINARY":
		return v.BinaryValue
	case "TIMESTAMP":
		return v.TimestampValue
	default:
		return nil
	}
}

func (v Value) String() string {
	return fmt.Sprintf("%v", v.Interface())
}

// Exception is attached to a Reply if the server refused a request.
type Exception struct {
	Code int    `json:"code"`
	Type string `json:"type"`
	Msg  string `json:"msg"`
}

func (e Exception) Error() string {
	return fmt.Sprintf("%s (%d): %s", e.Type, e.Code, e.Msg)
}
