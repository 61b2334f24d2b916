// SPDX-FileCopyrightText: 2026 Alvar Penning
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package parameters resolves the numeric ids of a parameter subscription to parameter names.
//
// A Yamcs parameter subscription identifies its values by numeric ids. From time to time, the server sends a mapping
// from these ids to the subscribed names. The Mapper keeps the latest mapping and translates all following values.
package parameters

import (
	"github.com/dtn7/yamcs-go/pkg/message"
)

// Batch of parameter values, keyed by the qualified parameter name, see message.NamedObjectID.String.
type Batch map[string]message.ParameterValue

// Mapper folds mapping updates into value batches. It is not safe for concurrent use.
type Mapper struct {
	mapping map[uint32]message.NamedObjectID
}

// NewMapper creates a Mapper without any mapping.
func NewMapper() *Mapper {
	return &Mapper{}
}

// Fold one update. An update carrying a mapping replaces the current mapping and yields nothing. Values are only
// translated if a mapping is already known; values of ids missing in the mapping are left out. The bool indicates
// whether a Batch was produced.
func (m *Mapper) Fold(data message.ParameterData) (Batch, bool) {
	if data.Mapping != nil {
		m.mapping = data.Mapping
		return nil, false
	}

	if data.Values == nil || m.mapping == nil {
		return nil, false
	}

	batch := make(Batch, len(data.Values))
	for _, value := range data.Values {
		if id, ok := m.mapping[value.NumericID]; ok {
			batch[id.String()] = value
		}
	}
	return batch, true
}

// Mapping returns the current mapping, or nil if no mapping was received yet.
func (m *Mapper) Mapping() map[uint32]message.NamedObjectID {
	return m.mapping
}
