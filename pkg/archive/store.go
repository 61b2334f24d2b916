// SPDX-FileCopyrightText: 2026 Alvar Penning
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package archive stores received subscription payloads on disk.
package archive

import (
	"encoding/json"
	"os"
	"path"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/google/uuid"
	"github.com/timshannon/badgerhold"

	"github.com/dtn7/yamcs-go/pkg/message"
)

const dirBadger string = "db"

// Sample is one archived payload.
type Sample struct {
	Id string `badgerhold:"key"`

	Kind         message.Kind `badgerholdIndex:"Kind"`
	Subscription string
	Received     time.Time `badgerholdIndex:"Received"`

	// Payload is the JSON encoded payload, e.g., a message.TimeInfo.
	Payload []byte
}

// Decode the Payload into v.
func (s Sample) Decode(v interface{}) error {
	return json.Unmarshal(s.Payload, v)
}

// Store is an archive of Samples.
type Store struct {
	bh *badgerhold.Store

	badgerDir string
}

// NewStore creates a new Store or opens an existing Store from the given path.
func NewStore(dir string) (s *Store, err error) {
	badgerDir := path.Join(dir, dirBadger)

	opts := badgerhold.DefaultOptions
	opts.Dir = badgerDir
	opts.ValueDir = badgerDir
	opts.Logger = log.StandardLogger()
	opts.Options.ValueLogFileSize = 1<<28 - 1

	if dirErr := os.MkdirAll(badgerDir, 0700); dirErr != nil {
		err = dirErr
		return
	}

	if bh, bhErr := badgerhold.Open(opts); bhErr != nil {
		err = bhErr
	} else {
		s = &Store{
			bh:        bh,
			badgerDir: badgerDir,
		}
	}
	return
}

// Close the Store. It must not be used afterwards.
func (s *Store) Close() error {
	return s.bh.Close()
}

// Push a received payload of the named subscription to the Store.
func (s *Store) Push(kind message.Kind, subscription string, payload interface{}) (sample Sample, err error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}

	sample = Sample{
		Id:           uuid.NewString(),
		Kind:         kind,
		Subscription: subscription,
		Received:     time.Now(),
		Payload:      data,
	}

	log.WithFields(log.Fields{
		"sample":       sample.Id,
		"kind":         kind,
		"subscription": subscription,
	}).Debug("Store inserts Sample")

	err = s.bh.Insert(sample.Id, sample)
	return
}

// QueryId fetches a single Sample.
func (s *Store) QueryId(id string) (sample Sample, err error) {
	err = s.bh.Get(id, &sample)
	return
}

// QueryKind fetches all Samples of a kind, received at or after since.
func (s *Store) QueryKind(kind message.Kind, since time.Time) (samples []Sample, err error) {
	err = s.bh.Find(&samples, badgerhold.Where("Kind").Eq(kind).And("Received").Ge(since).SortBy("Received"))
	return
}

// DeleteOlderThan removes all Samples received before the given time.
func (s *Store) DeleteOlderThan(t time.Time) {
	var samples []Sample
	if err := s.bh.Find(&samples, badgerhold.Where("Received").Lt(t)); err != nil {
		log.WithError(err).Warn("Failed to get outdated Samples")
		return
	}

	for _, sample := range samples {
		logger := log.WithField("sample", sample.Id)
		if err := s.bh.Delete(sample.Id, Sample{}); err != nil {
			logger.WithError(err).Warn("Failed to delete outdated Sample")
		} else {
			logger.Debug("Deleted outdated Sample")
		}
	}
}

// KnowsSample checks if such a Sample is known.
func (s *Store) KnowsSample(id string) bool {
	_, err := s.QueryId(id)
	return err != badgerhold.ErrNotFound
}
