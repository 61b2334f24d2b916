// SPDX-FileCopyrightText: 2026 Alvar Penning
//
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"github.com/fsnotify/fsnotify"
)

// configWatcher reloads the subscriptions of a tail when its configuration file changes.
type configWatcher struct {
	filename string
	tail     *tail
	watcher  *fsnotify.Watcher

	reloaded chan struct{}
	closeSyn chan struct{}
	closeAck chan struct{}
}

// newConfigWatcher watches the configuration file's directory, as editors tend to replace files instead of writing
// them in place.
func newConfigWatcher(filename string, t *tail) (cw *configWatcher, err error) {
	if filename, err = filepath.Abs(filename); err != nil {
		return
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return
	}
	if err = watcher.Add(filepath.Dir(filename)); err != nil {
		_ = watcher.Close()
		return
	}

	cw = &configWatcher{
		filename: filename,
		tail:     t,
		watcher:  watcher,

		reloaded: make(chan struct{}, 1),
		closeSyn: make(chan struct{}),
		closeAck: make(chan struct{}),
	}

	go cw.handler()

	return
}

func (cw *configWatcher) handler() {
	defer close(cw.closeAck)

	logger := log.WithField("file", cw.filename)

	for {
		select {
		case <-cw.closeSyn:
			return

		case e, ok := <-cw.watcher.Events:
			if !ok {
				logger.Error("fsnotify's Event channel was closed")
				return
			}

			if filepath.Clean(e.Name) != cw.filename {
				continue
			}

			if e.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				logger.WithField("operation", e.Op.String()).Debug("Ignoring fsnotify event")
				continue
			}

			cw.reload()

		case err, ok := <-cw.watcher.Errors:
			if !ok {
				logger.Error("fsnotify's Errors channel was closed")
				return
			}

			logger.WithError(err).Warn("fsnotify errored")
		}
	}
}

// reload the configuration and apply its subscriptions. An invalid configuration is ignored.
func (cw *configWatcher) reload() {
	logger := log.WithField("file", cw.filename)

	conf, err := parseConfig(cw.filename)
	if err != nil {
		logger.WithError(err).Warn("Reloading configuration errored, keeping the current subscriptions")
		return
	}

	cw.tail.apply(conf.Subscription)
	logger.WithField("subscriptions", len(conf.Subscription)).Info("Reloaded configuration")

	select {
	case cw.reloaded <- struct{}{}:
	default:
	}
}

// Close the watcher.
func (cw *configWatcher) Close() error {
	close(cw.closeSyn)
	<-cw.closeAck
	return cw.watcher.Close()
}
