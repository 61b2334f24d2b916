// SPDX-FileCopyrightText: 2026 Alvar Penning
//
// SPDX-License-Identifier: GPL-3.0-or-later

// yamcs-tail subscribes to a Yamcs server as configured in a TOML file and logs all received data.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dtn7/yamcs-go/pkg/archive"
	"github.com/dtn7/yamcs-go/pkg/socket"
)

const defaultDialTimeout = 10 * time.Second

// waitSigintOrDone blocks the current thread until a SIGINT appears or the channel is closed.
func waitSigintOrDone(done <-chan struct{}) {
	signalSyn := make(chan os.Signal, 1)
	signal.Notify(signalSyn, os.Interrupt)
	defer signal.Stop(signalSyn)

	select {
	case <-signalSyn:
		log.Info("Received interrupt signal")
	case <-done:
		log.Warn("Connection to the server was lost")
	}
}

// startRetention purges the archive periodically.
func startRetention(store *archive.Store, retention time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(retention / 10)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case now := <-ticker.C:
				store.DeleteOlderThan(now.Add(-retention))
			}
		}
	}()
}

func main() {
	if len(os.Args) != 2 {
		log.Fatalf("Usage: %s configuration.toml", os.Args[0])
	}

	conf, err := parseConfig(os.Args[1])
	if err != nil {
		log.WithFields(log.Fields{
			"error": err,
		}).Fatal("Failed to parse config")
	}

	setupLogging(conf.Logging)

	registry := prometheus.NewRegistry()
	metrics := socket.NewMetrics()
	if err := metrics.Register(registry); err != nil {
		log.WithError(err).Fatal("Failed to register metrics")
	}

	ctx, cancel := context.WithTimeout(context.Background(), duration(conf.Connection.DialTimeout, defaultDialTimeout))
	s, err := socket.Dial(ctx, conf.Connection.Url, append(conf.socketOptions(), socket.WithMetrics(metrics))...)
	cancel()
	if err != nil {
		log.WithError(err).WithField("url", conf.Connection.Url).Fatal("Failed to connect")
	}
	log.WithFields(log.Fields{
		"url":    conf.Connection.Url,
		"socket": s.ID(),
	}).Info("Connected")

	var store *archive.Store
	stopRetention := make(chan struct{})
	if conf.Archive.Dir != "" {
		if store, err = archive.NewStore(conf.Archive.Dir); err != nil {
			log.WithError(err).WithField("dir", conf.Archive.Dir).Fatal("Failed to open archive")
		}
		if retention := duration(conf.Archive.Retention, 0); retention > 0 {
			startRetention(store, retention, stopRetention)
		}
	}

	t := newTail(s, store)
	t.apply(conf.Subscription)

	watcher, err := newConfigWatcher(os.Args[1], t)
	if err != nil {
		log.WithError(err).Warn("Failed to watch configuration, reloading is disabled")
	}

	var httpServer *http.Server
	if conf.Http.Listen != "" {
		httpServer = &http.Server{
			Addr:    conf.Http.Listen,
			Handler: newStatusHandler(s, t, registry),
		}
		go func() {
			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.WithError(err).Error("HTTP status server errored")
			}
		}()
	}

	waitSigintOrDone(s.Done())
	log.Info("Shutting down..")

	if watcher != nil {
		_ = watcher.Close()
	}
	if httpServer != nil {
		_ = httpServer.Close()
	}

	t.stopAll()

	if err := s.Close(); err != nil {
		log.WithError(err).Warn("Closing socket errored")
	}

	close(stopRetention)
	if store != nil {
		if err := store.Close(); err != nil {
			log.WithError(err).Warn("Closing archive errored")
		}
	}
}
