// SPDX-FileCopyrightText: 2026 Alvar Penning
//
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dtn7/yamcs-go/pkg/socket"
)

// stateResponse is served by /state.
type stateResponse struct {
	Socket        string         `json:"socket"`
	Subscriptions []string       `json:"subscriptions"`
	Entries       []socket.Entry `json:"entries"`
}

// statusHandler serves the local subscription state, forwards state requests to the server and exposes metrics.
type statusHandler struct {
	router *mux.Router
	socket *socket.Socket
	tail   *tail
}

func newStatusHandler(s *socket.Socket, t *tail, gatherer prometheus.Gatherer) *statusHandler {
	sh := &statusHandler{
		router: mux.NewRouter(),
		socket: s,
		tail:   t,
	}

	sh.router.HandleFunc("/state", sh.handleState).Methods(http.MethodGet)
	sh.router.HandleFunc("/state/server", sh.handleServerState).Methods(http.MethodPost)
	sh.router.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	return sh
}

func (sh *statusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sh.router.ServeHTTP(w, r)
}

// handleState processes /state GET requests.
func (sh *statusHandler) handleState(w http.ResponseWriter, _ *http.Request) {
	names := sh.tail.names()
	sort.Strings(names)

	resp := stateResponse{
		Socket:        sh.socket.ID(),
		Subscriptions: names,
		Entries:       sh.socket.Snapshot(),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.WithError(err).Warn("Failed to write state response")
	}
}

// handleServerState processes /state/server POST requests. The server's dump is only visible on its side.
func (sh *statusHandler) handleServerState(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := sh.socket.RequestState(ctx); err != nil {
		log.WithError(err).Warn("Requesting server state errored")
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	w.WriteHeader(http.StatusAccepted)
}
