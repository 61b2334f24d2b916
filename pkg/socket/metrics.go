// SPDX-FileCopyrightText: 2026 Alvar Penning
//
// SPDX-License-Identifier: GPL-3.0-or-later

package socket

import (
	"github.com/hashicorp/go-multierror"
	"github.com/prometheus/client_golang/prometheus"
)

// Reasons for dropped frames, used as label values.
const (
	dropStaleReply = "stale_reply"
	dropUnroutable = "unroutable"
	dropDecode     = "decode_error"
)

// Metrics of a Socket. A nil *Metrics is valid and records nothing.
type Metrics struct {
	FramesReceived *prometheus.CounterVec
	FramesDropped  *prometheus.CounterVec
	FramesSent     *prometheus.CounterVec
	Subscriptions  *prometheus.GaugeVec
}

// NewMetrics creates unregistered Metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		FramesReceived: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "yamcs",
				Subsystem: "socket",
				Name:      "frames_received_total",
				Help:      "Total number of decoded frames received, by message type",
			},
			[]string{"type"},
		),

		FramesDropped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "yamcs",
				Subsystem: "socket",
				Name:      "frames_dropped_total",
				Help:      "Total number of received frames which were not delivered, by reason",
			},
			[]string{"reason"},
		),

		FramesSent: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "yamcs",
				Subsystem: "socket",
				Name:      "frames_sent_total",
				Help:      "Total number of frames sent, by message type",
			},
			[]string{"type"},
		),

		Subscriptions: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "yamcs",
				Subsystem: "socket",
				Name:      "subscriptions",
				Help:      "Current number of subscriptions (state=pending|active)",
			},
			[]string{"state"},
		),
	}
}

// Register all collectors. Each failed registration is reported.
func (m *Metrics) Register(reg prometheus.Registerer) (errs error) {
	for _, c := range []prometheus.Collector{m.FramesReceived, m.FramesDropped, m.FramesSent, m.Subscriptions} {
		if err := reg.Register(c); err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	return
}

func (m *Metrics) received(kind string) {
	if m != nil {
		m.FramesReceived.WithLabelValues(kind).Inc()
	}
}

func (m *Metrics) dropped(reason string) {
	if m != nil {
		m.FramesDropped.WithLabelValues(reason).Inc()
	}
}

func (m *Metrics) sent(kind string) {
	if m != nil {
		m.FramesSent.WithLabelValues(kind).Inc()
	}
}

func (m *Metrics) subscriptions(pending, active int) {
	if m != nil {
		m.Subscriptions.WithLabelValues("pending").Set(float64(pending))
		m.Subscriptions.WithLabelValues("active").Set(float64(active))
	}
}
