// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder holds the journal's prometheus collectors on a private registry
type Recorder struct {
	registry       *prometheus.Registry
	degraded       *prometheus.CounterVec
	entriesSaved   prometheus.Counter
	exports        *prometheus.CounterVec
	remindersFired prometheus.Counter
}

// New creates a recorder with its own registry
func New() *Recorder {
	registry := prometheus.NewRegistry()

	r := &Recorder{
		registry: registry,
		degraded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "moodlog_store_degraded_total",
				Help: "Store reads or writes that fell back to a default value",
			},
			[]string{"op", "kind"},
		),
		entriesSaved: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "moodlog_entries_saved_total",
			Help: "Journal entries written",
		}),
		exports: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "moodlog_exports_total",
				Help: "Exports produced by format",
			},
			[]string{"format"},
		),
		remindersFired: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "moodlog_reminders_fired_total",
			Help: "Reminder notifications dispatched",
		}),
	}

	registry.MustRegister(r.degraded, r.entriesSaved, r.exports, r.remindersFired)
	return r
}

// Degraded counts a fallback-to-default at the store boundary.
// A nil recorder is a no-op so callers never need to guard.
func (r *Recorder) Degraded(op, kind string) {
	if r == nil {
		return
	}
	r.degraded.WithLabelValues(op, kind).Inc()
}

// EntrySaved counts a successful entry write
func (r *Recorder) EntrySaved() {
	if r == nil {
		return
	}
	r.entriesSaved.Inc()
}

// Exported counts a produced export
func (r *Recorder) Exported(format string) {
	if r == nil {
		return
	}
	r.exports.WithLabelValues(format).Inc()
}

// ReminderFired counts a dispatched reminder
func (r *Recorder) ReminderFired() {
	if r == nil {
		return
	}
	r.remindersFired.Inc()
}

// Registry exposes the underlying registry (used by tests and the handler)
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler returns an http.Handler serving the registry in exposition format
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
