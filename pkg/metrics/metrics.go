// Package metrics exposes Prometheus counters for the capture and replay
// engines. The engine behaves identically when nothing scrapes them; only
// the schedule daemon serves the endpoint.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	EventsRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "replaykit_events_recorded_total",
		Help: "Total number of input events accepted into recordings.",
	})

	EventsReplayed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "replaykit_events_replayed_total",
		Help: "Total number of synthetic input actions posted during playback.",
	})

	SessionsStarted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "replaykit_sessions_started_total",
		Help: "Total number of sessions started, labelled by mode.",
	}, []string{"mode"})

	PlaybackOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "replaykit_playback_outcomes_total",
		Help: "Total number of finished playback sessions, labelled by outcome.",
	}, []string{"outcome"})

	ScheduledRunsSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "replaykit_scheduled_runs_skipped_total",
		Help: "Total number of cron fires skipped because a session was already active.",
	})
)

// Serve exposes /metrics on addr. It blocks until the server stops.
func Serve(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return server.ListenAndServe()
}
