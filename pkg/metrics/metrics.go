// Package metrics exports Prometheus counters for a node.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	Events = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ordering_events_total",
		Help: "Events recorded in the process history, by kind",
	}, []string{"kind"})

	Retained = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ordering_history_retained",
		Help: "Events currently held in the process history",
	})

	Collected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ordering_gc_collected_total",
		Help: "Events discarded by garbage collection",
	})

	Snapshots = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ordering_snapshots_started_total",
		Help: "Snapshots initiated by this node",
	})

	ChannelErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ordering_channel_errors_total",
		Help: "Failed sends and receives, by operation",
	}, []string{"op"})
)

const (
	Exec = "exec"
	Send = "send"
	Recv = "recv"
)

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
