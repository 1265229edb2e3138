// Package metrics holds the prometheus collectors for the chat coordinator
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "chat"

var (
	// Connections is the number of live connections
	Connections = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "connections",
		Help:      "Number of live connections.",
	})

	// Events counts inbound events processed, by event name
	Events = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_total",
		Help:      "Inbound events processed, by event name.",
	}, []string{"event"})

	// Registrations counts registration attempts, by result
	Registrations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Username registration attempts, by result.",
	}, []string{"result"})

	// Broadcasts counts outbound deliveries, by event name
	Broadcasts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "deliveries_total",
		Help:      "Events queued for delivery to a client, by event name.",
	}, []string{"event"})

	// Dropped counts deliveries dropped because a client could not keep up
	Dropped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "dropped_total",
		Help:      "Deliveries dropped because the client send buffer was full.",
	})
)

// Handler serves the collectors in the prometheus exposition format
func Handler() http.Handler {
	return promhttp.Handler()
}
