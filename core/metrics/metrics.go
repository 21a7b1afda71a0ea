// Package metrics exposes Prometheus collectors shared by the bot runtime.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "royaldns"

var (
	// Registry holds every collector of this package. It is separate from the
	// global default registry so tests can gather it in isolation.
	Registry = prometheus.NewRegistry()

	handlerTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "handler_total",
			Help:      "Handled Telegram updates by handler and outcome.",
		},
		[]string{"handler", "outcome"},
	)
	handlerDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "handler_duration_seconds",
			Help:      "Time spent handling Telegram updates.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"handler"},
	)
	transitionTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "menu_transition_total",
			Help:      "Menu transitions by route and result kind.",
		},
		[]string{"route", "kind"},
	)
	routingReloadTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "routing_reload_total",
			Help:      "Routing table reload attempts by status.",
		},
		[]string{"status"},
	)
	sendTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sender_jobs_total",
			Help:      "Outbound Telegram jobs by action and status.",
		},
		[]string{"action", "status"},
	)
	sendQueue = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sender_queue_depth",
			Help:      "Jobs waiting in the outbound queue.",
		},
	)
	visitTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "visit_record_total",
			Help:      "Visit recording attempts by status.",
		},
		[]string{"status"},
	)
)

func init() {
	Registry.MustRegister(
		handlerTotal,
		handlerDuration,
		transitionTotal,
		routingReloadTotal,
		sendTotal,
		sendQueue,
		visitTotal,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
}

// ObserveHandler records one handled update.
func ObserveHandler(handler, outcome string, took time.Duration) {
	handlerTotal.WithLabelValues(handler, outcome).Inc()
	handlerDuration.WithLabelValues(handler).Observe(took.Seconds())
}

// ObserveTransition records one menu transition.
func ObserveTransition(route, kind string) {
	if route == "" {
		route = "none"
	}
	transitionTotal.WithLabelValues(route, kind).Inc()
}

// ObserveRoutingReload records a routing table reload with status ok or error.
func ObserveRoutingReload(status string) {
	routingReloadTotal.WithLabelValues(status).Inc()
}

// ObserveSend records a finished outbound job with status ok, error or dropped.
func ObserveSend(action, status string) {
	sendTotal.WithLabelValues(action, status).Inc()
}

// SetSendQueue reports the outbound queue depth.
func SetSendQueue(depth int) {
	sendQueue.Set(float64(depth))
}

// ObserveVisit records a visit write with status ok or error.
func ObserveVisit(status string) {
	visitTotal.WithLabelValues(status).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{Registry: Registry})
}
