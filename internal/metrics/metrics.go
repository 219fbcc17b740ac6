// Package metrics holds the Prometheus registry and the instruments
// for the registration engine and its HTTP surface.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "guestlist"

// Registry backs /metrics. All instruments register here, not on the
// prometheus default registry.
var Registry = prometheus.NewRegistry()

// AppInfo carries build metadata as labels on a constant-1 gauge.
var AppInfo = promauto.With(Registry).NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "app_info",
		Help:      "Build metadata carried as labels; the value is always 1.",
	},
	[]string{"version", "commit", "build_date"},
)

// RegistrationsTotal counts register calls by outcome: registered,
// waitlisted, or denied.
var RegistrationsTotal = promauto.With(Registry).NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Register calls by outcome.",
	},
	[]string{"outcome"},
)

var UnregistrationsTotal = promauto.With(Registry).NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "unregistrations_total",
		Help:      "Completed unregistrations.",
	},
)

var PromotionsTotal = promauto.With(Registry).NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "promotions_total",
		Help:      "Waitlist entries promoted to active registrations.",
	},
)

// Init registers the runtime collectors and pins the build info gauge.
func Init(version, commit, buildDate string) {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	AppInfo.WithLabelValues(version, commit, buildDate).Set(1)
}
