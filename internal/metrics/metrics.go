// Package metrics defines Prometheus metrics for commands, sweeps and relay delivery.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	CommandsHandled = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ice_commands_total",
		Help: "Total number of inbound commands grouped by tag and outcome",
	}, []string{"tag", "outcome"})
	Sweeps = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ice_sweeps_total",
		Help: "Total number of delivery sweeps run",
	})
	Deliveries = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ice_deliveries_total",
		Help: "Total number of ICE records delivered and disabled",
	})
	InvalidDates = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ice_sweep_invalid_dates_total",
		Help: "Total number of enabled records skipped by a sweep because of an unparseable date",
	})
	RelaySent = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ice_relay_sent_total",
		Help: "Total number of relay payloads sent grouped by channel",
	}, []string{"channel"})
	RelayFailed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ice_relay_failed_total",
		Help: "Total number of relay payloads that could not be sent grouped by channel",
	}, []string{"channel"})
)

func init() {
	prometheus.MustRegister(
		CommandsHandled,
		Sweeps,
		Deliveries,
		InvalidDates,
		RelaySent,
		RelayFailed,
	)
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
