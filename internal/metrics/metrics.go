package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	CallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dialer_calls_total",
			Help: "Call attempts by final status",
		},
		[]string{"status"}, // completed-initiated | failed
	)

	CommandsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dialer_commands_total",
			Help: "Interpreted free-text commands by resolver and action",
		},
		[]string{"resolver", "action"},
	)

	LogWriteFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "dialer_log_write_failures_total",
			Help: "Call log appends that could not be persisted",
		},
	)
)

func MustRegister(r prometheus.Registerer) {
	r.MustRegister(
		CallsTotal,
		CommandsTotal,
		LogWriteFailures,
	)
}
