package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Ledger metrics
	OptionTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "deltaoption_option_transitions_total",
			Help: "Total number of option lifecycle transitions",
		},
		[]string{"symbol", "action", "status"}, // action: write|buy|cancel|exercise|reclaim; status: success|error
	)

	EscrowLocked = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "deltaoption_escrow_locked",
			Help: "Collateral currently held by the escrow pool, in whole units",
		},
	)

	ExpiredUnreclaimed = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "deltaoption_expired_unreclaimed_options",
			Help: "Expired options whose collateral has not been reclaimed",
		},
	)

	// Oracle metrics
	OraclePrice = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "deltaoption_oracle_price",
			Help: "Last observed oracle price per symbol",
		},
		[]string{"symbol"},
	)

	OracleRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "deltaoption_oracle_requests_total",
			Help: "Total number of oracle price requests",
		},
		[]string{"symbol", "status"}, // status: success|error|cache_hit
	)

	// Worker metrics
	WorkerExecutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "deltaoption_worker_executions_total",
			Help: "Total number of worker executions",
		},
		[]string{"worker", "status"}, // status: success|error
	)

	WorkerDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "deltaoption_worker_duration_seconds",
			Help:    "Worker execution duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"worker"},
	)

	// API metrics
	APIRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "deltaoption_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"route", "code"},
	)
)

func init() {
	prometheus.MustRegister(
		OptionTransitions,
		EscrowLocked,
		ExpiredUnreclaimed,
		OraclePrice,
		OracleRequests,
		WorkerExecutions,
		WorkerDuration,
		APIRequests,
	)
}

// Handler returns the Prometheus metrics HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}
