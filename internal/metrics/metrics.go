// Package metrics registers the Prometheus series the scheduled worker
// core exports, adapted from the teacher's scheduler-namespace metrics
// (job pickup latency, jobs in flight, jobs completed) onto this
// domain's tick/attempt/lock vocabulary.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Worker Loop metrics

	TickDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "ytprem",
		Name:      "tick_duration_seconds",
		Help:      "Time taken for one Worker Loop tick (config reload through last row commit).",
		Buckets:   []float64{.5, 1, 2.5, 5, 10, 30, 60, 120, 300, 600},
	})

	RowsPartitionedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ytprem",
		Name:      "rows_partitioned_total",
		Help:      "Rows placed on a queue by the Task Filter, by queue.",
	}, []string{"queue"})

	JobsInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "ytprem",
		Name:      "attempts_in_flight",
		Help:      "Number of Subscription Workflow attempts currently executing.",
	})

	JobsCompletedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ytprem",
		Name:      "attempts_completed_total",
		Help:      "Total workflow attempts finished, by outcome (success or failure reason).",
	}, []string{"outcome"})

	// Row Lock Manager metrics

	LockClaimsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ytprem",
		Name:      "lock_claims_total",
		Help:      "Row lock claim attempts, by result.",
	}, []string{"result"})

	// Auth Driver metrics

	AuthAttemptDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "ytprem",
		Name:      "auth_attempt_duration_seconds",
		Help:      "Wall-clock time spent in the Auth Driver's classify-dispatch loop per attempt.",
		Buckets:   []float64{1, 5, 10, 30, 60, 90, 120, 180},
	})

	CaptchaEncountersTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "ytprem",
		Name:      "captcha_encounters_total",
		Help:      "Total attempts that hit an image CAPTCHA or reCAPTCHA page and aborted without solving.",
	})

	// Result Writer / payment-retry metrics

	PaymentPendingTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "ytprem",
		Name:      "payment_pending_total",
		Help:      "Total pause attempts that resulted in a payment-pending reschedule.",
	})

	PaymentDelayExceededTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "ytprem",
		Name:      "payment_delay_exceeded_total",
		Help:      "Total rows given up on after the payment-retry cap elapsed.",
	})

	// Worker lifecycle

	WorkerStartTime = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "ytprem",
		Name:      "worker_start_time_seconds",
		Help:      "Unix timestamp when the worker process started.",
	})

	WorkerShutdownsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "ytprem",
		Name:      "worker_shutdowns_total",
		Help:      "Number of times the worker process has shut down cleanly.",
	})

	// Admin HTTP metrics

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "ytprem",
		Name:      "http_request_duration_seconds",
		Help:      "Admin HTTP request latency.",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ytprem",
		Name:      "http_requests_total",
		Help:      "Total admin HTTP requests.",
	}, []string{"method", "path", "status"})
)

func Register() {
	prometheus.MustRegister(
		TickDuration,
		RowsPartitionedTotal,
		JobsInFlight,
		JobsCompletedTotal,
		LockClaimsTotal,
		AuthAttemptDuration,
		CaptchaEncountersTotal,
		PaymentPendingTotal,
		PaymentDelayExceededTotal,
		WorkerStartTime,
		WorkerShutdownsTotal,
		HTTPRequestDuration,
		HTTPRequestsTotal,
	)
}

func NewServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return &http.Server{Addr: addr, Handler: mux}
}
