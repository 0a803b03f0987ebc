package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "ubertool"

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status code.",
		},
		[]string{"route", "method", "code"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)

	bookingTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_transitions_total",
			Help:      "Committed booking status changes.",
		},
		[]string{"from", "to"},
	)

	bookingConflicts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_conflicts_total",
			Help:      "Booking attempts refused because of overlapping dates, by the guard that caught them.",
		},
		[]string{"guard"},
	)

	cancellationFees = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cancellation_fees_cents_total",
			Help:      "Sum of cancellation fees charged, in cents.",
		},
	)

	refunds = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refunds_total",
			Help:      "Refund attempts by outcome.",
		},
		[]string{"result"},
	)

	notificationDeliveries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notification_deliveries_total",
			Help:      "Notification delivery attempts by channel and outcome.",
		},
		[]string{"channel", "status"},
	)

	jobRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "job_runs_total",
			Help:      "Scheduled job executions by outcome.",
		},
		[]string{"job", "result"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, httpDuration, bookingTransitions, bookingConflicts,
			cancellationFees, refunds, notificationDeliveries, jobRuns)
	})
}

func ObserveHTTP(route, method string, code int, elapsed time.Duration) {
	httpRequests.WithLabelValues(route, method, strconv.Itoa(code)).Inc()
	httpDuration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

func IncTransition(from, to string) {
	bookingTransitions.WithLabelValues(from, to).Inc()
}

// IncConflict records a refused booking. guard is "precheck" or "constraint".
func IncConflict(guard string) {
	bookingConflicts.WithLabelValues(guard).Inc()
}

func AddCancellationFee(cents int32) {
	if cents > 0 {
		cancellationFees.Add(float64(cents))
	}
}

// IncRefund records a refund attempt. result is "succeeded", "failed" or "unrecorded" when the
// processor accepted it but the booking could not be updated.
func IncRefund(result string) {
	refunds.WithLabelValues(result).Inc()
}

func IncDelivery(channel, status string) {
	notificationDeliveries.WithLabelValues(channel, status).Inc()
}

func IncJobRun(job string, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	jobRuns.WithLabelValues(job, result).Inc()
}
