package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "wasteops"

// Metrics implements service.Observer on top of prometheus collectors.
type Metrics struct {
	created       *prometheus.CounterVec
	accepted      prometheus.Counter
	completed     prometheus.Counter
	completedKg   prometheus.Counter
	logins        *prometheus.CounterVec
	registrations *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
}

func New(registerer prometheus.Registerer) *Metrics {
	m := &Metrics{
		created: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "collections_created_total",
			Help:      "Collections requested by clients.",
		}, []string{"waste_type"}),
		accepted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "collections_accepted_total",
			Help:      "Collections accepted by a company.",
		}),
		completed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "collections_completed_total",
			Help:      "Collections marked completed.",
		}),
		completedKg: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "collected_kilograms_total",
			Help:      "Kilograms of waste in completed collections.",
		}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "login_attempts_total",
			Help:      "Login attempts by outcome.",
		}, []string{"success"}),
		registrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "users_registered_total",
			Help:      "Users registered by role.",
		}, []string{"role"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
	registerer.MustRegister(
		m.created,
		m.accepted,
		m.completed,
		m.completedKg,
		m.logins,
		m.registrations,
		m.httpDuration,
	)
	return m
}

func (m *Metrics) CollectionCreated(wasteType string) {
	m.created.WithLabelValues(wasteType).Inc()
}

func (m *Metrics) CollectionAccepted() {
	m.accepted.Inc()
}

func (m *Metrics) CollectionCompleted(quantityKg int) {
	m.completed.Inc()
	if quantityKg > 0 {
		m.completedKg.Add(float64(quantityKg))
	}
}

func (m *Metrics) LoginAttempt(success bool) {
	m.logins.WithLabelValues(strconv.FormatBool(success)).Inc()
}

func (m *Metrics) UserRegistered(role string) {
	m.registrations.WithLabelValues(role).Inc()
}

func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	m.httpDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}
