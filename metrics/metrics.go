package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service's Prometheus collectors. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	gatherer prometheus.Gatherer

	RequestDuration *prometheus.HistogramVec
	Requests        *prometheus.CounterVec
	Registrations   prometheus.Counter
	TicketsBooked   prometheus.Counter
	Logins          *prometheus.CounterVec
	UsersCreated    prometheus.Counter
}

// New registers all collectors on reg.
func New(reg *prometheus.Registry) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		gatherer: reg,

		RequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "eventx_http_request_duration_seconds",
				Help:    "HTTP request latency by route",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5},
			},
			[]string{"route", "method"},
		),
		Requests: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "eventx_http_requests_total",
				Help: "HTTP requests by route, method and status",
			},
			[]string{"route", "method", "status"},
		),
		Registrations: f.NewCounter(prometheus.CounterOpts{
			Name: "eventx_registrations_total",
			Help: "Event registrations created",
		}),
		TicketsBooked: f.NewCounter(prometheus.CounterOpts{
			Name: "eventx_tickets_booked_total",
			Help: "Tickets booked across all registrations",
		}),
		Logins: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "eventx_logins_total",
				Help: "Login attempts by result",
			},
			[]string{"result"},
		),
		UsersCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "eventx_users_created_total",
			Help: "User accounts created",
		}),
	}
}

// ObserveRequest records one served request.
func (m *Metrics) ObserveRequest(route, method string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.RequestDuration.WithLabelValues(route, method).Observe(d.Seconds())
	m.Requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
}

func (m *Metrics) RegistrationCreated(tickets int) {
	if m == nil {
		return
	}
	m.Registrations.Inc()
	m.TicketsBooked.Add(float64(tickets))
}

func (m *Metrics) LoginAttempt(ok bool) {
	if m == nil {
		return
	}
	result := "failure"
	if ok {
		result = "success"
	}
	m.Logins.WithLabelValues(result).Inc()
}

func (m *Metrics) UserCreated() {
	if m == nil {
		return
	}
	m.UsersCreated.Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
