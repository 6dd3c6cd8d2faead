// Package metrics exposes simulator counters on a private Prometheus
// registry. A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	solves         *prometheus.CounterVec
	solveFailures  *prometheus.CounterVec
	timeSteps      prometheus.Counter
	newtonIters    prometheus.Histogram
	nonConvergence prometheus.Counter
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		solves: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jjspice_solves_total",
				Help: "Total number of linear solves",
			},
			[]string{"analysis"},
		),
		solveFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jjspice_solve_failures_total",
				Help: "Linear solves that failed, e.g. singular matrix",
			},
			[]string{"analysis"},
		),
		timeSteps: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "jjspice_time_steps_total",
			Help: "Accepted transient time steps",
		}),
		newtonIters: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "jjspice_newton_iterations",
			Help:    "Newton-Raphson iterations per time step",
			Buckets: []float64{1, 2, 3, 5, 10, 20, 50, 100},
		}),
		nonConvergence: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "jjspice_newton_nonconverged_total",
			Help: "Time steps whose Newton loop hit the iteration limit",
		}),
	}

	m.registry.MustRegister(m.solves, m.solveFailures, m.timeSteps, m.newtonIters, m.nonConvergence)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.HandlerFor(prometheus.NewRegistry(), promhttp.HandlerOpts{})
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveSolve(analysis string, err error) {
	if m == nil {
		return
	}
	m.solves.WithLabelValues(analysis).Inc()
	if err != nil {
		m.solveFailures.WithLabelValues(analysis).Inc()
	}
}

func (m *Metrics) ObserveStep() {
	if m == nil {
		return
	}
	m.timeSteps.Inc()
}

func (m *Metrics) ObserveNewton(iterations int, converged bool) {
	if m == nil {
		return
	}
	m.newtonIters.Observe(float64(iterations))
	if !converged {
		m.nonConvergence.Inc()
	}
}
