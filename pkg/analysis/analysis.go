package analysis

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/edp1096/jj-spice/internal/consts"
	"github.com/edp1096/jj-spice/internal/logging"
	"github.com/edp1096/jj-spice/pkg/circuit"
	"github.com/edp1096/jj-spice/pkg/metrics"
	"github.com/edp1096/jj-spice/pkg/util"
)

type Analysis interface {
	Setup(ckt *circuit.Circuit) error
	Execute() error
	GetResults() map[string][]float64
}

var (
	ErrCircuitNotSet   = errors.New("circuit not set")
	ErrNoJunction      = errors.New("circuit has no Josephson junction")
	ErrInvalidTimeStep = errors.New("time step must be positive")
	ErrSweepTooLarge   = errors.New("sweep has too many points")
	ErrNeedsNewton     = errors.New("circuit has Josephson junctions, use JosephsonTransient")
)

// SimulationError tags a failure inside a time loop with where it happened.
type SimulationError struct {
	Step int
	Time float64
	Err  error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d at t=%s: %v", e.Step, util.FormatValueFactor(e.Time, "s"), e.Err)
}

func (e *SimulationError) Unwrap() error {
	return e.Err
}

type Option func(*BaseAnalysis)

func WithLogger(logger *slog.Logger) Option {
	return func(a *BaseAnalysis) {
		if logger != nil {
			a.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(a *BaseAnalysis) {
		a.metrics = m
	}
}

// WithMaxIterations bounds the Newton loop. Zero is allowed and makes every
// step report non-convergence.
func WithMaxIterations(n int) Option {
	return func(a *BaseAnalysis) {
		if n >= 0 {
			a.convergence.maxIter = n
		}
	}
}

func WithTolerance(tol float64) Option {
	return func(a *BaseAnalysis) {
		if tol > 0 {
			a.convergence.tolerance = tol
		}
	}
}

type BaseAnalysis struct {
	Circuit     *circuit.Circuit
	results     map[string][]float64 // key: variable name, value: result by time
	logger      *slog.Logger
	metrics     *metrics.Metrics
	convergence struct {
		maxIter   int
		tolerance float64 // on the L1 norm of successive solutions
	}
}

func NewBaseAnalysis(opts ...Option) *BaseAnalysis {
	ba := &BaseAnalysis{
		results: make(map[string][]float64),
		logger:  logging.NewNop(),
	}

	ba.convergence.maxIter = consts.DEFAULT_MAX_ITERATIONS
	ba.convergence.tolerance = consts.DEFAULT_TOLERANCE

	for _, opt := range opts {
		opt(ba)
	}
	return ba
}

// l1Distance is the sum of absolute differences. Vectors of different
// length are never close.
func l1Distance(oldSol, newSol []float64) float64 {
	if len(oldSol) != len(newSol) {
		return math.Inf(1)
	}

	sum := 0.0
	for i := range oldSol {
		sum += math.Abs(newSol[i] - oldSol[i])
	}
	return sum
}

func (a *BaseAnalysis) CheckConvergence(oldSol, newSol []float64) bool {
	return l1Distance(oldSol, newSol) <= a.convergence.tolerance
}

func (a *BaseAnalysis) StoreTimeResult(time float64, solution map[string]float64) {
	// Ignore same time
	if times := a.results["TIME"]; len(times) > 0 && times[len(times)-1] == time {
		return
	}

	a.results["TIME"] = append(a.results["TIME"], time)
	for name, value := range solution {
		a.results[name] = append(a.results[name], value)
	}
}

func (a *BaseAnalysis) clearResults() {
	a.results = make(map[string][]float64)
}

func (a *BaseAnalysis) GetResults() map[string][]float64 {
	return a.results
}

func (a *BaseAnalysis) Logger() *slog.Logger {
	return a.logger
}
