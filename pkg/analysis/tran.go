package analysis

import (
	"fmt"

	"github.com/edp1096/jj-spice/pkg/circuit"
	"github.com/edp1096/jj-spice/pkg/device"
)

// Transient steps a linear circuit over the fixed grid t = n*dt < stopTime.
type Transient struct {
	BaseAnalysis
	stopTime float64
	timeStep float64
	steps    int
}

func NewTransient(tStop, tStep float64, opts ...Option) *Transient {
	return &Transient{
		BaseAnalysis: *NewBaseAnalysis(opts...),
		stopTime:     tStop,
		timeStep:     tStep,
	}
}

func validateTimeGrid(tStop, tStep float64) error {
	if tStep <= 0 {
		return fmt.Errorf("%w: got %g", ErrInvalidTimeStep, tStep)
	}
	if tStop < 0 {
		return fmt.Errorf("end time must not be negative, got %g", tStop)
	}
	return nil
}

func (tr *Transient) Setup(ckt *circuit.Circuit) error {
	if err := validateTimeGrid(tr.stopTime, tr.timeStep); err != nil {
		return err
	}
	if len(ckt.Junctions()) > 0 {
		return ErrNeedsNewton
	}

	tr.Circuit = ckt
	tr.Circuit.SetTimeStep(tr.timeStep)
	return nil
}

func (tr *Transient) Execute() error {
	ckt := tr.Circuit
	if ckt == nil {
		return ErrCircuitNotSet
	}

	tr.clearResults()
	ckt.ClearResults()
	ckt.ResetHistory()
	tr.steps = 0

	for step := 0; ; step++ {
		t := float64(step) * tr.timeStep
		if t >= tr.stopTime {
			break
		}

		status := &device.CircuitStatus{
			Time:     t,
			TimeStep: tr.timeStep,
			Mode:     device.TransientAnalysis,
		}
		if err := ckt.BuildSystem(status); err != nil {
			return &SimulationError{Step: step, Time: t, Err: err}
		}

		err := ckt.Solve()
		tr.metrics.ObserveSolve("tran", err)
		if err != nil {
			tr.logger.Error("transient solve failed", "step", step, "time", t, "error", err)
			return &SimulationError{Step: step, Time: t, Err: err}
		}

		ckt.StoreResults(t)
		tr.StoreTimeResult(t, ckt.GetSolution())
		ckt.AdvanceHistory()

		tr.metrics.ObserveStep()
		tr.steps++
	}

	tr.logger.Debug("transient finished", "circuit", ckt.Name(), "steps", tr.steps)
	return nil
}

func (tr *Transient) Steps() int {
	return tr.steps
}

// RunTransient runs a fixed step transient and leaves one history entry per
// step in ckt.
func RunTransient(ckt *circuit.Circuit, endTime, dt float64, opts ...Option) error {
	tr := NewTransient(endTime, dt, opts...)
	if err := tr.Setup(ckt); err != nil {
		return err
	}
	return tr.Execute()
}
