package analysis

import (
	"math"

	"github.com/edp1096/jj-spice/pkg/circuit"
	"github.com/edp1096/jj-spice/pkg/device"
)

// ConvergenceReport lists the time steps whose Newton loop ran out of
// iterations. Those steps still carry the last iterate.
type ConvergenceReport struct {
	Steps           int
	Failures        []float64
	TotalIterations int
}

func (r ConvergenceReport) Converged() bool {
	return len(r.Failures) == 0
}

// JosephsonTransient is the transient analysis for circuits with junctions.
// Every step runs a Newton loop on the junction phases.
type JosephsonTransient struct {
	BaseAnalysis
	stopTime float64
	timeStep float64
	report   ConvergenceReport
}

func NewJosephsonTransient(tStop, tStep float64, opts ...Option) *JosephsonTransient {
	return &JosephsonTransient{
		BaseAnalysis: *NewBaseAnalysis(opts...),
		stopTime:     tStop,
		timeStep:     tStep,
	}
}

func (jt *JosephsonTransient) Setup(ckt *circuit.Circuit) error {
	if err := validateTimeGrid(jt.stopTime, jt.timeStep); err != nil {
		return err
	}
	if len(ckt.Junctions()) == 0 {
		return ErrNoJunction
	}

	jt.Circuit = ckt
	jt.Circuit.SetTimeStep(jt.timeStep)
	return nil
}

func (jt *JosephsonTransient) Execute() error {
	ckt := jt.Circuit
	if ckt == nil {
		return ErrCircuitNotSet
	}

	jt.clearResults()
	jt.report = ConvergenceReport{}
	ckt.ClearResults()
	ckt.ResetHistory()

	for step := 0; ; step++ {
		t := float64(step) * jt.timeStep
		if t >= jt.stopTime {
			break
		}

		status := &device.CircuitStatus{
			Time:     t,
			TimeStep: jt.timeStep,
			Mode:     device.TransientAnalysis,
		}

		ckt.SetInitialNRPhases()
		iters, converged, residual, err := jt.doNRiter(status)
		if err != nil {
			jt.logger.Error("transient solve failed", "step", step, "time", t, "error", err)
			return &SimulationError{Step: step, Time: t, Err: err}
		}

		jt.metrics.ObserveNewton(iters, converged)
		jt.report.TotalIterations += iters
		if !converged {
			jt.report.Failures = append(jt.report.Failures, t)
			jt.logger.Warn("newton did not converge",
				"time", t,
				"iterations", iters,
				"error", residual,
			)
		}

		ckt.CommitJunctions()
		ckt.AdvanceHistory()

		ckt.StoreResults(t)
		jt.StoreTimeResult(t, ckt.GetSolution())

		jt.metrics.ObserveStep()
		jt.report.Steps++
	}

	jt.logger.Debug("junction transient finished",
		"circuit", ckt.Name(),
		"steps", jt.report.Steps,
		"nonconverged", len(jt.report.Failures),
	)
	return nil
}

// doNRiter linearizes every junction around its current phase estimate,
// solves, and repeats until successive solutions differ by less than the
// tolerance in L1 norm. The system is built once up front so that x has the
// right size even when no iteration is allowed.
func (jt *JosephsonTransient) doNRiter(status *device.CircuitStatus) (int, bool, float64, error) {
	ckt := jt.Circuit

	if err := ckt.BuildSystem(status); err != nil {
		return 0, false, 0, err
	}

	oldSolution := ckt.Solution()
	residual := math.Inf(1)

	for iter := 1; iter <= jt.convergence.maxIter; iter++ {
		if iter > 1 {
			if err := ckt.BuildSystem(status); err != nil {
				return iter, false, residual, err
			}
		}

		err := ckt.Solve()
		jt.metrics.ObserveSolve("jjtran", err)
		if err != nil {
			return iter, false, residual, err
		}

		ckt.UpdateNRPhases()

		newSolution := ckt.Solution()
		residual = l1Distance(oldSolution, newSolution)
		if residual <= jt.convergence.tolerance {
			return iter, true, residual, nil
		}
		oldSolution = newSolution
	}

	return jt.convergence.maxIter, false, residual, nil
}

func (jt *JosephsonTransient) Report() ConvergenceReport {
	return jt.report
}

// RunTransientJJ runs the junction transient. Non-convergence does not stop
// the run; it is returned in the report.
func RunTransientJJ(ckt *circuit.Circuit, endTime, dt float64, opts ...Option) (ConvergenceReport, error) {
	jt := NewJosephsonTransient(endTime, dt, opts...)
	if err := jt.Setup(ckt); err != nil {
		return ConvergenceReport{}, err
	}
	err := jt.Execute()
	return jt.Report(), err
}
