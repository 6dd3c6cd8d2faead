package device

import (
	"fmt"

	"github.com/edp1096/jj-spice/pkg/matrix"
	"github.com/edp1096/jj-spice/pkg/util"
)

// Inductor uses the backward-Euler companion model in conductance form:
// i = dt/L * v + I_prev, so no branch unknown is needed.
type Inductor struct {
	BaseDevice
	prevCurrent float64 // Current from node1 to node2 at the previous step
	timeStep    float64
}

var _ TimeDependent = (*Inductor)(nil)

func NewInductor(name string, n1, n2 int, inductance, timeStep float64) *Inductor {
	return &Inductor{
		BaseDevice: NewBaseDevice(name, inductance, n1, n2),
		timeStep:   timeStep,
	}
}

func (l *Inductor) GetType() string { return "L" }

func (l *Inductor) conductance() float64 {
	return 1.0 / (util.DerivativeCoeff(util.BackwardEulerMethod, l.timeStep) * l.Value) // G_L = dt/L
}

func (l *Inductor) Stamp(matrix matrix.DeviceMatrix, status *CircuitStatus) error {
	if l.timeStep <= 0 {
		return fmt.Errorf("inductor %s: time step must be positive, got %g", l.Name, l.timeStep)
	}
	if l.Value <= 0 {
		return fmt.Errorf("inductor %s: inductance must be positive, got %g", l.Name, l.Value)
	}

	n1, n2 := l.Nodes[0], l.Nodes[1]
	stampConductance(matrix, n1, n2, l.conductance())
	stampCurrent(matrix, n1, n2, l.prevCurrent)

	return nil
}

func (l *Inductor) AdvanceHistory(solution []float64) {
	vd := nodeVoltage(solution, l.Nodes[0]) - nodeVoltage(solution, l.Nodes[1])
	l.prevCurrent += l.conductance() * vd
}

func (l *Inductor) PreviousCurrent() float64 {
	return l.prevCurrent
}

func (l *Inductor) TimeStep() float64 {
	return l.timeStep
}

func (l *Inductor) SetTimeStep(dt float64) {
	l.timeStep = dt
}

func (l *Inductor) ResetHistory() {
	l.prevCurrent = 0
}
