package device

import (
	"fmt"
	"math"

	"github.com/edp1096/jj-spice/internal/consts"
	"github.com/edp1096/jj-spice/pkg/matrix"
	"github.com/edp1096/jj-spice/pkg/util"
)

// JunctionParams are the RCSJ model parameters of a Josephson junction.
type JunctionParams struct {
	CriticalCurrent float64 `mapstructure:"ic" yaml:"ic"`
	Resistance      float64 `mapstructure:"r" yaml:"r"`
	Capacitance     float64 `mapstructure:"c" yaml:"c"`
}

// JosephsonJunction is a resistively and capacitively shunted junction.
// Its phase is an extra unknown living on phaseNode.
//
// Two state layers are kept apart: nrPhase is the Newton estimate inside a
// time step, the prev* fields are the accepted history of the last step.
type JosephsonJunction struct {
	BaseDevice
	params JunctionParams

	prevVoltage  float64 // V(n1)-V(n2) of the last accepted step
	prevVoltage2 float64 // one step before prevVoltage
	prevDVoltage float64 // dV/dt estimate of the last accepted step
	prevPhase    float64 // phase of the last accepted step
	nrPhase      float64 // linearization point of the current Newton iteration
	timeStep     float64

	phaseNode int
}

var _ PhaseDevice = (*JosephsonJunction)(nil)

func NewJosephsonJunction(name string, n1, n2, phaseNode int, params JunctionParams, timeStep float64) *JosephsonJunction {
	return &JosephsonJunction{
		BaseDevice: NewBaseDevice(name, params.CriticalCurrent, n1, n2),
		params:     params,
		timeStep:   timeStep,
		phaseNode:  phaseNode,
	}
}

func (j *JosephsonJunction) GetType() string { return "B" }

func (j *JosephsonJunction) PhaseNode() int { return j.phaseNode }

func (j *JosephsonJunction) Params() JunctionParams { return j.params }

func (j *JosephsonJunction) validate() error {
	switch {
	case j.phaseNode <= 0:
		return fmt.Errorf("junction %s: phase node must be a positive index, got %d", j.Name, j.phaseNode)
	case j.phaseNode == j.Nodes[0] || j.phaseNode == j.Nodes[1]:
		return fmt.Errorf("junction %s: phase node %d collides with a terminal", j.Name, j.phaseNode)
	case j.params.Resistance <= 0:
		return fmt.Errorf("junction %s: shunt resistance must be positive, got %g", j.Name, j.params.Resistance)
	case j.params.Capacitance < 0:
		return fmt.Errorf("junction %s: capacitance must not be negative, got %g", j.Name, j.params.Capacitance)
	case j.timeStep <= 0:
		return fmt.Errorf("junction %s: time step must be positive, got %g", j.Name, j.timeStep)
	}
	return nil
}

func (j *JosephsonJunction) Stamp(matrix matrix.DeviceMatrix, status *CircuitStatus) error {
	if err := j.validate(); err != nil {
		return err
	}

	n1, n2, p := j.Nodes[0], j.Nodes[1], j.phaseNode
	ic := j.params.CriticalCurrent

	// Shunt resistor
	stampConductance(matrix, n1, n2, 1.0/j.params.Resistance)

	// Shunt capacitor, trapezoidal companion
	gc := util.CompanionConductance(util.TrapezoidalMethod, j.params.Capacitance, j.timeStep)
	stampConductance(matrix, n1, n2, gc)
	stampCurrent(matrix, n1, n2, -(gc*j.prevVoltage + j.params.Capacitance*j.prevDVoltage))

	// Supercurrent Ic*sin(phi) linearized around the Newton estimate
	phi := j.nrPhase
	jacobian := ic * math.Cos(phi)
	stampCurrent(matrix, n1, n2, j.Supercurrent(phi)-phi*jacobian)

	// Phase row: phi - k*(v1-v2) = prevPhase + k*prevVoltage, trapezoidal
	// integration of dphi/dt = 2*pi/Phi0 * V
	k := consts.PHASE_PER_VOLT_SECOND * j.timeStep / 2.0
	matrix.AddElement(p, p, 1.0)
	if n1 > 0 {
		matrix.AddElement(n1, p, jacobian)
		matrix.AddElement(p, n1, -k)
	}
	if n2 > 0 {
		matrix.AddElement(n2, p, -jacobian)
		matrix.AddElement(p, n2, k)
	}
	matrix.AddRHS(p, j.prevPhase+k*j.prevVoltage)

	return nil
}

// SetInitialNRPhase starts a time step's Newton loop from the accepted phase.
func (j *JosephsonJunction) SetInitialNRPhase() {
	j.nrPhase = j.prevPhase
}

// UpdateNRPhase moves the linearization point to the latest iterate.
func (j *JosephsonJunction) UpdateNRPhase(phase float64) {
	j.nrPhase = phase
}

// UpdatePrevDVoltage refreshes the derivative history with a central
// difference between v and the voltage two steps back. Call it before
// UpdatePhaseAndVoltage.
func (j *JosephsonJunction) UpdatePrevDVoltage(v float64) {
	j.prevDVoltage = (v - j.prevVoltage2) / (2 * j.timeStep)
}

// UpdatePhaseAndVoltage accepts the converged phase and voltage.
func (j *JosephsonJunction) UpdatePhaseAndVoltage(v, phase float64) {
	j.prevPhase = phase
	j.prevVoltage2 = j.prevVoltage
	j.prevVoltage = v
}

// CommitStep accepts a converged 1-based solution as the new history.
func (j *JosephsonJunction) CommitStep(solution []float64) {
	v := j.Voltage(solution)
	phase := nodeVoltage(solution, j.phaseNode)

	j.UpdatePrevDVoltage(v)
	j.UpdatePhaseAndVoltage(v, phase)
}

// Voltage returns V(n1)-V(n2) from a 1-based solution.
func (j *JosephsonJunction) Voltage(solution []float64) float64 {
	return nodeVoltage(solution, j.Nodes[0]) - nodeVoltage(solution, j.Nodes[1])
}

// Supercurrent is Ic*sin(phase).
func (j *JosephsonJunction) Supercurrent(phase float64) float64 {
	return j.params.CriticalCurrent * math.Sin(phase)
}

func (j *JosephsonJunction) NRPhase() float64 { return j.nrPhase }

func (j *JosephsonJunction) PreviousPhase() float64 { return j.prevPhase }

func (j *JosephsonJunction) PreviousVoltage() float64 { return j.prevVoltage }

func (j *JosephsonJunction) PreviousDVoltage() float64 { return j.prevDVoltage }

func (j *JosephsonJunction) TimeStep() float64 { return j.timeStep }

func (j *JosephsonJunction) SetTimeStep(dt float64) { j.timeStep = dt }

func (j *JosephsonJunction) ResetHistory() {
	j.prevVoltage = 0
	j.prevVoltage2 = 0
	j.prevDVoltage = 0
	j.prevPhase = 0
	j.nrPhase = 0
}
