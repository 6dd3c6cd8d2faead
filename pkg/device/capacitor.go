package device

import (
	"fmt"

	"github.com/edp1096/jj-spice/pkg/matrix"
	"github.com/edp1096/jj-spice/pkg/util"
)

// Capacitor uses the backward-Euler companion model: a conductance C/dt
// in parallel with a source carrying the charge of the previous step.
type Capacitor struct {
	BaseDevice
	prevVoltage float64 // Voltage across the capacitor at the previous step
	timeStep    float64
}

var _ TimeDependent = (*Capacitor)(nil)

func NewCapacitor(name string, n1, n2 int, capacitance, timeStep float64) *Capacitor {
	return &Capacitor{
		BaseDevice: NewBaseDevice(name, capacitance, n1, n2),
		timeStep:   timeStep,
	}
}

func (c *Capacitor) GetType() string { return "C" }

func (c *Capacitor) Stamp(matrix matrix.DeviceMatrix, status *CircuitStatus) error {
	if c.timeStep <= 0 {
		return fmt.Errorf("capacitor %s: time step must be positive, got %g", c.Name, c.timeStep)
	}

	n1, n2 := c.Nodes[0], c.Nodes[1]
	geq := util.CompanionConductance(util.BackwardEulerMethod, c.Value, c.timeStep)
	ieq := geq * c.prevVoltage

	stampConductance(matrix, n1, n2, geq)
	stampCurrent(matrix, n1, n2, -ieq)

	return nil
}

func (c *Capacitor) AdvanceHistory(solution []float64) {
	c.prevVoltage = nodeVoltage(solution, c.Nodes[0]) - nodeVoltage(solution, c.Nodes[1])
}

func (c *Capacitor) PreviousVoltage() float64 {
	return c.prevVoltage
}

func (c *Capacitor) TimeStep() float64 {
	return c.timeStep
}

// SetTimeStep replaces the step fixed at construction. It is meant for
// netlists where the step is only known once the .tran card is read.
func (c *Capacitor) SetTimeStep(dt float64) {
	c.timeStep = dt
}

// ResetHistory discharges the capacitor.
func (c *Capacitor) ResetHistory() {
	c.prevVoltage = 0
}
