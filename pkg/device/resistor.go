package device

import (
	"fmt"

	"github.com/edp1096/jj-spice/pkg/matrix"
)

type Resistor struct {
	BaseDevice
}

func NewResistor(name string, n1, n2 int, resistance float64) *Resistor {
	return &Resistor{BaseDevice: NewBaseDevice(name, resistance, n1, n2)}
}

func (r *Resistor) GetType() string { return "R" }

func (r *Resistor) Stamp(matrix matrix.DeviceMatrix, status *CircuitStatus) error {
	if r.Value <= 0 {
		return fmt.Errorf("resistor %s: resistance must be positive, got %g", r.Name, r.Value)
	}

	g := 1.0 / r.Value // Conductance. G = 1/R
	stampConductance(matrix, r.Nodes[0], r.Nodes[1], g)

	return nil
}

// Current returns the current flowing from node1 to node2.
func (r *Resistor) Current(solution []float64) float64 {
	return (nodeVoltage(solution, r.Nodes[0]) - nodeVoltage(solution, r.Nodes[1])) / r.Value
}
