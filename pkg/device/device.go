package device

import (
	"github.com/edp1096/jj-spice/pkg/matrix"
)

type Device interface {
	GetName() string
	GetType() string
	GetNodes() []int
	GetValue() float64
	Stamp(matrix matrix.DeviceMatrix, status *CircuitStatus) error
}

// VoltageSourceDevice owns a branch-current unknown. The assembler counts
// these before sizing the matrix.
type VoltageSourceDevice interface {
	IsVoltageSource() bool
	BranchIndex() int
}

// TimeDependent devices carry history between time steps. AdvanceHistory is
// called by the driver once per accepted step with the 1-based solution.
type TimeDependent interface {
	AdvanceHistory(solution []float64)
}

// PhaseDevice introduces an extra unknown that is not a physical terminal.
type PhaseDevice interface {
	PhaseNode() int
}

type BaseDevice struct {
	Name  string
	Nodes []int
	Value float64
}

type AnalysisMode int

const (
	OperatingPointAnalysis AnalysisMode = iota
	TransientAnalysis
)

func (m AnalysisMode) String() string {
	switch m {
	case OperatingPointAnalysis:
		return "op"
	case TransientAnalysis:
		return "tran"
	default:
		return "unknown"
	}
}

type CircuitStatus struct {
	Time              float64
	TimeStep          float64
	Mode              AnalysisMode
	NumVoltageSources int
}

func (d *BaseDevice) GetName() string {
	return d.Name
}

func (d *BaseDevice) GetNodes() []int {
	return d.Nodes
}

func (d *BaseDevice) GetValue() float64 {
	return d.Value
}

func NewBaseDevice(name string, value float64, nodes ...int) BaseDevice {
	return BaseDevice{
		Name:  name,
		Value: value,
		Nodes: nodes,
	}
}

// nodeVoltage reads a 1-based solution, treating ground and missing
// entries as 0 V.
func nodeVoltage(solution []float64, node int) float64 {
	if node <= 0 || node >= len(solution) {
		return 0
	}
	return solution[node]
}

// stampConductance adds g between n1 and n2 with the nodal admittance pattern.
func stampConductance(matrix matrix.DeviceMatrix, n1, n2 int, g float64) {
	if n1 > 0 {
		matrix.AddElement(n1, n1, g)
		if n2 > 0 {
			matrix.AddElement(n1, n2, -g)
		}
	}
	if n2 > 0 {
		if n1 > 0 {
			matrix.AddElement(n2, n1, -g)
		}
		matrix.AddElement(n2, n2, g)
	}
}

// stampCurrent injects a current i flowing from n1 to n2 through an
// equivalent source on the right hand side.
func stampCurrent(matrix matrix.DeviceMatrix, n1, n2 int, i float64) {
	if n1 > 0 {
		matrix.AddRHS(n1, -i)
	}
	if n2 > 0 {
		matrix.AddRHS(n2, i)
	}
}
