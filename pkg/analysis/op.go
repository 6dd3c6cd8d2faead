package analysis

import (
	"fmt"

	"github.com/edp1096/jj-spice/pkg/circuit"
	"github.com/edp1096/jj-spice/pkg/device"
)

// OperatingPoint is a single linear solve. Dynamic devices stamp their
// companion models with whatever history they currently hold.
type OperatingPoint struct{ BaseAnalysis }

func NewOP(opts ...Option) *OperatingPoint {
	return &OperatingPoint{
		BaseAnalysis: *NewBaseAnalysis(opts...),
	}
}

func (op *OperatingPoint) Setup(ckt *circuit.Circuit) error {
	op.Circuit = ckt
	return nil
}

func (op *OperatingPoint) Execute() error {
	ckt := op.Circuit
	if ckt == nil {
		return ErrCircuitNotSet
	}

	if err := op.solve(); err != nil {
		return fmt.Errorf("operating point: %w", err)
	}

	op.clearResults()
	ckt.ClearResults()
	ckt.StoreResults(0)
	op.storeResults()

	op.logger.Debug("operating point solved",
		"circuit", ckt.Name(),
		"size", ckt.GetNumNodes()+ckt.GetNumVoltageSources(),
		"solver", ckt.SolverName(),
	)
	return nil
}

func (op *OperatingPoint) solve() error {
	status := &device.CircuitStatus{
		Time: 0,
		Mode: device.OperatingPointAnalysis,
	}
	if err := op.Circuit.BuildSystem(status); err != nil {
		return err
	}

	err := op.Circuit.Solve()
	op.metrics.ObserveSolve("op", err)
	return err
}

func (op *OperatingPoint) storeResults() {
	for name, value := range op.Circuit.GetSolution() {
		op.results[name] = []float64{value}
	}
}

// RunDC solves the operating point of ckt and stores it as the single
// entry of the circuit's result history.
func RunDC(ckt *circuit.Circuit, opts ...Option) error {
	op := NewOP(opts...)
	if err := op.Setup(ckt); err != nil {
		return err
	}
	return op.Execute()
}
