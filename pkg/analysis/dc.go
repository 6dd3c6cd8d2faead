package analysis

import (
	"fmt"
	"math"

	"github.com/edp1096/jj-spice/pkg/circuit"
	"github.com/edp1096/jj-spice/pkg/device"
)

// maxSweepPoints bounds a single sweep axis.
const maxSweepPoints = 1e6

type DCSweep struct {
	BaseAnalysis
	sourceNames []string                 // Names of voltage sources to sweep
	startVals   []float64                // Start values for each source
	stopVals    []float64                // Stop values for each source
	increments  []float64                // Incremental value of steps for each source
	sweepVals   [][]float64              // Generated sweep values for each source
	origVals    []float64                // Original values of the sources
	sources     []*device.VoltageSource // Resolved in Setup
}

func NewDCSweep(sources []string, starts, stops, increments []float64, opts ...Option) (*DCSweep, error) {
	if len(sources) != len(starts) || len(sources) != len(stops) || len(sources) != len(increments) {
		return nil, fmt.Errorf("inconsistent sweep parameter lengths")
	}
	if len(sources) == 0 || len(sources) > 2 {
		return nil, fmt.Errorf("unsupported number of sweep sources: %d", len(sources))
	}

	dc := &DCSweep{
		BaseAnalysis: *NewBaseAnalysis(opts...),
		sourceNames:  sources,
		startVals:    starts,
		stopVals:     stops,
		increments:   increments,
		sweepVals:    make([][]float64, len(sources)),
		origVals:     make([]float64, len(sources)),
	}

	for i := range sources {
		vals, err := sweepValues(starts[i], stops[i], increments[i])
		if err != nil {
			return nil, fmt.Errorf("sweep of %s: %w", sources[i], err)
		}
		dc.sweepVals[i] = vals
	}

	return dc, nil
}

// sweepValues lists start, start+inc, ... up to stop inclusive. Points are
// computed by index so the last one is not lost to accumulated rounding.
func sweepValues(start, stop, inc float64) ([]float64, error) {
	if inc == 0 || math.Signbit(stop-start) != math.Signbit(inc) && stop != start {
		return nil, fmt.Errorf("increment %g does not move from %g towards %g", inc, start, stop)
	}

	steps := math.Floor((stop-start)/inc + 1e-9)
	if steps+1 > maxSweepPoints || math.IsNaN(steps) {
		return nil, fmt.Errorf("%w: %g points from %g to %g by %g", ErrSweepTooLarge, steps+1, start, stop, inc)
	}

	n := int(steps) + 1
	vals := make([]float64, n)
	for i := range vals {
		vals[i] = start + float64(i)*inc
	}
	return vals, nil
}

func (dc *DCSweep) Setup(ckt *circuit.Circuit) error {
	dc.Circuit = ckt
	dc.sources = make([]*device.VoltageSource, len(dc.sourceNames))

	// Store original source values
	for i, name := range dc.sourceNames {
		v, ok := ckt.FindVoltageSource(name)
		if !ok {
			return fmt.Errorf("source %s not found", name)
		}
		dc.sources[i] = v
		dc.origVals[i] = v.GetValue()
	}

	return nil
}

func (dc *DCSweep) Execute() error {
	if dc.Circuit == nil {
		return ErrCircuitNotSet
	}

	dc.clearResults()
	dc.Circuit.ClearResults()
	defer dc.restore()

	if len(dc.sources) == 1 {
		return dc.singleSweep()
	}
	return dc.nestedSweep()
}

func (dc *DCSweep) restore() {
	for i, src := range dc.sources {
		src.SetValue(dc.origVals[i])
	}
}

func (dc *DCSweep) singleSweep() error {
	source := dc.sources[0]

	for _, val := range dc.sweepVals[0] {
		source.SetValue(val)

		if err := dc.solvePoint(); err != nil {
			return fmt.Errorf("dc sweep at %s=%g: %w", dc.sourceNames[0], val, err)
		}

		dc.Circuit.StoreResults(val)
		dc.StoreResult(val, dc.Circuit.GetSolution())
	}

	return nil
}

func (dc *DCSweep) nestedSweep() error {
	source1, source2 := dc.sources[0], dc.sources[1]

	for _, val1 := range dc.sweepVals[0] {
		source1.SetValue(val1)

		for _, val2 := range dc.sweepVals[1] {
			source2.SetValue(val2)

			if err := dc.solvePoint(); err != nil {
				return fmt.Errorf("dc sweep at %s=%g, %s=%g: %w",
					dc.sourceNames[0], val1, dc.sourceNames[1], val2, err)
			}

			// history rows are keyed by the inner sweep value
			dc.Circuit.StoreResults(val2)
			dc.StoreNestedResult(val1, val2, dc.Circuit.GetSolution())
		}
	}

	return nil
}

func (dc *DCSweep) solvePoint() error {
	status := &device.CircuitStatus{Mode: device.OperatingPointAnalysis}
	if err := dc.Circuit.BuildSystem(status); err != nil {
		return err
	}

	err := dc.Circuit.Solve()
	dc.metrics.ObserveSolve("dc", err)
	return err
}

func (dc *DCSweep) StoreResult(sweepVal float64, solution map[string]float64) {
	dc.results["SWEEP1"] = append(dc.results["SWEEP1"], sweepVal)

	// Store node voltages and branch currents
	for name, value := range solution {
		dc.results[name] = append(dc.results[name], value)
	}
}

func (dc *DCSweep) StoreNestedResult(val1, val2 float64, solution map[string]float64) {
	dc.results["SWEEP1"] = append(dc.results["SWEEP1"], val1)
	dc.results["SWEEP2"] = append(dc.results["SWEEP2"], val2)

	for name, value := range solution {
		dc.results[name] = append(dc.results[name], value)
	}
}

func (dc *DCSweep) SweepValues() [][]float64 {
	return dc.sweepVals
}
