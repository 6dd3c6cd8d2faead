package circuit

import (
	"errors"
	"fmt"
	"io"

	"github.com/edp1096/jj-spice/pkg/device"
	"github.com/edp1096/jj-spice/pkg/matrix"
)

var ErrEmptyCircuit = errors.New("circuit has no unknowns")

type Circuit struct {
	name              string
	devices           []device.Device
	junctions         []*device.JosephsonJunction
	numNodes          int // highest node index, phase nodes included
	numVoltageSources int
	matrix            *matrix.CircuitMatrix
	solver            matrix.Solver
	solution          []float64 // 1-based, seed for the next pass
	results           ResultHistory
	Status            *device.CircuitStatus
}

type Option func(*Circuit)

// WithSolver selects the linear solver backend. Dense LU is the default.
func WithSolver(s matrix.Solver) Option {
	return func(c *Circuit) {
		if s != nil {
			c.solver = s
		}
	}
}

func New(name string, opts ...Option) *Circuit {
	c := &Circuit{
		name:     name,
		devices:  make([]device.Device, 0),
		solver:   matrix.DenseSolver{},
		solution: []float64{0},
		Status:   &device.CircuitStatus{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// AddComponent appends a device. Its terminals and phase node grow the node
// count; voltage sources are counted again on every BuildSystem.
func (c *Circuit) AddComponent(dev device.Device) {
	for _, n := range dev.GetNodes() {
		if n > c.numNodes {
			c.numNodes = n
		}
	}
	if pd, ok := dev.(device.PhaseDevice); ok && pd.PhaseNode() > c.numNodes {
		c.numNodes = pd.PhaseNode()
	}
	if jj, ok := dev.(*device.JosephsonJunction); ok {
		c.junctions = append(c.junctions, jj)
	}

	c.devices = append(c.devices, dev)
	c.numVoltageSources = c.countVoltageSources()
}

func (c *Circuit) countVoltageSources() int {
	count := 0
	for _, dev := range c.devices {
		if vs, ok := dev.(device.VoltageSourceDevice); ok && vs.IsVoltageSource() {
			count++
		}
	}
	return count
}

// BuildSystem assembles a fresh A and z for the given status. The previous
// solution is kept, resized to the new dimension, as the iteration seed.
func (c *Circuit) BuildSystem(status *device.CircuitStatus) error {
	c.numVoltageSources = c.countVoltageSources()
	size := c.numNodes + c.numVoltageSources
	if size == 0 {
		return ErrEmptyCircuit
	}

	status.NumVoltageSources = c.numVoltageSources
	c.Status = status
	c.matrix = matrix.NewMatrix(size, c.solver)
	c.resizeSolution(size)

	for _, dev := range c.devices {
		if err := dev.Stamp(c.matrix, status); err != nil {
			return fmt.Errorf("%s: stamping device %s: %w", status.Mode, dev.GetName(), err)
		}
	}
	return nil
}

func (c *Circuit) resizeSolution(size int) {
	if len(c.solution) == size+1 {
		return
	}
	resized := make([]float64, size+1)
	copy(resized, c.solution)
	c.solution = resized
}

// Solve solves the last assembled system and keeps the result as x.
func (c *Circuit) Solve() error {
	if c.matrix == nil {
		return fmt.Errorf("solve called before BuildSystem")
	}
	if err := c.matrix.Solve(); err != nil {
		return err
	}
	copy(c.solution, c.matrix.Solution())
	return nil
}

// AdvanceHistory hands the accepted solution to every time dependent device.
func (c *Circuit) AdvanceHistory() {
	for _, dev := range c.devices {
		if td, ok := dev.(device.TimeDependent); ok {
			td.AdvanceHistory(c.solution)
		}
	}
}

// ResetHistory discharges every dynamic device and zeroes x.
func (c *Circuit) ResetHistory() {
	type resetter interface{ ResetHistory() }
	for _, dev := range c.devices {
		if r, ok := dev.(resetter); ok {
			r.ResetHistory()
		}
	}
	for i := range c.solution {
		c.solution[i] = 0
	}
}

func (c *Circuit) SetInitialNRPhases() {
	for _, jj := range c.junctions {
		jj.SetInitialNRPhase()
	}
}

// UpdateNRPhases moves every junction's linearization point to its phase
// unknown in the current x.
func (c *Circuit) UpdateNRPhases() {
	for _, jj := range c.junctions {
		jj.UpdateNRPhase(c.GetNodeVoltage(jj.PhaseNode()))
	}
}

func (c *Circuit) CommitJunctions() {
	for _, jj := range c.junctions {
		jj.CommitStep(c.solution)
	}
}

func (c *Circuit) SetTimeStep(dt float64) {
	type stepper interface{ SetTimeStep(float64) }
	for _, dev := range c.devices {
		if s, ok := dev.(stepper); ok {
			s.SetTimeStep(dt)
		}
	}
	c.Status.TimeStep = dt
}

// Solution returns a 0-based copy of x: node voltages then branch currents.
func (c *Circuit) Solution() []float64 {
	out := make([]float64, len(c.solution)-1)
	copy(out, c.solution[1:])
	return out
}

func (c *Circuit) GetNodeVoltage(nodeIdx int) float64 {
	if nodeIdx <= 0 || nodeIdx >= len(c.solution) {
		return 0
	}
	return c.solution[nodeIdx]
}

// GetSolution names the entries of x: V(n) for nodes, I(name) for voltage
// source branches and resistors.
func (c *Circuit) GetSolution() map[string]float64 {
	solution := make(map[string]float64)

	for n := 1; n <= c.numNodes; n++ {
		solution[fmt.Sprintf("V(%d)", n)] = c.GetNodeVoltage(n)
	}

	for _, dev := range c.devices {
		switch d := dev.(type) {
		case *device.VoltageSource:
			solution[fmt.Sprintf("I(%s)", d.GetName())] = c.GetNodeVoltage(c.numNodes + 1 + d.BranchIndex())
		case *device.Resistor:
			solution[fmt.Sprintf("I(%s)", d.GetName())] = d.Current(c.solution)
		}
	}

	return solution
}

func (c *Circuit) GetMatrix() *matrix.CircuitMatrix {
	return c.matrix
}

func (c *Circuit) GetDevices() []device.Device {
	return c.devices
}

func (c *Circuit) Junctions() []*device.JosephsonJunction {
	return c.junctions
}

// FindVoltageSource looks a source up by name.
func (c *Circuit) FindVoltageSource(name string) (*device.VoltageSource, bool) {
	for _, dev := range c.devices {
		if v, ok := dev.(*device.VoltageSource); ok && v.GetName() == name {
			return v, true
		}
	}
	return nil, false
}

func (c *Circuit) Name() string {
	return c.name
}

func (c *Circuit) GetNumNodes() int {
	return c.numNodes
}

func (c *Circuit) GetNumVoltageSources() int {
	return c.numVoltageSources
}

func (c *Circuit) SolverName() string {
	return c.solver.Name()
}

func (c *Circuit) PrintSolution(w io.Writer) {
	fmt.Fprintln(w, "Solution:")
	for n := 1; n <= c.numNodes; n++ {
		fmt.Fprintf(w, "  V(%d) = %g\n", n, c.GetNodeVoltage(n))
	}
	for k := 0; k < c.numVoltageSources; k++ {
		fmt.Fprintf(w, "  I%d = %g\n", k, c.GetNodeVoltage(c.numNodes+1+k))
	}
}

func (c *Circuit) PrintA(w io.Writer) {
	if c.matrix == nil {
		fmt.Fprintln(w, "MNA Matrix: not assembled")
		return
	}
	c.matrix.PrintSystem(w)
}
