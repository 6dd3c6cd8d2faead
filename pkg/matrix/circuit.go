package matrix

import (
	"fmt"
	"io"
	"math"

	"gonum.org/v1/gonum/mat"
)

// CircuitMatrix holds one assembly pass: the augmented MNA matrix, its RHS
// and, after Solve, the solution. It is created zeroed for every pass and
// never patched incrementally.
type CircuitMatrix struct {
	Size     int
	matrix   *mat.Dense
	rhs      []float64 // 1-based
	solution []float64 // 1-based
	solver   Solver
	err      error // first out-of-range stamp
}

var _ DeviceMatrix = (*CircuitMatrix)(nil)

func NewMatrix(size int, solver Solver) *CircuitMatrix {
	if solver == nil {
		solver = DenseSolver{}
	}

	m := &CircuitMatrix{
		Size:     size,
		rhs:      make([]float64, size+1),
		solution: make([]float64, size+1),
		solver:   solver,
	}
	if size > 0 {
		m.matrix = mat.NewDense(size, size, nil)
	}
	return m
}

func (m *CircuitMatrix) GetSize() int {
	return m.Size
}

func (m *CircuitMatrix) AddElement(i, j int, value float64) {
	if i <= 0 || j <= 0 {
		return
	}
	if i > m.Size || j > m.Size {
		m.recordError(fmt.Errorf("%w: element (%d, %d), size %d", ErrIndexOutOfRange, i, j, m.Size))
		return
	}
	m.matrix.Set(i-1, j-1, m.matrix.At(i-1, j-1)+value)
}

func (m *CircuitMatrix) AddRHS(i int, value float64) {
	if i <= 0 {
		return
	}
	if i > m.Size {
		m.recordError(fmt.Errorf("%w: rhs %d, size %d", ErrIndexOutOfRange, i, m.Size))
		return
	}
	m.rhs[i] += value
}

func (m *CircuitMatrix) recordError(err error) {
	if m.err == nil {
		m.err = err
	}
}

// Err reports the first out-of-range stamp of this pass, if any.
func (m *CircuitMatrix) Err() error {
	return m.err
}

func (m *CircuitMatrix) Solve() error {
	if m.err != nil {
		return m.err
	}
	if m.Size == 0 {
		return fmt.Errorf("matrix is empty")
	}

	solution, err := m.solver.Solve(m.matrix, m.rhs)
	if err != nil {
		return fmt.Errorf("%s solve failed: %w", m.solver.Name(), err)
	}

	for i := 1; i <= m.Size; i++ {
		if math.IsNaN(solution[i]) || math.IsInf(solution[i], 0) {
			return fmt.Errorf("%s solve failed: %w: non-finite solution at row %d", m.solver.Name(), ErrSingular, i)
		}
	}

	m.solution = solution
	return nil
}

// Element returns A(i, j) with 1-based indices.
func (m *CircuitMatrix) Element(i, j int) float64 {
	if i <= 0 || j <= 0 || i > m.Size || j > m.Size {
		return 0
	}
	return m.matrix.At(i-1, j-1)
}

func (m *CircuitMatrix) RHS() []float64 {
	return m.rhs
}

func (m *CircuitMatrix) Solution() []float64 {
	return m.solution
}

func (m *CircuitMatrix) SolverName() string {
	return m.solver.Name()
}

func (m *CircuitMatrix) PrintSystem(w io.Writer) {
	fmt.Fprintf(w, "MNA Matrix (%dx%d):\n", m.Size, m.Size)
	if m.Size == 0 {
		return
	}

	for i := 1; i <= m.Size; i++ {
		for j := 1; j <= m.Size; j++ {
			fmt.Fprintf(w, "%12.4g ", m.matrix.At(i-1, j-1))
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, "RHS:")
	for i := 1; i <= m.Size; i++ {
		fmt.Fprintf(w, "  z%d = %g\n", i, m.rhs[i])
	}
}
