package matrix

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solvers(t *testing.T) []Solver {
	t.Helper()
	var out []Solver
	for _, name := range []string{"dense", "sparse"} {
		s, err := NewSolver(name)
		require.NoError(t, err)
		out = append(out, s)
	}
	return out
}

// stampDivider writes the 5V / 1k / 2k divider by hand:
// x1 = V(1), x2 = V(2), x3 = I(V1).
func stampDivider(m *CircuitMatrix) {
	g1, g2 := 1.0/1000, 1.0/2000
	m.AddElement(1, 1, g1)
	m.AddElement(1, 2, -g1)
	m.AddElement(2, 1, -g1)
	m.AddElement(2, 2, g1+g2)
	m.AddElement(1, 3, 1)
	m.AddElement(3, 1, 1)
	m.AddRHS(3, 5)
}

func TestCircuitMatrix_SolveDivider(t *testing.T) {
	for _, s := range solvers(t) {
		t.Run(s.Name(), func(t *testing.T) {
			m := NewMatrix(3, s)
			stampDivider(m)

			require.NoError(t, m.Solve())
			x := m.Solution()
			require.Len(t, x, 4)
			assert.InDelta(t, 5.0, x[1], 1e-9)
			assert.InDelta(t, 10.0/3.0, x[2], 1e-9)
			assert.InDelta(t, -5.0/3000.0, x[3], 1e-12)
			assert.Equal(t, s.Name(), m.SolverName())
		})
	}
}

func TestCircuitMatrix_GroundIsIgnored(t *testing.T) {
	m := NewMatrix(2, nil)
	m.AddElement(0, 1, 3)
	m.AddElement(1, 0, 3)
	m.AddRHS(0, 1)

	assert.NoError(t, m.Err())
	assert.Zero(t, m.Element(1, 1))
	assert.Equal(t, []float64{0, 0, 0}, m.RHS())
}

func TestCircuitMatrix_OutOfRange(t *testing.T) {
	m := NewMatrix(2, nil)
	m.AddElement(1, 1, 1)
	m.AddElement(2, 2, 1)
	m.AddElement(3, 1, 1)
	m.AddRHS(4, 1)

	err := m.Solve()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrIndexOutOfRange))
	assert.Contains(t, err.Error(), "element (3, 1)")
}

func TestCircuitMatrix_Singular(t *testing.T) {
	for _, s := range solvers(t) {
		t.Run(s.Name(), func(t *testing.T) {
			// floating resistor, no ground reference
			m := NewMatrix(2, s)
			m.AddElement(1, 1, 1)
			m.AddElement(1, 2, -1)
			m.AddElement(2, 1, -1)
			m.AddElement(2, 2, 1)

			err := m.Solve()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrSingular)
		})
	}
}

func TestCircuitMatrix_Empty(t *testing.T) {
	m := NewMatrix(0, nil)
	assert.Error(t, m.Solve())

	var buf bytes.Buffer
	m.PrintSystem(&buf)
	assert.Equal(t, "MNA Matrix (0x0):\n", buf.String())
}

func TestCircuitMatrix_PrintSystem(t *testing.T) {
	m := NewMatrix(3, nil)
	stampDivider(m)

	var buf bytes.Buffer
	m.PrintSystem(&buf)
	out := buf.String()
	assert.Contains(t, out, "MNA Matrix (3x3):")
	assert.Contains(t, out, "z3 = 5")
}

func TestNewSolver(t *testing.T) {
	s, err := NewSolver("")
	require.NoError(t, err)
	assert.Equal(t, "dense", s.Name())

	_, err = NewSolver("cholesky")
	assert.ErrorIs(t, err, ErrUnknownSolver)
}
