package matrix

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/edp1096/sparse"
	"gonum.org/v1/gonum/mat"
)

var (
	ErrSingular        = errors.New("singular system")
	ErrIndexOutOfRange = errors.New("matrix index out of range")
	ErrUnknownSolver   = errors.New("unknown solver")
)

// Systems whose LU condition estimate exceeds this are treated as singular.
const conditionLimit = 1e15

// Solver solves A·x = z. rhs and the returned solution are 1-based
// (entry 0 is ground and stays 0).
type Solver interface {
	Name() string
	Solve(a *mat.Dense, rhs []float64) ([]float64, error)
}

// NewSolver returns the backend registered under name ("dense" or "sparse").
func NewSolver(name string) (Solver, error) {
	switch strings.ToLower(name) {
	case "", "dense":
		return DenseSolver{}, nil
	case "sparse":
		return SparseSolver{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownSolver, name)
	}
}

// DenseSolver factorizes with gonum's partial-pivoting LU.
type DenseSolver struct{}

func (DenseSolver) Name() string { return "dense" }

func (DenseSolver) Solve(a *mat.Dense, rhs []float64) ([]float64, error) {
	n, _ := a.Dims()
	if len(rhs) < n+1 {
		return nil, fmt.Errorf("rhs size %d is smaller than matrix size %d", len(rhs)-1, n)
	}

	var lu mat.LU
	lu.Factorize(a)
	// Det underflows to zero on large well-conditioned systems; only the
	// condition estimate decides.
	if cond := lu.Cond(); math.IsInf(cond, 1) || math.IsNaN(cond) || cond > conditionLimit {
		return nil, fmt.Errorf("%w: condition number %g", ErrSingular, cond)
	}

	b := mat.NewVecDense(n, append([]float64(nil), rhs[1:n+1]...))
	var x mat.VecDense
	if err := lu.SolveVecTo(&x, false, b); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSingular, err)
	}

	solution := make([]float64, n+1)
	for i := 0; i < n; i++ {
		solution[i+1] = x.AtVec(i)
	}
	return solution, nil
}

// SparseSolver hands the non-zero pattern to the Markowitz-ordered sparse LU.
type SparseSolver struct{}

func (SparseSolver) Name() string { return "sparse" }

func (SparseSolver) Solve(a *mat.Dense, rhs []float64) ([]float64, error) {
	n, _ := a.Dims()
	if len(rhs) < n+1 {
		return nil, fmt.Errorf("rhs size %d is smaller than matrix size %d", len(rhs)-1, n)
	}

	config := &sparse.Configuration{
		Real:           true,
		Complex:        false,
		Expandable:     true,
		Translate:      false,
		ModifiedNodal:  true,
		TiesMultiplier: 5,
		PrinterWidth:   140,
		Annotate:       0,
	}

	sm, err := sparse.Create(int64(n), config)
	if err != nil {
		return nil, fmt.Errorf("creating sparse matrix: %v", err)
	}
	defer sm.Destroy()

	for i := 1; i <= n; i++ {
		for j := 1; j <= n; j++ {
			if v := a.At(i-1, j-1); v != 0 {
				sm.GetElement(int64(i), int64(j)).Real += v
			}
		}
	}

	if err := sm.Factor(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSingular, err)
	}

	b := make([]float64, n+1)
	copy(b, rhs[:n+1])
	solution, err := sm.Solve(b)
	if err != nil {
		return nil, fmt.Errorf("matrix solve failed: %v", err)
	}
	solution[0] = 0

	return solution, nil
}
