package device

import (
	"math"
	"testing"

	"github.com/edp1096/jj-spice/internal/consts"
	"github.com/edp1096/jj-spice/pkg/matrix"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResistorStamp(t *testing.T) {
	m := matrix.NewMatrix(2, nil)
	r := NewResistor("R1", 1, 2, 100)
	require.NoError(t, r.Stamp(m, &CircuitStatus{}))

	assert.InDelta(t, 0.01, m.Element(1, 1), 1e-15)
	assert.InDelta(t, -0.01, m.Element(1, 2), 1e-15)
	assert.InDelta(t, -0.01, m.Element(2, 1), 1e-15)
	assert.InDelta(t, 0.01, m.Element(2, 2), 1e-15)

	// to ground only touches the diagonal
	g := matrix.NewMatrix(1, nil)
	require.NoError(t, NewResistor("R2", 1, 0, 50).Stamp(g, &CircuitStatus{}))
	assert.InDelta(t, 0.02, g.Element(1, 1), 1e-15)
	assert.NoError(t, g.Err())

	assert.Error(t, NewResistor("R3", 1, 0, 0).Stamp(g, &CircuitStatus{}))
	assert.Error(t, NewResistor("R4", 1, 0, -5).Stamp(g, &CircuitStatus{}))

	assert.InDelta(t, 0.05, r.Current([]float64{0, 10, 5}), 1e-15)
}

func TestStampIsAdditive(t *testing.T) {
	a := matrix.NewMatrix(2, nil)
	b := matrix.NewMatrix(2, nil)
	r1 := NewResistor("R1", 1, 2, 1000)
	r2 := NewResistor("R2", 2, 0, 2000)
	status := &CircuitStatus{}

	require.NoError(t, r1.Stamp(a, status))
	require.NoError(t, r2.Stamp(a, status))
	require.NoError(t, r2.Stamp(b, status))
	require.NoError(t, r1.Stamp(b, status))

	for i := 1; i <= 2; i++ {
		for j := 1; j <= 2; j++ {
			assert.Equal(t, a.Element(i, j), b.Element(i, j), "A(%d,%d)", i, j)
		}
	}
}

func TestVoltageSourceStamp(t *testing.T) {
	// two nodes, one source: branch row 3
	m := matrix.NewMatrix(3, nil)
	v := NewDCVoltageSource("V1", 1, 2, 5, 0)
	require.NoError(t, v.Stamp(m, &CircuitStatus{NumVoltageSources: 1}))

	assert.Equal(t, 1.0, m.Element(3, 1))
	assert.Equal(t, 1.0, m.Element(1, 3))
	assert.Equal(t, -1.0, m.Element(3, 2))
	assert.Equal(t, -1.0, m.Element(2, 3))
	assert.Equal(t, 5.0, m.RHS()[3])
	assert.True(t, v.IsVoltageSource())
	assert.Equal(t, "V", v.GetType())

	err := NewDCVoltageSource("V2", 1, 0, 1, 1).Stamp(m, &CircuitStatus{NumVoltageSources: 1})
	require.Error(t, err)
	assert.ErrorIs(t, err, matrix.ErrIndexOutOfRange)
}

func TestVoltageSourceWaveforms(t *testing.T) {
	sin := NewSinVoltageSource("V1", 1, 0, 1, 2, 1e3, 0, 0)
	assert.InDelta(t, 1.0, sin.GetVoltage(0), 1e-12)
	assert.InDelta(t, 3.0, sin.GetVoltage(0.25e-3), 1e-9)

	pulse := NewPulseVoltageSource("V2", 1, 0, 0, 5, 1e-9, 1e-9, 1e-9, 5e-9, 20e-9, 0)
	assert.Equal(t, 0.0, pulse.GetVoltage(0))
	assert.InDelta(t, 2.5, pulse.GetVoltage(1.5e-9), 1e-9)
	assert.Equal(t, 5.0, pulse.GetVoltage(4e-9))
	assert.Equal(t, 0.0, pulse.GetVoltage(10e-9))
	assert.Equal(t, 5.0, pulse.GetVoltage(24e-9))

	pwl, err := NewPWLVoltageSource("V3", 1, 0, []float64{0, 1, 2}, []float64{0, 10, 10}, 0)
	require.NoError(t, err)
	assert.InDelta(t, 5.0, pwl.GetVoltage(0.5), 1e-12)
	assert.Equal(t, 10.0, pwl.GetVoltage(5))

	_, err = NewPWLVoltageSource("V4", 1, 0, []float64{0, 0}, []float64{1, 2}, 0)
	assert.Error(t, err)
	_, err = NewPWLVoltageSource("V5", 1, 0, nil, nil, 0)
	assert.Error(t, err)

	dc := NewDCVoltageSource("V6", 1, 0, 1, 0)
	dc.SetValue(3)
	assert.Equal(t, 3.0, dc.GetVoltage(42))
	assert.Equal(t, 3.0, dc.GetValue())
}

func TestCapacitorCompanion(t *testing.T) {
	c := NewCapacitor("C1", 1, 0, 1e-6, 1e-3)
	m := matrix.NewMatrix(1, nil)
	require.NoError(t, c.Stamp(m, &CircuitStatus{Mode: TransientAnalysis}))
	assert.InDelta(t, 1e-3, m.Element(1, 1), 1e-15)
	assert.Zero(t, m.RHS()[1])

	c.AdvanceHistory([]float64{0, 2})
	assert.Equal(t, 2.0, c.PreviousVoltage())

	// stamping again must not move the history
	m = matrix.NewMatrix(1, nil)
	require.NoError(t, c.Stamp(m, &CircuitStatus{Mode: TransientAnalysis}))
	require.NoError(t, c.Stamp(matrix.NewMatrix(1, nil), &CircuitStatus{Mode: TransientAnalysis}))
	assert.Equal(t, 2.0, c.PreviousVoltage())
	assert.InDelta(t, 2e-3, m.RHS()[1], 1e-15)

	c.ResetHistory()
	assert.Zero(t, c.PreviousVoltage())

	assert.Error(t, NewCapacitor("C2", 1, 0, 1e-6, 0).Stamp(m, &CircuitStatus{}))
}

func TestInductorCompanion(t *testing.T) {
	l := NewInductor("L1", 1, 0, 1e-3, 1e-6)
	m := matrix.NewMatrix(1, nil)
	require.NoError(t, l.Stamp(m, &CircuitStatus{Mode: TransientAnalysis}))
	assert.InDelta(t, 1e-3, m.Element(1, 1), 1e-15)

	l.AdvanceHistory([]float64{0, 2})
	assert.InDelta(t, 2e-3, l.PreviousCurrent(), 1e-15)
	l.AdvanceHistory([]float64{0, 2})
	assert.InDelta(t, 4e-3, l.PreviousCurrent(), 1e-15)

	// history current leaves node 1
	m = matrix.NewMatrix(1, nil)
	require.NoError(t, l.Stamp(m, &CircuitStatus{Mode: TransientAnalysis}))
	assert.InDelta(t, -4e-3, m.RHS()[1], 1e-15)

	assert.Error(t, NewInductor("L2", 1, 0, 0, 1e-6).Stamp(m, &CircuitStatus{}))
	assert.Error(t, NewInductor("L3", 1, 0, 1e-3, 0).Stamp(m, &CircuitStatus{}))
}

func testJunction() *JosephsonJunction {
	return NewJosephsonJunction("B1", 1, 0, 2, JunctionParams{
		CriticalCurrent: 1e-4,
		Resistance:      10,
		Capacitance:     1e-13,
	}, 1e-13)
}

func TestJosephsonStampAtRest(t *testing.T) {
	jj := testJunction()
	m := matrix.NewMatrix(2, nil)
	require.NoError(t, jj.Stamp(m, &CircuitStatus{Mode: TransientAnalysis}))

	gc := 2 * 1e-13 / 1e-13
	k := consts.PHASE_PER_VOLT_SECOND * 1e-13 / 2

	assert.InDelta(t, 0.1+gc, m.Element(1, 1), 1e-12)
	assert.InDelta(t, 1e-4, m.Element(1, 2), 1e-18) // Ic*cos(0)
	assert.InDelta(t, -k, m.Element(2, 1), 1e-9)
	assert.Equal(t, 1.0, m.Element(2, 2))
	assert.Zero(t, m.RHS()[1])
	assert.Zero(t, m.RHS()[2])
	assert.Equal(t, 2, jj.PhaseNode())
	assert.Equal(t, "B", jj.GetType())
}

func TestJosephsonLinearization(t *testing.T) {
	jj := testJunction()
	phi := 0.7
	jj.UpdateNRPhase(phi)

	m := matrix.NewMatrix(2, nil)
	require.NoError(t, jj.Stamp(m, &CircuitStatus{Mode: TransientAnalysis}))

	ic := 1e-4
	assert.InDelta(t, ic*math.Cos(phi), m.Element(1, 2), 1e-18)
	// constant part Ic*sin(phi) - Ic*phi*cos(phi) leaves node 1
	assert.InDelta(t, -(ic*math.Sin(phi) - ic*phi*math.Cos(phi)), m.RHS()[1], 1e-18)
	assert.InDelta(t, ic*math.Sin(phi), jj.Supercurrent(phi), 1e-18)
}

func TestJosephsonTransitions(t *testing.T) {
	jj := testJunction()

	jj.UpdateNRPhase(1.5)
	jj.SetInitialNRPhase()
	assert.Zero(t, jj.NRPhase())

	// v = 1 mV, phi = 0.3
	jj.CommitStep([]float64{0, 1e-3, 0.3})
	assert.Equal(t, 0.3, jj.PreviousPhase())
	assert.Equal(t, 1e-3, jj.PreviousVoltage())
	assert.InDelta(t, 1e-3/(2*1e-13), jj.PreviousDVoltage(), 1)

	jj.SetInitialNRPhase()
	assert.Equal(t, 0.3, jj.NRPhase())

	// central difference uses the voltage two steps back
	jj.CommitStep([]float64{0, 2e-3, 0.4})
	assert.InDelta(t, 2e-3/(2*1e-13), jj.PreviousDVoltage(), 1)
	assert.Equal(t, 2e-3, jj.PreviousVoltage())

	jj.ResetHistory()
	assert.Zero(t, jj.PreviousPhase())
	assert.Zero(t, jj.PreviousDVoltage())
}

func TestJosephsonValidation(t *testing.T) {
	m := matrix.NewMatrix(3, nil)
	status := &CircuitStatus{Mode: TransientAnalysis}
	p := JunctionParams{CriticalCurrent: 1e-4, Resistance: 10, Capacitance: 1e-13}

	assert.Error(t, NewJosephsonJunction("B1", 1, 0, 0, p, 1e-13).Stamp(m, status))
	assert.Error(t, NewJosephsonJunction("B2", 1, 2, 2, p, 1e-13).Stamp(m, status))
	assert.Error(t, NewJosephsonJunction("B3", 1, 0, 2, p, 0).Stamp(m, status))

	bad := p
	bad.Resistance = 0
	assert.Error(t, NewJosephsonJunction("B4", 1, 0, 2, bad, 1e-13).Stamp(m, status))
}

func TestAnalysisModeString(t *testing.T) {
	assert.Equal(t, "op", OperatingPointAnalysis.String())
	assert.Equal(t, "tran", TransientAnalysis.String())
	assert.Equal(t, "unknown", AnalysisMode(9).String())
}
