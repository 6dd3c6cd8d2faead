package device

import (
	"fmt"
	"math"

	"github.com/edp1096/jj-spice/pkg/matrix"
)

type SourceType int

const (
	DC SourceType = iota
	SIN
	PULSE
	PWL
)

type VoltageSource struct {
	BaseDevice
	vtype SourceType
	// DC, common params
	dcValue float64
	// SIN params
	amplitude float64
	freq      float64
	phase     float64
	// PULSE params
	v1     float64
	v2     float64
	delay  float64
	rise   float64
	fall   float64
	pWidth float64
	period float64
	// PWL params
	times  []float64
	values []float64
	// 0-based slot among the circuit's voltage sources
	branchIdx int
}

var _ VoltageSourceDevice = (*VoltageSource)(nil)

func NewDCVoltageSource(name string, n1, n2 int, value float64, branchIdx int) *VoltageSource {
	return &VoltageSource{
		BaseDevice: NewBaseDevice(name, value, n1, n2),
		vtype:      DC,
		dcValue:    value,
		branchIdx:  branchIdx,
	}
}

func NewSinVoltageSource(name string, n1, n2 int, offset, amplitude, freq, phase float64, branchIdx int) *VoltageSource {
	return &VoltageSource{
		BaseDevice: NewBaseDevice(name, offset, n1, n2),
		vtype:      SIN,
		dcValue:    offset,
		amplitude:  amplitude,
		freq:       freq,
		phase:      phase,
		branchIdx:  branchIdx,
	}
}

func NewPulseVoltageSource(name string, n1, n2 int, v1, v2, delay, rise, fall, pWidth, period float64, branchIdx int) *VoltageSource {
	return &VoltageSource{
		BaseDevice: NewBaseDevice(name, v1, n1, n2),
		vtype:      PULSE,
		v1:         v1,
		v2:         v2,
		delay:      delay,
		rise:       rise,
		fall:       fall,
		pWidth:     pWidth,
		period:     period,
		branchIdx:  branchIdx,
	}
}

func NewPWLVoltageSource(name string, n1, n2 int, times []float64, values []float64, branchIdx int) (*VoltageSource, error) {
	if len(times) == 0 || len(times) != len(values) {
		return nil, fmt.Errorf("voltage source %s: PWL needs matching, non-empty time and value lists", name)
	}
	for i := 1; i < len(times); i++ {
		if times[i] <= times[i-1] {
			return nil, fmt.Errorf("voltage source %s: PWL time points must be strictly increasing", name)
		}
	}

	return &VoltageSource{
		BaseDevice: NewBaseDevice(name, values[0], n1, n2),
		vtype:      PWL,
		times:      times,
		values:     values,
		branchIdx:  branchIdx,
	}, nil
}

func (v *VoltageSource) GetType() string { return "V" }

func (v *VoltageSource) IsVoltageSource() bool { return true }

func (v *VoltageSource) GetVoltage(t float64) float64 {
	switch v.vtype {
	case DC:
		return v.dcValue
	case SIN:
		phaseRad := v.phase * math.Pi / 180.0
		return v.dcValue + v.amplitude*math.Sin(2.0*math.Pi*v.freq*t+phaseRad)
	case PULSE:
		return v.getPulseVoltage(t)
	case PWL:
		return v.getPWLVoltage(t)
	default:
		return 0
	}
}

// Stamp writes the B/Bᵗ incidence block for branch row n+k, where n is the
// node count derived from the matrix size.
func (v *VoltageSource) Stamp(m matrix.DeviceMatrix, status *CircuitStatus) error {
	n := m.GetSize() - status.NumVoltageSources
	if v.branchIdx < 0 || v.branchIdx >= status.NumVoltageSources {
		return fmt.Errorf("voltage source %s: %w: branch index %d outside [0, %d)",
			v.Name, matrix.ErrIndexOutOfRange, v.branchIdx, status.NumVoltageSources)
	}

	n1, n2 := v.Nodes[0], v.Nodes[1]
	bIdx := n + 1 + v.branchIdx

	// v1 - v2 = V
	if n1 > 0 {
		m.AddElement(bIdx, n1, 1) // v1 coefficient
		m.AddElement(n1, bIdx, 1) // n1 current
	}
	if n2 > 0 {
		m.AddElement(bIdx, n2, -1) // -v2 coefficient
		m.AddElement(n2, bIdx, -1) // n2 current
	}

	m.AddRHS(bIdx, v.GetVoltage(status.Time))
	return nil
}

func (v *VoltageSource) getPulseVoltage(t float64) float64 {
	if t < v.delay {
		return v.v1
	}

	t = t - v.delay
	if v.period > 0 {
		t = math.Mod(t, v.period)
	}

	if t < v.rise {
		return v.v1 + (v.v2-v.v1)*t/v.rise
	}

	if t < v.rise+v.pWidth {
		return v.v2
	}

	fallStart := v.rise + v.pWidth
	if t < fallStart+v.fall {
		return v.v2 - (v.v2-v.v1)*(t-fallStart)/v.fall
	}

	return v.v1
}

func (v *VoltageSource) getPWLVoltage(t float64) float64 {
	if t <= v.times[0] {
		return v.values[0]
	}

	lastIdx := len(v.times) - 1
	if t >= v.times[lastIdx] {
		return v.values[lastIdx]
	}

	for i := 1; i < len(v.times); i++ {
		if t <= v.times[i] {
			t1, t2 := v.times[i-1], v.times[i]
			v1, v2 := v.values[i-1], v.values[i]
			slope := (v2 - v1) / (t2 - t1)
			return v1 + slope*(t-t1)
		}
	}

	return v.values[lastIdx]
}

func (v *VoltageSource) BranchIndex() int {
	return v.branchIdx
}

// SetValue changes the DC level, used by DC sweeps.
func (v *VoltageSource) SetValue(value float64) {
	v.Value = value
	v.dcValue = value
}

func (v *VoltageSource) SourceType() SourceType {
	return v.vtype
}
