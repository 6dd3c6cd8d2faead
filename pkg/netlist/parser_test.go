package netlist

import (
	"testing"

	"github.com/edp1096/jj-spice/pkg/device"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseValue(t *testing.T) {
	cases := map[string]float64{
		"1k":     1e3,
		"2.5meg": 2.5e6,
		"10u":    10e-6,
		"1e-13":  1e-13,
		"100p":   100e-12,
		"3f":     3e-15,
		"-4.7":   -4.7,
		"1ns":    1e-9,
	}
	for in, want := range cases {
		got, err := ParseValue(in)
		require.NoError(t, err, in)
		assert.InDelta(t, want, got, want*1e-12+1e-30, in)
	}

	_, err := ParseValue("abc")
	assert.Error(t, err)
}

const jjNetlist = `Biased junction
* bias through a 1k resistor
V1 2 0 DC 50m
Rb 2 1 1k
B1 1 0 3 ic=100u r=10 c=0.1p
.options maxiter=50 tol=1e-9 solver=sparse
.tran 0.1p 200p
.end
R9 9 0 1
`

func TestParseJunctionNetlist(t *testing.T) {
	data, err := Parse(jjNetlist)
	require.NoError(t, err)

	assert.Equal(t, "Biased junction", data.Title)
	assert.Equal(t, AnalysisTRAN, data.Analysis)
	assert.InDelta(t, 1e-13, data.TranParam.TStep, 1e-25)
	assert.InDelta(t, 2e-10, data.TranParam.TStop, 1e-22)
	require.Len(t, data.Elements, 3) // .end stops before R9

	b := data.Elements[2]
	assert.Equal(t, "B", b.Type)
	assert.Equal(t, []int{1, 0, 3}, b.Nodes)
	assert.Equal(t, "100u", b.Params["ic"])

	assert.Equal(t, 50.0, data.Options["maxiter"])
	assert.Equal(t, "sparse", data.Options["solver"])
}

func TestBuildJunctionCircuit(t *testing.T) {
	data, ckt, err := ParseAndBuild(jjNetlist)
	require.NoError(t, err)
	require.NotNil(t, data)

	assert.Equal(t, 3, ckt.GetNumNodes())
	assert.Equal(t, 1, ckt.GetNumVoltageSources())
	require.Len(t, ckt.Junctions(), 1)

	jj := ckt.Junctions()[0]
	assert.Equal(t, 3, jj.PhaseNode())
	assert.InDelta(t, 1e-4, jj.Params().CriticalCurrent, 1e-16)
	assert.Equal(t, 10.0, jj.Params().Resistance)
	assert.InDelta(t, 1e-13, jj.Params().Capacitance, 1e-25)
	assert.InDelta(t, 1e-13, jj.TimeStep(), 1e-25)
}

func TestParseSources(t *testing.T) {
	input := `sources
V1 1 0 SIN(0 1 1k)
V2 2 0 PULSE(0 5 1n 1n 1n 5n 20n)
V3 3 0 PWL(0 0 1m 1
+ 2m 0)
V4 4 0 3.3
R1 1 2 1k
R2 3 4 1k
R3 4 0 1k
.op
`
	data, ckt, err := ParseAndBuild(input)
	require.NoError(t, err)
	assert.Equal(t, AnalysisOP, data.Analysis)
	assert.Equal(t, "0 0 1m 1 2m 0", data.Elements[2].Params["pwl"])

	kinds := []device.SourceType{device.SIN, device.PULSE, device.PWL, device.DC}
	for i, kind := range kinds {
		v, ok := ckt.GetDevices()[i].(*device.VoltageSource)
		require.True(t, ok)
		assert.Equal(t, kind, v.SourceType())
		assert.Equal(t, i, v.BranchIndex())
	}
	assert.InDelta(t, 0.5, ckt.GetDevices()[2].(*device.VoltageSource).GetVoltage(0.5e-3), 1e-12)
}

func TestParseDCSweep(t *testing.T) {
	data, err := Parse("sweep\nV1 1 0 1\nR1 1 0 1k\n.dc V1 0 5 0.5\n")
	require.NoError(t, err)
	assert.Equal(t, AnalysisDC, data.Analysis)
	assert.Equal(t, "V1", data.DCParam.Source1)
	assert.Equal(t, 5.0, data.DCParam.Stop1)
	assert.Equal(t, 0.5, data.DCParam.Increment1)
	assert.Empty(t, data.DCParam.Source2)

	data, err = Parse("sweep\n.dc V1 0 5 1 V2 0 1 0.5\n")
	require.NoError(t, err)
	assert.Equal(t, "V2", data.DCParam.Source2)
	assert.Equal(t, 0.5, data.DCParam.Increment2)
}

func TestParseErrors(t *testing.T) {
	cases := map[string]string{
		"bad node":       "t\nR1 a 0 1k\n",
		"bad value":      "t\nR1 1 0 abc\n",
		"unknown device": "t\nQ1 1 2 3 model\n",
		"short card":     "t\nR1 1 0\n",
		"bad dot":        "t\n.ac dec 10 1 1k\n",
		"bad tran":       "t\n.tran 1n\n",
		"bad option":     "t\n.options maxiter\n",
		"bad dc":         "t\n.dc V1 0 1\n",
		"dangling plus":  "t\n+ 1 2\n",
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(input)
			assert.Error(t, err)
		})
	}
}

func TestBuildErrors(t *testing.T) {
	// capacitor without .tran
	_, _, err := ParseAndBuild("t\nC1 1 0 1u\n.op\n")
	assert.Error(t, err)

	_, _, err = ParseAndBuild("t\nB1 1 0 2 ic=1u r=1\n.tran 1p 10p\n")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing: c")

	_, _, err = ParseAndBuild("t\nB1 1 0 2 ic=1u r=1 c=1p area=2\n.tran 1p 10p\n")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "area")

	_, _, err = ParseAndBuild("t\nV1 1 0 PWL(0 0 0 1)\n")
	assert.Error(t, err)
}
