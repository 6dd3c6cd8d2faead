package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompanionConductance(t *testing.T) {
	assert.InDelta(t, 1e-6/1e-5, CompanionConductance(BackwardEulerMethod, 1e-6, 1e-5), 1e-12)
	assert.InDelta(t, 2*1e-12/1e-12, CompanionConductance(TrapezoidalMethod, 1e-12, 1e-12), 1e-12)
}

func TestDerivativeCoeff(t *testing.T) {
	assert.Equal(t, 2.0, DerivativeCoeff(BackwardEulerMethod, 0.5))
	assert.Equal(t, 4.0, DerivativeCoeff(TrapezoidalMethod, 0.5))
}

func TestFormatValueFactor(t *testing.T) {
	assert.Equal(t, "5.000 V", FormatValueFactor(5, "V"))
	assert.Equal(t, "-1.667 mA", FormatValueFactor(-1.6666666e-3, "A"))
	assert.Equal(t, "2.500 uA", FormatValueFactor(2.5e-6, "A"))
	assert.Equal(t, "1.000 ps", FormatValueFactor(1e-12, "s"))
	assert.Equal(t, "0.000 V", FormatValueFactor(0, "V"))
}

func TestFormatPhase(t *testing.T) {
	assert.Equal(t, "3.1416 rad (0.500 x 2pi)", FormatPhase(3.14159265358979))
}
