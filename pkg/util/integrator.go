package util

type IntegrationMethod int

const (
	BackwardEulerMethod IntegrationMethod = iota
	TrapezoidalMethod
)

// DerivativeCoeff is the weight of x(n) in the discrete dx/dt:
// 1/dt for backward Euler, 2/dt for the trapezoidal rule.
func DerivativeCoeff(method IntegrationMethod, dt float64) float64 {
	if method == TrapezoidalMethod {
		return 2.0 / dt
	}
	return 1.0 / dt
}

// CompanionConductance turns a capacitance into its companion conductance,
// C/dt or 2C/dt.
func CompanionConductance(method IntegrationMethod, value, dt float64) float64 {
	return DerivativeCoeff(method, dt) * value
}
