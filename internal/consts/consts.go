package consts

import "math"

const (
	CHARGE       = 1.6021918e-19  // Elementary charge (C)
	FLUX_QUANTUM = 2.067833848e-15 // Magnetic flux quantum h/2e (Wb)

	// Josephson phase-voltage relation dφ/dt = PHASE_PER_VOLT_SECOND * V
	PHASE_PER_VOLT_SECOND = 2 * math.Pi / FLUX_QUANTUM
)

const (
	DEFAULT_MAX_ITERATIONS = 100
	DEFAULT_TOLERANCE      = 1e-6
)
