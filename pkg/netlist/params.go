package netlist

import (
	"fmt"
	"strings"
)

func parseSinParams(params string) (offset, amplitude, freq, phase float64, err error) {
	sinParams := strings.Fields(params)
	if len(sinParams) < 3 {
		return 0, 0, 0, 0, fmt.Errorf("insufficient SIN parameters")
	}

	vals, err := parseValues(sinParams, "SIN", []string{"offset", "amplitude", "frequency", "phase"})
	if err != nil {
		return 0, 0, 0, 0, err
	}
	if len(vals) > 3 {
		phase = vals[3]
	}

	return vals[0], vals[1], vals[2], phase, nil
}

func parsePulseParams(params string) (v1, v2, delay, rise, fall, pWidth, period float64, err error) {
	pulseParams := strings.Fields(params)
	if len(pulseParams) < 7 {
		return 0, 0, 0, 0, 0, 0, 0, fmt.Errorf("insufficient PULSE parameters")
	}

	vals, err := parseValues(pulseParams[:7], "PULSE", []string{"V1", "V2", "delay", "rise", "fall", "width", "period"})
	if err != nil {
		return 0, 0, 0, 0, 0, 0, 0, err
	}

	return vals[0], vals[1], vals[2], vals[3], vals[4], vals[5], vals[6], nil
}

func parsePWLParams(params string) (times []float64, values []float64, err error) {
	pwlParams := strings.Fields(params)
	if len(pwlParams) < 4 || len(pwlParams)%2 != 0 {
		return nil, nil, fmt.Errorf("insufficient or invalid PWL parameters, need pairs of time-value")
	}

	numPoints := len(pwlParams) / 2
	times = make([]float64, numPoints)
	values = make([]float64, numPoints)

	for i := 0; i < numPoints; i++ {
		// Time point
		times[i], err = ParseValue(pwlParams[2*i])
		if err != nil {
			return nil, nil, fmt.Errorf("invalid PWL time[%d]: %w", i, err)
		}
		// Value point
		values[i], err = ParseValue(pwlParams[2*i+1])
		if err != nil {
			return nil, nil, fmt.Errorf("invalid PWL value[%d]: %w", i, err)
		}

		if i > 0 && times[i] <= times[i-1] {
			return nil, nil, fmt.Errorf("PWL time points must be strictly increasing")
		}
	}

	return times, values, nil
}

func parseValues(fields []string, kind string, names []string) ([]float64, error) {
	vals := make([]float64, len(fields))
	for i, f := range fields {
		v, err := ParseValue(f)
		if err != nil {
			name := fmt.Sprintf("#%d", i+1)
			if i < len(names) {
				name = names[i]
			}
			return nil, fmt.Errorf("invalid %s %s: %w", kind, name, err)
		}
		vals[i] = v
	}
	return vals, nil
}
