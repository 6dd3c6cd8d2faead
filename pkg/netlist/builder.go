package netlist

import (
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/edp1096/jj-spice/pkg/circuit"
	"github.com/edp1096/jj-spice/pkg/device"
)

// Build turns parsed cards into a circuit. Voltage sources get branch
// indices in order of appearance; dynamic devices take the .tran step.
func Build(data *NetlistData, opts ...circuit.Option) (*circuit.Circuit, error) {
	ckt := circuit.New(data.Title, opts...)
	branchIdx := 0

	for _, elem := range data.Elements {
		dev, err := CreateDevice(elem, data.TranParam.TStep, branchIdx)
		if err != nil {
			return nil, fmt.Errorf("creating device %s: %w", elem.Name, err)
		}
		if _, ok := dev.(device.VoltageSourceDevice); ok {
			branchIdx++
		}
		ckt.AddComponent(dev)
	}

	return ckt, nil
}

// ParseAndBuild is Parse followed by Build.
func ParseAndBuild(input string, opts ...circuit.Option) (*NetlistData, *circuit.Circuit, error) {
	data, err := Parse(input)
	if err != nil {
		return nil, nil, err
	}
	ckt, err := Build(data, opts...)
	if err != nil {
		return nil, nil, err
	}
	return data, ckt, nil
}

func CreateDevice(elem Element, timeStep float64, branchIdx int) (device.Device, error) {
	switch elem.Type {
	case "R":
		return device.NewResistor(elem.Name, elem.Nodes[0], elem.Nodes[1], elem.Value), nil

	case "C":
		if timeStep <= 0 {
			return nil, fmt.Errorf("capacitor needs a .tran time step")
		}
		return device.NewCapacitor(elem.Name, elem.Nodes[0], elem.Nodes[1], elem.Value, timeStep), nil

	case "L":
		if timeStep <= 0 {
			return nil, fmt.Errorf("inductor needs a .tran time step")
		}
		return device.NewInductor(elem.Name, elem.Nodes[0], elem.Nodes[1], elem.Value, timeStep), nil

	case "V":
		return createVoltageSource(elem, branchIdx)

	case "B":
		if timeStep <= 0 {
			return nil, fmt.Errorf("junction needs a .tran time step")
		}
		params, err := decodeJunctionParams(elem.Params)
		if err != nil {
			return nil, err
		}
		return device.NewJosephsonJunction(elem.Name, elem.Nodes[0], elem.Nodes[1], elem.Nodes[2], params, timeStep), nil
	}

	return nil, fmt.Errorf("unsupported device type: %s", elem.Type)
}

func createVoltageSource(elem Element, branchIdx int) (device.Device, error) {
	n1, n2 := elem.Nodes[0], elem.Nodes[1]

	switch elem.Params["type"] {
	case "sin":
		offset, amplitude, freq, phase, err := parseSinParams(elem.Params["sin"])
		if err != nil {
			return nil, err
		}
		return device.NewSinVoltageSource(elem.Name, n1, n2, offset, amplitude, freq, phase, branchIdx), nil

	case "pulse":
		v1, v2, delay, rise, fall, pWidth, period, err := parsePulseParams(elem.Params["pulse"])
		if err != nil {
			return nil, err
		}
		return device.NewPulseVoltageSource(elem.Name, n1, n2, v1, v2, delay, rise, fall, pWidth, period, branchIdx), nil

	case "pwl":
		times, values, err := parsePWLParams(elem.Params["pwl"])
		if err != nil {
			return nil, err
		}
		return device.NewPWLVoltageSource(elem.Name, n1, n2, times, values, branchIdx)

	default:
		return device.NewDCVoltageSource(elem.Name, n1, n2, elem.Value, branchIdx), nil
	}
}

// decodeJunctionParams converts ic=, r=, c= strings with unit suffixes into
// JunctionParams. All three are required; unknown keys are rejected.
func decodeJunctionParams(raw map[string]string) (device.JunctionParams, error) {
	values := make(map[string]any, len(raw))
	for key, s := range raw {
		v, err := ParseValue(s)
		if err != nil {
			return device.JunctionParams{}, fmt.Errorf("junction parameter %s: %w", key, err)
		}
		values[key] = v
	}

	var missing []string
	for _, key := range []string{"ic", "r", "c"} {
		if _, ok := values[key]; !ok {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return device.JunctionParams{}, fmt.Errorf("junction parameters missing: %s", strings.Join(missing, ", "))
	}

	var params device.JunctionParams
	var md mapstructure.Metadata
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:   &params,
		Metadata: &md,
	})
	if err != nil {
		return params, err
	}
	if err := decoder.Decode(values); err != nil {
		return params, fmt.Errorf("junction parameters: %w", err)
	}
	if len(md.Unused) > 0 {
		return params, fmt.Errorf("unknown junction parameters: %s", strings.Join(md.Unused, ", "))
	}
	return params, nil
}
