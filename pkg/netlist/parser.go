package netlist

import (
	"bufio"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

type AnalysisType int

const (
	AnalysisOP AnalysisType = iota
	AnalysisTRAN
	AnalysisDC
)

func (a AnalysisType) String() string {
	switch a {
	case AnalysisOP:
		return "op"
	case AnalysisTRAN:
		return "tran"
	case AnalysisDC:
		return "dc"
	default:
		return "unknown"
	}
}

type NetlistData struct {
	Elements  []Element      // Circuit elements
	Analysis  AnalysisType   // Analysis type
	Options   map[string]any // .options key=value pairs
	TranParam struct {
		TStep float64 // timestep
		TStop float64 // stop time
	}
	DCParam struct {
		Source1    string
		Start1     float64
		Stop1      float64
		Increment1 float64
		Source2    string
		Start2     float64
		Stop2      float64
		Increment2 float64
	}
	Title string // Circuit title
}

type Element struct {
	Type   string            // Part type (R, L, C, V, B)
	Name   string            // Part name
	Nodes  []int             // Node indices, 0 is ground
	Value  float64           // Part value
	Params map[string]string // Parameter values
}

var (
	whitespace = regexp.MustCompile(`\s+`)
	valueRe    = regexp.MustCompile(`^([-+]?\d*\.?\d+(?:[eE][-+]?\d+)?)(meg|[TGMKkmunpf])?s?$`)
)

var unitMap = map[string]float64{
	"T":   1e12,  // tera
	"G":   1e9,   // giga
	"meg": 1e6,   // mega
	"K":   1e3,   // kilo
	"k":   1e3,   // kilo
	"M":   1e-3,  // milli, SPICE is case insensitive here
	"m":   1e-3,  // milli
	"u":   1e-6,  // micro
	"n":   1e-9,  // nano
	"p":   1e-12, // pico
	"f":   1e-15, // femto
}

// Parse reads a netlist. The first line is the title, "*" starts a
// comment, "+" continues the previous card and ".end" stops parsing.
func Parse(input string) (*NetlistData, error) {
	scanner := bufio.NewScanner(strings.NewReader(input))
	netlistData := &NetlistData{
		Options: make(map[string]any),
	}

	// Title or comment
	if scanner.Scan() {
		netlistData.Title = strings.TrimPrefix(scanner.Text(), "*")
		netlistData.Title = strings.TrimSpace(netlistData.Title)
	}

	var currentLine string
	lineNo := 1
	cardLine := 0

	flush := func() error {
		if currentLine == "" {
			return nil
		}
		err := parseLine(netlistData, currentLine)
		currentLine = ""
		if err != nil {
			return fmt.Errorf("line %d: %w", cardLine, err)
		}
		return nil
	}

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())

		// Inline comment
		if idx := strings.Index(line, "*"); idx >= 0 {
			line = strings.TrimSpace(line[:idx])
		}
		if len(line) == 0 {
			continue
		}

		if strings.HasPrefix(line, "+") {
			if currentLine == "" {
				return nil, fmt.Errorf("line %d: continuation without a card", lineNo)
			}
			currentLine += " " + strings.TrimSpace(line[1:])
			continue
		}

		if err := flush(); err != nil {
			return nil, err
		}

		if strings.EqualFold(line, ".end") {
			break
		}
		currentLine = line
		cardLine = lineNo
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if err := flush(); err != nil {
		return nil, err
	}

	return netlistData, nil
}

func parseLine(netlistData *NetlistData, line string) error {
	line = whitespace.ReplaceAllString(line, " ")

	if strings.HasPrefix(line, ".") {
		return parseDotOperator(netlistData, line)
	}

	element, err := parseElement(line)
	if err != nil {
		return err
	}

	netlistData.Elements = append(netlistData.Elements, *element)
	return nil
}

// Parse .op, .tran, .dc, .options
func parseDotOperator(netlistData *NetlistData, line string) error {
	var err error

	fields := strings.Fields(line)

	switch strings.ToLower(fields[0]) {
	case ".op":
		netlistData.Analysis = AnalysisOP

	case ".tran":
		netlistData.Analysis = AnalysisTRAN
		if len(fields) < 3 {
			return fmt.Errorf("insufficient tran parameters, need tstep and tstop")
		}
		netlistData.TranParam.TStep, err = ParseValue(fields[1])
		if err != nil {
			return fmt.Errorf("invalid tstep: %w", err)
		}
		netlistData.TranParam.TStop, err = ParseValue(fields[2])
		if err != nil {
			return fmt.Errorf("invalid tstop: %w", err)
		}
		if netlistData.TranParam.TStep <= 0 {
			return fmt.Errorf("tstep must be positive, got %g", netlistData.TranParam.TStep)
		}

	case ".dc":
		netlistData.Analysis = AnalysisDC
		if len(fields) != 5 && len(fields) != 9 {
			return fmt.Errorf("dc sweep needs src start stop incr [src2 start2 stop2 incr2]")
		}

		p := &netlistData.DCParam
		p.Source1 = fields[1]
		if p.Start1, p.Stop1, p.Increment1, err = parseSweep(fields[2:5]); err != nil {
			return err
		}
		if len(fields) == 9 {
			p.Source2 = fields[5]
			if p.Start2, p.Stop2, p.Increment2, err = parseSweep(fields[6:9]); err != nil {
				return err
			}
		}

	case ".options", ".option":
		for _, f := range fields[1:] {
			key, value, ok := strings.Cut(f, "=")
			if !ok || key == "" {
				return fmt.Errorf("invalid option %q, want key=value", f)
			}
			netlistData.Options[strings.ToLower(key)] = optionValue(value)
		}

	default:
		return fmt.Errorf("unsupported analysis type: %s", fields[0])
	}

	return nil
}

func parseSweep(fields []string) (start, stop, incr float64, err error) {
	if start, err = ParseValue(fields[0]); err != nil {
		return 0, 0, 0, fmt.Errorf("invalid start value: %w", err)
	}
	if stop, err = ParseValue(fields[1]); err != nil {
		return 0, 0, 0, fmt.Errorf("invalid stop value: %w", err)
	}
	if incr, err = ParseValue(fields[2]); err != nil {
		return 0, 0, 0, fmt.Errorf("invalid increment value: %w", err)
	}
	return start, stop, incr, nil
}

// optionValue keeps numbers as float64 and anything else as a string.
func optionValue(s string) any {
	if v, err := ParseValue(s); err == nil {
		return v
	}
	return s
}

func parseNode(name string) (int, error) {
	if strings.EqualFold(name, "gnd") {
		return 0, nil
	}
	n, err := strconv.Atoi(name)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid node %q, want a non-negative integer or gnd", name)
	}
	return n, nil
}

func parseNodes(names []string) ([]int, error) {
	nodes := make([]int, len(names))
	for i, name := range names {
		n, err := parseNode(name)
		if err != nil {
			return nil, err
		}
		nodes[i] = n
	}
	return nodes, nil
}

func parseElement(line string) (*Element, error) {
	fields := strings.Fields(line)
	if len(fields) < 4 {
		return nil, fmt.Errorf("invalid element format: %s", line)
	}

	elem := &Element{
		Name:   fields[0],
		Type:   strings.ToUpper(string(fields[0][0])),
		Params: make(map[string]string),
	}

	switch elem.Type {
	case "V":
		return parseVoltageSource(fields)

	case "B":
		return parseJunction(fields)

	case "R", "C", "L":
		if len(fields) != 4 {
			return nil, fmt.Errorf("%s: want name n1 n2 value", elem.Name)
		}
		nodes, err := parseNodes(fields[1:3])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", elem.Name, err)
		}
		elem.Nodes = nodes

		value, err := ParseValue(fields[3])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", elem.Name, err)
		}
		elem.Value = value

		return elem, nil

	default:
		return nil, fmt.Errorf("unsupported element type: %s", elem.Type)
	}
}

func parseVoltageSource(fields []string) (*Element, error) {
	nodes, err := parseNodes(fields[1:3])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fields[0], err)
	}

	elem := &Element{
		Name:   fields[0],
		Type:   "V",
		Nodes:  nodes,
		Params: make(map[string]string),
	}

	remaining := strings.Join(fields[3:], " ")
	remaining = strings.ReplaceAll(remaining, "(", " ( ") // Append whitespace around parentheses
	remaining = strings.ReplaceAll(remaining, ")", " ) ")
	words := strings.Fields(remaining)

	switch strings.ToUpper(words[0]) {
	case "DC":
		if len(words) < 2 {
			return nil, fmt.Errorf("missing DC value")
		}
		elem.Params["type"] = "dc"
		value, err := ParseValue(words[1])
		if err != nil {
			return nil, err
		}
		elem.Value = value

	case "SIN", "PULSE", "PWL":
		kind := strings.ToLower(words[0])
		elem.Params["type"] = kind
		elem.Params[kind] = strings.Trim(strings.Join(words[1:], " "), "() ")

	default:
		// Bare value means DC
		value, err := ParseValue(words[0])
		if err != nil {
			return nil, fmt.Errorf("unsupported voltage source type: %s", words[0])
		}
		elem.Params["type"] = "dc"
		elem.Value = value
	}

	return elem, nil
}

// parseJunction reads "Bname n1 n2 phase ic=.. r=.. c=..".
func parseJunction(fields []string) (*Element, error) {
	nodes, err := parseNodes(fields[1:4])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fields[0], err)
	}

	elem := &Element{
		Name:   fields[0],
		Type:   "B",
		Nodes:  nodes,
		Params: make(map[string]string),
	}

	for _, f := range fields[4:] {
		key, value, ok := strings.Cut(f, "=")
		if !ok {
			return nil, fmt.Errorf("%s: invalid parameter %q, want key=value", elem.Name, f)
		}
		elem.Params[strings.ToLower(key)] = value
	}

	return elem, nil
}

// ParseValue - Parse value and factor. 1k -> 1000
func ParseValue(val string) (float64, error) {
	matches := valueRe.FindStringSubmatch(strings.TrimSpace(val))
	if matches == nil {
		return 0, fmt.Errorf("invalid value format: %s", val)
	}

	num, err := strconv.ParseFloat(matches[1], 64)
	if err != nil {
		return 0, err
	}

	// factor
	if matches[2] != "" {
		num *= unitMap[matches[2]]
	}

	return num, nil
}
