// Package runner ties a parsed netlist to the analysis its dot card asks for.
package runner

import (
	"fmt"
	"log/slog"

	"github.com/edp1096/jj-spice/internal/logging"
	"github.com/edp1096/jj-spice/pkg/analysis"
	"github.com/edp1096/jj-spice/pkg/circuit"
	"github.com/edp1096/jj-spice/pkg/config"
	"github.com/edp1096/jj-spice/pkg/metrics"
	"github.com/edp1096/jj-spice/pkg/netlist"
)

// Runner executes netlists with a base configuration. Netlist .options
// override the configuration for that run only.
type Runner struct {
	Config  *config.Config
	Logger  *slog.Logger
	Metrics *metrics.Metrics
}

// Outcome is what a run produced.
type Outcome struct {
	Title    string
	Analysis string
	Circuit  *circuit.Circuit
	// Report is set for junction transients only.
	Report *analysis.ConvergenceReport
	// Results are the named columns of the analysis: TIME or SWEEP1/SWEEP2
	// plus V(n) and I(name).
	Results map[string][]float64
}

func New(cfg *config.Config, logger *slog.Logger, m *metrics.Metrics) *Runner {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Runner{Config: cfg, Logger: logger, Metrics: m}
}

func (r *Runner) Run(input string) (*Outcome, error) {
	data, err := netlist.Parse(input)
	if err != nil {
		return nil, fmt.Errorf("parsing netlist: %w", err)
	}

	cfg := *r.Config
	if err := cfg.ApplyOptions(data.Options); err != nil {
		return nil, err
	}

	solver, err := cfg.NewSolver()
	if err != nil {
		return nil, err
	}

	ckt, err := netlist.Build(data, circuit.WithSolver(solver))
	if err != nil {
		return nil, err
	}

	opts := []analysis.Option{
		analysis.WithLogger(r.Logger),
		analysis.WithMetrics(r.Metrics),
		analysis.WithMaxIterations(cfg.Newton.MaxIterations),
		analysis.WithTolerance(cfg.Newton.Tolerance),
	}

	out := &Outcome{Title: data.Title, Circuit: ckt}
	r.Logger.Info("running analysis",
		"title", data.Title,
		"analysis", data.Analysis.String(),
		"solver", solver.Name(),
		"nodes", ckt.GetNumNodes(),
		"junctions", len(ckt.Junctions()),
	)

	var an analysis.Analysis
	var jt *analysis.JosephsonTransient

	switch data.Analysis {
	case netlist.AnalysisOP:
		an = analysis.NewOP(opts...)

	case netlist.AnalysisDC:
		an, err = newSweep(data, opts)
		if err != nil {
			return out, err
		}

	case netlist.AnalysisTRAN:
		tStop, tStep := data.TranParam.TStop, data.TranParam.TStep
		if len(ckt.Junctions()) > 0 {
			jt = analysis.NewJosephsonTransient(tStop, tStep, opts...)
			an = jt
		} else {
			an = analysis.NewTransient(tStop, tStep, opts...)
		}
	}
	out.Analysis = analysisName(data.Analysis, jt != nil)

	if err := an.Setup(ckt); err != nil {
		return out, err
	}
	err = an.Execute()
	out.Results = an.GetResults()
	if jt != nil {
		report := jt.Report()
		out.Report = &report
	}
	return out, err
}

func analysisName(a netlist.AnalysisType, junction bool) string {
	if a == netlist.AnalysisTRAN && junction {
		return "tran_jj"
	}
	return a.String()
}

func newSweep(data *netlist.NetlistData, opts []analysis.Option) (*analysis.DCSweep, error) {
	p := data.DCParam
	sources := []string{p.Source1}
	starts := []float64{p.Start1}
	stops := []float64{p.Stop1}
	incs := []float64{p.Increment1}
	if p.Source2 != "" {
		sources = append(sources, p.Source2)
		starts = append(starts, p.Start2)
		stops = append(stops, p.Stop2)
		incs = append(incs, p.Increment2)
	}

	return analysis.NewDCSweep(sources, starts, stops, incs, opts...)
}
