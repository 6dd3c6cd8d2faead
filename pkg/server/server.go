// Package server exposes the simulator over HTTP.
package server

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/edp1096/jj-spice/pkg/matrix"
	"github.com/edp1096/jj-spice/pkg/metrics"
	"github.com/edp1096/jj-spice/pkg/runner"
)

const maxNetlistBytes = 1 << 20

type SimulateRequest struct {
	Netlist string `json:"netlist"`
}

type SimulateResponse struct {
	Title          string               `json:"title"`
	Analysis       string               `json:"analysis"`
	Nodes          int                  `json:"nodes"`
	VoltageSources int                  `json:"voltage_sources"`
	Results        []resultRow          `json:"results,omitempty"`
	Sweep          map[string][]float64 `json:"sweep,omitempty"`
	Converged      *bool                `json:"converged,omitempty"`
	Nonconverged   []float64            `json:"nonconverged_times,omitempty"`
}

type resultRow struct {
	Time     float64   `json:"time"`
	Solution []float64 `json:"solution"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type Server struct {
	Runner  *runner.Runner
	Metrics *metrics.Metrics
	Logger  *slog.Logger
}

// NewHandler creates the HTTP handler: POST /simulate, GET /metrics and
// GET /healthz.
func NewHandler(r *runner.Runner, m *metrics.Metrics, logger *slog.Logger) http.Handler {
	s := &Server{Runner: r, Metrics: m, Logger: logger}

	router := chi.NewRouter()
	router.Post("/simulate", s.Simulate)
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	router.Method(http.MethodGet, "/metrics", m.Handler())

	return router
}

func isPlainText(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	return err == nil && mediaType == "text/plain"
}

// Simulate runs the posted netlist. Bodies are JSON {"netlist": "..."} or,
// with a text/plain content type, the raw netlist.
func (s *Server) Simulate(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxNetlistBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read body")
		return
	}

	netlistText := string(body)
	if !isPlainText(r.Header.Get("Content-Type")) {
		var req SimulateRequest
		if err := json.Unmarshal(body, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			s.Logger.Warn("simulate: invalid request body", "error", err)
			return
		}
		netlistText = req.Netlist
	}

	out, err := s.Runner.Run(netlistText)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, matrix.ErrSingular) {
			status = http.StatusUnprocessableEntity
		}
		writeError(w, status, err.Error())
		s.Logger.Warn("simulate failed", "error", err)
		return
	}

	resp := SimulateResponse{
		Title:          out.Title,
		Analysis:       out.Analysis,
		Nodes:          out.Circuit.GetNumNodes(),
		VoltageSources: out.Circuit.GetNumVoltageSources(),
	}
	if out.Analysis == "dc" {
		resp.Sweep = out.Results
	} else {
		for _, res := range out.Circuit.GetResults() {
			resp.Results = append(resp.Results, resultRow(res))
		}
	}
	if out.Report != nil {
		converged := out.Report.Converged()
		resp.Converged = &converged
		resp.Nonconverged = out.Report.Failures
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.Logger.Error("simulate response encode failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorResponse{Error: msg})
}
