package circuit

// Result is one stored snapshot: a time (or sweep value) and the 0-based
// solution vector at that point.
type Result struct {
	Time     float64   `json:"time"`
	Solution []float64 `json:"solution"`
}

// ResultHistory is the append-only record of a run.
type ResultHistory struct {
	entries []Result
}

func (h *ResultHistory) Append(t float64, solution []float64) {
	snapshot := make([]float64, len(solution))
	copy(snapshot, solution)
	h.entries = append(h.entries, Result{Time: t, Solution: snapshot})
}

func (h *ResultHistory) Clear() {
	h.entries = nil
}

func (h *ResultHistory) Len() int {
	return len(h.entries)
}

// Entries returns deep copies so callers cannot alter the history.
func (h *ResultHistory) Entries() []Result {
	out := make([]Result, len(h.entries))
	for i, r := range h.entries {
		s := make([]float64, len(r.Solution))
		copy(s, r.Solution)
		out[i] = Result{Time: r.Time, Solution: s}
	}
	return out
}

func (c *Circuit) StoreResults(t float64) {
	c.results.Append(t, c.Solution())
}

func (c *Circuit) ClearResults() {
	c.results.Clear()
}

func (c *Circuit) GetResults() []Result {
	return c.results.Entries()
}

func (c *Circuit) NumResults() int {
	return c.results.Len()
}
