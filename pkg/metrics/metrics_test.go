package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	m := New()
	m.ObserveSolve("tran", nil)
	m.ObserveSolve("tran", errors.New("singular"))
	m.ObserveSolve("op", nil)
	m.ObserveStep()
	m.ObserveNewton(3, true)
	m.ObserveNewton(100, false)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.solves.WithLabelValues("tran")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.solveFailures.WithLabelValues("tran")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.timeSteps))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.nonConvergence))
	assert.Equal(t, 1, testutil.CollectAndCount(m.newtonIters))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveSolve("op", nil)
		m.ObserveStep()
		m.ObserveNewton(1, false)
	})
	assert.Nil(t, m.Registry())
	assert.NotNil(t, m.Handler())
}

func TestHandler(t *testing.T) {
	m := New()
	m.ObserveStep()

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "jjspice_time_steps_total 1")
}
