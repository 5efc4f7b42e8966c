package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserve(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveTails(true, false)
	m.ObserveTails(true, true)
	m.ObserveTails(false, false)
	m.ObserveAnnotated()
	m.ObserveSkipped("unassigned")
	m.ObserveSkipped("unassigned")
	m.ObserveRequest("/api/polya/scan", "2xx")

	assert.Equal(t, 3.0, testutil.ToFloat64(m.Alignments))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.TailsFound.WithLabelValues(EndPolyA)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TailsFound.WithLabelValues(EndPolyT)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ReadsAnnotated))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ReadsSkipped.WithLabelValues("unassigned")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Requests.WithLabelValues("/api/polya/scan", "2xx")))
}

func TestSkippedCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	counts, err := SkippedCounts(reg)
	require.NoError(t, err)
	assert.Empty(t, counts)

	m.ObserveSkipped("unassigned")
	m.ObserveSkipped("unassigned")
	m.ObserveSkipped("not_reportable")
	m.ObserveAnnotated()

	counts, err = SkippedCounts(reg)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"unassigned": 2, "not_reportable": 1}, counts)
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveTails(true, true)
		m.ObserveAnnotated()
		m.ObserveSkipped("x")
		m.ObserveRequest("r", "5xx")
	})
}

func TestDoubleRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)
	assert.Panics(t, func() { New(reg) })
}
