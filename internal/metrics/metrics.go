// Package metrics exposes annotation counters to Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const skippedName = "isoannot_reads_skipped_total"

// Tail end labels.
const (
	EndPolyA = "polyA"
	EndPolyT = "polyT"
)

// Metrics is the set of isoannot collectors. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	Alignments     prometheus.Counter
	TailsFound     *prometheus.CounterVec
	ReadsAnnotated prometheus.Counter
	ReadsSkipped   *prometheus.CounterVec
	Requests       *prometheus.CounterVec
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Alignments: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "isoannot_alignments_total",
			Help: "Alignments scanned for tails.",
		}),
		TailsFound: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "isoannot_tails_found_total",
			Help: "Tails located, by alignment end.",
		}, []string{"end"}),
		ReadsAnnotated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "isoannot_reads_annotated_total",
			Help: "Reads given boundary annotations.",
		}),
		ReadsSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: skippedName,
			Help: "Reads not annotated, by reason.",
		}, []string{"reason"}),
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "isoannot_http_requests_total",
			Help: "HTTP API requests, by route and status class.",
		}, []string{"route", "status"}),
	}
	reg.MustRegister(m.Alignments, m.TailsFound, m.ReadsAnnotated, m.ReadsSkipped, m.Requests)
	return m
}

// ObserveTails records one scanned alignment and the ends where a tail
// was found.
func (m *Metrics) ObserveTails(polyA, polyT bool) {
	if m == nil {
		return
	}
	m.Alignments.Inc()
	if polyA {
		m.TailsFound.WithLabelValues(EndPolyA).Inc()
	}
	if polyT {
		m.TailsFound.WithLabelValues(EndPolyT).Inc()
	}
}

// ObserveAnnotated records one annotated read.
func (m *Metrics) ObserveAnnotated() {
	if m == nil {
		return
	}
	m.ReadsAnnotated.Inc()
}

// ObserveSkipped records a read left out of the boundary table.
func (m *Metrics) ObserveSkipped(reason string) {
	if m == nil {
		return
	}
	m.ReadsSkipped.WithLabelValues(reason).Inc()
}

// ObserveRequest records one HTTP request.
func (m *Metrics) ObserveRequest(route, status string) {
	if m == nil {
		return
	}
	m.Requests.WithLabelValues(route, status).Inc()
}

// SkippedCounts gathers the skipped-read counter from g, by reason.
func SkippedCounts(g prometheus.Gatherer) (map[string]int, error) {
	families, err := g.Gather()
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int)
	for _, mf := range families {
		if mf.GetName() != skippedName {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == "reason" {
					counts[l.GetValue()] = int(m.GetCounter().GetValue())
				}
			}
		}
	}
	return counts, nil
}
