package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aria-lang/isoannot-go/internal/boundary"
	"github.com/aria-lang/isoannot-go/internal/optional"
	"github.com/aria-lang/isoannot-go/internal/report"
)

func TestFromTails(t *testing.T) {
	rows := []report.TailRow{
		{ReadID: "a", PolyA: optional.Of(100)},
		{ReadID: "b", PolyT: optional.Of(50)},
		{ReadID: "c", PolyA: optional.Of(10), PolyT: optional.Of(1)},
		{ReadID: "d"},
	}

	s := FromTails(rows)

	assert.Equal(t, 4, s.Count)
	assert.Equal(t, 2, s.PolyAFound)
	assert.Equal(t, 2, s.PolyTFound)
	assert.Equal(t, 1, s.BothFound)
	assert.Equal(t, 1, s.NoneFound)
	assert.InDelta(t, 0.75, s.FoundRatio(), 0.0001)
	assert.Contains(t, s.String(), "with tail: 75.0%")
}

func TestFromTailsEmpty(t *testing.T) {
	s := FromTails(nil)
	assert.Equal(t, 0, s.Count)
	assert.Equal(t, 0.0, s.FoundRatio())
}

func TestFromAnnotations(t *testing.T) {
	anns := []*boundary.Annotation{
		{DiffToTSS: -5, DiffToTTS: 10, SitesMatch: boundary.SitesMatch, CDSStart: 100,
			AllCanonical: optional.Of(true), PercADownstream: optional.Of(0.9)},
		{DiffToTSS: 20, DiffToTTS: -30, SitesMatch: boundary.SitesDiffer, CDSStart: -1,
			AllCanonical: optional.Of(false), PercADownstream: optional.Of(0.1)},
		{DiffToTSS: 0, DiffToTTS: 0, SitesMatch: boundary.Unspliced, CDSStart: -1},
	}

	s, err := FromAnnotations(anns)
	require.NoError(t, err)

	assert.Equal(t, 3, s.Count)
	assert.Equal(t, 1, s.Unspliced)
	assert.Equal(t, 1, s.SitesMatch)
	assert.Equal(t, 1, s.SitesDiffer)
	assert.Equal(t, 1, s.Canonical)
	assert.Equal(t, 1, s.NonCanonical)
	assert.Equal(t, 1, s.NoRegion)
	assert.Equal(t, 5, s.MedianAbsTSS)  // sorted: 0, 5, 20
	assert.Equal(t, 10, s.MedianAbsTTS) // sorted: 0, 10, 30
	assert.InDelta(t, 0.5, s.MeanPercADown, 0.0001)
	assert.Equal(t, 1, s.HighPercADown)
	assert.Equal(t, 1, s.CodingRefsCount)
}

func TestFromAnnotationsEmpty(t *testing.T) {
	_, err := FromAnnotations(nil)
	require.Error(t, err)
}

func TestMedian(t *testing.T) {
	tests := []struct {
		name   string
		values []int
		want   int
	}{
		{"empty", nil, 0},
		{"odd", []int{9, 1, 5}, 5},
		{"even", []int{1, 2, 3, 10}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, median(tt.values))
		})
	}
}

func TestDistanceHistogram(t *testing.T) {
	hist, err := NewDistanceHistogram([]int{-50, -10, 0, 0, 5, 50}, 4)
	require.NoError(t, err)

	assert.Equal(t, 4, hist.NumBins)
	assert.Equal(t, -50, hist.Min)
	assert.Equal(t, 50, hist.Max)
	assert.Equal(t, 25, hist.BinWidth)
	assert.Equal(t, []int{1, 1, 3, 1}, hist.Bins)
	assert.Contains(t, hist.String(), "Distance Histogram:")
}

func TestEmptyHistogram(t *testing.T) {
	_, err := NewDistanceHistogram(nil, 10)
	require.Error(t, err)

	_, err = NewDistanceHistogram([]int{1}, 0)
	require.Error(t, err)
}

func BenchmarkFromAnnotations(b *testing.B) {
	anns := make([]*boundary.Annotation, 1000)
	for i := range anns {
		anns[i] = &boundary.Annotation{DiffToTSS: i - 500, DiffToTTS: 500 - i, PercADownstream: optional.Of(float64(i%10) / 10)}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = FromAnnotations(anns)
	}
}
