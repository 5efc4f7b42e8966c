package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aria-lang/isoannot-go/internal/alignment"
	"github.com/aria-lang/isoannot-go/internal/genemodel"
	"github.com/aria-lang/isoannot-go/internal/interval"
)

func TestBuild(t *testing.T) {
	tr := &genemodel.Transcript{
		ID:    "T1",
		Exons: []interval.Interval{{Start: 101, End: 150}, {Start: 251, End: 300}, {Start: 401, End: 450}},
	}

	tests := []struct {
		name    string
		cigar   string
		start   int
		introns []interval.Interval
		want    []int
	}{
		{
			name:    "exact junctions",
			cigar:   "50M100N50M100N50M",
			start:   100,
			introns: []interval.Interval{{Start: 151, End: 250}, {Start: 301, End: 400}},
			want:    []int{Match, Match},
		},
		{
			name:    "shifted second junction",
			cigar:   "50M100N52M98N48M",
			start:   100,
			introns: []interval.Interval{{Start: 151, End: 250}, {Start: 303, End: 400}},
			want:    []int{Match, Mismatch},
		},
		{
			name:  "unspliced",
			cigar: "150M",
			start: 100,
			want:  []int{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := alignment.New("r", "", tt.cigar, tt.start)
			require.NoError(t, err)

			p := Build(a, tr)
			assert.Equal(t, tt.introns, p.Introns)
			assert.Equal(t, tt.want, p.IntronProfile)
			assert.Equal(t, a.Blocks(), p.Exons)
		})
	}
}

func TestCompareWithoutTranscript(t *testing.T) {
	got := Compare([]interval.Interval{{Start: 1, End: 10}}, nil)
	assert.Equal(t, []int{Mismatch}, got)
}
