package boundary

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aria-lang/isoannot-go/internal/genemodel"
	"github.com/aria-lang/isoannot-go/internal/interval"
	"github.com/aria-lang/isoannot-go/internal/sitecache"
)

func TestAnnotateWithoutRegion(t *testing.T) {
	a := testAnnotator(t)
	r := &Read{
		ID:            "read1",
		GeneID:        "G1",
		TranscriptID:  "T1",
		Exons:         []interval.Interval{iv(1051, 1200), iv(1501, 1950)},
		Introns:       []interval.Interval{iv(1201, 1500)},
		IntronProfile: []int{1},
	}

	ann, err := a.Annotate(r, nil)
	require.NoError(t, err)

	assert.Equal(t, "read1", ann.ReadID)
	assert.Equal(t, "chr1", ann.Chrom)
	assert.Equal(t, genemodel.Plus, ann.Strand)
	assert.Equal(t, 600, ann.Length)
	assert.Equal(t, 2, ann.ExonCount)
	assert.Equal(t, 700, ann.RefLength)
	assert.Equal(t, 2, ann.RefExons)
	assert.Equal(t, 50, ann.DiffToTSS)
	assert.Equal(t, 50, ann.DiffToTTS)
	assert.Equal(t, 50, ann.DiffToGeneTSS)
	assert.Equal(t, 50, ann.DiffToGeneTTS)
	assert.Equal(t, SitesMatch, ann.SitesMatch)
	assert.Equal(t, 1101, ann.CDSStart)
	assert.Equal(t, 1800, ann.CDSEnd)

	assert.False(t, ann.AllCanonical.Present())
	assert.False(t, ann.PercADownstream.Present())
	assert.False(t, ann.SeqADownstream.Present())
}

func TestAnnotateMinusStrandSwapsEnds(t *testing.T) {
	a := testAnnotator(t)
	r := &Read{
		ID:           "read2",
		GeneID:       "GM",
		TranscriptID: "TM",
		Exons:        []interval.Interval{iv(1051, 1200), iv(1501, 1900)},
	}

	ann, err := a.Annotate(r, nil)
	require.NoError(t, err)

	// Genomic left distance 50, right distance 100; the read's 5' end is
	// on the right.
	assert.Equal(t, 100, ann.DiffToTSS)
	assert.Equal(t, 50, ann.DiffToTTS)
	assert.Equal(t, 100, ann.DiffToGeneTSS)
	assert.Equal(t, 50, ann.DiffToGeneTTS)
	assert.Equal(t, Unspliced, ann.SitesMatch)
	assert.Equal(t, -1, ann.CDSStart)
	assert.Equal(t, -1, ann.CDSEnd)
}

func TestAnnotateWithRegion(t *testing.T) {
	a := testAnnotator(t)

	// Region 1001..2100: GT..AG around intron 1201-1500 and a run of A
	// after the read end at 1950.
	seq := []byte(strings.Repeat("C", 1100))
	copy(seq[200:], "GT")
	copy(seq[498:], "AG")
	copy(seq[950:], strings.Repeat("A", 20))
	region := &genemodel.GeneRegion{GeneID: "G1", Chrom: "chr1", Start: 1001, Sequence: string(seq), Sites: sitecache.NewMemory()}

	r := &Read{
		ID:            "read3",
		GeneID:        "G1",
		TranscriptID:  "T1",
		Exons:         []interval.Interval{iv(1051, 1200), iv(1501, 1950)},
		Introns:       []interval.Interval{iv(1201, 1500)},
		IntronProfile: []int{1},
	}

	ann, err := a.Annotate(r, region)
	require.NoError(t, err)

	canonical, ok := ann.AllCanonical.Get()
	require.True(t, ok)
	assert.True(t, canonical)
	assert.Equal(t, strings.Repeat("A", 20), ann.SeqADownstream.Or(""))
	assert.InDelta(t, 1.0, ann.PercADownstream.Or(0), 1e-9)
}

func TestAnnotateReadPastRegion(t *testing.T) {
	a := testAnnotator(t)
	newRegion := func() *genemodel.GeneRegion {
		return &genemodel.GeneRegion{
			GeneID:    "G1",
			Chrom:     "chr1",
			Start:     980,
			Sequence:  strings.Repeat("C", 1042), // 980..2021
			ContigLen: 5000,
			Sites:     sitecache.NewMemory(),
		}
	}

	t.Run("downstream window past the region", func(t *testing.T) {
		region := newRegion()
		r := &Read{
			ID:            "long",
			GeneID:        "G1",
			TranscriptID:  "T1",
			Exons:         []interval.Interval{iv(1051, 1200), iv(1501, 2100)},
			Introns:       []interval.Interval{iv(1201, 1500)},
			IntronProfile: []int{1},
		}

		ann, err := a.Annotate(r, region)
		require.NoError(t, err)
		assert.Equal(t, -100, ann.DiffToTTS)
		assert.True(t, ann.AllCanonical.Present(), "intron sites are inside the region")
		assert.False(t, ann.PercADownstream.Present())
		assert.False(t, ann.SeqADownstream.Present())
	})

	t.Run("intron past the region", func(t *testing.T) {
		region := newRegion()
		r := &Read{
			ID:           "spliced",
			GeneID:       "G1",
			TranscriptID: "T1",
			Exons:        []interval.Interval{iv(1501, 1990), iv(2201, 2300)},
			Introns:      []interval.Interval{iv(1991, 2200)},
		}

		ann, err := a.Annotate(r, region)
		require.NoError(t, err)
		assert.False(t, ann.AllCanonical.Present())
		assert.Equal(t, 0, region.Sites.(*sitecache.Memory).Len(), "no verdict cached")
		assert.False(t, ann.PercADownstream.Present())
	})

	t.Run("window past the contig end", func(t *testing.T) {
		region := newRegion()
		region.ContigLen = region.End()
		r := &Read{ID: "edge", GeneID: "G1", TranscriptID: "T1", Exons: []interval.Interval{iv(1501, 2015)}}

		ann, err := a.Annotate(r, region)
		require.NoError(t, err)
		assert.Equal(t, "CCCCCC", ann.SeqADownstream.Or(""))
		assert.InDelta(t, 0.0, ann.PercADownstream.Or(1), 1e-9)
	})
}

func TestAnnotateErrors(t *testing.T) {
	a := testAnnotator(t)

	_, err := a.Annotate(&Read{ID: "empty", GeneID: "G1", TranscriptID: "T1"}, nil)
	assert.ErrorIs(t, err, ErrEmptyRead)

	_, err = a.Annotate(&Read{ID: "r", GeneID: "G1", TranscriptID: "nope", Exons: []interval.Interval{iv(1001, 1100)}}, nil)
	assert.ErrorIs(t, err, genemodel.ErrUnknownTranscript)

	_, err = a.Annotate(&Read{ID: "r", GeneID: "nope", TranscriptID: "T1", Exons: []interval.Interval{iv(1001, 1100)}}, nil)
	assert.ErrorIs(t, err, genemodel.ErrUnknownGene)
}
