package boundary

import (
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aria-lang/isoannot-go/internal/genemodel"
	"github.com/aria-lang/isoannot-go/internal/interval"
	"github.com/aria-lang/isoannot-go/internal/logging"
	"github.com/aria-lang/isoannot-go/internal/sitecache"
)

func iv(s, e int) interval.Interval { return interval.Interval{Start: s, End: e} }

func testModel(t *testing.T) *genemodel.DB {
	t.Helper()
	db := genemodel.NewDB()
	for _, tr := range []*genemodel.Transcript{
		{ID: "T1", GeneID: "G1", Chrom: "chr1", Strand: genemodel.Plus,
			Exons: []interval.Interval{iv(1001, 1200), iv(1501, 2000)},
			CDS:   []interval.Interval{iv(1101, 1200), iv(1501, 1800)}},
		{ID: "T2", GeneID: "G1", Chrom: "chr1", Strand: genemodel.Plus,
			Exons: []interval.Interval{iv(1001, 1200), iv(1601, 1900)}},

		// {+200, +50, -5} from a read starting at 1001.
		{ID: "C", GeneID: "GD", Chrom: "chr1", Strand: genemodel.Plus, Exons: []interval.Interval{iv(801, 1300)}},
		{ID: "A", GeneID: "GD", Chrom: "chr1", Strand: genemodel.Plus, Exons: []interval.Interval{iv(951, 1300)}},
		{ID: "B", GeneID: "GD", Chrom: "chr1", Strand: genemodel.Plus, Exons: []interval.Interval{iv(1006, 1300)}},

		// +5 and -5 from a read starting at 1001.
		{ID: "E", GeneID: "GT", Chrom: "chr1", Strand: genemodel.Plus, Exons: []interval.Interval{iv(996, 1300)}},
		{ID: "F", GeneID: "GT", Chrom: "chr1", Strand: genemodel.Plus, Exons: []interval.Interval{iv(1006, 1300)}},

		{ID: "TM", GeneID: "GM", Chrom: "chr2", Strand: genemodel.Minus,
			Exons: []interval.Interval{iv(1001, 1200), iv(1501, 2000)}},
	} {
		require.NoError(t, db.AddTranscript(tr))
	}
	return db
}

func testAnnotator(t *testing.T) *Annotator {
	return NewAnnotator(testModel(t), WithLogger(logging.NewNop()))
}

func TestDistancesInsideTranscript(t *testing.T) {
	a := testAnnotator(t)
	r := &Read{ID: "r", GeneID: "G1", Exons: []interval.Interval{iv(1051, 1200), iv(1501, 1950)}}

	tss, err := a.TSSDist(r, "T1")
	require.NoError(t, err)
	tts, err := a.TTSDist(r, "T1")
	require.NoError(t, err)

	assert.Equal(t, 50, tss)
	assert.Equal(t, 50, tts)
}

func TestDistancesCountTranscriptExonsOnUndershoot(t *testing.T) {
	a := testAnnotator(t)
	// Read ends inside the first exon; the intron is skipped.
	r := &Read{ID: "r", GeneID: "G1", Exons: []interval.Interval{iv(1001, 1150)}}

	tts, err := a.TTSDist(r, "T1")
	require.NoError(t, err)
	assert.Equal(t, 50+500, tts)
}

func TestDistancesCountReadExonsOnOvershoot(t *testing.T) {
	a := testAnnotator(t)

	tests := []struct {
		name    string
		exons   []interval.Interval
		wantTSS int
		wantTTS int
	}{
		{
			name:    "past the 3' end",
			exons:   []interval.Interval{iv(1001, 1200), iv(1501, 2000), iv(2101, 2200)},
			wantTSS: 0,
			wantTTS: -100,
		},
		{
			name:    "before the 5' end",
			exons:   []interval.Interval{iv(901, 950), iv(1001, 1200), iv(1501, 2000)},
			wantTSS: -50,
			wantTTS: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &Read{ID: "r", GeneID: "G1", Exons: tt.exons}

			tss, err := a.TSSDist(r, "T1")
			require.NoError(t, err)
			tts, err := a.TTSDist(r, "T1")
			require.NoError(t, err)

			assert.Equal(t, tt.wantTSS, tss)
			assert.Equal(t, tt.wantTTS, tts)
		})
	}
}

func TestDistanceUnknownTranscript(t *testing.T) {
	a := testAnnotator(t)
	r := &Read{ID: "r", Exons: []interval.Interval{iv(1, 10)}}

	_, err := a.TSSDist(r, "missing")
	assert.ErrorIs(t, err, genemodel.ErrUnknownTranscript)
	_, err = a.TTSDist(r, "missing")
	assert.ErrorIs(t, err, genemodel.ErrUnknownTranscript)
}

func TestClosestTSTS(t *testing.T) {
	a := testAnnotator(t)

	t.Run("smallest magnitude", func(t *testing.T) {
		r := &Read{ID: "r", GeneID: "GD", Exons: []interval.Interval{iv(1001, 1300)}}
		tss, tts, err := a.ClosestTSTS(r)
		require.NoError(t, err)
		assert.Equal(t, -5, tss)
		assert.Equal(t, 0, tts)
	})

	t.Run("first transcript wins ties", func(t *testing.T) {
		r := &Read{ID: "r", GeneID: "GT", Exons: []interval.Interval{iv(1001, 1300)}}
		tss, _, err := a.ClosestTSTS(r)
		require.NoError(t, err)
		assert.Equal(t, 5, tss)
	})

	t.Run("unknown gene", func(t *testing.T) {
		_, _, err := a.ClosestTSTS(&Read{ID: "r", GeneID: "nope", Exons: []interval.Interval{iv(1, 2)}})
		assert.ErrorIs(t, err, genemodel.ErrUnknownGene)
	})
}

func TestSitesMatchReference(t *testing.T) {
	tests := []struct {
		name string
		read Read
		want SiteMatch
		str  string
	}{
		{"no introns", Read{}, Unspliced, "Unspliced"},
		{"all match", Read{Introns: []interval.Interval{iv(10, 20), iv(30, 40)}, IntronProfile: []int{1, 1}}, SitesMatch, "True"},
		{"one differs", Read{Introns: []interval.Interval{iv(10, 20), iv(30, 40)}, IntronProfile: []int{1, -1}}, SitesDiffer, "False"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SitesMatchReference(&tt.read)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.str, got.String())
		})
	}
}

// siteRegion returns a region at 1001 whose bases are C except for the
// dinucleotides placed at the given offsets.
func siteRegion(n int, sites map[int]string) *genemodel.GeneRegion {
	b := []byte(strings.Repeat("C", n))
	for off, s := range sites {
		copy(b[off:], s)
	}
	return &genemodel.GeneRegion{GeneID: "G", Chrom: "chr1", Start: 1001, Sequence: string(b), Sites: sitecache.NewMemory()}
}

func TestSitesAreCanonical(t *testing.T) {
	// Intron 1011-1020: donor at offsets 10-11, acceptor at 18-19.
	intron := []interval.Interval{iv(1011, 1020)}

	tests := []struct {
		name   string
		donor  string
		accept string
		strand genemodel.Strand
		want   bool
	}{
		{"GT-AG plus", "GT", "AG", genemodel.Plus, true},
		{"GC-AG plus", "GC", "AG", genemodel.Plus, true},
		{"AT-AC plus", "AT", "AC", genemodel.Plus, true},
		{"CC-AG plus", "CC", "AG", genemodel.Plus, false},
		{"GT-CT plus", "GT", "CT", genemodel.Plus, false},
		{"AC-CT minus", "AC", "CT", genemodel.Minus, true},
		{"GC-GT minus", "GC", "GT", genemodel.Minus, true},
		{"GT-AG minus", "GT", "AG", genemodel.Minus, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			region := siteRegion(40, map[int]string{10: tt.donor, 18: tt.accept})
			assert.Equal(t, tt.want, SitesAreCanonical(intron, region, tt.strand))
		})
	}
}

func TestSitesAreCanonicalCacheIsAuthoritative(t *testing.T) {
	intron := []interval.Interval{iv(1011, 1020)}
	region := siteRegion(40, map[int]string{10: "GT", 18: "AG"})

	require.True(t, SitesAreCanonical(intron, region, genemodel.Plus))

	region.Sequence = strings.Repeat("C", 40)
	assert.True(t, SitesAreCanonical(intron, region, genemodel.Plus))

	v, ok := region.Sites.Lookup(intron[0])
	require.True(t, ok)
	assert.True(t, v)
}

func TestSitesAreCanonicalSharedRedisPerReference(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	newCache := func(r *genemodel.GeneRegion) sitecache.Cache {
		return sitecache.NewRedis(client, r.Key(), sitecache.WithRedisLogger(logging.NewNop()))
	}

	model := testModel(t)
	intron := []interval.Interval{iv(1201, 1500)}
	canonical := []byte(strings.Repeat("C", 2100))
	copy(canonical[1200:], "GT")
	copy(canonical[1498:], "AG")

	region := func(contig string) *genemodel.GeneRegion {
		t.Helper()
		rs := genemodel.NewRegions(model, genemodel.Contigs{"chr1": contig}, DefaultUpstreamRegionLen+1, newCache)
		r, err := rs.Get("G1")
		require.NoError(t, err)
		require.NotNil(t, r)
		return r
	}

	assert.True(t, SitesAreCanonical(intron, region(string(canonical)), genemodel.Plus))
	assert.False(t, SitesAreCanonical(intron, region(strings.Repeat("C", 2100)), genemodel.Plus),
		"another reference for the same gene gets its own verdicts")

	v, ok := region(string(canonical)).Sites.Lookup(intron[0])
	require.True(t, ok, "an identical region reuses the stored verdict")
	assert.True(t, v)
}

func TestSitesAreCanonicalStopsAtFirstFailure(t *testing.T) {
	introns := []interval.Interval{iv(1011, 1020), iv(1031, 1040)}
	region := siteRegion(60, map[int]string{30: "GT", 38: "AG"})

	assert.False(t, SitesAreCanonical(introns, region, genemodel.Plus))
	assert.Equal(t, 1, region.Sites.(*sitecache.Memory).Len())
}

func TestDownstreamPolyA(t *testing.T) {
	a := testAnnotator(t)

	t.Run("plus strand reads A past the end", func(t *testing.T) {
		region := &genemodel.GeneRegion{Start: 1001, Sequence: strings.Repeat("C", 30) + strings.Repeat("A", 20) + "CCCC"}
		seq, frac := a.DownstreamPolyA(1001, 1030, region, genemodel.Plus)
		assert.Equal(t, strings.Repeat("A", 20), seq)
		assert.InDelta(t, 1.0, frac, 1e-9)
	})

	t.Run("minus strand reads T before the start", func(t *testing.T) {
		region := &genemodel.GeneRegion{Start: 1001, Sequence: strings.Repeat("T", 20) + strings.Repeat("C", 40)}
		seq, frac := a.DownstreamPolyA(1021, 1060, region, genemodel.Minus)
		assert.Equal(t, strings.Repeat("T", 20), seq)
		assert.InDelta(t, 1.0, frac, 1e-9)
	})

	t.Run("window cut by the region edge", func(t *testing.T) {
		region := &genemodel.GeneRegion{Start: 1001, Sequence: strings.Repeat("T", 30)}
		seq, frac := a.DownstreamPolyA(1011, 1030, region, genemodel.Minus)
		assert.Len(t, seq, 10)
		assert.InDelta(t, 0.5, frac, 1e-9)
	})

	t.Run("custom window", func(t *testing.T) {
		short := NewAnnotator(testModel(t), WithUpstreamRegionLen(4), WithLogger(logging.NewNop()))
		region := &genemodel.GeneRegion{Start: 1, Sequence: "CCCCAACG"}
		seq, frac := short.DownstreamPolyA(1, 4, region, genemodel.Plus)
		assert.Equal(t, "AACG", seq)
		assert.InDelta(t, 0.5, frac, 1e-9)
	})
}

func TestRefCDSRegion(t *testing.T) {
	a := testAnnotator(t)

	start, end, err := a.RefCDSRegion("T1")
	require.NoError(t, err)
	assert.Equal(t, 1101, start)
	assert.Equal(t, 1800, end)

	start, end, err = a.RefCDSRegion("T2")
	require.NoError(t, err)
	assert.Equal(t, -1, start)
	assert.Equal(t, -1, end)

	_, _, err = a.RefCDSRegion("missing")
	assert.ErrorIs(t, err, genemodel.ErrUnknownTranscript)
}
