package genemodel

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/aria-lang/isoannot-go/internal/sitecache"
)

// GeneRegion is the reference window of one gene. Sequence[0] sits at the
// 1-based coordinate Start. Sites memoizes canonical-site verdicts for the
// introns of reads mapped to this gene and lives as long as the region.
//
// ContigLen is the length of the whole contig. Zero treats the window as
// the whole contig.
type GeneRegion struct {
	GeneID    string
	Chrom     string
	Start     int
	Sequence  string
	ContigLen int
	Sites     sitecache.Cache
}

// NewGeneRegion cuts the window covering g plus padding bases on both
// sides from contigs. It reports false when the gene's contig is not
// loaded. A nil cache gets an in-memory one.
func NewGeneRegion(g *Gene, contigs Contigs, padding int, sites sitecache.Cache) (*GeneRegion, bool) {
	contig, ok := contigs[g.Chrom]
	if !ok {
		return nil, false
	}
	if padding < 0 {
		padding = 0
	}

	start := max(g.Start-padding, 1)
	end := min(g.End+padding, len(contig))
	if start > end {
		return nil, false
	}

	if sites == nil {
		sites = sitecache.NewMemory()
	}
	return &GeneRegion{
		GeneID:    g.ID,
		Chrom:     g.Chrom,
		Start:     start,
		Sequence:  strings.ToUpper(contig[start-1 : end]),
		ContigLen: len(contig),
		Sites:     sites,
	}, true
}

// End returns the 1-based coordinate of the last base of the window.
func (r *GeneRegion) End() int {
	return r.Start + len(r.Sequence) - 1
}

// Covers reports whether every base of the 1-based closed span
// [start, end] that exists on the contig lies inside the window. Bases
// past the contig ends exist nowhere, so they never make a span uncovered.
func (r *GeneRegion) Covers(start, end int) bool {
	first, last := 1, r.ContigLen
	if r.ContigLen == 0 {
		first, last = r.Start, r.End()
	}
	start, end = max(start, first), min(end, last)
	return start > end || (start >= r.Start && end <= r.End())
}

// Key identifies the region by gene and content. Regions cut from
// different references never share a key.
func (r *GeneRegion) Key() string {
	h := xxhash.New()
	h.WriteString(r.Chrom)
	h.WriteString(":")
	h.WriteString(strconv.Itoa(r.Start))
	h.WriteString(":")
	h.WriteString(r.Sequence)
	return fmt.Sprintf("%s:%016x", r.GeneID, h.Sum64())
}

// Slice returns Sequence[i:j] with both bounds clamped to the window.
func (r *GeneRegion) Slice(i, j int) string {
	i = max(i, 0)
	j = min(j, len(r.Sequence))
	if i >= j {
		return ""
	}
	return r.Sequence[i:j]
}

// Offset converts a 1-based genomic coordinate into an index of Sequence.
func (r *GeneRegion) Offset(pos int) int {
	return pos - r.Start
}

// Regions builds gene regions on first use and hands the same region to
// every read of a gene, so reads of one gene share one site cache.
type Regions struct {
	db       *DB
	contigs  Contigs
	padding  int
	newCache func(r *GeneRegion) sitecache.Cache

	mu      sync.Mutex
	regions map[string]*GeneRegion
}

// NewRegions creates a region set over db and contigs. newCache builds
// the site cache of each new region; nil gives in-memory caches.
func NewRegions(db *DB, contigs Contigs, padding int, newCache func(r *GeneRegion) sitecache.Cache) *Regions {
	return &Regions{
		db:       db,
		contigs:  contigs,
		padding:  padding,
		newCache: newCache,
		regions:  make(map[string]*GeneRegion),
	}
}

// Get returns the region of a gene, or nil when its contig is not loaded.
// Unknown genes are an error.
func (rs *Regions) Get(geneID string) (*GeneRegion, error) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if r, ok := rs.regions[geneID]; ok {
		return r, nil
	}
	g, err := rs.db.Gene(geneID)
	if err != nil {
		return nil, err
	}

	r, ok := NewGeneRegion(g, rs.contigs, rs.padding, nil)
	if !ok {
		r = nil
	} else if rs.newCache != nil {
		r.Sites = rs.newCache(r)
	}
	rs.regions[geneID] = r
	return r, nil
}

// Len returns the number of genes looked up so far.
func (rs *Regions) Len() int {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return len(rs.regions)
}
