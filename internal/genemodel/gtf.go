package genemodel

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/biogo/biogo/io/featio/gff"
	"github.com/biogo/biogo/seq"

	"github.com/aria-lang/isoannot-go/internal/interval"
)

// pending accumulates the rows of one transcript while a GTF is read.
type pending struct {
	t       *Transcript
	hasSpan bool
}

// LoadGTF builds a model from GTF rows. Only transcript, exon and CDS
// rows are used; transcripts without a transcript row take their span
// from their exons. "##" metadata lines are ignored.
func LoadGTF(r io.Reader) (*DB, error) {
	in := gff.NewReader(&metadataFilter{r: bufio.NewReader(r)})
	byID := make(map[string]*pending)
	var order []string

	for line := 1; ; line++ {
		f, err := in.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("reading GTF feature %d: %w", line, err)
		}
		gf, ok := f.(*gff.Feature)
		if !ok {
			continue
		}

		kind := gf.Feature
		if kind != "transcript" && kind != "exon" && kind != "CDS" {
			continue
		}

		tid := attribute(gf, "transcript_id")
		gid := attribute(gf, "gene_id")
		if tid == "" || gid == "" {
			return nil, fmt.Errorf("GTF feature %d (%s at %s:%d): missing gene_id or transcript_id",
				line, kind, gf.SeqName, gf.FeatStart+1)
		}

		p, ok := byID[tid]
		if !ok {
			p = &pending{t: &Transcript{
				ID:     tid,
				GeneID: gid,
				Chrom:  gf.SeqName,
				Strand: strandOf(gf.FeatStrand),
			}}
			byID[tid] = p
			order = append(order, tid)
		}

		// biogo reports 0-based half-open starts; the model is 1-based closed.
		iv := interval.Interval{Start: gf.FeatStart + 1, End: gf.FeatEnd}
		switch kind {
		case "transcript":
			p.t.Start, p.t.End = iv.Start, iv.End
			p.hasSpan = true
		case "exon":
			p.t.Exons = append(p.t.Exons, iv)
		case "CDS":
			p.t.CDS = append(p.t.CDS, iv)
		}
	}

	db := NewDB()
	sort.Strings(order)
	for _, tid := range order {
		p := byID[tid]
		if !p.hasSpan {
			p.t.Start, p.t.End = 0, 0
		}
		if err := db.AddTranscript(p.t); err != nil {
			return nil, fmt.Errorf("loading GTF: %w", err)
		}
	}
	return db, nil
}

// LoadGTFFile opens and loads a GTF file.
func LoadGTFFile(path string) (*DB, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	db, err := LoadGTF(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return db, nil
}

// metadataFilter drops "##" lines. GTF defines no directives, and release
// headers such as GENCODE's "##description:" are not GFF pragmas.
type metadataFilter struct {
	r    *bufio.Reader
	line []byte
}

func (f *metadataFilter) Read(p []byte) (int, error) {
	for len(f.line) == 0 {
		line, err := f.r.ReadBytes('\n')
		if !bytes.HasPrefix(line, []byte("##")) {
			f.line = line
		}
		if err != nil {
			if len(f.line) == 0 {
				return 0, err
			}
			break
		}
	}
	n := copy(p, f.line)
	f.line = f.line[n:]
	return n, nil
}

// attribute returns an unquoted GTF attribute value.
func attribute(f *gff.Feature, tag string) string {
	return strings.Trim(strings.TrimSpace(f.FeatAttributes.Get(tag)), `"`)
}

func strandOf(s seq.Strand) Strand {
	switch s {
	case seq.Plus:
		return Plus
	case seq.Minus:
		return Minus
	default:
		return Unstranded
	}
}
