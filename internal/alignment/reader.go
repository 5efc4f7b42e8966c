package alignment

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/biogo/hts/bam"
	"github.com/biogo/hts/sam"
)

// Reader streams the primary alignment of each mapped read from a SAM or
// BAM source. Unmapped, secondary and supplementary records are skipped.
type Reader struct {
	next    func() (*sam.Record, error)
	closers []io.Closer
}

// NewSAMReader reads SAM text from r.
func NewSAMReader(r io.Reader) (*Reader, error) {
	sr, err := sam.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("reading SAM header: %w", err)
	}
	return &Reader{next: sr.Read}, nil
}

// NewBAMReader reads BGZF-compressed BAM from r.
func NewBAMReader(r io.Reader) (*Reader, error) {
	br, err := bam.NewReader(r, 0)
	if err != nil {
		return nil, fmt.Errorf("reading BAM header: %w", err)
	}
	return &Reader{next: br.Read, closers: []io.Closer{br}}, nil
}

// Open opens a SAM or BAM file, choosing the format by extension.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}

	var r *Reader
	if strings.HasSuffix(strings.ToLower(path), ".bam") {
		r, err = NewBAMReader(f)
	} else {
		r, err = NewSAMReader(f)
	}
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	r.closers = append(r.closers, f)
	return r, nil
}

const skipFlags = sam.Unmapped | sam.Secondary | sam.Supplementary

// Read returns the next primary alignment or io.EOF.
func (r *Reader) Read() (*Alignment, error) {
	for {
		rec, err := r.next()
		if err != nil {
			return nil, err
		}
		if rec.Flags&skipFlags != 0 {
			continue
		}
		return FromRecord(rec), nil
	}
}

// Close releases the underlying readers and file.
func (r *Reader) Close() error {
	var first error
	for _, c := range r.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
