// Package pipeline runs the tail locator and boundary annotator over a
// stream of alignments.
//
// Alignments are read in batches. Each batch is processed by a bounded
// pool of goroutines and its results are emitted in input order before
// the next batch is read.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/aria-lang/isoannot-go/internal/alignment"
)

// DefaultBatchSize is the number of alignments processed per batch.
const DefaultBatchSize = 256

// Source yields alignments until io.EOF. *alignment.Reader is a Source.
type Source interface {
	Read() (*alignment.Alignment, error)
}

// SliceSource serves alignments from memory.
type SliceSource struct {
	items []*alignment.Alignment
	next  int
}

// NewSliceSource wraps items.
func NewSliceSource(items []*alignment.Alignment) *SliceSource {
	return &SliceSource{items: items}
}

func (s *SliceSource) Read() (*alignment.Alignment, error) {
	if s.next >= len(s.items) {
		return nil, io.EOF
	}
	a := s.items[s.next]
	s.next++
	return a, nil
}

// Options controls batch size and parallelism.
type Options struct {
	Workers   int
	BatchSize int
	Logger    *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.Workers <= 0 {
		o.Workers = runtime.GOMAXPROCS(0)
	}
	if o.BatchSize <= 0 {
		o.BatchSize = DefaultBatchSize
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// run reads batches from src, applies fn to each alignment concurrently
// and passes the results to emit in input order. A false second result
// from fn drops the alignment.
func run[T any](ctx context.Context, src Source, opts Options,
	fn func(*alignment.Alignment) (T, bool, error), emit func(T) error) error {

	opts = opts.withDefaults()
	batch := make([]*alignment.Alignment, 0, opts.BatchSize)
	results := make([]T, opts.BatchSize)
	keep := make([]bool, opts.BatchSize)

	for n := 0; ; n++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		batch = batch[:0]
		eof := false
		for len(batch) < opts.BatchSize {
			a, err := src.Read()
			if errors.Is(err, io.EOF) {
				eof = true
				break
			}
			if err != nil {
				return fmt.Errorf("reading alignments: %w", err)
			}
			batch = append(batch, a)
		}

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(opts.Workers)
		for i, a := range batch {
			i, a := i, a
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				r, ok, err := fn(a)
				if err != nil {
					return err
				}
				results[i], keep[i] = r, ok
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		for i := range batch {
			if !keep[i] {
				continue
			}
			if err := emit(results[i]); err != nil {
				return err
			}
		}
		opts.Logger.Debug("batch done", "batch", n, "alignments", len(batch))

		if eof {
			return nil
		}
	}
}
