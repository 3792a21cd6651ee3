package index

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

var tracer = otel.Tracer("srat/index")

// Defaults for Options.
const (
	DefaultMinK      = 20
	DefaultMaxK      = 50
	DefaultPrefixLen = 8
)

// ErrInvalidRange is returned by Build for an empty or non-positive k range.
var ErrInvalidRange = errors.New("index: invalid k-mer length range")

// Options controls which lengths are indexed.
type Options struct {
	MinK int
	MaxK int
	// PrefixLen groups k-mers by their first PrefixLen bases before the exact
	// lookup. 0 disables bucketing. Lookup results do not depend on it.
	PrefixLen int
}

// DefaultOptions returns the 20..50 range with 8-base prefix buckets.
func DefaultOptions() Options {
	return Options{MinK: DefaultMinK, MaxK: DefaultMaxK, PrefixLen: DefaultPrefixLen}
}

func (o Options) validate() error {
	if o.MinK < 1 || o.MaxK < o.MinK {
		return fmt.Errorf("%w: [%d,%d]", ErrInvalidRange, o.MinK, o.MaxK)
	}
	if o.PrefixLen < 0 {
		return fmt.Errorf("index: prefix length must be >= 0, got %d", o.PrefixLen)
	}
	return nil
}

// table holds every k-mer of one length: prefix -> kmer -> ascending starts.
type table map[string]map[string][]int

// Index maps (length, k-mer) to the 0-based genome starts of that k-mer.
type Index struct {
	opts   Options
	size   int
	tables []table // tables[k-MinK]
}

// Build indexes every N-free k-mer of genome for k in [opts.MinK, opts.MaxK].
// Each length is built by its own goroutine into its own table.
func Build(ctx context.Context, genome string, opts Options) (*Index, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	ctx, span := tracer.Start(ctx, "index.Build")
	defer span.End()
	span.SetAttributes(
		attribute.Int("genome.length", len(genome)),
		attribute.Int("k.min", opts.MinK),
		attribute.Int("k.max", opts.MaxK),
	)

	idx := &Index{
		opts:   opts,
		size:   len(genome),
		tables: make([]table, opts.MaxK-opts.MinK+1),
	}

	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	for k := opts.MinK; k <= opts.MaxK; k++ {
		k := k
		g.Go(func() error {
			t, err := buildTable(gctx, genome, k, opts.PrefixLen)
			if err != nil {
				return err
			}
			idx.tables[k-opts.MinK] = t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(
		attribute.Int("kmers.distinct", idx.Stats().Keys()),
		attribute.Int64("build.ms", time.Since(start).Milliseconds()),
	)
	return idx, nil
}

// cancelCheckEvery bounds how many positions are scanned between ctx checks.
const cancelCheckEvery = 1 << 16

func buildTable(ctx context.Context, genome string, k, prefixLen int) (table, error) {
	t := make(table)
	// lastN is the rightmost N at or before the current window end.
	lastN := -1
	for i := 0; i < k-1 && i < len(genome); i++ {
		if genome[i] == 'N' {
			lastN = i
		}
	}
	for i := 0; i+k <= len(genome); i++ {
		if i%cancelCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if genome[i+k-1] == 'N' {
			lastN = i + k - 1
		}
		if lastN >= i {
			continue
		}
		kmer := genome[i : i+k]
		p := prefix(kmer, prefixLen)
		bucket := t[p]
		if bucket == nil {
			bucket = make(map[string][]int)
			t[p] = bucket
		}
		bucket[kmer] = append(bucket[kmer], i)
	}
	return t, nil
}

func prefix(kmer string, n int) string {
	if n <= 0 {
		return ""
	}
	if len(kmer) < n {
		return kmer
	}
	return kmer[:n]
}

// Lookup returns the genome starts of sub, in ascending order. The result is
// empty when len(sub) is outside the indexed range or sub was never indexed,
// which includes any sub containing 'N'. Callers must not modify the slice.
func (x *Index) Lookup(sub string) []int {
	if x == nil {
		return nil
	}
	k := len(sub)
	if k < x.opts.MinK || k > x.opts.MaxK {
		return nil
	}
	t := x.tables[k-x.opts.MinK]
	if t == nil {
		return nil
	}
	return t[prefix(sub, x.opts.PrefixLen)][sub]
}

// Options returns the options the index was built with.
func (x *Index) Options() Options { return x.opts }

// GenomeLen is the length of the indexed sequence.
func (x *Index) GenomeLen() int { return x.size }

// Each calls fn for every indexed (k, kmer, positions) triple, ordered by k.
// Order within one k is unspecified. A non-nil error from fn stops the walk.
func (x *Index) Each(fn func(k int, kmer string, positions []int) error) error {
	for i, t := range x.tables {
		k := x.opts.MinK + i
		for _, bucket := range t {
			for kmer, pos := range bucket {
				if err := fn(k, kmer, pos); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// Stats reports distinct k-mer counts per indexed length.
type Stats map[int]int

// Keys sums the distinct k-mers across lengths.
func (s Stats) Keys() int {
	n := 0
	for _, c := range s {
		n += c
	}
	return n
}

func (x *Index) Stats() Stats {
	s := make(Stats, len(x.tables))
	for i, t := range x.tables {
		n := 0
		for _, bucket := range t {
			n += len(bucket)
		}
		s[x.opts.MinK+i] = n
	}
	return s
}
