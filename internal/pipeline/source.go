// internal/pipeline/source.go
package pipeline

import (
	"context"

	"srat/internal/search"
	"srat/internal/seqio"
)

// Searcher is the minimal capability the pipeline needs.
// Any engine (including fakes in tests) can satisfy this.
type Searcher interface {
	Search(readID, seq string) search.Result
}

// Source feeds reads to fn in order until exhausted, fn fails, or ctx is done.
type Source func(ctx context.Context, fn func(seqio.Read) error) error

// FileSource streams a FASTA/FASTQ file.
func FileSource(path string) Source {
	return func(ctx context.Context, fn func(seqio.Read) error) error {
		return seqio.ForEachRead(ctx, path, fn)
	}
}

// SliceSource replays an in-memory read list.
func SliceSource(reads []seqio.Read) Source {
	return func(ctx context.Context, fn func(seqio.Read) error) error {
		for _, r := range reads {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := fn(r); err != nil {
				return err
			}
		}
		return nil
	}
}
