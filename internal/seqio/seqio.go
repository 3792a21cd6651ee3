// Package seqio reads genomes and reads from FASTA/FASTQ files (optionally
// gzipped, or "-" for stdin) and normalizes them for the search engine.
package seqio

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/shenwei356/bio/seq"
	"github.com/shenwei356/bio/seqio/fastx"

	"srat/internal/seqprep"
)

func init() {
	// Reads may be RNA (U) and genomes may carry IUPAC codes; Normalize and
	// the masking step handle the alphabet.
	seq.ValidateSeq = false
}

// ErrGenomeRecords is returned when a genome file does not hold exactly one record.
var ErrGenomeRecords = errors.New("genome FASTA should contain exactly one sequence")

// Read is one query sequence, uppercase with U translated to T.
type Read struct {
	ID  string
	Seq string
}

// LoadGenome reads a single-record FASTA and returns its ID and normalized
// sequence.
func LoadGenome(path string) (name, sequence string, err error) {
	r, err := fastx.NewReader(nil, path, "")
	if err != nil {
		return "", "", fmt.Errorf("open genome %s: %w", path, err)
	}
	defer r.Close()

	n := 0
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", "", fmt.Errorf("read genome %s: %w", path, err)
		}
		n++
		if n > 1 {
			break
		}
		name = string(rec.ID)
		sequence = seqprep.Normalize(string(rec.Seq.Seq))
	}
	if n != 1 {
		return "", "", fmt.Errorf("%s: %w (found %s)", path, ErrGenomeRecords, countWord(n))
	}
	return name, sequence, nil
}

func countWord(n int) string {
	if n > 1 {
		return "more than one"
	}
	return "none"
}

// ForEachRead streams every record of a FASTA or FASTQ file to fn in file
// order. The format is detected from content. Reading stops at the first
// error from fn or when ctx is done.
func ForEachRead(ctx context.Context, path string, fn func(Read) error) error {
	r, err := fastx.NewReader(nil, path, "")
	if err != nil {
		return fmt.Errorf("open reads %s: %w", path, err)
	}
	defer r.Close()

	for i := 0; ; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		rec, err := r.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read %d in %s: %w", i+1, path, err)
		}
		if err := fn(Read{ID: string(rec.ID), Seq: seqprep.Normalize(string(rec.Seq.Seq))}); err != nil {
			return err
		}
	}
}

// LoadReads collects all reads of path in file order.
func LoadReads(ctx context.Context, path string) ([]Read, error) {
	var out []Read
	err := ForEachRead(ctx, path, func(r Read) error {
		out = append(out, r)
		return nil
	})
	return out, err
}
