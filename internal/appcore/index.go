package appcore

import (
	"bufio"
	"context"
	"io"
	"log/slog"

	"srat/internal/config"
	"srat/internal/jsonutil"
	"srat/internal/writers"
)

// IndexOptions describe one "srat index" run.
type IndexOptions struct {
	GenomePath string
	StorePath  string
	Rebuild    bool
	Config     config.Config
}

// IndexReport is printed to stdout after the store is populated.
type IndexReport struct {
	Digest     string `json:"digest"`
	Store      string `json:"store"`
	Genome     string `json:"genome"`
	GenomeLen  int    `json:"genome_len"`
	MinK       int    `json:"min_k"`
	MaxK       int    `json:"max_k"`
	MaskMinRun int    `json:"mask_min_run"`
	Keys       int    `json:"keys"`
}

// Index builds both strand indexes for a genome and persists them, or
// reports the existing entry when the store already holds them.
func Index(ctx context.Context, stdout io.Writer, o IndexOptions, log *slog.Logger) int {
	ctx, span := tracer.Start(ctx, "srat.index")
	defer span.End()

	prep, err := Prepare(ctx, PrepareOptions{
		GenomePath: o.GenomePath,
		StorePath:  o.StorePath,
		Rebuild:    o.Rebuild,
		Config:     o.Config,
		Logger:     log,
	})
	if err != nil {
		return fail(log, err)
	}
	defer func() { _ = prep.Close() }()

	m := prep.Meta
	rep := IndexReport{
		Digest:     prep.Digest,
		Store:      o.StorePath,
		Genome:     m.Genome,
		GenomeLen:  m.GenomeLen,
		MinK:       m.Options.MinK,
		MaxK:       m.Options.MaxK,
		MaskMinRun: m.MaskMinRun,
		Keys:       m.Keys,
	}
	outw := bufio.NewWriter(stdout)
	err = jsonutil.EncodePretty(outw, rep)
	if err == nil {
		err = outw.Flush()
	}
	if err != nil && !writers.IsBrokenPipe(err) {
		return fail(log, err)
	}
	return ExitOK
}
