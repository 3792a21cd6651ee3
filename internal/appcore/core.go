// internal/appcore/core.go
package appcore

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"srat/internal/cmdutil"
	"srat/internal/config"
	"srat/internal/hit"
	"srat/internal/jsonutil"
	"srat/internal/metrics"
	"srat/internal/pipeline"
	"srat/internal/search"
	"srat/internal/writers"
	"srat/pkg/api"
)

var tracer = otel.Tracer("srat/appcore")

// Exit codes shared by all subcommands.
const (
	ExitOK        = 0
	ExitUsage     = 2
	ExitIO        = 3
	ExitCancelled = 130
)

// Options describe one alignment run.
type Options struct {
	GenomePath string
	ReadsPath  string
	OutDir     string // "-" writes the report to stdout
	StorePath  string

	Config   config.Config
	Progress bool

	MetricsFile string
	SummaryFile string
	RunID       string
}

// Run aligns every read against the genome and writes the report. It returns
// the process exit code.
func Run(parent context.Context, stdout, stderr io.Writer, o Options, log *slog.Logger) int {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()
	ctx, span := tracer.Start(ctx, "srat.align")
	defer span.End()

	m := metrics.New()
	cfg := o.Config
	thr := cfg.Threads
	if thr <= 0 {
		thr = runtime.NumCPU()
	}

	prep, err := Prepare(ctx, PrepareOptions{
		GenomePath: o.GenomePath,
		StorePath:  o.StorePath,
		Config:     cfg,
		Logger:     log,
		Metrics:    m,
	})
	if err != nil {
		return fail(log, err)
	}
	defer func() { _ = prep.Close() }()

	eng := search.New(cfg.SearchConfig(), prep.Strands.Name, prep.Fwd, prep.Rev)

	wf := NewHitWriterFactory(cfg.Format, cfg.Header)
	dst := stdout
	var fh *os.File
	if o.OutDir != "-" {
		if err := os.MkdirAll(o.OutDir, 0o755); err != nil {
			return fail(log, err)
		}
		path := wf.OutputPath(o.OutDir, o.ReadsPath, o.GenomePath)
		fh, err = os.Create(path)
		if err != nil {
			return fail(log, err)
		}
		dst = fh
		log.Info("writing report", "path", path, "format", cfg.Format)
	}
	outw := bufio.NewWriter(dst)

	inCh, writeErr := wf.Start(outw, thr*4)

	pcfg := pipeline.Config{Threads: thr, Metrics: m}
	if o.Progress {
		pcfg.Progress = stderr
	}
	t0 := time.Now()
	sum, perr := cmdutil.RunStream(ctx, pcfg, pipeline.FileSource(o.ReadsPath), eng, func(h hit.Hit) error {
		select {
		case inCh <- h:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})
	close(inCh)

	werr := <-writeErr
	if werr == nil {
		werr = outw.Flush()
	}
	if fh != nil {
		if cerr := fh.Close(); werr == nil {
			werr = cerr
		}
	}
	if writers.IsBrokenPipe(werr) {
		werr = nil
	}
	if werr != nil {
		return fail(log, werr)
	}

	if perr != nil {
		if errors.Is(perr, context.Canceled) {
			return ExitCancelled
		}
		return fail(log, perr)
	}
	if err := prep.Err(); err != nil {
		return fail(log, err)
	}

	span.SetAttributes(attribute.Int("reads", sum.Reads), attribute.Int("hits", sum.Hits))
	log.Info("alignment finished",
		"reads", sum.Reads, "matched", sum.Matched, "no_match", sum.NoMatch,
		"discarded", sum.Discarded, "hits", sum.Hits, "elapsed", time.Since(t0))

	if o.SummaryFile != "" {
		rep := api.SummaryV1{
			RunID:     o.RunID,
			Genome:    prep.Strands.Name,
			Reads:     sum.Reads,
			Matched:   sum.Matched,
			NoMatch:   sum.NoMatch,
			Discarded: sum.Discarded,
			Hits:      sum.Hits,
		}
		if err := jsonutil.WriteFile(o.SummaryFile, rep); err != nil {
			return fail(log, fmt.Errorf("write summary: %w", err))
		}
	}
	if o.MetricsFile != "" {
		if err := m.WriteTextfile(o.MetricsFile); err != nil {
			return fail(log, fmt.Errorf("write metrics: %w", err))
		}
	}
	if sum.Hits == 0 {
		return cfg.NoMatchExitCode
	}
	return ExitOK
}

func fail(log *slog.Logger, err error) int {
	if errors.Is(err, context.Canceled) {
		return ExitCancelled
	}
	log.Error("run failed", "err", err)
	return ExitIO
}
