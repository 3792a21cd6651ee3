// internal/pipeline/pipeline.go
package pipeline

import (
	"context"
	"io"
	"runtime"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"srat/internal/metrics"
	"srat/internal/search"
	"srat/internal/seqio"
)

var tracer = otel.Tracer("srat/pipeline")

// Config controls the search pipeline.
type Config struct {
	Threads  int              // worker goroutines; <1 means runtime.NumCPU()
	Progress io.Writer        // progress bar destination; nil disables it
	Metrics  *metrics.Metrics // optional
}

// Summary counts read outcomes for one run.
type Summary struct {
	Reads     int `json:"reads"`
	Matched   int `json:"matched"`
	NoMatch   int `json:"no_match"`
	Discarded int `json:"discarded"`
	Hits      int `json:"hits"`
}

func (s *Summary) add(res search.Result) {
	s.Reads++
	switch res.Outcome {
	case search.Matched:
		s.Matched++
		s.Hits += len(res.Hits)
	case search.Discarded:
		s.Discarded++
	default:
		s.NoMatch++
	}
}

// EmitFunc receives each read and its result, in source order.
type EmitFunc func(seqio.Read, search.Result) error

type job struct {
	ord  int
	read seqio.Read
}

type done struct {
	job
	res search.Result
	dur time.Duration
}

// Run searches every read from src with Threads workers and calls emit for
// each read in the order src produced them. It returns the first error from
// src or emit, or the context error if ctx is cancelled.
func Run(ctx context.Context, cfg Config, src Source, s Searcher, emit EmitFunc) (Summary, error) {
	if cfg.Threads < 1 {
		cfg.Threads = runtime.NumCPU()
	}
	ctx, span := tracer.Start(ctx, "pipeline.Run",
		trace.WithAttributes(attribute.Int("threads", cfg.Threads)))
	defer span.End()

	var sum Summary
	bar := newProgress(cfg.Progress)

	g, gctx := errgroup.WithContext(ctx)
	jobs := make(chan job, cfg.Threads*2)
	results := make(chan done, cfg.Threads*2)

	// Feed
	g.Go(func() error {
		defer close(jobs)
		ord := 0
		return src(gctx, func(r seqio.Read) error {
			select {
			case jobs <- job{ord: ord, read: r}:
				ord++
				return nil
			case <-gctx.Done():
				return gctx.Err()
			}
		})
	})

	// Workers
	var wg sync.WaitGroup
	wg.Add(cfg.Threads)
	for w := 0; w < cfg.Threads; w++ {
		g.Go(func() error {
			defer wg.Done()
			for j := range jobs {
				t0 := time.Now()
				res := s.Search(j.read.ID, j.read.Seq)
				d := done{job: j, res: res, dur: time.Since(t0)}
				if cfg.Metrics != nil {
					cfg.Metrics.SearchDuration.Observe(d.dur.Seconds())
				}
				select {
				case results <- d:
				case <-gctx.Done():
					return gctx.Err()
				}
			}
			return nil
		})
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	// Collector: reorder by ordinal.
	g.Go(func() error {
		pending := make(map[int]done)
		next := 0
		for d := range results {
			pending[d.ord] = d
			for {
				cur, ok := pending[next]
				if !ok {
					break
				}
				delete(pending, next)
				next++
				sum.add(cur.res)
				if m := cfg.Metrics; m != nil {
					m.Reads.WithLabelValues(cur.res.Outcome.String()).Inc()
					m.Hits.Add(float64(len(cur.res.Hits)))
				}
				bar.incr(cur.dur)
				if err := emit(cur.read, cur.res); err != nil {
					return err
				}
			}
		}
		return nil
	})

	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	bar.finish(err == nil)

	span.SetAttributes(
		attribute.Int("reads", sum.Reads),
		attribute.Int("matched", sum.Matched),
		attribute.Int("discarded", sum.Discarded),
		attribute.Int("hits", sum.Hits),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return sum, err
}
