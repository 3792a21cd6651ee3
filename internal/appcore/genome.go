package appcore

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"srat/internal/config"
	"srat/internal/hit"
	"srat/internal/index"
	"srat/internal/indexstore"
	"srat/internal/metrics"
	"srat/internal/search"
	"srat/internal/seqio"
	"srat/internal/seqprep"
)

// Prepared is a loaded genome with lookups for both strands.
type Prepared struct {
	Strands seqprep.Strands
	Fwd     search.Lookuper
	Rev     search.Lookuper
	Digest  string
	Meta    *indexstore.Meta

	store *indexstore.Store
	views []*indexstore.View
}

// Err returns the first storage error seen while answering lookups.
func (p *Prepared) Err() error {
	for _, v := range p.views {
		if err := v.Err(); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the store, if any.
func (p *Prepared) Close() error {
	if p.store == nil {
		return nil
	}
	return p.store.Close()
}

// PrepareOptions selects the genome and how its index is obtained.
type PrepareOptions struct {
	GenomePath string
	StorePath  string // empty: build in memory only
	Rebuild    bool   // rebuild and overwrite a stored index
	Config     config.Config
	Logger     *slog.Logger
	Metrics    *metrics.Metrics
}

// Prepare loads and masks the genome, then builds both strand indexes or
// serves them from the store.
func Prepare(ctx context.Context, o PrepareOptions) (*Prepared, error) {
	name, raw, err := seqio.LoadGenome(o.GenomePath)
	if err != nil {
		return nil, err
	}
	strands := seqprep.PrepareGenome(name, raw, o.Config.MaskMinRun)
	o.Logger.Info("genome loaded", "name", name, "length", len(strands.Forward))

	p := &Prepared{Strands: strands}
	opts := o.Config.IndexOptions()

	if o.StorePath == "" {
		fwd, rev, err := buildBoth(ctx, strands, opts, o.Logger, o.Metrics)
		if err != nil {
			return nil, err
		}
		p.Fwd, p.Rev = fwd, rev
		return p, nil
	}

	scfg := indexstore.DefaultConfig(o.StorePath)
	scfg.Logger = o.Logger
	st, err := indexstore.Open(scfg)
	if err != nil {
		return nil, err
	}
	p.store = st
	p.Digest = indexstore.Digest(strands.Forward, opts, o.Config.MaskMinRun)

	if o.Rebuild || !st.Has(p.Digest) {
		fwd, rev, err := buildBoth(ctx, strands, opts, o.Logger, o.Metrics)
		if err != nil {
			_ = st.Close()
			return nil, err
		}
		meta := indexstore.Meta{
			Genome:     name,
			GenomeLen:  len(strands.Forward),
			Options:    opts,
			MaskMinRun: o.Config.MaskMinRun,
		}
		t0 := time.Now()
		if err := st.Save(ctx, p.Digest, meta, fwd, rev); err != nil {
			_ = st.Close()
			return nil, fmt.Errorf("store index: %w", err)
		}
		o.Logger.Info("index stored", "store", o.StorePath, "digest", p.Digest, "elapsed", time.Since(t0))
	} else {
		o.Logger.Info("index reused", "store", o.StorePath, "digest", p.Digest)
	}

	m, err := st.Meta(p.Digest)
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	p.Meta = &m
	for _, strand := range []hit.Strand{hit.Forward, hit.Reverse} {
		v, err := st.View(p.Digest, strand)
		if err != nil {
			_ = st.Close()
			return nil, err
		}
		p.views = append(p.views, v)
	}
	p.Fwd, p.Rev = p.views[0], p.views[1]
	return p, nil
}

func buildBoth(ctx context.Context, s seqprep.Strands, opts index.Options, log *slog.Logger, m *metrics.Metrics) (fwd, rev *index.Index, err error) {
	g, gctx := errgroup.WithContext(ctx)
	build := func(label, genome string, dst **index.Index) func() error {
		return func() error {
			t0 := time.Now()
			x, err := index.Build(gctx, genome, opts)
			if err != nil {
				return fmt.Errorf("build %s index: %w", label, err)
			}
			keys := x.Stats().Keys()
			if m != nil {
				m.IndexBuild.WithLabelValues(label).Set(time.Since(t0).Seconds())
				m.IndexKeys.WithLabelValues(label).Set(float64(keys))
			}
			log.Debug("index built", "strand", label, "kmers", keys, "elapsed", time.Since(t0))
			*dst = x
			return nil
		}
	}
	g.Go(build("forward", s.Forward, &fwd))
	g.Go(build("reverse", s.Reverse, &rev))
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return fwd, rev, nil
}
