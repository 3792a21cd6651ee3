package cmdutil

import (
	"context"

	"srat/internal/hit"
	"srat/internal/pipeline"
	"srat/internal/search"
	"srat/internal/seqio"
)

// RunStream runs the shared pipeline and streams every reported hit via send,
// in read order. It returns the run summary and the first error encountered.
func RunStream(
	ctx context.Context,
	cfg pipeline.Config,
	src pipeline.Source,
	s pipeline.Searcher,
	send func(hit.Hit) error,
) (pipeline.Summary, error) {
	return pipeline.Run(ctx, cfg, src, s, func(_ seqio.Read, res search.Result) error {
		for _, h := range res.Hits {
			if err := send(h); err != nil {
				return err
			}
		}
		return nil
	})
}
