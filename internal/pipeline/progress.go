package pipeline

import (
	"io"
	"time"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

// progress is a read counter bar. The read total is unknown while streaming,
// so the bar completes when finish is called.
type progress struct {
	pbs *mpb.Progress
	bar *mpb.Bar
}

func newProgress(w io.Writer) *progress {
	if w == nil {
		return nil
	}
	pbs := mpb.New(mpb.WithWidth(40), mpb.WithOutput(w))
	bar := pbs.AddBar(0,
		mpb.PrependDecorators(
			decor.Name("searched reads: ", decor.WC{W: len("searched reads: "), C: decor.DindentRight}),
			decor.CurrentNoUnit("%d", decor.WCSyncWidth),
		),
		mpb.AppendDecorators(
			decor.Name("elapsed: ", decor.WC{W: len("elapsed: ")}),
			decor.Elapsed(decor.ET_STYLE_GO),
			decor.OnComplete(decor.Name(""), ". done"),
		),
	)
	return &progress{pbs: pbs, bar: bar}
}

func (p *progress) incr(d time.Duration) {
	if p == nil {
		return
	}
	p.bar.EwmaIncrBy(1, d)
}

func (p *progress) finish(ok bool) {
	if p == nil {
		return
	}
	if ok {
		p.bar.SetTotal(-1, true)
	} else {
		p.bar.Abort(false)
	}
	p.pbs.Wait()
}
