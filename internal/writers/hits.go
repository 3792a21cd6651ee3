package writers

import (
	"io"

	"srat/internal/hit"
	"srat/internal/jsonlutil"
	"srat/internal/output"
)

func init() {
	RegisterHit(output.FormatTSV, func(w io.Writer, in <-chan hit.Hit, header bool) error {
		return output.StreamTSV(w, in, header)
	})
	RegisterHit(output.FormatJSON, func(w io.Writer, in <-chan hit.Hit, _ bool) error {
		return output.WriteJSON(w, collect(in))
	})
	RegisterHit(output.FormatXLSX, func(w io.Writer, in <-chan hit.Hit, _ bool) error {
		return output.WriteXLSX(w, collect(in))
	})
	RegisterHit(output.FormatJSONL, func(w io.Writer, in <-chan hit.Hit, _ bool) error {
		return jsonlutil.Drain[hit.Hit](w, in, encodeHit, IsBrokenPipe)
	})
}

func collect(in <-chan hit.Hit) []hit.Hit {
	var buf []hit.Hit
	for h := range in {
		buf = append(buf, h)
	}
	return buf
}

// StartHitWriter spins up a writer goroutine for the given format. Hits are
// written in arrival order. The error channel yields exactly one value once
// in is closed and the output is complete.
func StartHitWriter(out io.Writer, format string, header bool, bufSize int) (chan<- hit.Hit, <-chan error) {
	if bufSize <= 0 {
		bufSize = 64
	}
	in := make(chan hit.Hit, bufSize)
	errCh := make(chan error, 1)
	go func() {
		err := WriteHits(format, out, in, header)
		for range in {
		}
		if IsBrokenPipe(err) {
			err = nil
		}
		errCh <- err
	}()
	return in, errCh
}
