// internal/writers/registry.go
package writers

import (
	"fmt"
	"io"
	"sort"

	"srat/internal/hit"
)

// HitWriterFunc drains in and serializes every hit to w.
type HitWriterFunc func(w io.Writer, in <-chan hit.Hit, header bool) error

// HitWriters maps an output format to its writer. Register in init() blocks.
var HitWriters = map[string]HitWriterFunc{}

// RegisterHit installs fn for format (last wins).
func RegisterHit(format string, fn HitWriterFunc) { HitWriters[format] = fn }

// Formats lists the registered formats in sorted order.
func Formats() []string {
	out := make([]string, 0, len(HitWriters))
	for f := range HitWriters {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// WriteHits dispatches to the writer registered for format.
func WriteHits(format string, w io.Writer, in <-chan hit.Hit, header bool) error {
	fn, ok := HitWriters[format]
	if !ok {
		return fmt.Errorf("unknown hit format %q (no writer registered)", format)
	}
	return fn(w, in, header)
}
