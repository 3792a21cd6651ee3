package appcore

import (
	"io"
	"path/filepath"
	"strings"

	"srat/internal/hit"
	"srat/internal/output"
	"srat/internal/writers"
)

// HitWriterFactory starts a writer goroutine for one output format.
type HitWriterFactory struct {
	Format string
	Header bool
}

func NewHitWriterFactory(format string, header bool) HitWriterFactory {
	return HitWriterFactory{Format: format, Header: header}
}

func (w HitWriterFactory) Start(out io.Writer, bufSize int) (chan<- hit.Hit, <-chan error) {
	return writers.StartHitWriter(out, w.Format, w.Header, bufSize)
}

// OutputPath names the report file "<reads>_<genome>.<ext>" inside dir.
func (w HitWriterFactory) OutputPath(dir, readsPath, genomePath string) string {
	name := baseName(readsPath) + "_" + baseName(genomePath) + output.Ext(w.Format)
	return filepath.Join(dir, name)
}

// baseName strips the directory, a trailing ".gz" and one more extension.
func baseName(path string) string {
	if path == "" || path == "-" {
		return "stdin"
	}
	b := filepath.Base(path)
	b = strings.TrimSuffix(b, ".gz")
	return strings.TrimSuffix(b, filepath.Ext(b))
}
