package integration

import (
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"srat/internal/app"
)

// pseudoGenome returns a deterministic N-free sequence of length n.
func pseudoGenome(n int) string {
	const bases = "ACGT"
	var b strings.Builder
	b.Grow(n)
	x := uint32(2463534242)
	for i := 0; i < n; i++ {
		x ^= x << 13
		x ^= x >> 17
		x ^= x << 5
		b.WriteByte(bases[x&3])
	}
	return b.String()
}

func TestCtrlC_MidIndexBuild_Exit130(t *testing.T) {
	dir := t.TempDir()
	// Large enough that building 31 k-mer tables is still underway.
	fa := write(t, dir, "big.fa", ">chr1\n"+pseudoGenome(1<<20)+"\n")
	reads := write(t, dir, "reads.fa", ">r\n"+genome[:60]+"\n")

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	code := app.RunContext(ctx, []string{"align", "-q", "-g", fa, "-r", reads, "-o", filepath.Join(dir, "out")},
		io.Discard, io.Discard)
	if code != 130 {
		t.Fatalf("expected exit 130 on cancel, got %d", code)
	}
}
