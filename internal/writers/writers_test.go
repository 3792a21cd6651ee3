package writers

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"srat/internal/hit"
	"srat/internal/output"
	"srat/pkg/api"
)

func twoHits() []hit.Hit {
	return []hit.Hit{
		{ReadID: "a", Strand: hit.Forward, Genome: "g", GenomeStart: 0, GenomeEnd: 20, Sequence: "AAAAACCCCCGGGGGTTTTT", MatchLen: 20, Read: &hit.Span{Start: 5, End: 25}},
		{ReadID: "b", Strand: hit.Reverse, Genome: "g", GenomeStart: 3, GenomeEnd: 23, Sequence: "TTTTTGGGGGCCCCCAAAAA", MatchLen: 20},
	}
}

func TestUnknownHitFormatError(t *testing.T) {
	var b bytes.Buffer
	in, done := StartHitWriter(&b, "nope-format", true, 1)
	close(in)
	err := <-done
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown hit format")
}

func TestFormatsRegistered(t *testing.T) {
	assert.Equal(t, []string{"json", "jsonl", "tsv", "xlsx"}, Formats())
}

func TestStartHitWriterTSVKeepsOrder(t *testing.T) {
	var buf bytes.Buffer
	in, done := StartHitWriter(&buf, output.FormatTSV, true, 4)
	hs := twoHits()
	in <- hs[1]
	in <- hs[0]
	close(in)
	require.NoError(t, <-done)

	sc := bufio.NewScanner(&buf)
	var lines []string
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	require.Len(t, lines, 3)
	assert.Equal(t, output.TSVHeader, lines[0])
	assert.Equal(t, output.FormatRowTSV(hs[1]), lines[1])
	assert.Equal(t, output.FormatRowTSV(hs[0]), lines[2])
}

func TestStartHitWriterJSON(t *testing.T) {
	var buf bytes.Buffer
	in, done := StartHitWriter(&buf, output.FormatJSON, false, 4)
	for _, h := range twoHits() {
		in <- h
	}
	close(in)
	require.NoError(t, <-done)
	var got []api.HitV1
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "6-25", got[0].ReadCoords)
}

func TestHitJSONLStreamsValidV1(t *testing.T) {
	var buf bytes.Buffer
	in, done := StartHitJSONLWriter(&buf, 2)
	for _, h := range twoHits() {
		in <- h
	}
	close(in)
	require.NoError(t, <-done)

	sc := bufio.NewScanner(bytes.NewReader(buf.Bytes()))
	var n int
	for sc.Scan() {
		n++
		var v api.HitV1
		require.NoError(t, json.Unmarshal(sc.Bytes(), &v), "line %d", n)
	}
	assert.Equal(t, 2, n)
}

type failWriter struct{ err error }

func (f failWriter) Write([]byte) (int, error) { return 0, f.err }

func TestWriterErrorDoesNotBlockProducer(t *testing.T) {
	in, done := StartHitWriter(failWriter{err: io.ErrShortWrite}, output.FormatTSV, true, 1)
	for i := 0; i < 16; i++ {
		in <- twoHits()[0]
	}
	close(in)
	assert.ErrorIs(t, <-done, io.ErrShortWrite)
}

func TestBrokenPipeSuppressed(t *testing.T) {
	in, done := StartHitWriter(failWriter{err: syscall.EPIPE}, output.FormatTSV, true, 1)
	in <- twoHits()[0]
	close(in)
	assert.NoError(t, <-done)
}

func TestIsBrokenPipe(t *testing.T) {
	assert.True(t, IsBrokenPipe(syscall.EPIPE))
	assert.True(t, IsBrokenPipe(io.ErrClosedPipe))
	assert.False(t, IsBrokenPipe(errors.New("x")))
	assert.False(t, IsBrokenPipe(nil))
}
