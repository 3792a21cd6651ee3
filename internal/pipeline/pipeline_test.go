package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"srat/internal/hit"
	"srat/internal/metrics"
	"srat/internal/search"
	"srat/internal/seqio"
)

// fakeSearcher classifies reads by their ID prefix and sleeps a little so
// workers finish out of order.
type fakeSearcher struct{}

func (fakeSearcher) Search(readID, seq string) search.Result {
	time.Sleep(time.Duration(len(seq)%4) * time.Millisecond)
	switch {
	case strings.HasPrefix(readID, "m"):
		return search.Result{Outcome: search.Matched, MatchLen: 20, Sites: 2, Hits: []hit.Hit{
			{ReadID: readID, Strand: hit.Forward, GenomeStart: 0, GenomeEnd: 20, MatchLen: 20},
			{ReadID: readID, Strand: hit.Reverse, GenomeStart: 5, GenomeEnd: 25, MatchLen: 20},
		}}
	case strings.HasPrefix(readID, "d"):
		return search.Result{Outcome: search.Discarded, Hits: []hit.Hit{}, MatchLen: 20, Sites: 4}
	default:
		return search.Result{Outcome: search.NoMatch, Hits: []hit.Hit{}}
	}
}

func makeReads(n int) []seqio.Read {
	prefixes := []string{"m", "n", "d"}
	out := make([]seqio.Read, n)
	for i := range out {
		out[i] = seqio.Read{
			ID:  fmt.Sprintf("%s%03d", prefixes[i%3], i),
			Seq: strings.Repeat("A", 20+(i*7)%13),
		}
	}
	return out
}

func collectIDs(t *testing.T, threads int, reads []seqio.Read) ([]string, Summary) {
	t.Helper()
	var ids []string
	sum, err := Run(context.Background(), Config{Threads: threads}, SliceSource(reads), fakeSearcher{},
		func(r seqio.Read, _ search.Result) error {
			ids = append(ids, r.ID)
			return nil
		})
	require.NoError(t, err)
	return ids, sum
}

func TestRunKeepsReadOrder(t *testing.T) {
	reads := makeReads(60)
	serial, s1 := collectIDs(t, 1, reads)
	parallel, s4 := collectIDs(t, 4, reads)

	require.Len(t, serial, len(reads))
	for i, r := range reads {
		assert.Equal(t, r.ID, serial[i])
	}
	assert.Equal(t, serial, parallel)
	assert.Equal(t, s1, s4)
}

func TestRunSummary(t *testing.T) {
	_, sum := collectIDs(t, 3, makeReads(30))
	assert.Equal(t, Summary{Reads: 30, Matched: 10, NoMatch: 10, Discarded: 10, Hits: 20}, sum)
}

func TestRunEmptySource(t *testing.T) {
	ids, sum := collectIDs(t, 2, nil)
	assert.Empty(t, ids)
	assert.Equal(t, Summary{}, sum)
}

func TestRunEmitErrorStops(t *testing.T) {
	boom := errors.New("boom")
	n := 0
	_, err := Run(context.Background(), Config{Threads: 4}, SliceSource(makeReads(200)), fakeSearcher{},
		func(seqio.Read, search.Result) error {
			n++
			if n == 5 {
				return boom
			}
			return nil
		})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 5, n)
}

func TestRunSourceError(t *testing.T) {
	bad := errors.New("truncated record")
	src := func(ctx context.Context, fn func(seqio.Read) error) error {
		if err := fn(seqio.Read{ID: "m1", Seq: "ACGT"}); err != nil {
			return err
		}
		return bad
	}
	_, err := Run(context.Background(), Config{Threads: 2}, src, fakeSearcher{},
		func(seqio.Read, search.Result) error { return nil })
	require.ErrorIs(t, err, bad)
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Run(ctx, Config{Threads: 2}, SliceSource(makeReads(10)), fakeSearcher{},
		func(seqio.Read, search.Result) error { return nil })
	require.ErrorIs(t, err, context.Canceled)
}

func TestRunUpdatesMetrics(t *testing.T) {
	m := metrics.New()
	_, err := Run(context.Background(), Config{Threads: 2, Metrics: m}, SliceSource(makeReads(9)), fakeSearcher{},
		func(seqio.Read, search.Result) error { return nil })
	require.NoError(t, err)

	assert.Equal(t, 3.0, testutil.ToFloat64(m.Reads.WithLabelValues("matched")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.Reads.WithLabelValues("no_match")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.Reads.WithLabelValues("discarded")))
	assert.Equal(t, 6.0, testutil.ToFloat64(m.Hits))
	assert.Equal(t, 1, testutil.CollectAndCount(m.SearchDuration))
}

func TestRunWithProgress(t *testing.T) {
	var buf bytes.Buffer
	sum, err := Run(context.Background(), Config{Threads: 2, Progress: &buf}, SliceSource(makeReads(6)), fakeSearcher{},
		func(seqio.Read, search.Result) error { return nil })
	require.NoError(t, err)
	assert.Equal(t, 6, sum.Reads)
}
