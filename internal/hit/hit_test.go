package hit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSortStrandThenStart(t *testing.T) {
	hs := []Hit{
		{Strand: Reverse, GenomeStart: 1, GenomeEnd: 21},
		{Strand: Forward, GenomeStart: 40, GenomeEnd: 60},
		{Strand: Forward, GenomeStart: 5, GenomeEnd: 25},
		{Strand: Reverse, GenomeStart: 0, GenomeEnd: 20},
	}
	Sort(hs)
	got := make([]string, 0, len(hs))
	for _, h := range hs {
		got = append(got, h.Strand.String())
	}
	assert.Equal(t, []string{"+", "+", "-", "-"}, got)
	assert.Equal(t, 5, hs[0].GenomeStart)
	assert.Equal(t, 40, hs[1].GenomeStart)
	assert.Equal(t, 0, hs[2].GenomeStart)
}

func TestDedupKeepsFirst(t *testing.T) {
	a := Hit{ReadID: "r1", Strand: Forward, GenomeStart: 3, GenomeEnd: 23, Sequence: "X"}
	b := a
	b.ReadID = "r1-dup"
	c := Hit{Strand: Reverse, GenomeStart: 3, GenomeEnd: 23, Sequence: "X"}

	out := Dedup([]Hit{a, b, c})
	assert.Len(t, out, 2)
	assert.Equal(t, "r1", out[0].ReadID)
	assert.Equal(t, Reverse, out[1].Strand)
}

func TestCountSitesIgnoresSequence(t *testing.T) {
	hs := []Hit{
		{Strand: Forward, GenomeStart: 3, GenomeEnd: 23, Sequence: "A"},
		{Strand: Forward, GenomeStart: 3, GenomeEnd: 23, Sequence: "B"},
		{Strand: Reverse, GenomeStart: 3, GenomeEnd: 23, Sequence: "A"},
	}
	assert.Equal(t, 2, CountSites(hs))
	assert.Equal(t, 0, CountSites(nil))
}
