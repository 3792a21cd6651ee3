package indexstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"srat/internal/hit"
	"srat/internal/index"
	"srat/internal/seqprep"
)

const genome = "GCTAAAGACAATTACATAACATACACGTCAGCACGAAACTTGTTGGCCCAGTGTGAATCGCTTAAGGGTTAAGTAAGTGTGATGCATACGCCTTTACTTGCTGTGTCCACCCCATCGGACTGGCA"

func buildBoth(t *testing.T, opts index.Options) (fwd, rev *index.Index, s seqprep.Strands) {
	t.Helper()
	s = seqprep.PrepareGenome("g", genome+genome[:40], seqprep.DefaultMaskMinRun)
	var err error
	fwd, err = index.Build(context.Background(), s.Forward, opts)
	require.NoError(t, err)
	rev, err = index.Build(context.Background(), s.Reverse, opts)
	require.NoError(t, err)
	return fwd, rev, s
}

func TestSaveAndLookupMatchesMemoryIndex(t *testing.T) {
	st, err := Open(InMemoryConfig())
	require.NoError(t, err)
	defer st.Close()

	opts := index.Options{MinK: 20, MaxK: 25, PrefixLen: 8}
	fwd, rev, s := buildBoth(t, opts)
	digest := Digest(s.Forward, opts, seqprep.DefaultMaskMinRun)

	assert.False(t, st.Has(digest))
	_, err = st.View(digest, hit.Forward)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, st.Save(context.Background(), digest, Meta{Genome: s.Name, GenomeLen: len(s.Forward), Options: opts}, fwd, rev))
	assert.True(t, st.Has(digest))

	meta, err := st.Meta(digest)
	require.NoError(t, err)
	assert.Equal(t, "g", meta.Genome)
	assert.Equal(t, opts, meta.Options)
	assert.Equal(t, fwd.Stats().Keys()+rev.Stats().Keys(), meta.Keys)

	fv, err := st.View(digest, hit.Forward)
	require.NoError(t, err)
	rv, err := st.View(digest, hit.Reverse)
	require.NoError(t, err)

	for k := 20; k <= 25; k++ {
		for i := 0; i+k <= len(s.Forward); i += 7 {
			kmer := s.Forward[i : i+k]
			assert.Equal(t, fwd.Lookup(kmer), fv.Lookup(kmer), "fwd %s", kmer)
			assert.Equal(t, rev.Lookup(kmer), rv.Lookup(kmer), "rev %s", kmer)
		}
	}
	// repeated 40-nt tail gives a two-position list
	assert.Equal(t, []int{0, len(genome)}, fv.Lookup(genome[:20]))
	assert.Empty(t, fv.Lookup(genome[:19]))
	assert.Empty(t, fv.Lookup(genome[:30]), "outside the stored k range")
	assert.NoError(t, fv.Err())
}

func TestDigestDependsOnOptions(t *testing.T) {
	a := Digest("ACGT", index.DefaultOptions(), 10)
	b := Digest("ACGT", index.Options{MinK: 20, MaxK: 40, PrefixLen: 8}, 10)
	c := Digest("ACGA", index.DefaultOptions(), 10)
	assert.NotEqual(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Equal(t, a, Digest("ACGT", index.DefaultOptions(), 10))
}

func TestPersistentReopen(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "store")
	opts := index.Options{MinK: 20, MaxK: 21, PrefixLen: 0}
	fwd, rev, s := buildBoth(t, opts)
	digest := Digest(s.Forward, opts, seqprep.DefaultMaskMinRun)

	st, err := Open(DefaultConfig(dir))
	require.NoError(t, err)
	require.NoError(t, st.Save(context.Background(), digest, Meta{Genome: "g", Options: opts}, fwd, rev))
	require.NoError(t, st.Close())

	st2, err := Open(DefaultConfig(dir))
	require.NoError(t, err)
	defer st2.Close()
	v, err := st2.View(digest, hit.Forward)
	require.NoError(t, err)
	assert.Equal(t, fwd.Lookup(s.Forward[50:71]), v.Lookup(s.Forward[50:71]))
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open(Config{})
	assert.Error(t, err)
}

func TestPositionCodec(t *testing.T) {
	in := []int{0, 3, 300, 70000, 70001}
	out, err := decodePositions(encodePositions(in))
	require.NoError(t, err)
	assert.Equal(t, in, out)

	_, err = decodePositions([]byte{0x80})
	assert.Error(t, err)
}

func TestSaveCanceled(t *testing.T) {
	st, err := Open(InMemoryConfig())
	require.NoError(t, err)
	defer st.Close()
	fwd, rev, s := buildBoth(t, index.Options{MinK: 20, MaxK: 20})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	digest := Digest(s.Forward, fwd.Options(), 10)
	err = st.Save(ctx, digest, Meta{}, fwd, rev)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, st.Has(digest))
}
