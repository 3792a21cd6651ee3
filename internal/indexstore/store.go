// Package indexstore persists built k-mer indexes in BadgerDB so repeated
// runs against the same genome skip the build.
//
// Keys are "<digest>/<strand>/<kmer>"; the k-mer length is implicit. Values
// are uvarint delta-encoded ascending positions. A "<digest>/meta" record is
// written last and marks a complete index.
package indexstore

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/dgraph-io/badger/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"srat/internal/hit"
	"srat/internal/index"
)

var tracer = otel.Tracer("srat/indexstore")

// ErrNotFound is returned when no complete index exists for a digest.
var ErrNotFound = errors.New("indexstore: index not found")

// Meta describes a stored index.
type Meta struct {
	Genome     string        `json:"genome"`
	GenomeLen  int           `json:"genome_len"`
	Options    index.Options `json:"options"`
	MaskMinRun int           `json:"mask_min_run"`
	Keys       int           `json:"keys"`
	CreatedAt  time.Time     `json:"created_at"`
}

// Digest fingerprints a masked forward genome together with the options
// that shape its index.
func Digest(maskedForward string, opts index.Options, maskMinRun int) string {
	d := xxhash.New()
	_, _ = d.WriteString(maskedForward)
	_, _ = d.WriteString(fmt.Sprintf("|%d|%d|%d|%d", opts.MinK, opts.MaxK, opts.PrefixLen, maskMinRun))
	return strconv.FormatUint(d.Sum64(), 16)
}

// Store is a BadgerDB-backed index cache. Safe for concurrent use.
type Store struct {
	db *badger.DB
}

// Open opens (creating if needed) the store described by cfg.
func Open(cfg Config) (*Store, error) {
	db, err := openDB(cfg)
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close releases the database.
func (s *Store) Close() error { return s.db.Close() }

func metaKey(digest string) []byte { return []byte(digest + "/meta") }

func kmerKey(digest string, strand hit.Strand, kmer string) []byte {
	b := make([]byte, 0, len(digest)+3+len(kmer))
	b = append(b, digest...)
	b = append(b, '/', byte(strand), '/')
	return append(b, kmer...)
}

// Meta returns the metadata of a complete index, or ErrNotFound.
func (s *Store) Meta(digest string) (Meta, error) {
	var m Meta
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(metaKey(digest))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error { return json.Unmarshal(val, &m) })
	})
	return m, err
}

// Has reports whether a complete index is stored under digest.
func (s *Store) Has(digest string) bool {
	_, err := s.Meta(digest)
	return err == nil
}

// Save writes both strand indexes and then the meta record.
func (s *Store) Save(ctx context.Context, digest string, meta Meta, fwd, rev *index.Index) error {
	ctx, span := tracer.Start(ctx, "indexstore.Save")
	defer span.End()

	wb := s.db.NewWriteBatch()
	defer wb.Cancel()

	keys := 0
	for _, side := range []struct {
		strand hit.Strand
		idx    *index.Index
	}{{hit.Forward, fwd}, {hit.Reverse, rev}} {
		err := side.idx.Each(func(_ int, kmer string, pos []int) error {
			if keys%4096 == 0 {
				if err := ctx.Err(); err != nil {
					return err
				}
			}
			keys++
			return wb.Set(kmerKey(digest, side.strand, kmer), encodePositions(pos))
		})
		if err != nil {
			span.RecordError(err)
			return fmt.Errorf("save %s index: %w", side.strand, err)
		}
	}
	if err := wb.Flush(); err != nil {
		return fmt.Errorf("flush index: %w", err)
	}

	meta.Keys = keys
	if meta.CreatedAt.IsZero() {
		meta.CreatedAt = time.Now().UTC()
	}
	data, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	span.SetAttributes(attribute.Int("keys", keys))
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(metaKey(digest), data)
	})
}

// View answers lookups for one strand of a stored index.
type View struct {
	db     *badger.DB
	digest string
	strand hit.Strand
	opts   index.Options

	mu  sync.Mutex
	err error
}

// View returns a lookup view of a stored strand, or ErrNotFound.
func (s *Store) View(digest string, strand hit.Strand) (*View, error) {
	m, err := s.Meta(digest)
	if err != nil {
		return nil, err
	}
	return &View{db: s.db, digest: digest, strand: strand, opts: m.Options}, nil
}

// Lookup returns the stored positions of sub, empty when absent. Storage
// errors also yield an empty result and are reported by Err.
func (v *View) Lookup(sub string) []int {
	if len(sub) < v.opts.MinK || len(sub) > v.opts.MaxK {
		return nil
	}
	var out []int
	err := v.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(kmerKey(v.digest, v.strand, sub))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			out, err = decodePositions(val)
			return err
		})
	})
	if err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
		v.mu.Lock()
		if v.err == nil {
			v.err = fmt.Errorf("lookup %s/%s: %w", v.strand, sub, err)
		}
		v.mu.Unlock()
		return nil
	}
	return out
}

// Err returns the first storage error seen by Lookup.
func (v *View) Err() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.err
}

func encodePositions(pos []int) []byte {
	buf := make([]byte, 0, len(pos)*2)
	prev := 0
	for _, p := range pos {
		buf = binary.AppendUvarint(buf, uint64(p-prev))
		prev = p
	}
	return buf
}

func decodePositions(b []byte) ([]int, error) {
	var out []int
	prev := 0
	for len(b) > 0 {
		d, n := binary.Uvarint(b)
		if n <= 0 {
			return nil, errors.New("corrupt position list")
		}
		prev += int(d)
		out = append(out, prev)
		b = b[n:]
	}
	return out, nil
}
