package search

import (
	"sort"

	"srat/internal/hit"
)

// Lookuper answers exact-match queries for one strand. Both *index.Index and
// the badger-backed indexstore views satisfy it.
type Lookuper interface {
	Lookup(sub string) []int
}

// Config holds the search tunables.
type Config struct {
	MinLen   int // shortest match ever considered
	Window   int // width of the middle read window
	MaxSites int // reads whose best match hits more sites are discarded
}

// DefaultConfig matches the 20..50 index and the >3 discard rule.
func DefaultConfig() Config {
	return Config{MinLen: 20, Window: 50, MaxSites: 3}
}

// Outcome is the terminal state of one read search.
type Outcome int

const (
	NoMatch Outcome = iota
	Discarded
	Matched
)

func (o Outcome) String() string {
	switch o {
	case NoMatch:
		return "no_match"
	case Discarded:
		return "discarded"
	case Matched:
		return "matched"
	}
	return "unknown"
}

// Result is the outcome of Search. Hits is never nil; it is empty unless
// Outcome is Matched.
type Result struct {
	Outcome  Outcome
	Hits     []hit.Hit
	MatchLen int // longest match length, 0 on NoMatch
	Sites    int // distinct sites after re-enumeration, 0 on NoMatch
}

// Engine searches reads against one genome's two strand indexes.
// It is safe for concurrent use as long as the Lookupers are.
type Engine struct {
	cfg    Config
	genome string
	fwd    Lookuper
	rev    Lookuper
}

// New creates an Engine. Zero-valued Config fields fall back to DefaultConfig.
func New(cfg Config, genome string, fwd, rev Lookuper) *Engine {
	def := DefaultConfig()
	if cfg.MinLen <= 0 {
		cfg.MinLen = def.MinLen
	}
	if cfg.Window <= 0 {
		cfg.Window = def.Window
	}
	if cfg.MaxSites <= 0 {
		cfg.MaxSites = def.MaxSites
	}
	return &Engine{cfg: cfg, genome: genome, fwd: fwd, rev: rev}
}

// Config returns the effective configuration.
func (e *Engine) Config() Config { return e.cfg }

// MiddleWindow returns the 0-based half-open bounds of the centered window of
// the given width, or the whole read when it is shorter than width.
func MiddleWindow(n, width int) (start, end int) {
	if n < width {
		return 0, n
	}
	start = (n - width) / 2
	return start, start + width
}

// Search runs the windowed attempt sequence on the forward strand, then on the
// reverse strand, and re-enumerates every genomic site of the winning length.
func (e *Engine) Search(readID, seq string) Result {
	hits := e.attempts(readID, seq, hit.Forward, e.fwd)
	if len(hits) == 0 {
		hits = e.attempts(readID, seq, hit.Reverse, e.rev)
	}
	if len(hits) == 0 {
		return Result{Outcome: NoMatch, Hits: []hit.Hit{}}
	}

	maxLen := 0
	for _, h := range hits {
		if h.MatchLen > maxLen {
			maxLen = h.MatchLen
		}
	}

	all := e.reenumerate(readID, fragments(hits, maxLen), maxLen)
	if len(all) == 0 {
		return Result{Outcome: NoMatch, Hits: []hit.Hit{}}
	}
	all = hit.Dedup(all)
	sites := hit.CountSites(all)
	if sites > e.cfg.MaxSites {
		return Result{Outcome: Discarded, Hits: []hit.Hit{}, MatchLen: maxLen, Sites: sites}
	}
	hit.Sort(all)
	return Result{Outcome: Matched, Hits: all, MatchLen: maxLen, Sites: sites}
}

// attempts tries, in order, the full middle window, right-trimmed windows and
// left-trimmed windows, returning the hits of the first attempt that has any.
func (e *Engine) attempts(readID, seq string, strand hit.Strand, idx Lookuper) []hit.Hit {
	s, end := MiddleWindow(len(seq), e.cfg.Window)
	width := end - s

	if hs := e.try(readID, seq, s, end, strand, idx); len(hs) > 0 {
		return hs
	}
	for n := width - 1; n >= e.cfg.MinLen; n-- {
		if hs := e.try(readID, seq, s, s+n, strand, idx); len(hs) > 0 {
			return hs
		}
	}
	for shift := 1; shift < e.cfg.Window; shift++ {
		if end-(s+shift) < e.cfg.MinLen {
			break
		}
		if hs := e.try(readID, seq, s+shift, end, strand, idx); len(hs) > 0 {
			return hs
		}
	}
	return nil
}

// try looks up seq[rs:re] and returns one hit per genome position.
func (e *Engine) try(readID, seq string, rs, re int, strand hit.Strand, idx Lookuper) []hit.Hit {
	if re-rs < e.cfg.MinLen {
		return nil
	}
	sub := seq[rs:re]
	locs := idx.Lookup(sub)
	if len(locs) == 0 {
		return nil
	}
	out := make([]hit.Hit, 0, len(locs))
	for _, pos := range locs {
		out = append(out, hit.Hit{
			ReadID:      readID,
			Strand:      strand,
			Genome:      e.genome,
			GenomeStart: pos,
			GenomeEnd:   pos + len(sub),
			Sequence:    sub,
			MatchLen:    len(sub),
			Read:        &hit.Span{Start: rs, End: re},
		})
	}
	return out
}

// fragments returns the distinct matched subsequences of length maxLen, sorted.
func fragments(hits []hit.Hit, maxLen int) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, h := range hits {
		if h.MatchLen != maxLen {
			continue
		}
		if _, ok := seen[h.Sequence]; ok {
			continue
		}
		seen[h.Sequence] = struct{}{}
		out = append(out, h.Sequence)
	}
	sort.Strings(out)
	return out
}

// reenumerate queries both strands for every fragment and returns one hit per
// (strand, position) without read coordinates.
func (e *Engine) reenumerate(readID string, frags []string, maxLen int) []hit.Hit {
	var out []hit.Hit
	for _, frag := range frags {
		for _, side := range []struct {
			strand hit.Strand
			idx    Lookuper
		}{{hit.Forward, e.fwd}, {hit.Reverse, e.rev}} {
			for _, pos := range side.idx.Lookup(frag) {
				out = append(out, hit.Hit{
					ReadID:      readID,
					Strand:      side.strand,
					Genome:      e.genome,
					GenomeStart: pos,
					GenomeEnd:   pos + maxLen,
					Sequence:    frag,
					MatchLen:    maxLen,
				})
			}
		}
	}
	return out
}
