// Package hit holds the alignment result record handed from the search
// engine to the report writers.
//
// Coordinates are 0-based and half-open. Conversion to 1-based columns is a
// presentation concern and lives in internal/output.
package hit

import "sort"

// Strand is the genome orientation a hit was found on.
type Strand byte

const (
	Forward Strand = '+'
	Reverse Strand = '-'
)

func (s Strand) String() string { return string(rune(s)) }

// Span is a 0-based half-open interval on the read.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Hit is one exact match of a read fragment to a genome site.
// Read is nil once the hit has been re-enumerated genome-wide.
type Hit struct {
	ReadID      string
	Strand      Strand
	Genome      string
	GenomeStart int
	GenomeEnd   int
	Sequence    string
	MatchLen    int
	Read        *Span
}

// Key identifies a hit for deduplication.
type Key struct {
	Strand     Strand
	Start, End int
	Sequence   string
}

func (h Hit) Key() Key {
	return Key{Strand: h.Strand, Start: h.GenomeStart, End: h.GenomeEnd, Sequence: h.Sequence}
}

// Site identifies a genomic location regardless of the fragment that hit it.
type Site struct {
	Strand     Strand
	Start, End int
}

func (h Hit) Site() Site {
	return Site{Strand: h.Strand, Start: h.GenomeStart, End: h.GenomeEnd}
}

// Less orders hits by strand ('+' first), genome start, genome end, sequence.
func Less(a, b Hit) bool {
	if a.Strand != b.Strand {
		return a.Strand < b.Strand
	}
	if a.GenomeStart != b.GenomeStart {
		return a.GenomeStart < b.GenomeStart
	}
	if a.GenomeEnd != b.GenomeEnd {
		return a.GenomeEnd < b.GenomeEnd
	}
	return a.Sequence < b.Sequence
}

func Sort(hs []Hit) {
	sort.SliceStable(hs, func(i, j int) bool { return Less(hs[i], hs[j]) })
}

// Dedup drops later hits whose Key was already seen, keeping first-seen order.
func Dedup(hs []Hit) []Hit {
	seen := make(map[Key]struct{}, len(hs))
	out := make([]Hit, 0, len(hs))
	for _, h := range hs {
		k := h.Key()
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, h)
	}
	return out
}

// CountSites returns the number of distinct genomic sites in hs.
func CountSites(hs []Hit) int {
	sites := make(map[Site]struct{}, len(hs))
	for _, h := range hs {
		sites[h.Site()] = struct{}{}
	}
	return len(sites)
}
