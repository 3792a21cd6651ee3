// Package seqprep turns raw sequence text into the alphabet the index and
// search engine expect: uppercase A/C/G/T/N with RNA uracil read as thymine,
// and homopolymer runs masked on the genome side.
package seqprep

import "strings"

// DefaultMaskMinRun is the shortest homopolymer run that gets masked.
const DefaultMaskMinRun = 10

var normalizer = strings.NewReplacer("U", "T")

// Normalize uppercases seq and translates U to T.
func Normalize(seq string) string {
	return normalizer.Replace(strings.ToUpper(seq))
}

// MaskHomopolymers replaces every run of at least minRun identical A/C/G/T
// bases with the same number of 'N'. Runs of N or other bytes are left alone.
// minRun <= 1 is treated as DefaultMaskMinRun.
func MaskHomopolymers(seq string, minRun int) string {
	if minRun <= 1 {
		minRun = DefaultMaskMinRun
	}
	if len(seq) < minRun {
		return seq
	}
	var out []byte // allocated on first masked run
	for i := 0; i < len(seq); {
		b := seq[i]
		j := i + 1
		for j < len(seq) && seq[j] == b {
			j++
		}
		if j-i >= minRun && isBase(b) {
			if out == nil {
				out = []byte(seq)
			}
			for k := i; k < j; k++ {
				out[k] = 'N'
			}
		}
		i = j
	}
	if out == nil {
		return seq
	}
	return string(out)
}

func isBase(b byte) bool {
	switch b {
	case 'A', 'C', 'G', 'T':
		return true
	}
	return false
}

// Strands is a genome ready for indexing on both orientations.
type Strands struct {
	Name    string
	Forward string
	Reverse string
}

// PrepareGenome normalizes raw, then masks the forward sequence and its
// reverse complement independently.
func PrepareGenome(name, raw string, minRun int) Strands {
	norm := Normalize(raw)
	return Strands{
		Name:    name,
		Forward: MaskHomopolymers(norm, minRun),
		Reverse: MaskHomopolymers(RevComp(norm), minRun),
	}
}
