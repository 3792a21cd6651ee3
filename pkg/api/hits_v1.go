// pkg/api/hits_v1.go
package api

// HitV1 is the stable JSON/JSONL row schema for aligned reads.
// Coordinates are 1-based inclusive ("start-end"). ReadCoords is empty when
// the hit was re-enumerated genome-wide and no longer maps to one read span.
// Keep fields, names, and types stable. Add new fields only with ",omitempty".
type HitV1 struct {
	ReadID        string `json:"read_id"`
	Strand        string `json:"strand"` // "+" | "-"
	GenomeCoords  string `json:"genome_coords"`
	ReadCoords    string `json:"read_coords"`
	Sequence      string `json:"sequence"`
	MatchLen      int    `json:"match_len"`
	ReferenceName string `json:"reference_name"`
}

// SummaryV1 is the per-run summary emitted alongside the hit table.
type SummaryV1 struct {
	RunID     string `json:"run_id"`
	Genome    string `json:"genome"`
	Reads     int    `json:"reads"`
	Matched   int    `json:"matched"`
	NoMatch   int    `json:"no_match"`
	Discarded int    `json:"discarded"`
	Hits      int    `json:"hits"`
}
