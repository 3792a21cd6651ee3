// internal/output/rows.go
package output

import (
	"fmt"
	"strconv"

	"srat/internal/hit"
	"srat/pkg/api"
)

// Coords renders a 0-based half-open interval as 1-based inclusive "a-b".
func Coords(start, end int) string {
	return strconv.Itoa(start+1) + "-" + strconv.Itoa(end)
}

// ToAPIHit converts a domain Hit to the stable wire schema (v1).
func ToAPIHit(h hit.Hit) api.HitV1 {
	v := api.HitV1{
		ReadID:        h.ReadID,
		Strand:        h.Strand.String(),
		GenomeCoords:  Coords(h.GenomeStart, h.GenomeEnd),
		Sequence:      h.Sequence,
		MatchLen:      h.MatchLen,
		ReferenceName: h.Genome,
	}
	if h.Read != nil {
		v.ReadCoords = Coords(h.Read.Start, h.Read.End)
	}
	return v
}

func toAPIHits(list []hit.Hit) []api.HitV1 {
	out := make([]api.HitV1, 0, len(list))
	for _, h := range list {
		out = append(out, ToAPIHit(h))
	}
	return out
}

// Cells returns the row values in Columns order.
func Cells(v api.HitV1) []any {
	return []any{v.ReadID, v.Strand, v.GenomeCoords, v.ReadCoords, v.Sequence, v.MatchLen, v.ReferenceName}
}

// FormatRowTSV returns one TSV row (no trailing newline).
func FormatRowTSV(h hit.Hit) string {
	v := ToAPIHit(h)
	return fmt.Sprintf("%s\t%s\t%s\t%s\t%s\t%d\t%s",
		v.ReadID, v.Strand, v.GenomeCoords, v.ReadCoords, v.Sequence, v.MatchLen, v.ReferenceName)
}
