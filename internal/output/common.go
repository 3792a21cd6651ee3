package output

import "strings"

// Output formats.
const (
	FormatXLSX  = "xlsx"
	FormatTSV   = "tsv"
	FormatJSON  = "json"
	FormatJSONL = "jsonl"
)

// Columns is the report schema, in order. Every format carries exactly these
// fields, including when no read matched.
var Columns = []string{
	"read_id", "strand", "genome_coords", "read_coords",
	"sequence", "match_len", "reference_name",
}

// TSVHeader is the canonical header row for TSV outputs.
var TSVHeader = strings.Join(Columns, "\t")

// Ext returns the file extension for a format.
func Ext(format string) string {
	return "." + format
}
