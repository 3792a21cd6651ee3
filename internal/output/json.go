// internal/output/json.go
package output

import (
	"io"

	"srat/internal/hit"
	"srat/internal/jsonutil"
)

// WriteJSON writes a single JSON array of v1 hits (pretty-indented).
// An empty list is written as [].
func WriteJSON(w io.Writer, list []hit.Hit) error {
	return jsonutil.EncodePretty(w, toAPIHits(list))
}
