// internal/writers/jsonl.go
package writers

import (
	"encoding/json"
	"io"

	"srat/internal/hit"
	"srat/internal/jsonlutil"
	"srat/internal/output"
)

func encodeHit(enc *json.Encoder, h hit.Hit) error {
	return enc.Encode(output.ToAPIHit(h))
}

// StartHitJSONLWriter streams each hit as one JSON line (v1).
func StartHitJSONLWriter(out io.Writer, bufSize int) (chan<- hit.Hit, <-chan error) {
	return jsonlutil.Start[hit.Hit](out, bufSize, encodeHit, IsBrokenPipe)
}
