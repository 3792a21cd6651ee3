// Package index builds the multi-length exact-match k-mer index over a masked
// genome. It never imports search, pipeline, writers or app; keep it
// domain-only.
//
// An Index is immutable after Build and safe to share across goroutines.
package index
