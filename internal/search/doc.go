// Package search finds the longest exact match of a read against the forward
// and reverse-complement genome indexes and applies the multimapping rule.
//
// The engine is a pure function of (read, indexes, config). It never imports
// pipeline, writers, output or app.
package search
