// Package pipeline streams reads through a Searcher on a pool of workers and
// hands each read's result to an emit callback in original read order.
//
// The only contract to implement is Searcher (Search). This keeps the
// pipeline swappable and testable.
package pipeline
