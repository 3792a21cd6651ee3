// internal/jsonlutil/jsonlutil.go
package jsonlutil

import (
	"bufio"
	"encoding/json"
	"io"
	"sync"
)

// 64 KiB buffered writers are pooled across JSONL streams.
var bwPool = sync.Pool{
	New: func() any {
		return bufio.NewWriterSize(io.Discard, 64<<10)
	},
}

// Encoder converts one value to its wire form and encodes it.
type Encoder[T any] func(*json.Encoder, T) error

// Drain encodes every value received on in as one JSON line. It returns after
// in is closed and the buffer is flushed. Flush errors matching isBroken are
// suppressed.
func Drain[T any](out io.Writer, in <-chan T, encode Encoder[T], isBroken func(error) bool) error {
	bw := bwPool.Get().(*bufio.Writer)
	bw.Reset(out)
	defer func() {
		bw.Reset(io.Discard)
		bwPool.Put(bw)
	}()

	enc := json.NewEncoder(bw)
	for v := range in {
		if err := encode(enc, v); err != nil {
			// keep the producer unblocked
			for range in {
			}
			if isBroken != nil && isBroken(err) {
				return nil
			}
			return err
		}
	}
	if err := bw.Flush(); err != nil && (isBroken == nil || !isBroken(err)) {
		return err
	}
	return nil
}

// Start runs Drain in its own goroutine.
func Start[T any](out io.Writer, bufSize int, encode Encoder[T], isBroken func(error) bool) (chan<- T, <-chan error) {
	if bufSize <= 0 {
		bufSize = 64
	}
	in := make(chan T, bufSize)
	done := make(chan error, 1)
	go func() {
		done <- Drain[T](out, in, encode, isBroken)
	}()
	return in, done
}
