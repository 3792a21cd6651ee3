package jsonlutil

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

type row struct {
	N int `json:"n"`
}

func TestStartWritesOneLinePerValue(t *testing.T) {
	var buf bytes.Buffer
	in, done := Start[int](&buf, 0, func(enc *json.Encoder, v int) error {
		return enc.Encode(row{N: v})
	}, nil)
	for i := 1; i <= 3; i++ {
		in <- i
	}
	close(in)
	require.NoError(t, <-done)
	require.Equal(t, "{\"n\":1}\n{\"n\":2}\n{\"n\":3}\n", buf.String())
}

func TestDrainReportsEncodeErrorAndUnblocksProducer(t *testing.T) {
	boom := errors.New("boom")
	in, done := Start[int](&bytes.Buffer{}, 1, func(*json.Encoder, int) error { return boom }, nil)
	for i := 0; i < 10; i++ {
		in <- i
	}
	close(in)
	require.ErrorIs(t, <-done, boom)
}

func TestDrainSuppressesBrokenPipe(t *testing.T) {
	broken := errors.New("broken pipe")
	ch := make(chan string, 1)
	ch <- "x"
	close(ch)
	err := Drain[string](&bytes.Buffer{}, ch, func(*json.Encoder, string) error { return broken },
		func(err error) bool { return strings.Contains(err.Error(), "broken pipe") })
	require.NoError(t, err)
}
