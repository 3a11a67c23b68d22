// Package compress wraps canonical output in an optional gzip or zstd stream.
package compress

import (
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

type Type string

const (
	None Type = "none"
	Gzip Type = "gzip"
	Zstd Type = "zstd"
)

func ParseType(s string) (Type, error) {
	switch t := Type(strings.ToLower(strings.TrimSpace(s))); t {
	case "", None:
		return None, nil
	case Gzip, Zstd:
		return t, nil
	}
	return None, fmt.Errorf("unknown compression %q, expected none, gzip or zstd", s)
}

// Extension is the file suffix conventionally used for t, empty for None.
func (t Type) Extension() string {
	switch t {
	case Gzip:
		return ".gz"
	case Zstd:
		return ".zst"
	}
	return ""
}

// FromPath guesses the compression from a file name suffix.
func FromPath(path string) Type {
	switch {
	case strings.HasSuffix(path, ".gz"):
		return Gzip
	case strings.HasSuffix(path, ".zst"):
		return Zstd
	}
	return None
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

// NewWriter returns a writer compressing into w. Close finishes the
// compressed stream and leaves w open.
func NewWriter(w io.Writer, t Type) (io.WriteCloser, error) {
	switch t {
	case None, "":
		return nopCloser{w}, nil
	case Gzip:
		gw, err := gzip.NewWriterLevel(w, gzip.BestCompression)
		if err != nil {
			return nil, err
		}
		return gw, nil
	case Zstd:
		zw, err := zstd.NewWriter(w)
		if err != nil {
			return nil, err
		}
		return zw, nil
	}
	return nil, fmt.Errorf("unknown compression %q", t)
}

type zstdReader struct {
	*zstd.Decoder
}

func (z zstdReader) Close() error {
	z.Decoder.Close()
	return nil
}

// NewReader decompresses r. Closing the result does not close r.
func NewReader(r io.Reader, t Type) (io.ReadCloser, error) {
	switch t {
	case None, "":
		return io.NopCloser(r), nil
	case Gzip:
		gr, err := gzip.NewReader(r)
		if err != nil {
			return nil, err
		}
		return gr, nil
	case Zstd:
		d, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		return zstdReader{d}, nil
	}
	return nil, fmt.Errorf("unknown compression %q", t)
}
