// Package source reads whole documents from files, stdin or HTTP.
package source

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/alapierre/sortjson/pkg/backend"
	"github.com/alapierre/sortjson/pkg/compress"
	"github.com/alapierre/sortjson/pkg/logging"
)

var logger = logging.Component("pkg/source")

// Stdin is the reference that reads standard input.
const Stdin = "-"

type Options struct {
	// Backend fetches http(s) references. Nil means an anonymous HTTPBackend.
	Backend backend.Backend
	// Stdin replaces os.Stdin for the "-" reference.
	Stdin io.Reader
	// JSON5 converts the input from JSON5 after loading.
	JSON5 bool
}

// Load returns the complete document named by ref: a file path, "-" or an
// http(s) URL. Files and URLs ending in .gz or .zst are decompressed.
func Load(ctx context.Context, ref string, opts Options) ([]byte, error) {
	data, err := load(ctx, ref, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", Name(ref), err)
	}
	logger.Debugf("Loaded %d bytes from %s", len(data), Name(ref))
	if opts.JSON5 {
		return FromJSON5(data)
	}
	return data, nil
}

// Name is a printable name for ref.
func Name(ref string) string {
	if ref == Stdin {
		return "<stdin>"
	}
	return ref
}

func load(ctx context.Context, ref string, opts Options) ([]byte, error) {
	var r io.ReadCloser
	switch {
	case ref == Stdin:
		in := opts.Stdin
		if in == nil {
			in = os.Stdin
		}
		r = io.NopCloser(in)
	case backend.IsURL(ref):
		b := opts.Backend
		if b == nil {
			b = backend.NewHTTPBackend("", "", "")
		}
		body, err := b.Get(ctx, ref)
		if err != nil {
			return nil, err
		}
		r = body
	default:
		f, err := os.Open(ref)
		if err != nil {
			return nil, err
		}
		r = f
	}
	defer r.Close()

	dr, err := compress.NewReader(r, compress.FromPath(ref))
	if err != nil {
		return nil, err
	}
	defer dr.Close()
	return io.ReadAll(dr)
}
