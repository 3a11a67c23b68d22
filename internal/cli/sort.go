package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/alapierre/sortjson/internal/support"
	"github.com/alapierre/sortjson/pkg/compress"
	"github.com/alapierre/sortjson/pkg/config"
	"github.com/alapierre/sortjson/pkg/ledger"
	"github.com/alapierre/sortjson/pkg/schema"
	"github.com/alapierre/sortjson/pkg/sign"
	"github.com/alapierre/sortjson/pkg/sortjson"
	"github.com/alapierre/sortjson/pkg/source"
)

// SortFlags are shared by every command that canonicalizes documents.
type SortFlags struct {
	SkipKeyDuplication bool `help:"Keep duplicated keys instead of failing."`
	BufferSize         int  `help:"Output buffer size in bytes."`
	MaxKeys            int  `help:"Maximum number of keys in a single object (0 means no limit)."`
	JSON5              bool `name:"json5" help:"Read input as JSON5."`
}

func (f *SortFlags) options(cfg config.Config) sortjson.Options {
	return support.SorterOptions(cfg, sortjson.Options{
		SkipKeyDuplication: f.SkipKeyDuplication,
		BufferSize:         f.BufferSize,
		MaxKeys:            f.MaxKeys,
	})
}

func (f *SortFlags) load(ctx context.Context, stdin io.Reader, ref string) ([]byte, error) {
	return source.Load(ctx, ref, source.Options{Stdin: stdin, JSON5: f.JSON5})
}

type SortCmd struct {
	SortFlags `embed:""`

	Files    []string `arg:"" optional:"" help:"Input files or URLs, '-' for stdin (default)."`
	Out      string   `short:"o" help:"Write to this file instead of stdout (single input only)."`
	Schema   string   `type:"existingfile" help:"Validate inputs against this JSON Schema first."`
	Compress string   `help:"Compress output: none, gzip or zstd."`
}

func (c *SortCmd) Run(g *Globals) error {
	cfg := g.config()
	files := c.Files
	if len(files) == 0 {
		files = []string{source.Stdin}
		if support.IsTerminal() {
			fmt.Fprintln(os.Stderr, "Reading document from stdin, end with Ctrl-D")
		}
	}

	compName := c.Compress
	if compName == "" {
		compName = cfg.Get(config.KeyCompress, "")
	}
	comp, err := compress.ParseType(compName)
	if err != nil {
		return err
	}
	if compName == "" && c.Out != "" {
		comp = compress.FromPath(c.Out)
	}

	return handleSort(context.Background(), os.Stdin, os.Stdout, &c.SortFlags, c.options(cfg), files, c.Out, c.Schema, comp)
}

func handleSort(ctx context.Context, stdin io.Reader, stdout io.Writer, flags *SortFlags, opts sortjson.Options, files []string, out, schemaPath string, comp compress.Type) error {
	if out != "" && len(files) > 1 {
		return fmt.Errorf("--out accepts a single input, got %d", len(files))
	}

	var validator *schema.Validator
	if schemaPath != "" {
		var err error
		validator, err = schema.Compile(schemaPath)
		if err != nil {
			return err
		}
	}

	for _, ref := range files {
		data, err := flags.load(ctx, stdin, ref)
		if err != nil {
			return err
		}
		if validator != nil {
			if err := validator.Validate(data); err != nil {
				return fmt.Errorf("%s: %w", source.Name(ref), err)
			}
		}

		sorter := sortjson.New(data).SetOptions(opts)
		if out != "" {
			logger.Infof("Writing canonical form of %s to %s", source.Name(ref), out)
			err := ledger.WriteFileAtomic(out, func(w io.Writer) error {
				return writeCanonical(w, sorter, comp)
			})
			if err != nil {
				return fmt.Errorf("%s: %w", source.Name(ref), err)
			}
			continue
		}

		if err := writeCanonical(stdout, sorter, comp); err != nil {
			return fmt.Errorf("%s: %w", source.Name(ref), err)
		}
		if comp == compress.None {
			if _, err := io.WriteString(stdout, "\n"); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeCanonical(w io.Writer, sorter *sortjson.Sorter, comp compress.Type) error {
	cw, err := compress.NewWriter(w, comp)
	if err != nil {
		return err
	}
	if err := sorter.WriteIntoStream(cw); err != nil {
		cw.Close()
		return err
	}
	return cw.Close()
}

type HashCmd struct {
	SortFlags `embed:""`

	Files []string `arg:"" help:"Input files or URLs, '-' for stdin."`
}

func (c *HashCmd) Run(g *Globals) error {
	return handleHash(context.Background(), os.Stdin, os.Stdout, &c.SortFlags, c.options(g.config()), c.Files)
}

func handleHash(ctx context.Context, stdin io.Reader, stdout io.Writer, flags *SortFlags, opts sortjson.Options, files []string) error {
	for _, ref := range files {
		data, err := flags.load(ctx, stdin, ref)
		if err != nil {
			return err
		}
		d, err := sign.CanonicalDigest(data, opts)
		if err != nil {
			return fmt.Errorf("%s: %w", source.Name(ref), err)
		}
		fmt.Fprintf(stdout, "%s  %s\n", d.Sha256, source.Name(ref))
	}
	return nil
}

type CompareCmd struct {
	SortFlags `embed:""`

	A string `arg:"" help:"First document."`
	B string `arg:"" help:"Second document."`
}

func (c *CompareCmd) Run(g *Globals) error {
	return handleCompare(context.Background(), os.Stdin, os.Stdout, &c.SortFlags, c.options(g.config()), c.A, c.B)
}

func handleCompare(ctx context.Context, stdin io.Reader, stdout io.Writer, flags *SortFlags, opts sortjson.Options, a, b string) error {
	canonical := make([][]byte, 0, 2)
	for _, ref := range []string{a, b} {
		data, err := flags.load(ctx, stdin, ref)
		if err != nil {
			return err
		}
		sorted, err := sortjson.New(data).SetOptions(opts).Sorted()
		if err != nil {
			return fmt.Errorf("%s: %w", source.Name(ref), err)
		}
		canonical = append(canonical, sorted)
	}

	if bytes.Equal(canonical[0], canonical[1]) {
		fmt.Fprintf(stdout, "%s and %s are identical\n", source.Name(a), source.Name(b))
		return nil
	}
	fmt.Fprintf(stdout, "%s and %s differ at byte %d of the canonical form\n",
		source.Name(a), source.Name(b), firstDifference(canonical[0], canonical[1]))
	return errMismatch
}

func firstDifference(a, b []byte) int {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return i
		}
	}
	return n
}
