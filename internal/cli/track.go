package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/alapierre/sortjson/pkg/backend"
	"github.com/alapierre/sortjson/pkg/ledger"
	"github.com/alapierre/sortjson/pkg/sign"
	"github.com/alapierre/sortjson/pkg/sortjson"
	"github.com/alapierre/sortjson/pkg/source"
)

type TrackCmd struct {
	SortFlags `embed:""`

	Name     string `arg:"" help:"Ledger entry name."`
	Document string `arg:"" help:"Document to record."`
}

func (c *TrackCmd) Run(g *Globals) error {
	_, stateDir := g.paths()
	return handleTrack(context.Background(), os.Stdin, os.Stdout, &c.SortFlags, c.options(g.config()), stateDir, c.Name, c.Document)
}

func handleTrack(ctx context.Context, stdin io.Reader, stdout io.Writer, flags *SortFlags, opts sortjson.Options, stateDir, name, document string) error {
	if err := ledger.ValidateName(name); err != nil {
		return err
	}
	data, err := flags.load(ctx, stdin, document)
	if err != nil {
		return err
	}
	d, err := sign.CanonicalDigest(data, opts)
	if err != nil {
		return fmt.Errorf("%s: %w", source.Name(document), err)
	}

	ref, err := recordedSource(document)
	if err != nil {
		return err
	}
	rec := &ledger.Record{
		Name:       name,
		Source:     ref,
		Sha256:     d.Sha256,
		Size:       d.Size,
		RecordedAt: time.Now().UTC(),
	}
	if err := ledger.Save(stateDir, rec); err != nil {
		return fmt.Errorf("failed to save ledger record: %w", err)
	}
	fmt.Fprintf(stdout, "Recorded %s: %s (%d bytes)\n", name, d.Sha256, d.Size)
	return nil
}

// recordedSource is the reference status falls back to. File paths are made
// absolute so the record does not depend on the working directory.
func recordedSource(document string) (string, error) {
	if document == source.Stdin || backend.IsURL(document) {
		return document, nil
	}
	abs, err := filepath.Abs(document)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", document, err)
	}
	return abs, nil
}

type StatusCmd struct {
	SortFlags `embed:""`

	Name     string `arg:"" help:"Ledger entry name."`
	Document string `arg:"" optional:"" help:"Document to check (default: the recorded source)."`
}

func (c *StatusCmd) Run(g *Globals) error {
	_, stateDir := g.paths()
	return handleStatus(context.Background(), os.Stdin, os.Stdout, &c.SortFlags, c.options(g.config()), stateDir, c.Name, c.Document)
}

func handleStatus(ctx context.Context, stdin io.Reader, stdout io.Writer, flags *SortFlags, opts sortjson.Options, stateDir, name, document string) error {
	rec, err := ledger.Load(stateDir, name)
	if err != nil {
		return fmt.Errorf("failed to load ledger record %s: %w", name, err)
	}
	if rec == nil {
		return fmt.Errorf("%s is not tracked, run 'sortjson track %s <document>' first", name, name)
	}
	if document == "" {
		if rec.Source == source.Stdin {
			return fmt.Errorf("%s was recorded from standard input, a document is required", name)
		}
		document = rec.Source
	}

	data, err := flags.load(ctx, stdin, document)
	if err != nil {
		return err
	}
	d, err := sign.CanonicalDigest(data, opts)
	if err != nil {
		return fmt.Errorf("%s: %w", source.Name(document), err)
	}

	status := ledger.Compare(rec, d)
	fmt.Fprintf(stdout, "Name:        %s\n", rec.Name)
	fmt.Fprintf(stdout, "Document:    %s\n", source.Name(document))
	fmt.Fprintf(stdout, "Recorded At: %s\n", rec.RecordedAt.Local().Format(time.RFC3339))
	fmt.Fprintf(stdout, "Recorded:    %s\n", rec.Sha256)
	fmt.Fprintf(stdout, "Current:     %s\n", d.Sha256)
	fmt.Fprintf(stdout, "Status:      %s\n", status)

	if status == ledger.StatusChanged {
		return errMismatch
	}
	return nil
}
