package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alapierre/sortjson/internal/support"
	"github.com/alapierre/sortjson/pkg/backend"
	"github.com/alapierre/sortjson/pkg/compress"
	"github.com/alapierre/sortjson/pkg/config"
	"github.com/alapierre/sortjson/pkg/envelope"
	"github.com/alapierre/sortjson/pkg/remote"
	"github.com/alapierre/sortjson/pkg/sign"
	"github.com/alapierre/sortjson/pkg/sortjson"
)

type PushCmd struct {
	SortFlags `embed:""`

	Document string `arg:"" help:"Document to upload, '-' for stdin."`
	Remote   string `help:"Remote name (default: SORTJSON_REMOTE)."`
	Path     string `required:"" help:"Destination path on the remote."`
	Compress string `help:"Compress the upload: none, gzip or zstd."`
	KeyID    string `help:"Also upload a detached signature made with this key."`
	Force    bool   `help:"Allow overwriting an existing document (dangerous)."`
}

// pushRequest is everything handlePush needs after configuration has been
// resolved.
type pushRequest struct {
	Document string
	Path     string
	Compress compress.Type
	Force    bool
	KeyID    string
	Seed     string
}

func (c *PushCmd) Run(g *Globals) error {
	cfg := g.config()
	configDir, _ := g.paths()

	name := c.Remote
	if name == "" {
		name = cfg.Get(config.KeyRemote, "")
	}
	if name == "" {
		return fmt.Errorf("no remote given (--remote or %s)", config.KeyRemote)
	}
	rc, err := remote.Load(configDir, name)
	if err != nil {
		return err
	}

	store := g.secretStore()
	username, password, err := support.RemoteCredentials(cfg, rc, store, g.NonInteractive)
	if err != nil {
		return err
	}

	compName := c.Compress
	if compName == "" {
		compName = cfg.Get(config.KeyCompress, "")
	}
	comp, err := compress.ParseType(compName)
	if err != nil {
		return err
	}

	req := pushRequest{
		Document: c.Document,
		Path:     c.Path,
		Compress: comp,
		Force:    c.Force,
		KeyID:    c.KeyID,
	}
	if c.KeyID != "" {
		req.Seed, err = support.SigningSeed(cfg, c.KeyID, store)
		if err != nil {
			return err
		}
	}

	logger.Infof("Pushing %s to remote %s (%s)", c.Document, rc.Name, rc.BaseURL)
	b := backend.NewHTTPBackend(rc.BaseURL, username, password)
	return handlePush(context.Background(), os.Stdin, os.Stdout, b, &c.SortFlags, c.options(cfg), req)
}

func handlePush(ctx context.Context, stdin io.Reader, stdout io.Writer, b backend.Backend, flags *SortFlags, opts sortjson.Options, req pushRequest) error {
	data, err := flags.load(ctx, stdin, req.Document)
	if err != nil {
		return err
	}
	sorter := sortjson.New(data).SetOptions(opts)

	var body bytes.Buffer
	if err := writeCanonical(&body, sorter, req.Compress); err != nil {
		return fmt.Errorf("%s: %w", req.Document, err)
	}
	payload := body.Bytes()

	path := req.Path
	if ext := req.Compress.Extension(); ext != "" && !strings.HasSuffix(path, ext) {
		path += ext
	}

	exists, err := b.Exists(ctx, path)
	if err != nil {
		return fmt.Errorf("failed to check if %s exists: %w", path, err)
	}
	if exists {
		if !req.Force {
			return fmt.Errorf("%s already exists on the remote. Use --force to overwrite", path)
		}
		logger.Warnf("Overwriting existing document %s", path)
	}

	fmt.Fprintf(stdout, "Uploading %s (%d bytes)\n", path, len(payload))
	if err := b.Put(ctx, path, bytesBody(payload), backend.ContentType(path)); err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}

	sha := sign.SHA256(payload)
	if err := b.Put(ctx, path+".sha256", bytesBody([]byte(sha)), "text/plain"); err != nil {
		logger.Errorf("Failed to upload SHA256: %v", err)
	}

	if req.KeyID != "" {
		s, err := envelope.SignDocument(data, req.Seed, req.KeyID, opts)
		if err != nil {
			return fmt.Errorf("failed to sign %s: %w", req.Document, err)
		}
		sigJSON, err := s.Marshal()
		if err != nil {
			return err
		}
		if err := b.Put(ctx, path+".sig", bytesBody(sigJSON), "application/json"); err != nil {
			return fmt.Errorf("failed to upload signature: %w", err)
		}
	}

	fmt.Fprintln(stdout, "Push successful!")
	logger.Infof("Push of %s successful, SHA256 %s", path, sha)
	return nil
}

func bytesBody(data []byte) func() (io.ReadCloser, error) {
	return func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(data)), nil
	}
}
