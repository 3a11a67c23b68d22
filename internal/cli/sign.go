package cli

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/alapierre/sortjson/internal/support"
	"github.com/alapierre/sortjson/pkg/envelope"
	"github.com/alapierre/sortjson/pkg/secrets"
	"github.com/alapierre/sortjson/pkg/sign"
	"github.com/alapierre/sortjson/pkg/sortjson"
	"github.com/alapierre/sortjson/pkg/source"
)

type KeygenCmd struct {
	KeyID     string `required:"" help:"Key ID, used to find the seed in the keyring."`
	PubkeyOut string `default:"ed25519.pub" help:"Where to write the public key."`
	Force     bool   `help:"Overwrite an existing public key file."`
}

func (c *KeygenCmd) Run(g *Globals) error {
	return handleKeygen(os.Stdout, c.KeyID, c.PubkeyOut, c.Force, g.secretStore())
}

func handleKeygen(stdout io.Writer, keyID, pubkeyOut string, force bool, store secrets.SecretStore) error {
	if !force {
		if _, err := os.Stat(pubkeyOut); err == nil {
			return fmt.Errorf("%s already exists, use --force to overwrite", pubkeyOut)
		}
	}

	seedB64, err := sign.GenerateSeed()
	if err != nil {
		return err
	}
	pubKey, err := sign.SeedToPubKey(seedB64)
	if err != nil {
		return fmt.Errorf("failed to derive public key: %w", err)
	}
	if err := os.WriteFile(pubkeyOut, pubKey, 0644); err != nil {
		return fmt.Errorf("failed to write public key: %w", err)
	}
	logger.Infof("Generated key %s, public key written to %s", keyID, pubkeyOut)

	if store != nil {
		if err := store.Set(secrets.Service, secrets.SigningSeedKey(keyID), seedB64); err != nil {
			return fmt.Errorf("failed to store seed in keyring: %w", err)
		}
		fmt.Fprintln(stdout, "Signing seed stored in keyring.")
	} else {
		fmt.Fprintf(stdout, "IMPORTANT: Store this signing seed securely (it will NOT be saved to disk):\n%s\n\n", seedB64)
	}

	fmt.Fprintf(stdout, "Public key:        %s\n", pubkeyOut)
	fmt.Fprintf(stdout, "Public key SHA256: %s\n", sign.SHA256(pubKey))
	return nil
}

type SignCmd struct {
	SortFlags `embed:""`

	Document string `arg:"" help:"Document to sign."`
	Out      string `short:"o" help:"Signature file (default: <document>.sig)."`
	KeyID    string `required:"" help:"Key ID recorded in the signature."`
}

func (c *SignCmd) Run(g *Globals) error {
	cfg := g.config()
	seed, err := support.SigningSeed(cfg, c.KeyID, g.secretStore())
	if err != nil {
		return err
	}
	out := c.Out
	if out == "" {
		out = c.Document + ".sig"
	}
	return handleSign(context.Background(), os.Stdout, &c.SortFlags, c.options(cfg), c.Document, out, c.KeyID, seed)
}

func handleSign(ctx context.Context, stdout io.Writer, flags *SortFlags, opts sortjson.Options, document, out, keyID, seed string) error {
	data, err := flags.load(ctx, nil, document)
	if err != nil {
		return err
	}
	s, err := envelope.SignDocument(data, seed, keyID, opts)
	if err != nil {
		return fmt.Errorf("failed to sign %s: %w", document, err)
	}
	if err := s.Save(out); err != nil {
		return fmt.Errorf("failed to write signature: %w", err)
	}
	logger.Infof("Signed %s with key %s", document, keyID)
	fmt.Fprintf(stdout, "Signature written to %s (payload SHA256 %s)\n", out, s.PayloadSha256)
	return nil
}

type VerifyCmd struct {
	SortFlags `embed:""`

	Document     string `arg:"" help:"Document to verify."`
	Signature    string `help:"Signature file (default: <document>.sig)."`
	Pubkey       string `required:"" type:"existingfile" help:"Public key file, raw or base64."`
	PubkeySha256 string `name:"pubkey-sha256" help:"Expected SHA256 of the public key."`
}

func (c *VerifyCmd) Run(g *Globals) error {
	sigPath := c.Signature
	if sigPath == "" {
		sigPath = c.Document + ".sig"
	}
	return handleVerify(context.Background(), os.Stdout, &c.SortFlags, c.options(g.config()), c.Document, sigPath, c.Pubkey, c.PubkeySha256)
}

func handleVerify(ctx context.Context, stdout io.Writer, flags *SortFlags, opts sortjson.Options, document, sigPath, pubkeyPath, pubkeySha string) error {
	pubKey, err := readPublicKey(pubkeyPath)
	if err != nil {
		return err
	}
	if pubkeySha != "" {
		if err := sign.VerifyFingerprint(pubKey, pubkeySha); err != nil {
			return err
		}
	}

	s, err := envelope.Load(sigPath)
	if err != nil {
		return err
	}
	data, err := flags.load(ctx, nil, document)
	if err != nil {
		return err
	}
	if err := s.Verify(data, pubKey, opts); err != nil {
		return fmt.Errorf("signature verification of %s failed: %w", source.Name(document), err)
	}

	fmt.Fprintf(stdout, "Signature OK (key %s, signed %s)\n", s.KeyID, s.CreatedAt.Format(time.RFC3339))
	return nil
}

func readPublicKey(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read public key: %w", err)
	}
	if len(data) == ed25519.PublicKeySize {
		return data, nil
	}
	decoded, err := base64.StdEncoding.DecodeString(string(bytes.TrimSpace(data)))
	if err != nil || len(decoded) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("%s is not an Ed25519 public key", path)
	}
	return decoded, nil
}

