package sign

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"

	"github.com/alapierre/sortjson/pkg/logging"
	"github.com/alapierre/sortjson/pkg/sortjson"
)

var logger = logging.Component("pkg/sign")

// Hasher is an io.Writer computing SHA-256 and the number of bytes seen.
type Hasher struct {
	h hash.Hash
	n int64
}

func NewHasher() *Hasher {
	return &Hasher{h: sha256.New()}
}

func (h *Hasher) Write(p []byte) (n int, err error) {
	n, err = h.h.Write(p)
	h.n += int64(n)
	return n, err
}

func (h *Hasher) Sum() string {
	return hex.EncodeToString(h.h.Sum(nil))
}

func (h *Hasher) Size() int64 {
	return h.n
}

// Digest is the SHA-256 of the canonical form of a document.
type Digest struct {
	Sha256 string
	Size   int64
}

// CanonicalDigest streams the canonical form of doc into a Hasher without
// materializing it.
func CanonicalDigest(doc []byte, opts sortjson.Options) (Digest, error) {
	h := NewHasher()
	if err := sortjson.New(doc).SetOptions(opts).WriteIntoStream(h); err != nil {
		return Digest{}, err
	}
	d := Digest{Sha256: h.Sum(), Size: h.Size()}
	logger.Debugf("Canonical digest %s (%d bytes)", d.Sha256, d.Size)
	return d, nil
}

func FileSHA256(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := NewHasher()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return h.Sum(), nil
}

func SHA256(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

func VerifyFingerprint(pubKey []byte, expectedFingerprint string) error {
	actual := SHA256(pubKey)
	if actual != expectedFingerprint {
		return fmt.Errorf("public key fingerprint mismatch: expected %s, got %s", expectedFingerprint, actual)
	}
	return nil
}

// GenerateSeed returns a fresh base64 encoded ed25519 seed.
func GenerateSeed() (string, error) {
	seed := make([]byte, ed25519.SeedSize)
	if _, err := rand.Read(seed); err != nil {
		return "", fmt.Errorf("failed to generate seed: %w", err)
	}
	return base64.StdEncoding.EncodeToString(seed), nil
}

func decodeSeed(seedB64 string) ([]byte, error) {
	seed, err := base64.StdEncoding.DecodeString(seedB64)
	if err != nil {
		return nil, fmt.Errorf("failed to decode seed: %w", err)
	}
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("invalid seed size: expected %d, got %d", ed25519.SeedSize, len(seed))
	}
	return seed, nil
}

func Sign(payload []byte, seedB64 string) (string, error) {
	seed, err := decodeSeed(seedB64)
	if err != nil {
		return "", err
	}
	sig := ed25519.Sign(ed25519.NewKeyFromSeed(seed), payload)
	return base64.StdEncoding.EncodeToString(sig), nil
}

func Verify(payload []byte, sigB64 string, pubKey []byte) error {
	if len(pubKey) != ed25519.PublicKeySize {
		return fmt.Errorf("invalid public key size: expected %d, got %d", ed25519.PublicKeySize, len(pubKey))
	}
	sig, err := base64.StdEncoding.DecodeString(sigB64)
	if err != nil {
		return fmt.Errorf("failed to decode signature: %w", err)
	}
	if !ed25519.Verify(pubKey, payload, sig) {
		return fmt.Errorf("invalid signature")
	}
	return nil
}

func SeedToPubKey(seedB64 string) ([]byte, error) {
	seed, err := decodeSeed(seedB64)
	if err != nil {
		return nil, err
	}
	return ed25519.NewKeyFromSeed(seed).Public().(ed25519.PublicKey), nil
}
