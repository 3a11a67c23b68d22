// Package envelope holds detached signatures over the canonical form of a
// JSON document. Reformatting the document or reordering its keys keeps the
// signature valid.
package envelope

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/alapierre/sortjson/pkg/logging"
	"github.com/alapierre/sortjson/pkg/sign"
	"github.com/alapierre/sortjson/pkg/sortjson"
)

var logger = logging.Component("pkg/envelope")

const AlgEd25519 = "Ed25519"

type Signature struct {
	Alg           string    `json:"alg"`
	KeyID         string    `json:"keyId"`
	CreatedAt     time.Time `json:"createdAt"`
	PayloadSha256 string    `json:"payloadSha256"`
	PayloadSize   int64     `json:"payloadSize"`
	Sig           string    `json:"sig"`
}

func SignDocument(doc []byte, seedB64, keyID string, opts sortjson.Options) (*Signature, error) {
	canonical, err := sortjson.New(doc).SetOptions(opts).Sorted()
	if err != nil {
		return nil, err
	}
	sig, err := sign.Sign(canonical, seedB64)
	if err != nil {
		return nil, err
	}
	logger.Debugf("Signed %d canonical bytes with key %s", len(canonical), keyID)

	return &Signature{
		Alg:           AlgEd25519,
		KeyID:         keyID,
		CreatedAt:     time.Now().UTC(),
		PayloadSha256: sign.SHA256(canonical),
		PayloadSize:   int64(len(canonical)),
		Sig:           sig,
	}, nil
}

func (s *Signature) Verify(doc []byte, pubKey []byte, opts sortjson.Options) error {
	if s.Alg != AlgEd25519 {
		return fmt.Errorf("unsupported signature algorithm %q", s.Alg)
	}
	canonical, err := sortjson.New(doc).SetOptions(opts).Sorted()
	if err != nil {
		return err
	}
	if sign.SHA256(canonical) != s.PayloadSha256 {
		return fmt.Errorf("payload SHA256 mismatch")
	}
	return sign.Verify(canonical, s.Sig, pubKey)
}

// Marshal renders the signature in canonical form, so signature files
// themselves are stable under re-serialization.
func (s *Signature) Marshal() ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return sortjson.Sort(data)
}

func Load(path string) (*Signature, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var s Signature
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse signature %s: %w", path, err)
	}
	return &s, nil
}

func (s *Signature) Save(path string) error {
	data, err := s.Marshal()
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}
