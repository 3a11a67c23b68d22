// Package ledger remembers the canonical digest of named documents so a
// later run can tell whether their content changed.
package ledger

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/alapierre/sortjson/pkg/logging"
	"github.com/alapierre/sortjson/pkg/sign"
)

var logger = logging.Component("pkg/ledger")

var validName = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

type Record struct {
	Name       string    `json:"name"`
	Source     string    `json:"source"`
	Sha256     string    `json:"sha256"`
	Size       int64     `json:"size"`
	RecordedAt time.Time `json:"recordedAt"`
}

type Status int

const (
	StatusUntracked Status = iota
	StatusUnchanged
	StatusChanged
)

func (s Status) String() string {
	switch s {
	case StatusUnchanged:
		return "unchanged"
	case StatusChanged:
		return "changed"
	default:
		return "untracked"
	}
}

func ValidateName(name string) error {
	if !validName.MatchString(name) || name == "." || name == ".." {
		return fmt.Errorf("invalid ledger name %q: use letters, digits, '.', '_' or '-'", name)
	}
	return nil
}

func Path(stateDir, name string) string {
	return filepath.Join(stateDir, "ledger", name+".json")
}

// Load returns nil without error when nothing is recorded under name.
func Load(stateDir, name string) (*Record, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	f, err := os.Open(Path(stateDir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()
	var rec Record
	if err := json.NewDecoder(f).Decode(&rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func Save(stateDir string, rec *Record) error {
	if err := ValidateName(rec.Name); err != nil {
		return err
	}
	path := Path(stateDir, rec.Name)
	logger.Debugf("Saving ledger record %s to %s", rec.Name, path)
	return WriteFileAtomic(path, func(w io.Writer) error {
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(rec)
	})
}

// Compare checks a fresh digest against a stored record, rec may be nil.
func Compare(rec *Record, d sign.Digest) Status {
	if rec == nil {
		return StatusUntracked
	}
	if rec.Sha256 == d.Sha256 && rec.Size == d.Size {
		return StatusUnchanged
	}
	return StatusChanged
}

// WriteFileAtomic writes into a temporary file next to path and renames it
// into place once write succeeded. Missing parent directories are created.
func WriteFileAtomic(path string, write func(w io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tempFile, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tempName := tempFile.Name()
	defer func() {
		if tempFile != nil {
			tempFile.Close()
			os.Remove(tempName)
		}
	}()

	if err := write(tempFile); err != nil {
		return err
	}
	if err := tempFile.Close(); err != nil {
		return err
	}
	tempFile = nil

	if err := os.Rename(tempName, path); err != nil {
		os.Remove(tempName)
		return err
	}
	return nil
}
