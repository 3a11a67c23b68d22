// Package remote keeps named HTTP document stores that canonical documents
// can be pushed to.
package remote

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alapierre/sortjson/pkg/config"
	"github.com/alapierre/sortjson/pkg/logging"
)

var logger = logging.Component("pkg/remote")

const (
	keyName     = "SORTJSON_REMOTE_NAME"
	keyBaseURL  = "SORTJSON_REMOTE_BASE_URL"
	keyUsername = "SORTJSON_REMOTE_USERNAME"
)

type Config struct {
	Name     string
	BaseURL  string
	Username string
}

func Load(configDir, name string) (*Config, error) {
	path := Path(configDir, name)
	cfg, err := config.LoadFile(path)
	if err != nil {
		return nil, err
	}

	rc := &Config{
		Name:     cfg.Get(keyName, name),
		BaseURL:  cfg.Get(keyBaseURL, ""),
		Username: cfg.Get(keyUsername, ""),
	}
	if rc.BaseURL == "" {
		return nil, fmt.Errorf("remote %s is not configured (missing %s in %s)", name, keyBaseURL, path)
	}
	return rc, nil
}

func Save(configDir string, rc *Config) error {
	path := Path(configDir, rc.Name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	logger.Debugf("Saving remote %s to %s", rc.Name, path)
	return os.WriteFile(path, []byte(ToEnvSnippet(rc)), 0600)
}

func Path(configDir, name string) string {
	return filepath.Join(configDir, "remotes", name+".env")
}

func ToEnvSnippet(rc *Config) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s=%s\n", keyName, rc.Name)
	fmt.Fprintf(&sb, "%s=%s\n", keyBaseURL, rc.BaseURL)
	if rc.Username != "" {
		fmt.Fprintf(&sb, "%s=%s\n", keyUsername, rc.Username)
	}
	return sb.String()
}
