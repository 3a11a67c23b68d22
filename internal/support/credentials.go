package support

import (
	"errors"
	"fmt"

	"github.com/alapierre/sortjson/pkg/config"
	"github.com/alapierre/sortjson/pkg/remote"
	"github.com/alapierre/sortjson/pkg/secrets"
)

// PasswordPrompt is replaced in tests.
var PasswordPrompt = ReadPassword

// RemoteCredentials resolves the username and password for a remote. The
// password comes from the environment, then the secret store, then an
// interactive prompt. store may be nil when the keyring is disabled.
func RemoteCredentials(cfg config.Config, rc *remote.Config, store secrets.SecretStore, nonInteractive bool) (string, string, error) {
	username := rc.Username
	password := cfg.Get(config.KeyRemotePassword, "")

	if store != nil {
		if username == "" {
			u, err := lookup(store, secrets.RemoteUsernameKey(rc.Name))
			if err != nil {
				return "", "", err
			}
			username = u
		}
		if password == "" {
			logger.Debugf("Looking up password for remote %s in keyring", rc.Name)
			p, err := lookup(store, secrets.RemotePasswordKey(rc.Name))
			if err != nil {
				return "", "", err
			}
			password = p
		}
	}

	if password == "" && username != "" && !nonInteractive {
		p, err := PasswordPrompt(fmt.Sprintf("Enter password for %s at %s: ", username, rc.BaseURL))
		if err != nil {
			return "", "", fmt.Errorf("failed to read password: %w", err)
		}
		password = p
	}
	return username, password, nil
}

// SigningSeed returns the ed25519 seed for keyID from the environment or
// the secret store.
func SigningSeed(cfg config.Config, keyID string, store secrets.SecretStore) (string, error) {
	if seed := cfg.Get(config.KeySigningSeed, ""); seed != "" {
		return seed, nil
	}
	if store != nil {
		seed, err := lookup(store, secrets.SigningSeedKey(keyID))
		if err != nil {
			return "", err
		}
		if seed != "" {
			return seed, nil
		}
	}
	return "", fmt.Errorf("signing seed for key %s missing (%s or keyring)", keyID, config.KeySigningSeed)
}

func lookup(store secrets.SecretStore, key string) (string, error) {
	v, err := store.Get(secrets.Service, key)
	if errors.Is(err, secrets.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s from keyring: %w", key, err)
	}
	return v, nil
}
