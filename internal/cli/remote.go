package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/alapierre/sortjson/internal/support"
	"github.com/alapierre/sortjson/pkg/remote"
	"github.com/alapierre/sortjson/pkg/secrets"
)

type RemoteCmd struct {
	Init   RemoteInitCmd   `cmd:"" help:"Define a new remote."`
	Config RemoteConfigCmd `cmd:"" help:"Show remote configuration."`
}

type RemoteInitCmd struct {
	Name             string `required:"" help:"Remote name."`
	BaseURL          string `required:"" help:"Remote base URL."`
	User             string `help:"Username for basic auth."`
	Password         string `help:"Password (used with --store-credentials, prompted if missing)."`
	StoreCredentials bool   `help:"Store credentials in OS keyring."`
}

func (c *RemoteInitCmd) Run(g *Globals) error {
	configDir, _ := g.paths()
	var store secrets.SecretStore
	if c.StoreCredentials {
		store = &secrets.KeyringSecretStore{}
	}
	return handleRemoteInit(os.Stdout, configDir, store, c.Name, c.BaseURL, c.User, c.Password, g.NonInteractive)
}

func handleRemoteInit(stdout io.Writer, configDir string, store secrets.SecretStore, name, baseURL, user, pass string, nonInteractive bool) error {
	logger.Infof("Initializing remote %s at %s", name, baseURL)
	rc := &remote.Config{
		Name:     name,
		BaseURL:  baseURL,
		Username: user,
	}

	if store != nil {
		if pass == "" && user != "" && !nonInteractive {
			var err error
			pass, err = support.PasswordPrompt(fmt.Sprintf("Enter password for %s: ", user))
			if err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}
		}
		if user != "" {
			if err := store.Set(secrets.Service, secrets.RemoteUsernameKey(name), user); err != nil {
				return fmt.Errorf("failed to store username: %w", err)
			}
		}
		if pass != "" {
			if err := store.Set(secrets.Service, secrets.RemotePasswordKey(name), pass); err != nil {
				return fmt.Errorf("failed to store password: %w", err)
			}
		}
		fmt.Fprintln(stdout, "Credentials stored in keyring.")
	}

	if err := remote.Save(configDir, rc); err != nil {
		return fmt.Errorf("failed to save remote config: %w", err)
	}

	fmt.Fprintf(stdout, "Remote %s saved to %s\n", name, remote.Path(configDir, name))
	return nil
}

type RemoteConfigCmd struct {
	Name string `required:"" help:"Remote name."`
}

func (c *RemoteConfigCmd) Run(g *Globals) error {
	configDir, _ := g.paths()
	return handleRemoteConfig(os.Stdout, configDir, c.Name)
}

func handleRemoteConfig(stdout io.Writer, configDir, name string) error {
	rc, err := remote.Load(configDir, name)
	if err != nil {
		return fmt.Errorf("failed to load remote config for %s: %w", name, err)
	}

	fmt.Fprintf(stdout, "Remote config snippet for %s:\n", name)
	fmt.Fprintln(stdout, "-------------------------------------------")
	fmt.Fprint(stdout, remote.ToEnvSnippet(rc))
	fmt.Fprintln(stdout, "-------------------------------------------")
	return nil
}
