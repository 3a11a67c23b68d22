package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/alapierre/sortjson/internal/support"
	"github.com/alapierre/sortjson/pkg/config"
	"github.com/alapierre/sortjson/pkg/logging"
	"github.com/alapierre/sortjson/pkg/secrets"
	"github.com/alecthomas/kong"
)

var logger = logging.Component("internal/cli")

// errMismatch makes the process exit with status 2 without an error message.
// The command has already reported the difference.
var errMismatch = errors.New("documents differ")

type Globals struct {
	Verbose        bool   `help:"Enable verbose logging." short:"v"`
	NonInteractive bool   `help:"Disable interactive prompts."`
	UseKeyring     bool   `help:"Use OS keyring for secrets."`
	LogToFile      bool   `help:"Enable logging to file." env:"SORTJSON_LOG_TO_FILE"`
	LogFilePath    string `help:"Override default log file path." env:"SORTJSON_LOG_FILE"`
	ConfigDir      string `help:"Override configuration directory." type:"path"`
	StateDir       string `help:"Override state directory." type:"path"`
}

func (g *Globals) paths() (string, string) {
	return support.GetPaths(g.ConfigDir, g.StateDir)
}

func (g *Globals) config() config.Config {
	configDir, _ := g.paths()
	return support.LoadMergedConfig(configDir)
}

// secretStore is nil unless the keyring was enabled.
func (g *Globals) secretStore() secrets.SecretStore {
	if !g.UseKeyring {
		return nil
	}
	return &secrets.KeyringSecretStore{}
}

type CLI struct {
	Globals `embed:""`

	Sort    SortCmd    `cmd:"" help:"Write documents with object keys sorted."`
	Hash    HashCmd    `cmd:"" help:"Print the SHA256 of the canonical form of documents."`
	Compare CompareCmd `cmd:"" help:"Check whether two documents have the same canonical form."`
	Keygen  KeygenCmd  `cmd:"" help:"Generate an Ed25519 signing key."`
	Sign    SignCmd    `cmd:"" help:"Create a detached signature of a document."`
	Verify  VerifyCmd  `cmd:"" help:"Verify a detached signature of a document."`
	Push    PushCmd    `cmd:"" help:"Upload the canonical form of a document to a remote."`
	Track   TrackCmd   `cmd:"" help:"Record the canonical digest of a document."`
	Status  StatusCmd  `cmd:"" help:"Check a document against its recorded digest."`
	Remote  RemoteCmd  `cmd:"" help:"Remote management."`
	Version VersionCmd `cmd:"" help:"Show application version."`
}

func Main() {
	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("sortjson"),
		kong.Description("Canonical JSON with sorted object keys"),
		kong.UsageOnError(),
	)

	logPath := cli.Globals.LogFilePath
	if cli.Globals.LogToFile && logPath == "" {
		logPath = filepath.Join(logging.GetDefaultLogDir(), "sortjson.log")
	}

	logging.SetupLogging(cli.Globals.Verbose, logPath)

	err := kctx.Run(&cli.Globals)
	if errors.Is(err, errMismatch) {
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
