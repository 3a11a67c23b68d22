package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/alapierre/sortjson/version"
)

type VersionCmd struct {
}

func (c *VersionCmd) Run(g *Globals) error {
	handleVersion(os.Stdout)
	return nil
}

func handleVersion(w io.Writer) {
	fmt.Fprintf(w, "sortjson\n")
	fmt.Fprintf(w, "Version: %s\n", version.Version)
}
