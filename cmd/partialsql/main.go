// Command partialsql translates OPA partial evaluation residuals into
// PostgreSQL WHERE-clause fragments.
package main

import (
	"os"

	"github.com/roach88/partialsql/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		os.Exit(cli.GetExitCode(err))
	}
}
