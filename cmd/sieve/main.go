// Command sieve compiles search criteria documents to SQL, runs them against
// SQLite databases, and executes conformance scenarios.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/roach88/sieve/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		var exitErr *cli.ExitError
		if !errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(cli.GetExitCode(err))
	}
}
