// Command tpgm rewrites, compiles and evaluates temporal graph query
// predicates.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/tpgm/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.GetExitCode(err))
	}
}
