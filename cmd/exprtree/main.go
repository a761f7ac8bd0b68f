// Command exprtree is the command-line front end for expression trees.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/exprtree/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.GetExitCode(err))
	}
}
