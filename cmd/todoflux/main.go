// Command todoflux manages a todo list through a Flux dispatcher.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/todoflux/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
