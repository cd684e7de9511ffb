package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/quantumprov/qprov/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		// Commands write their own error output; only surface errors that
		// never reached a formatter (flag parsing, unknown commands).
		var exitErr *cli.ExitError
		if !errors.As(err, &exitErr) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(cli.GetExitCode(err))
	}
}
