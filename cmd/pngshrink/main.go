package main

import (
	"fmt"
	"os"

	"go.uber.org/automaxprocs/maxprocs"

	"github.com/sonemaro/pngshrink/cmd/pngshrink/commands"
)

func main() {
	// follow container CPU quotas; the worker count still follows physical cores
	if _, err := maxprocs.Set(maxprocs.Logger(func(string, ...interface{}) {})); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to set GOMAXPROCS: %v\n", err)
	}

	if err := commands.NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
