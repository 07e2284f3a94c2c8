// Package main provides the entry point for the rbset CLI tool.
package main

import (
	"fmt"
	"os"

	"github.com/Sumatoshi-tech/rbset/cmd/rbset/commands"
	"github.com/Sumatoshi-tech/rbset/pkg/version"
)

func main() {
	version.InitBinaryVersion()

	err := commands.NewRootCommand().Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
