package main

import (
	"fmt"
	"os"

	"github.com/harrison/stemfind/internal/cmd"
)

// Version is the release version reported when no -ldflags value is injected
const Version = "1.0.0"

func main() {
	if cmd.Version == "dev" {
		cmd.Version = Version
	}
	rootCmd := cmd.NewRootCommand()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
