// Package main is the entry point for the smartsample CLI.
//
// Usage:
//
//	smartsample [flags] <command> [args]
//
// Commands:
//
//	select       - Pick a visually diverse subset of images
//	fingerprint  - Print perceptual fingerprints
//	serve        - Run the HTTP API
//	cache        - Manage the shared fingerprint cache
//	version      - Show version information
package main

import (
	"fmt"
	"os"

	"github.com/kailas-cloud/smartsample/cmd/smartsample/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
