// Package main provides the entry point for the nlsql gateway server and its
// operator tooling.
package main

import (
	"os"
)

// version is set by ldflags at build time.
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
