// Package main runs the asthma clinic server and its maintenance commands.
package main

import (
	"os"
)

// Version is set by build flags
var Version = "dev"

func main() {
	if err := getRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
