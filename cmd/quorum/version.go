package main

import "fmt"

// Set at build time via -ldflags.
var (
	version = "dev"
	commit  = "none"
)

func buildVersionString() string {
	if commit == "none" {
		return version
	}
	return fmt.Sprintf("%s (%s)", version, commit)
}
