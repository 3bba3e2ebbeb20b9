// Package main provides the command line client for the evaluation service.
//
// Usage:
//
//	sevocctl [--server URL] <command> [args]
//
// Commands:
//
//	health    - Liveness and model availability
//	status    - Service configuration snapshot
//	evaluate  - Evaluate a local file or a file in the server directory
//	version   - Print the client version
package main

import (
	"fmt"
	"os"

	"sevoc/cmd/sevocctl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
