// Command codescope is a local semantic code search tool.
package main

import (
	"fmt"
	"os"

	"github.com/codescope/codescope/cmd/codescope/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
