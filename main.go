// main is the entry point of the teamsmell CLI.
package main

import (
	"fmt"
	"os"

	"github.com/huangsam/teamsmell/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
