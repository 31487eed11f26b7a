// gohex is a command-line tool for inspecting, editing, and transferring
// Intel HEX files, built on the pkg/ihex and pkg/ihexfile libraries.
package main

import (
	"fmt"
	"os"

	"github.com/mbrukner/gohex/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
