// Command stringed runs stringed programs from the command line, in an
// interactive shell, or as an HTTP service.
package main

import (
	"os"

	"github.com/sandrolain/gostringed/cmd/stringed/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
