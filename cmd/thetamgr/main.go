// Command thetamgr manages the lifecycle of a locally-run ThetaTerminal
// instance: downloading the jar on demand, launching it with saved
// credentials, and supervising it until stopped.
package main

import (
	"fmt"
	"os"

	"github.com/ajnaduvil/ThetaDataTerminalManager/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
