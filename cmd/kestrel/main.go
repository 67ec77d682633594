// Package main is the kestrel bench command.
package main

import (
	"fmt"
	"os"

	"go.viam.com/kestrel/cli"
)

func main() {
	if err := cli.NewApp(os.Stdout).Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
