package main

import (
	"fmt"
	"os"

	"github.com/rebang/rebang/internal/cli"
)

func main() {
	rootCmd := cli.NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "rebang:", err)
		os.Exit(1)
	}
}
