package main

import (
	"fmt"
	"os"

	"github.com/offlinefirst/replaykit/internal/cmd"
)

func main() {
	root := cmd.NewRootCommand()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
