package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra/doc"

	"github.com/arthur-debert/lnedit/cmd/lnedit"
	"github.com/arthur-debert/lnedit/internal/version"
)

func main() {
	rootCmd := lnedit.NewRootCmd()

	header := &doc.GenManHeader{
		Title:   "LNEDIT",
		Section: "1",
		Source:  "lnedit " + version.Version,
		Manual:  "lnedit manual",
	}

	err := doc.GenMan(rootCmd, header, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating man page: %v\n", err)
		os.Exit(1)
	}
}
