package main

import (
	"fmt"
	"os"

	"github.com/arthur-debert/lnedit/cmd/lnedit"
	"github.com/arthur-debert/lnedit/pkg/ui/output/styles"
)

func main() {
	rootCmd := lnedit.NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		// Print the error in red
		errorStyle := styles.GetStyle("Error")
		fmt.Fprintln(os.Stderr, errorStyle.Render(fmt.Sprintf("Error: %s", lnedit.UserMessage(err))))
		os.Exit(1)
	}
}
