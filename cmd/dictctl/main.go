// Command dictctl is the operator CLI: schema migrations, dictionary imports,
// ad-hoc searches and search-quality evaluation.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "dictctl: %v\n", err)
		os.Exit(1)
	}
}
