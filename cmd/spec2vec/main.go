// Spec2Vec - mass spectral library scoring tool
package main

import (
	"fmt"
	"os"

	"github.com/NLeSC/Spec2Vec/cmd/spec2vec/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
