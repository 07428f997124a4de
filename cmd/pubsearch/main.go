// Command pubsearch indexes a corpus of academic publications and serves
// ranked keyword and phrase search over it, from the command line or over
// HTTP.
//
// Usage:
//
//	pubsearch crawl --seed <url> --out corpus.json
//	pubsearch index --corpus corpus.json --out index.bin
//	pubsearch search --index index.bin
//	pubsearch classify-train --corpus labeled.json --out classifier.bin
//	pubsearch serve --index index.bin --classifier classifier.bin
package main

import (
	"fmt"
	"os"

	"github.com/example/pubsearch/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
