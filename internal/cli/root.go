// Package cli provides the pubsearch command-line interface: crawling a
// publication listing into a corpus file, building a search index from
// that corpus, querying the index (one-shot or interactively), training
// the short-text classifier, and serving search and classification over
// HTTP.
package cli

import (
	"github.com/example/pubsearch/internal/version"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:     "pubsearch",
	Short:   "Search and classify a corpus of academic publications",
	Version: version.Version,
	Long: `pubsearch crawls, indexes, and searches a corpus of academic
publication listings, ranking results with a field-weighted TF-IDF model
and supporting exact phrase queries. It can also train a short-text
topic classifier over the same corpus.`,
}

// Execute runs the root command and returns any error from the selected
// subcommand.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(crawlCmd)
	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(classifyTrainCmd)

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")
}
