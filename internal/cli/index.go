package cli

import (
	"fmt"

	"github.com/example/pubsearch/internal/corpus"
	"github.com/example/pubsearch/internal/index"
	"github.com/example/pubsearch/internal/metrics"

	"github.com/spf13/cobra"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build a search index from a corpus file",
	Long: `Reads a corpus JSON file, builds the positional inverted index and the
three field-specific TF-IDF models, and writes the result to a single
index file.

Example:

  pubsearch index --corpus corpus.json --out index.bin`,
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().String("corpus", "", "Path to the corpus JSON file (required)")
	indexCmd.Flags().String("out", "", "Path to write the index file (required)")
	_ = indexCmd.MarkFlagRequired("corpus")
	_ = indexCmd.MarkFlagRequired("out")
}

func runIndex(cmd *cobra.Command, args []string) error {
	corpusPath, _ := cmd.Flags().GetString("corpus")
	out, _ := cmd.Flags().GetString("out")
	verbose, _ := cmd.Flags().GetBool("verbose")

	docs, err := corpus.ReadCorpus(corpusPath)
	if err != nil {
		return fmt.Errorf("reading corpus: %w", err)
	}

	registry := metrics.NewRegistry()
	stop := registry.Timer("build").Start()
	ix, err := index.Build(docs)
	stop()
	if err != nil {
		return fmt.Errorf("building index: %w", err)
	}

	if err := ix.Save(out); err != nil {
		return fmt.Errorf("saving index: %w", err)
	}

	fmt.Printf("Indexed %d of %d document(s)\n", len(ix.Docs), len(docs))
	fmt.Printf("Wrote index to %s\n", out)
	if verbose {
		snap := registry.Snapshot()
		if ts, ok := snap.Timers["build"]; ok {
			fmt.Printf("Build time: %.1fms\n", ts.MeanMs)
		}
	}
	return nil
}
