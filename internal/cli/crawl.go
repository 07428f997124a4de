package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/example/pubsearch/internal/corpus"
	"github.com/example/pubsearch/internal/crawler"
	"github.com/example/pubsearch/internal/metrics"

	"github.com/spf13/cobra"
)

var crawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "Crawl a publication listing page into a corpus file",
	Long: `Fetches a listing page, discovers detail-page links, and fetches each
detail page for title/author/abstract metadata, respecting robots.txt
crawl-delay and a per-host politeness floor.

Example:

  pubsearch crawl --seed https://example.org/publications --out corpus.json`,
	RunE: runCrawl,
}

func init() {
	crawlCmd.Flags().String("seed", "", "Listing page URL to crawl (required)")
	crawlCmd.Flags().String("out", "", "Path to write the corpus JSON file (required)")
	crawlCmd.Flags().Int("max-pages", 0, "Maximum number of detail pages to fetch (0 = no limit)")
	crawlCmd.Flags().Int("concurrency", 4, "Number of concurrent fetch workers")
	_ = crawlCmd.MarkFlagRequired("seed")
	_ = crawlCmd.MarkFlagRequired("out")
}

func runCrawl(cmd *cobra.Command, args []string) error {
	seed, _ := cmd.Flags().GetString("seed")
	out, _ := cmd.Flags().GetString("out")
	maxPages, _ := cmd.Flags().GetInt("max-pages")
	concurrency, _ := cmd.Flags().GetInt("concurrency")
	verbose, _ := cmd.Flags().GetBool("verbose")

	c := crawler.New(crawler.Options{Concurrency: concurrency, MaxPages: maxPages})

	registry := metrics.NewRegistry()
	stop := registry.Timer("crawl").Start()
	docs, err := c.Crawl(context.Background(), seed)
	stop()
	if err != nil {
		return fmt.Errorf("crawling %s: %w", seed, err)
	}
	registry.Counter("pages_crawled").Add(int64(len(docs)))

	if err := corpus.WriteCorpus(out, docs); err != nil {
		return fmt.Errorf("writing corpus: %w", err)
	}

	fmt.Printf("Crawled %d publication(s) from %s\n", len(docs), seed)
	fmt.Printf("Wrote corpus to %s\n", out)
	if verbose {
		snap := registry.Snapshot()
		if ts, ok := snap.Timers["crawl"]; ok {
			fmt.Printf("Elapsed: %s\n", time.Duration(ts.MeanMs*float64(time.Millisecond)))
		}
	}
	return nil
}
