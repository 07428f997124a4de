package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/example/pubsearch/internal/index"
	"github.com/example/pubsearch/internal/search"
	"github.com/example/pubsearch/internal/validation"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

// replDisplayLimit caps how many results the REPL prints; Planner.Search
// still ranks up to its own topK (1000 by default).
const replDisplayLimit = 10

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	dimStyle    = lipgloss.NewStyle().Faint(true)
	authorStyle = lipgloss.NewStyle().PaddingLeft(3)
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the index, or start an interactive session with no query",
	Long: `Loads a previously built index and either runs a single query (when an
argument is given) or starts a REPL reading queries from stdin until
"exit" or "quit". In the REPL, prefixing a line with "title:",
"author:", or "abstract:" restricts the search to that field.

Example:

  pubsearch search --index index.bin "risk management"
  pubsearch search --index index.bin`,
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().String("index", "", "Path to the index file (required)")
	_ = searchCmd.MarkFlagRequired("index")
}

func runSearch(cmd *cobra.Command, args []string) error {
	indexPath, _ := cmd.Flags().GetString("index")

	ix, err := index.Load(indexPath)
	if err != nil {
		return fmt.Errorf("loading index: %w", err)
	}
	planner := search.NewPlanner(ix)

	if len(args) > 0 {
		query := strings.Join(args, " ")
		return runOneShotQuery(planner, query)
	}
	return runREPL(planner)
}

func runOneShotQuery(planner *search.Planner, query string) error {
	results, took, err := runQuery(planner, query, "")
	if err != nil {
		return fmt.Errorf("searching: %w", err)
	}
	printResults(results, took)
	return nil
}

func runREPL(planner *search.Planner) error {
	fmt.Println("pubsearch interactive search (type 'exit' or 'quit' to leave)")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		switch strings.ToLower(line) {
		case "exit", "quit":
			return nil
		}

		field, query := parseFieldPrefix(line)
		results, took, err := runQuery(planner, query, field)
		if err != nil {
			fmt.Printf("error: %v\n", err)
			continue
		}
		printResults(results, took)
	}
	return nil
}

// parseFieldPrefix splits a REPL line like "title:risk management" into
// its target field ("title") and the remaining query text. A line with
// no recognized prefix searches all fields.
func parseFieldPrefix(line string) (field, query string) {
	for _, prefix := range []string{"title:", "author:", "abstract:"} {
		if strings.HasPrefix(strings.ToLower(line), prefix) {
			return strings.TrimSuffix(prefix, ":"), strings.TrimSpace(line[len(prefix):])
		}
	}
	return "", line
}

func runQuery(planner *search.Planner, query, field string) ([]search.Result, time.Duration, error) {
	cleaned, err := validation.ValidateSearchQuery(query)
	if err != nil {
		return nil, 0, err
	}

	begin := time.Now()
	ctx := context.Background()
	var results []search.Result
	if field == "" {
		results, err = planner.Search(ctx, cleaned, search.DefaultTopK)
	} else {
		results, err = planner.SearchField(ctx, cleaned, field, search.DefaultTopK)
	}
	took := time.Since(begin)
	if err != nil {
		return nil, took, err
	}
	return results, took, nil
}

func printResults(results []search.Result, took time.Duration) {
	if len(results) == 0 {
		fmt.Println("No matching publications found.")
		return
	}

	shown := results
	if len(shown) > replDisplayLimit {
		shown = shown[:replDisplayLimit]
	}

	for i, r := range shown {
		fmt.Printf("%d. %s\n", i+1, titleStyle.Render(r.Title))
		fmt.Println(dimStyle.Render(fmt.Sprintf("   score=%.4f  date=%s", r.RelevancyScore, r.Date)))
		if len(r.Authors) > 0 {
			names := make([]string, len(r.Authors))
			for j, a := range r.Authors {
				names[j] = a.Name
			}
			fmt.Println(authorStyle.Render(strings.Join(names, ", ")))
		}
	}

	fmt.Printf("\n%d result(s)", len(results))
	if len(results) > len(shown) {
		fmt.Printf(" (showing top %d)", len(shown))
	}
	if took > 0 {
		fmt.Printf(", %v\n", took)
	} else {
		fmt.Println()
	}
}
