package search

import (
	"context"
	"testing"

	"github.com/example/pubsearch/internal/corpus"
	"github.com/example/pubsearch/internal/index"
)

// threeDocScenario builds a canonical three-document corpus:
// D0 a risk-management paper by Alice Smith, D1 a public-health paper by
// Bob Jones that also mentions risk, and D2 an election paper coauthored
// by Alice Smith and Carol Lee.
func threeDocScenario(t *testing.T) *Planner {
	t.Helper()
	docs := []corpus.Document{
		{
			Title:    "Risk management in banking",
			Authors:  []corpus.Author{{Name: "Alice Smith"}},
			Abstract: "Bank risk frameworks.",
			Date:     "2020",
		},
		{
			Title:    "Public health policy",
			Authors:  []corpus.Author{{Name: "Bob Jones"}},
			Abstract: "Health outcomes and risk.",
			Date:     "2021",
		},
		{
			Title:    "Election politics 2024",
			Authors:  []corpus.Author{{Name: "Alice Smith"}, {Name: "Carol Lee"}},
			Abstract: "Voter behavior.",
			Date:     "2024",
		},
	}
	ix, err := index.Build(docs)
	if err != nil {
		t.Fatalf("index.Build() error = %v", err)
	}
	return NewPlanner(ix)
}

func TestSearchRiskRanksTitleMatchAboveAbstractMatch(t *testing.T) {
	p := threeDocScenario(t)
	results, err := p.Search(context.Background(), "risk", 0)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) == 0 {
		t.Fatal("Search(\"risk\") = empty, want non-empty")
	}
	if results[0].Title != "Risk management in banking" {
		t.Errorf("top result = %q, want D0 (title match ranks above abstract-only match)", results[0].Title)
	}
}

func TestSearchExactPhraseRiskManagement(t *testing.T) {
	p := threeDocScenario(t)
	results, err := p.Search(context.Background(), `"risk management"`, 0)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 1 || results[0].Title != "Risk management in banking" {
		t.Errorf("Search(\"risk management\") = %+v, want exactly D0", results)
	}
}

func TestSearchReversedPhraseIsEmpty(t *testing.T) {
	p := threeDocScenario(t)
	results, err := p.Search(context.Background(), `"management risk"`, 0)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 0 {
		t.Errorf("Search(\"management risk\") = %+v, want empty (order matters)", results)
	}
}

func TestSearchByAliceAdaptsToAuthorWeighting(t *testing.T) {
	p := threeDocScenario(t)
	results, err := p.Search(context.Background(), "by Alice", 0)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	titles := make(map[string]bool)
	for _, r := range results {
		titles[r.Title] = true
	}
	if !titles["Risk management in banking"] || !titles["Election politics 2024"] {
		t.Errorf("Search(\"by Alice\") = %+v, want both D0 and D2 present", results)
	}
}

func TestSearchFieldTitleOnlyMatchesD0(t *testing.T) {
	p := threeDocScenario(t)
	results, err := p.SearchField(context.Background(), "risk", "title", 0)
	if err != nil {
		t.Fatalf("SearchField() error = %v", err)
	}
	if len(results) != 1 || results[0].Title != "Risk management in banking" {
		t.Errorf("SearchField(\"risk\", \"title\") = %+v, want exactly D0", results)
	}
}

func TestSearchNonexistentTermReturnsEmptyNoError(t *testing.T) {
	p := threeDocScenario(t)
	results, err := p.Search(context.Background(), "nonexistentterm", 0)
	if err != nil {
		t.Fatalf("Search() error = %v, want nil", err)
	}
	if len(results) != 0 {
		t.Errorf("Search(\"nonexistentterm\") = %+v, want empty", results)
	}
}

func TestSearchFieldInvalidFieldReturnsError(t *testing.T) {
	p := threeDocScenario(t)
	_, err := p.SearchField(context.Background(), "risk", "keywords", 0)
	if err == nil {
		t.Error("SearchField() with invalid field = nil error, want error")
	}
}

func TestSearchResultsSortedByScoreDescending(t *testing.T) {
	p := threeDocScenario(t)
	results, err := p.Search(context.Background(), "risk", 0)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	for i := 1; i < len(results); i++ {
		if results[i-1].RelevancyScore < results[i].RelevancyScore {
			t.Errorf("results not sorted descending by score: %+v", results)
		}
	}
}

func TestSearchCanceledContextReturnsError(t *testing.T) {
	p := threeDocScenario(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Search(ctx, "risk", 0)
	if err == nil {
		t.Error("Search() with canceled context = nil error, want context.Canceled")
	}
}
