package phrase

import (
	"reflect"
	"testing"

	"github.com/example/pubsearch/internal/corpus"
	"github.com/example/pubsearch/internal/index"
)

func buildTestIndex(t *testing.T) *index.Index {
	t.Helper()
	docs := []corpus.Document{
		{Title: "Neural Networks for Distributed Systems", Abstract: "A study of neural networks."},
		{Title: "Distributed Neural Architectures", Abstract: "Another neural networks survey."},
		{Title: "Unrelated Paper", Abstract: "About something else entirely."},
	}
	ix, err := index.Build(docs)
	if err != nil {
		t.Fatalf("index.Build() error = %v", err)
	}
	return ix
}

func TestMatchFindsContiguousPhrase(t *testing.T) {
	ix := buildTestIndex(t)
	got := Match(ix, []string{"neural", "network"})
	if _, ok := got[0]; !ok {
		t.Errorf("Match() = %v, want doc 0 present", got)
	}
}

func TestMatchEmptyTermsReturnsEmptySet(t *testing.T) {
	ix := buildTestIndex(t)
	got := Match(ix, nil)
	if len(got) != 0 {
		t.Errorf("Match(nil) = %v, want empty", got)
	}
	if got == nil {
		t.Error("Match(nil) returned nil, want non-nil empty set")
	}
}

func TestMatchAbsentTermReturnsEmptySet(t *testing.T) {
	ix := buildTestIndex(t)
	got := Match(ix, []string{"neural", "quantum"})
	if len(got) != 0 {
		t.Errorf("Match() = %v, want empty for absent term", got)
	}
}

func TestMatchReturnsExactlyTheDocsContainingPhrase(t *testing.T) {
	ix := buildTestIndex(t)
	got := Match(ix, []string{"neural", "network"})
	want := map[int]struct{}{0: {}, 1: {}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Match() = %v, want %v", got, want)
	}
}
