package index

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/example/pubsearch/internal/apperrors"
	"github.com/example/pubsearch/internal/corpus"
	"github.com/example/pubsearch/internal/textproc"
)

func threeDocCorpus() []corpus.Document {
	return []corpus.Document{
		{
			Title:    "Neural Networks for Distributed Systems",
			Authors:  []corpus.Author{{Name: "Ada Lovelace"}},
			Abstract: "A study of neural networks applied to distributed computing.",
			Date:     "2021",
			URL:      "https://example.com/d0",
		},
		{
			Title:    "Consensus Protocols in Distributed Databases",
			Authors:  []corpus.Author{{Name: "Alan Turing"}},
			Abstract: "We examine consensus protocols for replicated databases.",
			Date:     "2022",
			URL:      "https://example.com/d1",
		},
		{
			Title:    "Information Retrieval Ranking Functions",
			Authors:  []corpus.Author{{Name: "Grace Hopper"}},
			Abstract: "A survey of ranking functions used in information retrieval.",
			Date:     "2023",
			URL:      "https://example.com/d2",
		},
	}
}

func TestBuildAssignsSequentialDocIDs(t *testing.T) {
	ix, err := Build(threeDocCorpus())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if len(ix.Docs) != 3 {
		t.Fatalf("len(Docs) = %d, want 3", len(ix.Docs))
	}
	if ix.Docs[0].Title != "Neural Networks for Distributed Systems" {
		t.Errorf("Docs[0] = %+v", ix.Docs[0])
	}
}

func TestBuildIndexesDocumentsWithEmptyTitle(t *testing.T) {
	docs := threeDocCorpus()
	docs = append(docs, corpus.Document{Abstract: "no title here", URL: "https://example.com/d3"})

	ix, err := Build(docs)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if len(ix.Docs) != 4 {
		t.Errorf("len(Docs) = %d, want 4 (no content-based skip rule)", len(ix.Docs))
	}
}

func TestBuildPositionalIndexHasSortedPositions(t *testing.T) {
	ix, err := Build(threeDocCorpus())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	for term, postings := range ix.Positional {
		for docID, positions := range postings {
			for i := 1; i < len(positions); i++ {
				if positions[i] <= positions[i-1] {
					t.Fatalf("term %q doc %d positions not strictly increasing: %v", term, docID, positions)
				}
			}
		}
	}
}

func TestBuildPositionsCoverEveryTokenExactlyOnce(t *testing.T) {
	docs := threeDocCorpus()
	ix, err := Build(docs)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	for docID, d := range ix.Docs {
		combined := d.Title + " " + corpus.AuthorNames(d.Authors) + " " + d.Abstract
		wantLen := len(textproc.Process(combined))

		seen := make(map[int]bool)
		for term, postings := range ix.Positional {
			for _, pos := range postings[docID] {
				if pos < 0 || pos >= wantLen {
					t.Fatalf("term %q doc %d position %d out of range [0,%d)", term, docID, pos, wantLen)
				}
				if seen[pos] {
					t.Fatalf("doc %d position %d assigned to more than one term", docID, pos)
				}
				seen[pos] = true
			}
		}
		if len(seen) != wantLen {
			t.Errorf("doc %d has %d indexed positions, want %d (one per processed token)", docID, len(seen), wantLen)
		}
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	ix, err := Build(threeDocCorpus())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	path := filepath.Join(t.TempDir(), "index.gob")
	if err := ix.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(loaded.Docs) != len(ix.Docs) {
		t.Errorf("loaded Docs len = %d, want %d", len(loaded.Docs), len(ix.Docs))
	}
	if loaded.SchemaVersion != CurrentSchemaVersion {
		t.Errorf("loaded SchemaVersion = %d, want %d", loaded.SchemaVersion, CurrentSchemaVersion)
	}
	if !reflect.DeepEqual(loaded.Positional, ix.Positional) {
		t.Error("loaded positional index differs from the one saved")
	}
	if !reflect.DeepEqual(loaded.TitleModel.Vocabulary, ix.TitleModel.Vocabulary) {
		t.Error("loaded title vocabulary differs from the one saved")
	}
}

func TestLoadMissingFileIsNotReady(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.gob"))
	var notReady *apperrors.NotReadyError
	if !errors.As(err, &notReady) {
		t.Errorf("Load() error = %v, want *apperrors.NotReadyError", err)
	}
}

func TestLoadCorruptFileIsCorrupt(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.gob")
	if err := os.WriteFile(path, []byte("not a gob stream"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(path)
	var corrupt *apperrors.CorruptError
	if !errors.As(err, &corrupt) {
		t.Errorf("Load() error = %v, want *apperrors.CorruptError", err)
	}
}
