// Package index builds, persists, and loads the searchable index artifact:
// the combined positional index plus the three per-field TF-IDF models.
package index

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"

	"github.com/example/pubsearch/internal/apperrors"
	"github.com/example/pubsearch/internal/corpus"
	"github.com/example/pubsearch/internal/textproc"
	"github.com/example/pubsearch/internal/tfidf"
)

// CurrentSchemaVersion is written into every persisted Index and checked on
// Load; a mismatch is reported as apperrors.Corrupt.
const CurrentSchemaVersion uint32 = 1

// Index is the complete artifact produced by Build and consumed by the
// query planner: the combined positional index plus one fitted TF-IDF
// model per field, and the document store they refer to by doc_id (slice
// index into Docs).
type Index struct {
	SchemaVersion uint32
	Positional    map[string]map[int][]int // term -> docID -> sorted positions
	Docs          []corpus.Document
	TitleModel    *tfidf.Model
	AuthorModel   *tfidf.Model
	AbstractModel *tfidf.Model
}

// Build indexes docs: it assigns doc IDs by position in the surviving
// sequence, fits the three field TF-IDF models, and builds the combined
// positional index over title+author+abstract per document.
func Build(docs []corpus.Document) (*Index, error) {
	titleTexts := make([]string, 0, len(docs))
	authorTexts := make([]string, 0, len(docs))
	abstractTexts := make([]string, 0, len(docs))
	surviving := make([]corpus.Document, 0, len(docs))

	for i, d := range docs {
		authorNames, err := fieldText(d, i)
		if err != nil {
			log.Printf("index.Build: skipping document %d: %v", i, err)
			continue
		}
		surviving = append(surviving, d)
		titleTexts = append(titleTexts, d.Title)
		authorTexts = append(authorTexts, authorNames)
		abstractTexts = append(abstractTexts, d.Abstract)
	}

	positional := make(map[string]map[int][]int)
	for docID, d := range surviving {
		combined := d.Title + " " + corpus.AuthorNames(d.Authors) + " " + d.Abstract
		terms := textproc.Process(combined)
		for pos, term := range terms {
			postings, ok := positional[term]
			if !ok {
				postings = make(map[int][]int)
				positional[term] = postings
			}
			postings[docID] = append(postings[docID], pos)
		}
	}

	return &Index{
		SchemaVersion: CurrentSchemaVersion,
		Positional:    positional,
		Docs:          surviving,
		TitleModel:    tfidf.Fit(titleTexts),
		AuthorModel:   tfidf.Fit(authorTexts),
		AbstractModel: tfidf.Fit(abstractTexts),
	}, nil
}

// fieldText recovers a per-document parse panic into an error so the
// document can be logged and skipped instead of aborting the whole build.
// Every record in docs is otherwise indexed unconditionally, including one
// with an empty title or abstract; there is no content-based skip rule.
func fieldText(d corpus.Document, i int) (authorNames string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("document %d: %v", i, r)
		}
	}()
	return corpus.AuthorNames(d.Authors), nil
}

// Save atomically writes ix to path: encode into a temporary file in the
// same directory, fsync it, then rename over the destination. Readers never
// observe a partially-written artifact.
func (ix *Index) Save(path string) error {
	tmp := path + ".tmp-" + strconv.Itoa(os.Getpid())

	f, err := os.Create(tmp)
	if err != nil {
		return apperrors.NewFatal("index.Save create temp file", err)
	}

	enc := gob.NewEncoder(f)
	if err := enc.Encode(ix); err != nil {
		f.Close()
		os.Remove(tmp)
		return apperrors.NewFatal("index.Save encode", err)
	}

	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return apperrors.NewFatal("index.Save sync", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return apperrors.NewFatal("index.Save close", err)
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return apperrors.NewFatal("index.Save rename", err)
	}
	return nil
}

// Load reads and validates the index artifact at path. A missing file is
// reported as apperrors.NotReady; a schema mismatch, row-count mismatch, or
// gob decode failure is reported as apperrors.Corrupt.
func Load(path string) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.NewNotReady("index", err)
		}
		return nil, apperrors.NewFatal("index.Load open", err)
	}

	data, err := io.ReadAll(f)
	f.Close()
	if err != nil {
		return nil, apperrors.NewFatal("index.Load read", err)
	}

	var ix Index
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&ix); err != nil {
		return nil, apperrors.NewCorrupt(path, err)
	}

	if ix.SchemaVersion != CurrentSchemaVersion {
		return nil, apperrors.NewCorrupt(path, fmt.Errorf("schema version %d, want %d", ix.SchemaVersion, CurrentSchemaVersion))
	}

	n := len(ix.Docs)
	if len(ix.TitleModel.Rows) != n || len(ix.AuthorModel.Rows) != n || len(ix.AbstractModel.Rows) != n {
		return nil, apperrors.NewCorrupt(path, fmt.Errorf(
			"row count mismatch: docs=%d title=%d author=%d abstract=%d",
			n, len(ix.TitleModel.Rows), len(ix.AuthorModel.Rows), len(ix.AbstractModel.Rows)))
	}

	return &ix, nil
}
