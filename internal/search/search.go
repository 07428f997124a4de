// Package search implements the query planner: it dispatches a query
// between phrase and bag-of-words matching, fuses per-field ranker scores,
// and returns sorted, truncated results.
package search

import (
	"context"
	"math"
	"sort"
	"strings"

	"github.com/example/pubsearch/internal/apperrors"
	"github.com/example/pubsearch/internal/corpus"
	"github.com/example/pubsearch/internal/index"
	"github.com/example/pubsearch/internal/phrase"
	"github.com/example/pubsearch/internal/ranker"
	"github.com/example/pubsearch/internal/textproc"
)

// DefaultTopK is used whenever a caller supplies topK <= 0.
const DefaultTopK = 1000

// ResultAuthor renders a corpus.Author for the client-facing result
// record. The corpus file names the profile link "url"; results rename it
// "profileUrl", so this is a distinct wire type rather than a reuse of
// corpus.Author's tags.
type ResultAuthor struct {
	Name       string `json:"name"`
	ProfileURL string `json:"profileUrl,omitempty"`
}

// Result is one ranked publication returned from a search.
type Result struct {
	Title          string         `json:"title"`
	Authors        []ResultAuthor `json:"authors"`
	Abstract       string         `json:"abstract"`
	Date           string         `json:"date"`
	PublicationURL string         `json:"publicationUrl"`
	RelevancyScore float64        `json:"relevancyScore"`
}

// renderAuthors converts a document's corpus.Author list to the Result
// record's wire shape.
func renderAuthors(authors []corpus.Author) []ResultAuthor {
	out := make([]ResultAuthor, len(authors))
	for i, a := range authors {
		out[i] = ResultAuthor{Name: a.Name, ProfileURL: a.ProfileURL}
	}
	return out
}

// Planner executes searches against a loaded Index.
type Planner struct {
	ix     *index.Index
	ranker ranker.Ranker
}

// NewPlanner builds a Planner around ix using the field-weighted TF-IDF
// ranker, the variant production queries run on.
func NewPlanner(ix *index.Index) *Planner {
	return &Planner{ix: ix, ranker: ranker.FieldWeightedTFIDF{}}
}

// Search runs the full query pipeline: phrase detection, weight adaptation,
// per-field scoring, fusion, and sort/truncate. A query quoted on both ends
// ("...") is treated as a phrase query and restricted to documents
// containing that exact token sequence.
func (p *Planner) Search(ctx context.Context, queryText string, topK int) ([]Result, error) {
	if topK <= 0 {
		topK = DefaultTopK
	}

	isPhrase := strings.HasPrefix(queryText, `"`) && strings.HasSuffix(queryText, `"`) && len(queryText) >= 2
	effectiveText := queryText
	if isPhrase {
		effectiveText = strings.Trim(queryText, `"`)
	}

	weights := ranker.AdaptWeights(queryText)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	titleScores := p.ranker.Score(ctx, effectiveText, p.ix.TitleModel)
	authorScores := p.ranker.Score(ctx, effectiveText, p.ix.AuthorModel)
	abstractScores := p.ranker.Score(ctx, effectiveText, p.ix.AbstractModel)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fused := ranker.Fuse(titleScores, authorScores, abstractScores, weights)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var candidates []int
	if isPhrase {
		terms := textproc.Process(effectiveText)
		matched := phrase.Match(p.ix, terms)
		candidates = make([]int, 0, len(matched))
		for docID := range matched {
			candidates = append(candidates, docID)
		}
	} else {
		candidates = make([]int, 0, len(fused))
		for docID, score := range fused {
			if score > 0 {
				candidates = append(candidates, docID)
			}
		}
	}

	type scored struct {
		docID int
		score float64
	}
	rows := make([]scored, len(candidates))
	for i, docID := range candidates {
		rows[i] = scored{docID: docID, score: fused[docID]}
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].score != rows[j].score {
			return rows[i].score > rows[j].score
		}
		return rows[i].docID < rows[j].docID
	})

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if len(rows) > topK {
		rows = rows[:topK]
	}

	results := make([]Result, len(rows))
	for i, r := range rows {
		doc := p.ix.Docs[r.docID]
		results[i] = Result{
			Title:          doc.Title,
			Authors:        renderAuthors(doc.Authors),
			Abstract:       doc.Abstract,
			Date:           doc.Date,
			PublicationURL: doc.URL,
			RelevancyScore: round4(r.score),
		}
	}
	return results, nil
}

// SearchField restricts scoring to a single field: "title", "author", or
// "abstract". An unrecognized field returns apperrors.InvalidQuery.
func (p *Planner) SearchField(ctx context.Context, queryText, field string, topK int) ([]Result, error) {
	if topK <= 0 {
		topK = DefaultTopK
	}

	var fieldScores []float64
	switch field {
	case "title":
		fieldScores = p.ranker.Score(ctx, queryText, p.ix.TitleModel)
	case "author":
		fieldScores = p.ranker.Score(ctx, queryText, p.ix.AuthorModel)
	case "abstract":
		fieldScores = p.ranker.Score(ctx, queryText, p.ix.AbstractModel)
	default:
		return nil, apperrors.NewInvalidQuery(queryText, "field must be title, author, or abstract")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	type scored struct {
		docID int
		score float64
	}
	rows := make([]scored, 0, len(fieldScores))
	for docID, score := range fieldScores {
		if score > 0 {
			rows = append(rows, scored{docID: docID, score: score})
		}
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].score != rows[j].score {
			return rows[i].score > rows[j].score
		}
		return rows[i].docID < rows[j].docID
	})

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if len(rows) > topK {
		rows = rows[:topK]
	}

	results := make([]Result, len(rows))
	for i, r := range rows {
		doc := p.ix.Docs[r.docID]
		results[i] = Result{
			Title:          doc.Title,
			Authors:        renderAuthors(doc.Authors),
			Abstract:       doc.Abstract,
			Date:           doc.Date,
			PublicationURL: doc.URL,
			RelevancyScore: round4(r.score),
		}
	}
	return results, nil
}

func round4(x float64) float64 {
	return math.Round(x*10000) / 10000
}
