// Package ranker scores documents against a query text for a single field's
// fitted TF-IDF model, and fuses per-field scores into one weighted
// relevancy score.
package ranker

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/example/pubsearch/internal/apperrors"
	"github.com/example/pubsearch/internal/tfidf"
)

// Ranker scores a query text against one field's fitted model, returning
// one similarity per document in model row order.
type Ranker interface {
	Score(ctx context.Context, queryText string, model *tfidf.Model) []float64
}

// Weights holds the per-field contribution used to fuse Ranker scores.
type Weights struct {
	Title    float64
	Author   float64
	Abstract float64
}

// Sum returns the total weight, used to normalize a weighted-sum fusion
// back into the [0, max-similarity] range.
func (w Weights) Sum() float64 {
	return w.Title + w.Author + w.Abstract
}

// DefaultWeights is the field-weighted ranker's baseline before any
// query-shape adaptation: title favored over author favored over abstract.
var DefaultWeights = Weights{Title: 3.0, Author: 2.0, Abstract: 1.0}

// authorIndicators are substrings whose presence in a lowercased query
// suggests the user is searching by author identity rather than topic.
var authorIndicators = []string{"by ", " author", "written by", "researcher"}

// AdaptWeights applies the two query-shape heuristics, first-match-wins, to
// originalQuery (the query exactly as the user typed it, quotes included if
// present — this is deliberate: the heuristic inspects the original text
// even when the query is ultimately treated as a phrase query elsewhere).
func AdaptWeights(originalQuery string) Weights {
	lower := strings.ToLower(originalQuery)
	for _, indicator := range authorIndicators {
		if strings.Contains(lower, indicator) {
			return Weights{Title: 2.0, Author: 4.0, Abstract: 1.0}
		}
	}

	if len(strings.Fields(originalQuery)) > 4 || strings.HasPrefix(originalQuery, `"`) {
		return Weights{Title: 4.0, Author: 2.0, Abstract: 0.8}
	}

	return DefaultWeights
}

// FieldWeightedTFIDF implements Ranker via plain TF-IDF cosine similarity
// for one field. The three field scores are fused separately by Fuse, with
// weights from AdaptWeights.
type FieldWeightedTFIDF struct{}

// Score computes cosine similarity between queryText and every row of
// model, recovering a failed transform into an all-zero vector rather than
// aborting — a Transient condition scoped to this one field.
func (FieldWeightedTFIDF) Score(ctx context.Context, queryText string, model *tfidf.Model) []float64 {
	scores := make([]float64, len(model.Rows))
	if ctx.Err() != nil {
		return scores
	}

	queryVec, ok := safeTransform(model, queryText)
	if !ok {
		return scores // apperrors.Transient recovered: zero vector for this field
	}

	for i, row := range model.Rows {
		scores[i] = tfidf.CosineSimilarity(queryVec, row)
	}
	return scores
}

// Fuse combines per-field scores into one relevancy score per document
// using w, normalized by the total weight so the result stays comparable
// across different weight profiles.
func Fuse(titleScores, authorScores, abstractScores []float64, w Weights) []float64 {
	n := len(titleScores)
	fused := make([]float64, n)
	total := w.Sum()
	if total == 0 {
		return fused
	}
	for i := 0; i < n; i++ {
		fused[i] = (w.Title*titleScores[i] + w.Author*authorScores[i] + w.Abstract*abstractScores[i]) / total
	}
	return fused
}

// safeTransform recovers a panic from model.Transform (e.g. an unexpected
// nil model) into a zero vector, the Transient recovery policy: a single
// field's failure never aborts the other fields' contributions.
func safeTransform(model *tfidf.Model, queryText string) (vec map[int]float64, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("ranker: %v", apperrors.NewTransient("ranker.Score", fmt.Errorf("%v", r)))
			vec, ok = nil, false
		}
	}()
	return model.Transform(queryText), true
}
