package ranker

import (
	"context"
	"math"

	"github.com/example/pubsearch/internal/tfidf"
)

// bm25K1 and bm25B are Okapi BM25's standard tuning constants.
const (
	bm25K1 = 1.2
	bm25B  = 0.75
)

// BM25 implements Ranker using Okapi BM25 scored independently per field,
// an alternative to FieldWeightedTFIDF kept behind the same interface for
// future reuse. The query planner does not use it.
type BM25 struct{}

// Score computes the BM25 score of queryText against every document in
// model using model's raw term frequencies and document lengths.
func (BM25) Score(ctx context.Context, queryText string, model *tfidf.Model) []float64 {
	scores := make([]float64, len(model.Rows))
	if ctx.Err() != nil || model.NumDocs == 0 {
		return scores
	}

	queryTerms := queryColumns(model, queryText)
	if len(queryTerms) == 0 {
		return scores
	}

	avgLen := averageDocLength(model.DocLengths)
	idfByCol := make(map[int]float64, len(queryTerms))
	for _, col := range queryTerms {
		idfByCol[col] = bm25IDF(model.NumDocs, model.DF[col])
	}

	for doc := range model.Rows {
		docLen := float64(model.DocLengths[doc])
		var score float64
		for _, col := range queryTerms {
			freq, ok := model.RawTF[doc][col]
			if !ok {
				continue
			}
			idf := idfByCol[col]
			numerator := freq * (bm25K1 + 1)
			denominator := freq + bm25K1*(1-bm25B+bm25B*docLen/avgLen)
			score += idf * (numerator / denominator)
		}
		scores[doc] = score
	}
	return scores
}

// bm25IDF computes BM25's smoothed inverse document frequency for a term
// observed in df of n total documents.
func bm25IDF(n, df int) float64 {
	numerator := float64(n) - float64(df) + 0.5
	denominator := float64(df) + 0.5
	return math.Log(numerator/denominator + 1.0)
}

func averageDocLength(lengths []int) float64 {
	if len(lengths) == 0 {
		return 1
	}
	var sum int
	for _, l := range lengths {
		sum += l
	}
	avg := float64(sum) / float64(len(lengths))
	if avg == 0 {
		return 1
	}
	return avg
}

// queryColumns maps a query's processed terms onto model's vocabulary
// columns, skipping out-of-vocabulary terms.
func queryColumns(model *tfidf.Model, queryText string) []int {
	vec := model.Transform(queryText)
	cols := make([]int, 0, len(vec))
	for col := range vec {
		cols = append(cols, col)
	}
	return cols
}
