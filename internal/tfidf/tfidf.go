// Package tfidf fits and queries the unigram+bigram TF-IDF vector spaces
// used independently for the title, author, and abstract fields.
package tfidf

import (
	"math"

	"github.com/example/pubsearch/internal/textproc"
)

// Model is a fitted TF-IDF vector space: a vocabulary of unigrams and
// bigrams, the corresponding smoothed IDF weights, and one L2-normalized
// sparse row per fitted document. DF and DocLengths carry the raw
// statistics BM25 needs; the cosine-based ranker never reads them.
type Model struct {
	Vocabulary map[string]int    // term -> column index
	IDF        []float64         // idf[column]
	Rows       []map[int]float64 // rows[docID][column] = tf-idf weight, L2-normalized
	RawTF      []map[int]float64 // rows[docID][column] = raw term count, unweighted
	DF         []int             // document frequency per column
	DocLengths []int             // token count (post n-gram expansion) per document
	NumDocs    int
}

// FitOptions controls vocabulary pruning applied after document frequencies
// are counted but before the vocabulary is finalized. The zero value prunes
// nothing, which is what the three field models use; the classifier's
// training protocol sets MaxDF/MinDF explicitly.
type FitOptions struct {
	// MaxDF drops any term whose document frequency ratio (df/N) exceeds
	// this value. Zero disables the check, matching scikit-learn's
	// TfidfVectorizer(max_df=1.0) default.
	MaxDF float64
	// MinDF drops any term occurring in fewer than this many documents.
	// Zero or one disables the check, matching scikit-learn's min_df=1 default.
	MinDF int
}

// Fit builds a Model from one text per document (already the raw field
// text; Fit runs textproc.Process internally), with no vocabulary pruning.
// The vocabulary contains every unigram and bigram observed across the
// corpus, matching scikit-learn's TfidfVectorizer(ngram_range=(1,2))
// semantics, including its smoothed IDF: idf(t) = log((1+N)/(1+df(t))) + 1.
func Fit(texts []string) *Model {
	return FitWithOptions(texts, FitOptions{})
}

// FitWithOptions is Fit with document-frequency vocabulary pruning: a term
// is dropped from the vocabulary if its document frequency ratio exceeds
// opts.MaxDF (when MaxDF > 0) or its raw document frequency is below
// opts.MinDF (when MinDF > 1). Used by the classifier's training protocol
// (max_df=0.95, min_df=2); the indexer's three field models call Fit
// directly and keep every observed term.
func FitWithOptions(texts []string, opts FitOptions) *Model {
	docTerms := make([][]string, len(texts))
	for i, text := range texts {
		docTerms[i] = ngrams(textproc.Process(text))
	}

	df := make(map[string]int)
	for _, terms := range docTerms {
		seen := make(map[string]bool, len(terms))
		for _, term := range terms {
			if !seen[term] {
				seen[term] = true
				df[term]++
			}
		}
	}

	n := float64(len(texts))
	vocab := make(map[string]int, len(df))
	for term, count := range df {
		if opts.MaxDF > 0 && float64(count)/n > opts.MaxDF {
			continue
		}
		if opts.MinDF > 1 && count < opts.MinDF {
			continue
		}
		vocab[term] = len(vocab)
	}

	idf := make([]float64, len(vocab))
	for term, col := range vocab {
		idf[col] = math.Log((1+n)/(1+float64(df[term]))) + 1
	}

	dfCounts := make([]int, len(vocab))
	for term, col := range vocab {
		dfCounts[col] = df[term]
	}

	rows := make([]map[int]float64, len(texts))
	rawTF := make([]map[int]float64, len(texts))
	docLengths := make([]int, len(texts))
	for i, terms := range docTerms {
		docLengths[i] = len(terms)
		tf := make(map[int]float64)
		for _, term := range terms {
			col, ok := vocab[term]
			if !ok {
				continue
			}
			tf[col]++
		}
		raw := make(map[int]float64, len(tf))
		for col, count := range tf {
			raw[col] = count
		}
		rawTF[i] = raw

		for col := range tf {
			tf[col] *= idf[col]
		}
		rows[i] = l2Normalize(tf)
	}

	return &Model{
		Vocabulary: vocab,
		IDF:        idf,
		Rows:       rows,
		RawTF:      rawTF,
		DF:         dfCounts,
		DocLengths: docLengths,
		NumDocs:    len(texts),
	}
}

// Transform vectorizes a query string against the model's fitted vocabulary
// and IDF weights, returning an L2-normalized sparse vector. Terms outside
// the fitted vocabulary contribute nothing, matching scikit-learn's
// transform (not fit_transform) behavior.
func (m *Model) Transform(text string) map[int]float64 {
	terms := ngrams(textproc.Process(text))
	tf := make(map[int]float64)
	for _, term := range terms {
		col, ok := m.Vocabulary[term]
		if !ok {
			continue
		}
		tf[col]++
	}
	for col := range tf {
		tf[col] *= m.IDF[col]
	}
	return l2Normalize(tf)
}

// CosineSimilarity returns the cosine similarity between two sparse
// vectors. Because Rows and Transform's output are already L2-normalized,
// this reduces to a plain dot product.
func CosineSimilarity(a, b map[int]float64) float64 {
	small, large := a, b
	if len(b) < len(a) {
		small, large = b, a
	}
	var sum float64
	for col, v := range small {
		sum += v * large[col]
	}
	return sum
}

// l2Normalize scales v so its Euclidean norm is 1. A zero vector (a
// document or query with no in-vocabulary terms) is returned unchanged.
func l2Normalize(v map[int]float64) map[int]float64 {
	var sumSq float64
	for _, x := range v {
		sumSq += x * x
	}
	if sumSq == 0 {
		return v
	}
	norm := math.Sqrt(sumSq)
	out := make(map[int]float64, len(v))
	for col, x := range v {
		out[col] = x / norm
	}
	return out
}

// ngrams expands a stemmed term sequence into unigrams followed by
// bigrams, mirroring scikit-learn's ngram_range=(1,2).
func ngrams(terms []string) []string {
	out := make([]string, 0, 2*len(terms))
	out = append(out, terms...)
	for i := 0; i+1 < len(terms); i++ {
		out = append(out, terms[i]+" "+terms[i+1])
	}
	return out
}
