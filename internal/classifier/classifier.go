// Package classifier implements a multinomial Naive Bayes classifier over a
// TF-IDF vector space, trained with a stratified train/test split for
// evaluation and then refit on the full dataset before being persisted.
package classifier

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"sort"
	"strconv"

	"github.com/example/pubsearch/internal/apperrors"
	"github.com/example/pubsearch/internal/tfidf"
)

// Alpha is the Laplace smoothing constant used by the Naive Bayes
// classifier, matching the source pipeline's MultinomialNB(alpha=0.1).
const Alpha = 0.1

// vectorizerOptions pins the classifier's TF-IDF vocabulary pruning to the
// training protocol it was ported from: TfidfVectorizer(max_df=0.95,
// min_df=2). The index's three field models are fit without this pruning.
var vectorizerOptions = tfidf.FitOptions{MaxDF: 0.95, MinDF: 2}

// evalFraction is the fraction of the training set held out for the
// stratified accuracy evaluation before the final refit on 100% of the
// data.
const evalFraction = 0.2

// CurrentSchemaVersion is written into every persisted Model.
const CurrentSchemaVersion uint32 = 1

// Model is an opaque classifier artifact: a fitted TF-IDF vectorizer, the
// label set, and the Naive Bayes parameters derived from it.
type Model struct {
	SchemaVersion  uint32
	Vectorizer     *tfidf.Model
	Labels         []string    // label index -> name
	ClassLogPrior  []float64   // per label
	FeatureLogProb [][]float64 // [label][vocab column]
}

// Train fits a Model on texts/labels (one label per text). It performs an
// 80/20 stratified split to report held-out accuracy, then refits the
// vectorizer and Naive Bayes parameters on the full dataset for the
// returned, persistable Model.
func Train(texts []string, labels []string) (*Model, error) {
	if len(texts) != len(labels) {
		return nil, apperrors.NewInvalidQuery("", fmt.Sprintf("texts (%d) and labels (%d) length mismatch", len(texts), len(labels)))
	}
	if len(texts) == 0 {
		return nil, apperrors.NewInvalidQuery("", "no training examples supplied")
	}

	labelIndex, labelNames := buildLabelIndex(labels)
	y := make([]int, len(labels))
	for i, l := range labels {
		y[i] = labelIndex[l]
	}

	trainIdx, testIdx := stratifiedSplit(y, len(labelNames), evalFraction)
	if len(testIdx) > 0 {
		evalTexts, evalY := subset(texts, y, trainIdx)
		model := fit(evalTexts, evalY, labelNames)
		correct := 0
		for _, idx := range testIdx {
			pred := model.predictOne(texts[idx])
			if pred == y[idx] {
				correct++
			}
		}
		accuracy := float64(correct) / float64(len(testIdx))
		log.Printf("classifier: held-out accuracy %.4f on %d examples", accuracy, len(testIdx))
	}

	final := fit(texts, y, labelNames)
	return final, nil
}

// fit trains the TF-IDF vectorizer and Naive Bayes parameters on the given
// texts/numeric labels.
func fit(texts []string, y []int, labelNames []string) *Model {
	vectorizer := tfidf.FitWithOptions(texts, vectorizerOptions)
	numClasses := len(labelNames)
	numFeatures := len(vectorizer.Vocabulary)

	classCount := make([]int, numClasses)
	featureSum := make([][]float64, numClasses)
	classFeatureTotal := make([]float64, numClasses)
	for c := range featureSum {
		featureSum[c] = make([]float64, numFeatures)
	}

	for i, row := range vectorizer.Rows {
		c := y[i]
		classCount[c]++
		for col, v := range row {
			featureSum[c][col] += v
			classFeatureTotal[c] += v
		}
	}

	classLogPrior := make([]float64, numClasses)
	total := float64(len(texts))
	for c, count := range classCount {
		if count == 0 {
			classLogPrior[c] = math.Inf(-1)
			continue
		}
		classLogPrior[c] = math.Log(float64(count) / total)
	}

	featureLogProb := make([][]float64, numClasses)
	for c := 0; c < numClasses; c++ {
		featureLogProb[c] = make([]float64, numFeatures)
		denom := classFeatureTotal[c] + Alpha*float64(numFeatures)
		for j := 0; j < numFeatures; j++ {
			featureLogProb[c][j] = math.Log((featureSum[c][j] + Alpha) / denom)
		}
	}

	return &Model{
		SchemaVersion:  CurrentSchemaVersion,
		Vectorizer:     vectorizer,
		Labels:         labelNames,
		ClassLogPrior:  classLogPrior,
		FeatureLogProb: featureLogProb,
	}
}

// Predict returns the predicted label index for each text.
func (m *Model) Predict(texts []string) ([]int, error) {
	out := make([]int, len(texts))
	for i, text := range texts {
		out[i] = m.predictOne(text)
	}
	return out, nil
}

// PredictProba returns the per-class probability distribution for each
// text, in the same label order as m.Labels.
func (m *Model) PredictProba(texts []string) ([][]float64, error) {
	out := make([][]float64, len(texts))
	for i, text := range texts {
		out[i] = m.probaOne(text)
	}
	return out, nil
}

func (m *Model) predictOne(text string) int {
	logProbs := m.logJointOne(text)
	best, bestScore := 0, math.Inf(-1)
	for c, lp := range logProbs {
		if lp > bestScore {
			best, bestScore = c, lp
		}
	}
	return best
}

func (m *Model) probaOne(text string) []float64 {
	logProbs := m.logJointOne(text)

	maxLog := math.Inf(-1)
	for _, lp := range logProbs {
		if lp > maxLog {
			maxLog = lp
		}
	}

	var sum float64
	probs := make([]float64, len(logProbs))
	for c, lp := range logProbs {
		probs[c] = math.Exp(lp - maxLog)
		sum += probs[c]
	}
	if sum == 0 {
		return probs
	}
	for c := range probs {
		probs[c] /= sum
	}
	return probs
}

func (m *Model) logJointOne(text string) []float64 {
	vec := m.Vectorizer.Transform(text)
	logProbs := make([]float64, len(m.Labels))
	for c := range m.Labels {
		score := m.ClassLogPrior[c]
		for col, v := range vec {
			score += v * m.FeatureLogProb[c][col]
		}
		logProbs[c] = score
	}
	return logProbs
}

// Save atomically writes m to path, mirroring index.Save's
// temp-file+fsync+rename discipline.
func (m *Model) Save(path string) error {
	tmp := path + ".tmp-" + strconv.Itoa(os.Getpid())

	f, err := os.Create(tmp)
	if err != nil {
		return apperrors.NewFatal("classifier.Save create temp file", err)
	}

	if err := gob.NewEncoder(f).Encode(m); err != nil {
		f.Close()
		os.Remove(tmp)
		return apperrors.NewFatal("classifier.Save encode", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return apperrors.NewFatal("classifier.Save sync", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return apperrors.NewFatal("classifier.Save close", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return apperrors.NewFatal("classifier.Save rename", err)
	}
	return nil
}

// Load reads and validates a persisted Model, following the same
// NotReady/Corrupt policy as index.Load.
func Load(path string) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.NewNotReady("classifier", err)
		}
		return nil, apperrors.NewFatal("classifier.Load open", err)
	}

	data, err := io.ReadAll(f)
	f.Close()
	if err != nil {
		return nil, apperrors.NewFatal("classifier.Load read", err)
	}

	var m Model
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&m); err != nil {
		return nil, apperrors.NewCorrupt(path, err)
	}
	if m.SchemaVersion != CurrentSchemaVersion {
		return nil, apperrors.NewCorrupt(path, fmt.Errorf("schema version %d, want %d", m.SchemaVersion, CurrentSchemaVersion))
	}
	if len(m.Labels) != len(m.ClassLogPrior) || len(m.Labels) != len(m.FeatureLogProb) {
		return nil, apperrors.NewCorrupt(path, fmt.Errorf("label/parameter count mismatch"))
	}

	return &m, nil
}

// buildLabelIndex assigns a stable numeric index to each distinct label in
// first-seen order, matching pandas.factorize's behavior in the source
// pipeline.
func buildLabelIndex(labels []string) (map[string]int, []string) {
	index := make(map[string]int)
	var names []string
	for _, l := range labels {
		if _, ok := index[l]; !ok {
			index[l] = len(names)
			names = append(names, l)
		}
	}
	return index, names
}

// stratifiedSplit partitions indices [0,len(y)) into train/test sets,
// holding out testFraction of each class deterministically (every fifth
// example per class, for testFraction=0.2) rather than via randomness the
// workflow cannot reproduce.
func stratifiedSplit(y []int, numClasses int, testFraction float64) (train, test []int) {
	byClass := make([][]int, numClasses)
	for i, c := range y {
		byClass[c] = append(byClass[c], i)
	}

	step := int(math.Round(1 / testFraction))
	if step < 2 {
		step = 2
	}

	for _, indices := range byClass {
		for i, idx := range indices {
			if len(indices) >= step && i%step == step-1 {
				test = append(test, idx)
			} else {
				train = append(train, idx)
			}
		}
	}
	sort.Ints(train)
	sort.Ints(test)
	return train, test
}

func subset(texts []string, y []int, indices []int) ([]string, []int) {
	outTexts := make([]string, len(indices))
	outY := make([]int, len(indices))
	for i, idx := range indices {
		outTexts[i] = texts[idx]
		outY[i] = y[idx]
	}
	return outTexts, outY
}
