package features

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/hyperjump/bunrui/internal/analysis"
	"github.com/hyperjump/bunrui/pkg/utils"
)

// ErrNotFitted is returned by Transform before Fit has been called.
var ErrNotFitted = errors.New("vectorizer is not fitted")

// TfidfVectorizer learns a bounded vocabulary and inverse document frequencies
// from a corpus, then maps texts to L2-normalized TF-IDF vectors.
//
// A fitted vectorizer is read-only and safe for concurrent Transform calls.
type TfidfVectorizer struct {
	maxFeatures int
	analyzer    *analysis.Analyzer

	vocabulary map[string]int
	terms      []string
	idf        []float64
}

// NewTfidfVectorizer returns an unfitted vectorizer keeping at most maxFeatures
// terms (0 or negative means no bound).
func NewTfidfVectorizer(maxFeatures int, an *analysis.Analyzer) *TfidfVectorizer {
	return &TfidfVectorizer{maxFeatures: maxFeatures, analyzer: an}
}

type termStat struct {
	term  string
	count int
	df    int
}

// Fit learns the vocabulary and IDF weights from corpus.
//
// The vocabulary keeps the maxFeatures terms with the highest total count over
// the corpus (ties broken by term), indexed in ascending term order.
// IDF is smoothed: ln((1+n)/(1+df)) + 1.
func (v *TfidfVectorizer) Fit(corpus []string) error {
	if len(corpus) == 0 {
		return errors.New("fit vectorizer: empty corpus")
	}
	stats := make(map[string]*termStat)
	for _, doc := range corpus {
		for term, n := range v.analyzer.Counts(doc) {
			s, ok := stats[term]
			if !ok {
				s = &termStat{term: term}
				stats[term] = s
			}
			s.count += n
			s.df++
		}
	}
	if len(stats) == 0 {
		return errors.New("fit vectorizer: corpus has no terms after stop-word removal")
	}

	ranked := make([]*termStat, 0, len(stats))
	for _, s := range stats {
		ranked = append(ranked, s)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].count != ranked[j].count {
			return ranked[i].count > ranked[j].count
		}
		return ranked[i].term < ranked[j].term
	})
	if v.maxFeatures > 0 && len(ranked) > v.maxFeatures {
		ranked = ranked[:v.maxFeatures]
	}
	sort.Slice(ranked, func(i, j int) bool { return ranked[i].term < ranked[j].term })

	n := float64(len(corpus))
	v.vocabulary = make(map[string]int, len(ranked))
	v.terms = make([]string, len(ranked))
	v.idf = make([]float64, len(ranked))
	for i, s := range ranked {
		v.vocabulary[s.term] = i
		v.terms[i] = s.term
		v.idf[i] = math.Log((1+n)/(1+float64(s.df))) + 1
	}
	return nil
}

// Transform maps each text to a TF-IDF vector over the fitted vocabulary.
// Tokens outside the vocabulary are ignored.
func (v *TfidfVectorizer) Transform(texts []string) ([]SparseVector, error) {
	if !v.Fitted() {
		return nil, ErrNotFitted
	}
	out := make([]SparseVector, len(texts))
	for i, text := range texts {
		out[i] = v.transformOne(text)
	}
	return out, nil
}

// FitTransform fits on corpus and returns its vectors.
func (v *TfidfVectorizer) FitTransform(corpus []string) ([]SparseVector, error) {
	if err := v.Fit(corpus); err != nil {
		return nil, err
	}
	return v.Transform(corpus)
}

func (v *TfidfVectorizer) transformOne(text string) SparseVector {
	counts := v.analyzer.Counts(text)
	indices := make([]int, 0, len(counts))
	for term := range counts {
		if idx, ok := v.vocabulary[term]; ok {
			indices = append(indices, idx)
		}
	}
	sort.Ints(indices)
	values := make([]float64, len(indices))
	for k, idx := range indices {
		values[k] = float64(counts[v.terms[idx]]) * v.idf[idx]
	}
	utils.NormalizeL2(values)
	return SparseVector{Dim: len(v.terms), Indices: indices, Values: values}
}

// Fitted reports whether Fit has completed.
func (v *TfidfVectorizer) Fitted() bool {
	return v.vocabulary != nil
}

// VocabularySize returns the number of features, 0 before Fit.
func (v *TfidfVectorizer) VocabularySize() int {
	return len(v.terms)
}

// Vocabulary returns the vocabulary ordered by feature index.
func (v *TfidfVectorizer) Vocabulary() []string {
	return append([]string(nil), v.terms...)
}

// idfOf returns the inverse document frequency of term and whether it is in the vocabulary.
func (v *TfidfVectorizer) idfOf(term string) (float64, bool) {
	idx, ok := v.vocabulary[term]
	if !ok {
		return 0, false
	}
	return v.idf[idx], true
}

// VectorizerState is the serializable snapshot of a fitted vectorizer.
type VectorizerState struct {
	MaxFeatures int
	Terms       []string
	IDF         []float64
}

// State returns a snapshot of the fitted vectorizer.
func (v *TfidfVectorizer) State() (*VectorizerState, error) {
	if !v.Fitted() {
		return nil, ErrNotFitted
	}
	return &VectorizerState{
		MaxFeatures: v.maxFeatures,
		Terms:       append([]string(nil), v.terms...),
		IDF:         append([]float64(nil), v.idf...),
	}, nil
}

// FromState rebuilds a fitted vectorizer from a snapshot.
func FromState(state *VectorizerState, an *analysis.Analyzer) (*TfidfVectorizer, error) {
	if state == nil || len(state.Terms) == 0 {
		return nil, errors.New("vectorizer state has no vocabulary")
	}
	if len(state.Terms) != len(state.IDF) {
		return nil, fmt.Errorf("vectorizer state: %d terms but %d idf weights", len(state.Terms), len(state.IDF))
	}
	vocab := make(map[string]int, len(state.Terms))
	for i, term := range state.Terms {
		if _, dup := vocab[term]; dup {
			return nil, fmt.Errorf("vectorizer state: duplicate term %q", term)
		}
		vocab[term] = i
	}
	return &TfidfVectorizer{
		maxFeatures: state.MaxFeatures,
		analyzer:    an,
		vocabulary:  vocab,
		terms:       append([]string(nil), state.Terms...),
		idf:         append([]float64(nil), state.IDF...),
	}, nil
}
