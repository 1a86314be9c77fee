// Package classifier implements a multinomial Naive Bayes text classifier.
package classifier

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/hyperjump/bunrui/internal/features"
	"github.com/hyperjump/bunrui/internal/models"
	"github.com/hyperjump/bunrui/pkg/utils"
)

var (
	// ErrNotFitted is returned by prediction methods before Fit.
	ErrNotFitted = errors.New("classifier is not fitted")
	// ErrDimensionMismatch is returned when a vector's dimension differs from the fitted one.
	ErrDimensionMismatch = errors.New("feature dimension mismatch")
)

// minAlpha keeps every likelihood finite when smoothing is disabled.
const minAlpha = 1e-10

// MultinomialNB is a multinomial Naive Bayes model with additive smoothing.
// Classes are kept in ascending label order; that order also breaks ties.
// A fitted model is read-only and safe for concurrent use.
type MultinomialNB struct {
	alpha float64

	classes       []models.ClassLabel
	classCount    []float64
	classLogPrior []float64
	// featureLogProb[c][f] = log P(feature f | class c)
	featureLogProb [][]float64
	dim            int
}

// NewMultinomialNB returns an unfitted model with smoothing parameter alpha.
func NewMultinomialNB(alpha float64) *MultinomialNB {
	return &MultinomialNB{alpha: alpha}
}

// Fit estimates class priors from label frequencies and per-class feature
// likelihoods from feature-value sums:
//
//	log P(f|c) = log((sum_c(f) + alpha) / (sum_c + alpha*dim))
func (m *MultinomialNB) Fit(x []features.SparseVector, y []models.ClassLabel) error {
	if len(x) == 0 {
		return errors.New("fit classifier: no training examples")
	}
	if len(x) != len(y) {
		return fmt.Errorf("fit classifier: %d vectors but %d labels", len(x), len(y))
	}
	if m.alpha < 0 {
		return fmt.Errorf("fit classifier: alpha must not be negative, got %v", m.alpha)
	}
	alpha := m.alpha
	if alpha < minAlpha {
		alpha = minAlpha
	}
	dim := x[0].Dim
	if dim == 0 {
		return errors.New("fit classifier: zero-dimension features")
	}

	seen := make(map[models.ClassLabel]struct{})
	for _, label := range y {
		seen[label] = struct{}{}
	}
	classes := make([]models.ClassLabel, 0, len(seen))
	for label := range seen {
		classes = append(classes, label)
	}
	sort.Slice(classes, func(i, j int) bool { return classes[i] < classes[j] })
	index := make(map[models.ClassLabel]int, len(classes))
	for i, c := range classes {
		index[c] = i
	}

	classCount := make([]float64, len(classes))
	featureCount := make([][]float64, len(classes))
	for c := range featureCount {
		featureCount[c] = make([]float64, dim)
	}
	for i, vec := range x {
		if vec.Dim != dim {
			return fmt.Errorf("fit classifier: example %d: %w (got %d, want %d)", i, ErrDimensionMismatch, vec.Dim, dim)
		}
		if err := vec.Validate(); err != nil {
			return fmt.Errorf("fit classifier: example %d: %w", i, err)
		}
		c := index[y[i]]
		classCount[c]++
		row := featureCount[c]
		for k, f := range vec.Indices {
			if vec.Values[k] < 0 {
				return fmt.Errorf("fit classifier: example %d has negative feature value", i)
			}
			row[f] += vec.Values[k]
		}
	}

	n := float64(len(x))
	logPrior := make([]float64, len(classes))
	logProb := make([][]float64, len(classes))
	for c := range classes {
		logPrior[c] = math.Log(classCount[c] / n)
		var total float64
		for _, v := range featureCount[c] {
			total += v
		}
		denom := math.Log(total + alpha*float64(dim))
		logProb[c] = make([]float64, dim)
		for f, v := range featureCount[c] {
			logProb[c][f] = math.Log(v+alpha) - denom
		}
	}

	m.classes = classes
	m.classCount = classCount
	m.classLogPrior = logPrior
	m.featureLogProb = logProb
	m.dim = dim
	return nil
}

// Fitted reports whether Fit has completed.
func (m *MultinomialNB) Fitted() bool {
	return len(m.classes) > 0
}

// Classes returns the known labels in ascending order.
func (m *MultinomialNB) Classes() []models.ClassLabel {
	return append([]models.ClassLabel(nil), m.classes...)
}

// Dim returns the fitted feature dimension.
func (m *MultinomialNB) Dim() int {
	return m.dim
}

// jointLogLikelihood returns log prior + sum(x_f * log P(f|c)) for every class.
func (m *MultinomialNB) jointLogLikelihood(vec features.SparseVector) ([]float64, error) {
	if !m.Fitted() {
		return nil, ErrNotFitted
	}
	if vec.Dim != m.dim {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, vec.Dim, m.dim)
	}
	jll := make([]float64, len(m.classes))
	for c := range m.classes {
		score := m.classLogPrior[c]
		row := m.featureLogProb[c]
		for k, f := range vec.Indices {
			score += vec.Values[k] * row[f]
		}
		jll[c] = score
	}
	return jll, nil
}

// Predict returns the most likely label for each vector.
func (m *MultinomialNB) Predict(x []features.SparseVector) ([]models.ClassLabel, error) {
	out := make([]models.ClassLabel, len(x))
	for i, vec := range x {
		jll, err := m.jointLogLikelihood(vec)
		if err != nil {
			return nil, err
		}
		best := 0
		for c := 1; c < len(jll); c++ {
			if jll[c] > jll[best] {
				best = c
			}
		}
		out[i] = m.classes[best]
	}
	return out, nil
}

// PredictLogProba returns normalized log posteriors, one row per vector, columns in Classes order.
func (m *MultinomialNB) PredictLogProba(x []features.SparseVector) ([][]float64, error) {
	out := make([][]float64, len(x))
	for i, vec := range x {
		jll, err := m.jointLogLikelihood(vec)
		if err != nil {
			return nil, err
		}
		norm := utils.LogSumExp(jll)
		for c := range jll {
			jll[c] -= norm
		}
		out[i] = jll
	}
	return out, nil
}

// PredictProba returns posteriors, one row per vector, columns in Classes order.
func (m *MultinomialNB) PredictProba(x []features.SparseVector) ([][]float64, error) {
	logp, err := m.PredictLogProba(x)
	if err != nil {
		return nil, err
	}
	for _, row := range logp {
		for c := range row {
			row[c] = math.Exp(row[c])
		}
	}
	return logp, nil
}

// ModelState is the serializable snapshot of a fitted model.
type ModelState struct {
	Alpha          float64
	Classes        []string
	ClassCount     []float64
	ClassLogPrior  []float64
	FeatureLogProb [][]float64
	Dim            int
}

// State returns a snapshot of the fitted model.
func (m *MultinomialNB) State() (*ModelState, error) {
	if !m.Fitted() {
		return nil, ErrNotFitted
	}
	classes := make([]string, len(m.classes))
	for i, c := range m.classes {
		classes[i] = string(c)
	}
	logProb := make([][]float64, len(m.featureLogProb))
	for i, row := range m.featureLogProb {
		logProb[i] = append([]float64(nil), row...)
	}
	return &ModelState{
		Alpha:          m.alpha,
		Classes:        classes,
		ClassCount:     append([]float64(nil), m.classCount...),
		ClassLogPrior:  append([]float64(nil), m.classLogPrior...),
		FeatureLogProb: logProb,
		Dim:            m.dim,
	}, nil
}

// FromState rebuilds a fitted model from a snapshot.
func FromState(state *ModelState) (*MultinomialNB, error) {
	if state == nil || len(state.Classes) == 0 {
		return nil, errors.New("model state has no classes")
	}
	k := len(state.Classes)
	if len(state.ClassLogPrior) != k || len(state.FeatureLogProb) != k || len(state.ClassCount) != k {
		return nil, fmt.Errorf("model state: inconsistent class arrays for %d classes", k)
	}
	classes := make([]models.ClassLabel, k)
	for i, c := range state.Classes {
		classes[i] = models.ClassLabel(c)
		if i > 0 && classes[i-1] >= classes[i] {
			return nil, errors.New("model state: classes not in ascending order")
		}
	}
	logProb := make([][]float64, k)
	for i, row := range state.FeatureLogProb {
		if len(row) != state.Dim {
			return nil, fmt.Errorf("model state: class %q has %d features, want %d", state.Classes[i], len(row), state.Dim)
		}
		logProb[i] = append([]float64(nil), row...)
	}
	return &MultinomialNB{
		alpha:          state.Alpha,
		classes:        classes,
		classCount:     append([]float64(nil), state.ClassCount...),
		classLogPrior:  append([]float64(nil), state.ClassLogPrior...),
		featureLogProb: logProb,
		dim:            state.Dim,
	}, nil
}
