package classifier

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperjump/bunrui/internal/features"
	"github.com/hyperjump/bunrui/internal/models"
)

func vec(dim int, dense ...float64) features.SparseVector {
	v := features.SparseVector{Dim: dim}
	for i, x := range dense {
		if x != 0 {
			v.Indices = append(v.Indices, i)
			v.Values = append(v.Values, x)
		}
	}
	return v
}

func trainingSet() ([]features.SparseVector, []models.ClassLabel) {
	x := []features.SparseVector{
		vec(3, 1, 0, 0),
		vec(3, 2, 1, 0),
		vec(3, 0, 0, 3),
		vec(3, 0, 1, 2),
		vec(3, 0, 0, 1),
	}
	y := []models.ClassLabel{"b", "b", "a", "a", "a"}
	return x, y
}

func TestFit_priorsAndLikelihoods(t *testing.T) {
	x, y := trainingSet()
	m := NewMultinomialNB(1.0)
	require.NoError(t, m.Fit(x, y))

	assert.Equal(t, []models.ClassLabel{"a", "b"}, m.Classes())
	state, err := m.State()
	require.NoError(t, err)
	assert.InDelta(t, math.Log(3.0/5.0), state.ClassLogPrior[0], 1e-12)
	assert.InDelta(t, math.Log(2.0/5.0), state.ClassLogPrior[1], 1e-12)

	// class a feature sums: [0, 1, 6], total 7, denom 7 + 3.
	assert.InDelta(t, math.Log(1.0/10.0), state.FeatureLogProb[0][0], 1e-12)
	assert.InDelta(t, math.Log(2.0/10.0), state.FeatureLogProb[0][1], 1e-12)
	assert.InDelta(t, math.Log(7.0/10.0), state.FeatureLogProb[0][2], 1e-12)
	// class b feature sums: [3, 1, 0], total 4, denom 4 + 3.
	assert.InDelta(t, math.Log(4.0/7.0), state.FeatureLogProb[1][0], 1e-12)
}

func TestPredict(t *testing.T) {
	x, y := trainingSet()
	m := NewMultinomialNB(1.0)
	require.NoError(t, m.Fit(x, y))

	got, err := m.Predict([]features.SparseVector{vec(3, 5, 0, 0), vec(3, 0, 0, 5)})
	require.NoError(t, err)
	assert.Equal(t, []models.ClassLabel{"b", "a"}, got)
}

func TestPredict_tieBrokenByAscendingLabel(t *testing.T) {
	x := []features.SparseVector{vec(2, 1, 0), vec(2, 0, 1)}
	y := []models.ClassLabel{"2", "1"}
	m := NewMultinomialNB(1.0)
	require.NoError(t, m.Fit(x, y))

	// Equal priors and an empty vector: every class scores the same.
	got, err := m.Predict([]features.SparseVector{vec(2)})
	require.NoError(t, err)
	assert.Equal(t, models.ClassLabel("1"), got[0])
}

func TestPredict_notFitted(t *testing.T) {
	m := NewMultinomialNB(1.0)
	_, err := m.Predict([]features.SparseVector{vec(2, 1, 0)})
	assert.ErrorIs(t, err, ErrNotFitted)
	_, err = m.PredictProba([]features.SparseVector{vec(2, 1, 0)})
	assert.ErrorIs(t, err, ErrNotFitted)
	_, err = m.State()
	assert.ErrorIs(t, err, ErrNotFitted)
}

func TestPredict_dimensionMismatch(t *testing.T) {
	x, y := trainingSet()
	m := NewMultinomialNB(1.0)
	require.NoError(t, m.Fit(x, y))
	_, err := m.Predict([]features.SparseVector{vec(4, 1, 0, 0, 0)})
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestPredictProba_sumsToOne(t *testing.T) {
	x, y := trainingSet()
	m := NewMultinomialNB(1.0)
	require.NoError(t, m.Fit(x, y))

	probs, err := m.PredictProba([]features.SparseVector{vec(3, 1, 1, 1), vec(3, 0, 0, 9)})
	require.NoError(t, err)
	for _, row := range probs {
		var sum float64
		for _, p := range row {
			assert.GreaterOrEqual(t, p, 0.0)
			sum += p
		}
		assert.InDelta(t, 1.0, sum, 1e-9)
	}
	assert.Greater(t, probs[1][0], probs[1][1], "third feature belongs to class a")
}

func TestFit_errors(t *testing.T) {
	m := NewMultinomialNB(1.0)
	assert.Error(t, m.Fit(nil, nil))
	assert.Error(t, m.Fit([]features.SparseVector{vec(2, 1, 0)}, nil))
	err := m.Fit([]features.SparseVector{vec(2, 1, 0), vec(3, 1, 0, 0)}, []models.ClassLabel{"a", "b"})
	assert.ErrorIs(t, err, ErrDimensionMismatch)
	assert.Error(t, m.Fit([]features.SparseVector{vec(2, -1, 0)}, []models.ClassLabel{"a"}))
	assert.False(t, m.Fitted())
}

func TestFit_malformedVector(t *testing.T) {
	y := []models.ClassLabel{"a", "b"}
	cases := map[string]features.SparseVector{
		"index outside dimension": {Dim: 3, Indices: []int{0, 3}, Values: []float64{1, 1}},
		"unsorted indices":        {Dim: 3, Indices: []int{2, 1}, Values: []float64{1, 1}},
		"length mismatch":         {Dim: 3, Indices: []int{0, 1}, Values: []float64{1}},
	}
	for name, bad := range cases {
		t.Run(name, func(t *testing.T) {
			m := NewMultinomialNB(1.0)
			assert.Error(t, m.Fit([]features.SparseVector{vec(3, 1, 0, 0), bad}, y))
			assert.False(t, m.Fitted())
		})
	}
}

func TestFit_zeroAlphaStaysFinite(t *testing.T) {
	x, y := trainingSet()
	m := NewMultinomialNB(0)
	require.NoError(t, m.Fit(x, y))
	state, err := m.State()
	require.NoError(t, err)
	for _, row := range state.FeatureLogProb {
		for _, v := range row {
			assert.False(t, math.IsInf(v, 0) || math.IsNaN(v))
		}
	}
}

func TestStateRoundTrip(t *testing.T) {
	x, y := trainingSet()
	m := NewMultinomialNB(0.5)
	require.NoError(t, m.Fit(x, y))
	state, err := m.State()
	require.NoError(t, err)

	restored, err := FromState(state)
	require.NoError(t, err)
	assert.Equal(t, m.Classes(), restored.Classes())
	assert.Equal(t, m.Dim(), restored.Dim())

	want, _ := m.PredictProba(x)
	got, err := restored.PredictProba(x)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestFromState_invalid(t *testing.T) {
	_, err := FromState(nil)
	assert.Error(t, err)
	_, err = FromState(&ModelState{
		Classes:        []string{"b", "a"},
		ClassCount:     []float64{1, 1},
		ClassLogPrior:  []float64{0, 0},
		FeatureLogProb: [][]float64{{0}, {0}},
		Dim:            1,
	})
	assert.Error(t, err)
	_, err = FromState(&ModelState{
		Classes:        []string{"a"},
		ClassCount:     []float64{1},
		ClassLogPrior:  []float64{0},
		FeatureLogProb: [][]float64{{0, 0}},
		Dim:            3,
	})
	assert.Error(t, err)
}
