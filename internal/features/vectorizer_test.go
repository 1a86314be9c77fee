package features

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperjump/bunrui/internal/analysis"
)

var corpus = []string{
	"Stocks rally as markets surge",
	"Markets fall as oil prices climb",
	"Striker scores late goal in cup final",
	"Goal keeper saves penalty in final",
}

func newVectorizer(t *testing.T, maxFeatures int) *TfidfVectorizer {
	t.Helper()
	return NewTfidfVectorizer(maxFeatures, analysis.MustEnglishAnalyzer())
}

func TestFit_vocabularySortedAndIDFSmoothed(t *testing.T) {
	v := newVectorizer(t, 0)
	require.NoError(t, v.Fit(corpus))

	vocab := v.Vocabulary()
	require.NotEmpty(t, vocab)
	for i := 1; i < len(vocab); i++ {
		assert.Less(t, vocab[i-1], vocab[i], "vocabulary must be in ascending order")
	}

	// "markets" occurs in 2 of 4 documents.
	idf, ok := v.idfOf("markets")
	require.True(t, ok)
	assert.InDelta(t, math.Log(5.0/3.0)+1, idf, 1e-12)

	// "stocks" occurs in 1 of 4 documents.
	idf, ok = v.idfOf("stocks")
	require.True(t, ok)
	assert.InDelta(t, math.Log(5.0/2.0)+1, idf, 1e-12)

	_, ok = v.idfOf("the")
	assert.False(t, ok, "stop words are never in the vocabulary")
}

func TestFit_maxFeaturesKeepsMostFrequent(t *testing.T) {
	v := newVectorizer(t, 3)
	require.NoError(t, v.Fit(corpus))

	assert.Equal(t, 3, v.VocabularySize())
	// goal, final and markets each occur twice; everything else once.
	assert.Equal(t, []string{"final", "goal", "markets"}, v.Vocabulary())
}

func TestFit_errors(t *testing.T) {
	v := newVectorizer(t, 10)
	assert.Error(t, v.Fit(nil))
	assert.Error(t, v.Fit([]string{"the of and", "a"}))
	assert.False(t, v.Fitted())
}

func TestTransform_beforeFit(t *testing.T) {
	v := newVectorizer(t, 10)
	_, err := v.Transform([]string{"anything"})
	assert.ErrorIs(t, err, ErrNotFitted)
}

func TestTransform_roundTripZeroOnlyForAbsentTokens(t *testing.T) {
	v := newVectorizer(t, 0)
	vecs, err := v.FitTransform(corpus)
	require.NoError(t, err)
	require.Len(t, vecs, len(corpus))

	an := analysis.MustEnglishAnalyzer()
	vocab := v.Vocabulary()
	for d, text := range corpus {
		present := an.Counts(text)
		vec := vecs[d]
		require.NoError(t, vec.Validate())
		for i, term := range vocab {
			_, inDoc := present[term]
			if inDoc {
				assert.Greater(t, vec.at(i), 0.0, "doc %d term %q", d, term)
			} else {
				assert.Zero(t, vec.at(i), "doc %d term %q", d, term)
			}
		}
	}
}

func TestTransform_l2Normalized(t *testing.T) {
	v := newVectorizer(t, 0)
	vecs, err := v.FitTransform(corpus)
	require.NoError(t, err)
	for _, vec := range vecs {
		var sum float64
		for _, x := range vec.Values {
			sum += x * x
		}
		assert.InDelta(t, 1.0, sum, 1e-9)
	}
}

func TestTransform_outOfVocabularyDropped(t *testing.T) {
	v := newVectorizer(t, 0)
	require.NoError(t, v.Fit(corpus))

	vecs, err := v.Transform([]string{"quantum entanglement breakthrough", "markets zeppelin"})
	require.NoError(t, err)
	assert.Equal(t, 0, vecs[0].NNZ())
	assert.Equal(t, v.VocabularySize(), vecs[0].Dim)

	require.Equal(t, 1, vecs[1].NNZ())
	assert.InDelta(t, 1.0, vecs[1].Values[0], 1e-12)
}

func TestTransform_termFrequencyWeighting(t *testing.T) {
	v := newVectorizer(t, 0)
	require.NoError(t, v.Fit(corpus))

	vecs, err := v.Transform([]string{"goal goal striker"})
	require.NoError(t, err)
	idfGoal, _ := v.idfOf("goal")
	idfStriker, _ := v.idfOf("striker")
	goal := 2 * idfGoal
	striker := idfStriker
	norm := math.Sqrt(goal*goal + striker*striker)

	vocab := v.Vocabulary()
	for i, term := range vocab {
		switch term {
		case "goal":
			assert.InDelta(t, goal/norm, vecs[0].at(i), 1e-12)
		case "striker":
			assert.InDelta(t, striker/norm, vecs[0].at(i), 1e-12)
		}
	}
}

func TestFit_deterministic(t *testing.T) {
	a := newVectorizer(t, 5)
	b := newVectorizer(t, 5)
	va, err := a.FitTransform(corpus)
	require.NoError(t, err)
	vb, err := b.FitTransform(corpus)
	require.NoError(t, err)
	assert.Equal(t, a.Vocabulary(), b.Vocabulary())
	assert.Equal(t, va, vb)
}

func TestStateRoundTrip(t *testing.T) {
	v := newVectorizer(t, 0)
	require.NoError(t, v.Fit(corpus))
	state, err := v.State()
	require.NoError(t, err)

	restored, err := FromState(state, analysis.MustEnglishAnalyzer())
	require.NoError(t, err)

	text := []string{"oil markets surge before cup final"}
	want, _ := v.Transform(text)
	got, err := restored.Transform(text)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestFromState_invalid(t *testing.T) {
	an := analysis.MustEnglishAnalyzer()
	_, err := FromState(nil, an)
	assert.Error(t, err)
	_, err = FromState(&VectorizerState{Terms: []string{"a", "b"}, IDF: []float64{1}}, an)
	assert.Error(t, err)
	_, err = FromState(&VectorizerState{Terms: []string{"a", "a"}, IDF: []float64{1, 1}}, an)
	assert.Error(t, err)
}

func TestSparseVector(t *testing.T) {
	v := SparseVector{Dim: 5, Indices: []int{1, 3}, Values: []float64{0.5, 2}}
	assert.NoError(t, v.Validate())
	assert.Equal(t, 0.5, v.at(1))
	assert.Equal(t, 2.0, v.at(3))
	assert.Zero(t, v.at(0))
	assert.Zero(t, v.at(4))
	assert.Equal(t, []float64{0, 0.5, 0, 2, 0}, v.dense())

	bad := SparseVector{Dim: 2, Indices: []int{1, 0}, Values: []float64{1, 1}}
	assert.Error(t, bad.Validate())
	outside := SparseVector{Dim: 2, Indices: []int{2}, Values: []float64{1}}
	assert.Error(t, outside.Validate())
}
