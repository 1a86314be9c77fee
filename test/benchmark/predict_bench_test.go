package benchmark

import (
	"fmt"
	"testing"

	"github.com/hyperjump/bunrui/internal/analysis"
	"github.com/hyperjump/bunrui/internal/classifier"
	"github.com/hyperjump/bunrui/internal/features"
	"github.com/hyperjump/bunrui/internal/models"
	"github.com/hyperjump/bunrui/internal/predict"
)

const benchText = "Shares of the chip maker rallied after quarterly earnings beat forecasts and the president praised the merger"

func benchCorpus(n int) ([]string, []models.ClassLabel) {
	texts := make([]string, n)
	labels := make([]models.ClassLabel, n)
	for i := 0; i < n; i++ {
		texts[i] = fmt.Sprintf("headline %d term%d term%d story about topic%d", i, i%500, (i*7)%500, i%4)
		labels[i] = models.ClassLabel(fmt.Sprint(i%4 + 1))
	}
	return texts, labels
}

func BenchmarkAnalyzerTokens(b *testing.B) {
	an := analysis.MustEnglishAnalyzer()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = an.Tokens(benchText)
	}
}

func BenchmarkVectorizerFit(b *testing.B) {
	texts, _ := benchCorpus(2000)
	an := analysis.MustEnglishAnalyzer()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		v := features.NewTfidfVectorizer(10000, an)
		_ = v.Fit(texts)
	}
}

func BenchmarkPredictorPredict(b *testing.B) {
	texts, labels := benchCorpus(2000)
	v := features.NewTfidfVectorizer(10000, analysis.MustEnglishAnalyzer())
	x, err := v.FitTransform(texts)
	if err != nil {
		b.Fatal(err)
	}
	m := classifier.NewMultinomialNB(1.0)
	if err := m.Fit(x, labels); err != nil {
		b.Fatal(err)
	}
	p, err := predict.New(v, m, models.NewCategoryMap(nil))
	if err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = p.Predict(benchText)
	}
}
