// Package predict loads trained artifacts once and classifies single texts.
package predict

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/hyperjump/bunrui/internal/analysis"
	"github.com/hyperjump/bunrui/internal/artifact"
	"github.com/hyperjump/bunrui/internal/classifier"
	"github.com/hyperjump/bunrui/internal/config"
	"github.com/hyperjump/bunrui/internal/features"
	"github.com/hyperjump/bunrui/internal/models"
)

// ErrEmptyText is returned for text that is empty after trimming.
var ErrEmptyText = errors.New("text is empty")

// Predictor is read-only after Load and safe for concurrent use.
type Predictor struct {
	vectorizer     *features.TfidfVectorizer
	model          *classifier.MultinomialNB
	categories     models.CategoryMap
	classifierPath string
	vectorizerPath string
	logger         *zap.Logger
}

// Info describes the loaded model.
type Info struct {
	Classes        []string          `json:"classes"`
	Vocabulary     int               `json:"vocabulary"`
	Categories     map[string]string `json:"categories"`
	ClassifierPath string            `json:"classifier_path"`
	VectorizerPath string            `json:"vectorizer_path"`
}

// Load reads both artifacts named by cfg. It fails when either is missing or
// when the classifier was not trained on the vectorizer's feature space.
func Load(cfg config.ModelConfig, categories models.CategoryMap, logger *zap.Logger) (*Predictor, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	an, err := analysis.NewEnglishAnalyzer()
	if err != nil {
		return nil, err
	}
	vec, err := artifact.LoadVectorizer(cfg.VectorizerPath(), an)
	if err != nil {
		return nil, fmt.Errorf("load vectorizer: %w", err)
	}
	model, err := artifact.LoadClassifier(cfg.ClassifierPath())
	if err != nil {
		return nil, fmt.Errorf("load classifier: %w", err)
	}
	p, err := New(vec, model, categories)
	if err != nil {
		return nil, err
	}
	p.classifierPath = cfg.ClassifierPath()
	p.vectorizerPath = cfg.VectorizerPath()
	p.logger = logger
	logger.Info("model loaded",
		zap.String("classifier", p.classifierPath),
		zap.String("vectorizer", p.vectorizerPath),
		zap.Int("classes", len(model.Classes())),
		zap.Int("vocabulary", vec.VocabularySize()),
	)
	return p, nil
}

// New wraps an already fitted vectorizer and classifier.
func New(vec *features.TfidfVectorizer, model *classifier.MultinomialNB, categories models.CategoryMap) (*Predictor, error) {
	if !vec.Fitted() {
		return nil, features.ErrNotFitted
	}
	if !model.Fitted() {
		return nil, classifier.ErrNotFitted
	}
	if model.Dim() != vec.VocabularySize() {
		return nil, fmt.Errorf("%w: classifier expects %d features, vectorizer produces %d",
			classifier.ErrDimensionMismatch, model.Dim(), vec.VocabularySize())
	}
	return &Predictor{
		vectorizer: vec,
		model:      model,
		categories: categories,
		logger:     zap.NewNop(),
	}, nil
}

// Predict classifies text. Text with no known terms still gets a label, the one
// favoured by the class priors.
func (p *Predictor) Predict(text string) (*models.Prediction, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}
	x, err := p.vectorizer.Transform([]string{text})
	if err != nil {
		return nil, err
	}
	labels, err := p.model.Predict(x)
	if err != nil {
		return nil, err
	}
	proba, err := p.model.PredictProba(x)
	if err != nil {
		return nil, err
	}
	classes := p.model.Classes()
	probs := make(map[models.ClassLabel]float64, len(classes))
	for i, c := range classes {
		probs[c] = proba[0][i]
	}
	label := labels[0]
	p.logger.Debug("prediction",
		zap.String("label", string(label)),
		zap.Int("nnz", x[0].NNZ()),
	)
	return &models.Prediction{
		Label:         label,
		Category:      p.categories.Lookup(label),
		Probabilities: probs,
	}, nil
}

// Info returns a description of the loaded model.
func (p *Predictor) Info() Info {
	classes := p.model.Classes()
	names := make([]string, len(classes))
	for i, c := range classes {
		names[i] = string(c)
	}
	return Info{
		Classes:        names,
		Vocabulary:     p.vectorizer.VocabularySize(),
		Categories:     p.categories.Names(),
		ClassifierPath: p.classifierPath,
		VectorizerPath: p.vectorizerPath,
	}
}
