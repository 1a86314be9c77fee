package training

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/hyperjump/bunrui/internal/analysis"
	"github.com/hyperjump/bunrui/internal/artifact"
	"github.com/hyperjump/bunrui/internal/classifier"
	"github.com/hyperjump/bunrui/internal/config"
	"github.com/hyperjump/bunrui/internal/dataset"
	"github.com/hyperjump/bunrui/internal/features"
	"github.com/hyperjump/bunrui/internal/models"
	"github.com/hyperjump/bunrui/internal/storage"
	"github.com/hyperjump/bunrui/pkg/utils"
)

// Options configures one training run.
type Options struct {
	// DatasetPath overrides DataDir/CSVName when set; no archive extraction is attempted.
	DatasetPath string
	DataDir     string
	ArchiveName string
	CSVName     string

	MaxFeatures int
	TestSize    float64
	Seed        int64
	Alpha       float64

	ClassifierPath string
	VectorizerPath string
}

// OptionsFromConfig builds Options from the training and model sections of cfg.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		DataDir:        cfg.Training.DataDir,
		ArchiveName:    cfg.Training.ArchiveName,
		CSVName:        cfg.Training.CSVName,
		MaxFeatures:    cfg.Training.MaxFeatures,
		TestSize:       cfg.Training.TestSize,
		Seed:           cfg.Training.RandomSeed(),
		Alpha:          cfg.Training.Smoothing(),
		ClassifierPath: cfg.Model.ClassifierPath(),
		VectorizerPath: cfg.Model.VectorizerPath(),
	}
}

// Pipeline loads the corpus, fits the vectorizer and classifier, evaluates them
// on a held-out split, and writes both artifacts.
type Pipeline struct {
	opts     Options
	analyzer *analysis.Analyzer
	out      io.Writer
	logger   *zap.Logger
	runs     storage.RunStore // optional; when set, each successful run is recorded
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithLogger sets the logger for progress and warnings.
func WithLogger(l *zap.Logger) PipelineOption {
	return func(p *Pipeline) { p.logger = l }
}

// WithOutput sets where the human-readable progress report is written.
func WithOutput(w io.Writer) PipelineOption {
	return func(p *Pipeline) { p.out = w }
}

// WithRunStore records every completed run in s.
func WithRunStore(s storage.RunStore) PipelineOption {
	return func(p *Pipeline) { p.runs = s }
}

// NewPipeline creates a pipeline. Output defaults to io.Discard and logging to a no-op logger.
func NewPipeline(opts Options, an *analysis.Analyzer, popts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		opts:     opts,
		analyzer: an,
		out:      io.Discard,
		logger:   zap.NewNop(),
	}
	for _, opt := range popts {
		opt(p)
	}
	return p
}

// Result summarizes a completed run.
type Result struct {
	Run           *models.TrainingRun
	Report        *Report
	Clean         dataset.CleanStats
	Encoding      string
	ArtifactBytes int64
}

// Run executes the pipeline. Any input problem aborts it before artifacts are
// written. Evaluation scores never block saving.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	path, err := p.locateDataset()
	if err != nil {
		return nil, err
	}

	docs, table, stats, err := dataset.Read(path)
	if err != nil {
		return nil, err
	}
	p.logger.Info("dataset loaded",
		zap.String("path", path),
		zap.String("encoding", table.Encoding),
		zap.Int("rows", stats.Input),
		zap.Int("kept", stats.Kept),
		zap.Int("dropped_empty_text", stats.EmptyText),
		zap.Int("dropped_missing_label", stats.MissingLabel),
	)
	fmt.Fprintf(p.out, "Loaded %s rows from %s (%s)\n", utils.Count(stats.Kept), path, table.Encoding)

	dist := dataset.Distribution(docs)
	fmt.Fprintln(p.out, "Class distribution:")
	for _, lc := range dist {
		fmt.Fprintf(p.out, "  %s: %s\n", lc.Label, utils.Count(lc.Count))
	}

	stratify := true
	if minCount := dataset.MinCount(dist); minCount < 2 {
		stratify = false
		fmt.Fprintf(p.out, "WARNING: Some classes have fewer than 2 samples (min=%d). Disabling stratify.\n", minCount)
		p.logger.Warn("stratified split disabled", zap.Int("min_class_count", minCount))
	}

	split, err := TrainTestSplit(docs, SplitOptions{TestSize: p.opts.TestSize, Seed: p.opts.Seed, Stratify: stratify})
	if err != nil {
		return nil, err
	}
	if split.FallbackReason != "" {
		fmt.Fprintf(p.out, "WARNING: stratified split not possible (%s). Using a plain split.\n", split.FallbackReason)
		p.logger.Warn("stratified split disabled", zap.String("reason", split.FallbackReason))
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	vectorizer := features.NewTfidfVectorizer(p.opts.MaxFeatures, p.analyzer)
	xTrain, err := vectorizer.FitTransform(models.Texts(split.Train))
	if err != nil {
		return nil, err
	}
	xTest, err := vectorizer.Transform(models.Texts(split.Test))
	if err != nil {
		return nil, err
	}
	p.logger.Info("vectorizer fitted", zap.Int("vocabulary", vectorizer.VocabularySize()))
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	model := classifier.NewMultinomialNB(p.opts.Alpha)
	if err := model.Fit(xTrain, models.Labels(split.Train)); err != nil {
		return nil, err
	}
	yPred, err := model.Predict(xTest)
	if err != nil {
		return nil, err
	}
	report, err := Evaluate(models.Labels(split.Test), yPred)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(p.out, "Accuracy: %.4f\n", report.Accuracy)
	fmt.Fprint(p.out, report.String())
	p.logger.Info("model evaluated",
		zap.Float64("accuracy", report.Accuracy),
		zap.Int("train_rows", len(split.Train)),
		zap.Int("test_rows", len(split.Test)),
	)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := artifact.SavePair(p.opts.ClassifierPath, model, p.opts.VectorizerPath, vectorizer); err != nil {
		return nil, fmt.Errorf("save artifacts: %w", err)
	}
	size, err := storage.DiskUsageBytes(p.opts.ClassifierPath, p.opts.VectorizerPath)
	if err != nil {
		p.logger.Warn("artifact size unavailable", zap.Error(err))
	}
	modelDir := filepath.Dir(p.opts.ClassifierPath)
	fmt.Fprintf(p.out, "Model and TF-IDF saved successfully in %s (%s).\n", modelDir, utils.Bytes(size))

	run := &models.TrainingRun{
		DatasetPath:  path,
		Rows:         len(docs),
		TrainRows:    len(split.Train),
		TestRows:     len(split.Test),
		Distribution: dist,
		Stratified:   split.Stratified,
		Vocabulary:   vectorizer.VocabularySize(),
		Accuracy:     report.Accuracy,
		Classes:      report.Classes,
		ModelDir:     modelDir,
	}
	if p.runs != nil {
		if err := p.runs.CreateRun(ctx, run); err != nil {
			p.logger.Warn("failed to record training run", zap.Error(err))
		} else {
			p.logger.Info("training run recorded", zap.String("run_id", run.ID))
		}
	}

	return &Result{
		Run:           run,
		Report:        report,
		Clean:         stats,
		Encoding:      table.Encoding,
		ArtifactBytes: size,
	}, nil
}

func (p *Pipeline) locateDataset() (string, error) {
	if p.opts.DatasetPath != "" {
		return p.opts.DatasetPath, nil
	}
	path, err := dataset.EnsureExtracted(p.opts.DataDir, p.opts.ArchiveName, p.opts.CSVName)
	if err != nil {
		return "", fmt.Errorf("extract dataset: %w", err)
	}
	return path, nil
}
