package config

// HistoryDisabled is the history_path value that turns off run recording.
const HistoryDisabled = "none"

// Training defaults.
const (
	DefaultMaxFeatures = 10000
	DefaultSeed        = 42
	DefaultAlpha       = 1.0
)

// DefaultCategories maps the AG News class ids to their names.
func DefaultCategories() map[string]string {
	return map[string]string{
		"1": "World",
		"2": "Sports",
		"3": "Business",
		"4": "Sci/Tech",
	}
}

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 5000
	}
	if cfg.Model.Dir == "" {
		cfg.Model.Dir = "models"
	}
	if cfg.Model.ClassifierFile == "" {
		cfg.Model.ClassifierFile = "nb_model.gob"
	}
	if cfg.Model.VectorizerFile == "" {
		cfg.Model.VectorizerFile = "tfidf.gob"
	}
	if cfg.Training.DataDir == "" {
		cfg.Training.DataDir = "data"
	}
	if cfg.Training.ArchiveName == "" {
		cfg.Training.ArchiveName = "test.csv.zip"
	}
	if cfg.Training.CSVName == "" {
		cfg.Training.CSVName = "test.csv"
	}
	if cfg.Training.MaxFeatures == 0 {
		cfg.Training.MaxFeatures = DefaultMaxFeatures
	}
	if cfg.Training.TestSize == 0 {
		cfg.Training.TestSize = 0.2
	}
	if cfg.Training.Seed == nil {
		seed := int64(DefaultSeed)
		cfg.Training.Seed = &seed
	}
	if cfg.Training.Alpha == nil {
		alpha := DefaultAlpha
		cfg.Training.Alpha = &alpha
	}
	if cfg.Training.HistoryPath == "" {
		cfg.Training.HistoryPath = "data/runs.db"
	}
	if len(cfg.Categories) == 0 {
		cfg.Categories = DefaultCategories()
	}
}
