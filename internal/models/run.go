package models

import "time"

// LabelCount is the number of documents carrying a label.
type LabelCount struct {
	Label ClassLabel `json:"label"`
	Count int        `json:"count"`
}

// ClassMetrics holds evaluation scores for one class.
type ClassMetrics struct {
	Label     ClassLabel `json:"label"`
	Precision float64    `json:"precision"`
	Recall    float64    `json:"recall"`
	F1        float64    `json:"f1"`
	Support   int        `json:"support"`
}

// TrainingRun records one execution of the training pipeline.
type TrainingRun struct {
	ID           string         `json:"id"`
	CreatedAt    time.Time      `json:"created_at"`
	DatasetPath  string         `json:"dataset_path"`
	Rows         int            `json:"rows"`
	TrainRows    int            `json:"train_rows"`
	TestRows     int            `json:"test_rows"`
	Distribution []LabelCount   `json:"distribution"`
	Stratified   bool           `json:"stratified"`
	Vocabulary   int            `json:"vocabulary"`
	Accuracy     float64        `json:"accuracy"`
	Classes      []ClassMetrics `json:"classes"`
	ModelDir     string         `json:"model_dir"`
}
