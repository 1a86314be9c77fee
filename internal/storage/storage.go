// Package storage defines the persistence interface for training run history.
package storage

import (
	"context"
	"errors"

	"github.com/hyperjump/bunrui/internal/models"
)

// ErrRunNotFound is returned by GetRun for an unknown id.
var ErrRunNotFound = errors.New("training run not found")

// RunStore records training pipeline executions.
type RunStore interface {
	CreateRun(ctx context.Context, run *models.TrainingRun) error
	GetRun(ctx context.Context, id string) (*models.TrainingRun, error)
	// ListRuns returns the most recent runs first.
	ListRuns(ctx context.Context, limit int) ([]*models.TrainingRun, error)
	CountRuns(ctx context.Context) (int64, error)

	Close() error
}
