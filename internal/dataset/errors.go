// Package dataset locates, decodes, and cleans the labeled training corpus.
package dataset

import "errors"

var (
	// ErrDatasetNotFound is returned when the corpus file does not exist.
	ErrDatasetNotFound = errors.New("dataset not found")
	// ErrUnexpectedFormat is returned when the table shape cannot be mapped to
	// (label, title, description).
	ErrUnexpectedFormat = errors.New("unexpected dataset format")
	// ErrEmptyCorpus is returned when no rows survive cleaning.
	ErrEmptyCorpus = errors.New("no data found after cleaning")
)
