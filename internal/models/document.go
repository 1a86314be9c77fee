// Package models defines core data structures for documents, labels, predictions, and training runs.
package models

import "strings"

// ClassLabel is a class identifier. Labels are always compared as strings, even
// when the source data encodes them as numbers.
type ClassLabel string

// Document is one labeled example of the training corpus.
type Document struct {
	Label       ClassLabel `json:"label"`
	Title       string     `json:"title,omitempty"`
	Description string     `json:"description,omitempty"`
	Text        string     `json:"text"`
}

// ComposeText joins title and description the way training and serving expect:
// trim(title + " " + description).
func ComposeText(title, description string) string {
	return strings.TrimSpace(title + " " + description)
}

// Texts returns the composed text of every document, in order.
func Texts(docs []Document) []string {
	out := make([]string, len(docs))
	for i, d := range docs {
		out[i] = d.Text
	}
	return out
}

// Labels returns the label of every document, in order.
func Labels(docs []Document) []ClassLabel {
	out := make([]ClassLabel, len(docs))
	for i, d := range docs {
		out[i] = d.Label
	}
	return out
}
