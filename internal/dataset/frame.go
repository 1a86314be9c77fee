package dataset

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hyperjump/bunrui/internal/models"
)

// Expected column names of a headed corpus.
const (
	ColumnLabel       = "ClassId"
	ColumnTitle       = "Title"
	ColumnDescription = "Description"
)

// Row is one corpus record mapped to the three known columns.
type Row struct {
	Label       string
	Title       string
	Description string
}

// Frame is a table whose columns have been resolved to (label, title, description).
type Frame struct {
	// Positional is true when columns were assigned by position instead of header name.
	Positional bool
	Rows       []Row
}

// Normalize maps the table's columns. When the header names all three expected
// columns they are used wherever they are; otherwise a table of exactly three
// columns is read as (label, title, description). Anything else is rejected.
func Normalize(t *Table) (*Frame, error) {
	idx := map[string]int{}
	for i, h := range t.Header {
		if _, dup := idx[h]; !dup {
			idx[h] = i
		}
	}
	li, lok := idx[ColumnLabel]
	ti, tok := idx[ColumnTitle]
	di, dok := idx[ColumnDescription]

	f := &Frame{}
	switch {
	case lok && tok && dok:
	case len(t.Header) == 3:
		li, ti, di = 0, 1, 2
		f.Positional = true
	default:
		return nil, fmt.Errorf("%w: expected 3 columns (%s, %s, %s), found columns %q",
			ErrUnexpectedFormat, ColumnLabel, ColumnTitle, ColumnDescription, t.Header)
	}
	f.Rows = make([]Row, len(t.Rows))
	for i, rec := range t.Rows {
		f.Rows[i] = Row{Label: rec[li], Title: rec[ti], Description: rec[di]}
	}
	return f, nil
}

// CleanStats counts rows removed by Clean.
type CleanStats struct {
	Input        int
	EmptyText    int
	MissingLabel int
	Kept         int
}

// Clean composes text = trim(title + " " + description), drops rows whose text
// is empty or whose label is missing, and trims labels to string tokens.
func Clean(f *Frame) ([]models.Document, CleanStats, error) {
	stats := CleanStats{Input: len(f.Rows)}
	docs := make([]models.Document, 0, len(f.Rows))
	for _, r := range f.Rows {
		text := models.ComposeText(r.Title, r.Description)
		if text == "" {
			stats.EmptyText++
			continue
		}
		label := strings.TrimSpace(r.Label)
		if label == "" {
			stats.MissingLabel++
			continue
		}
		docs = append(docs, models.Document{
			Label:       models.ClassLabel(label),
			Title:       r.Title,
			Description: r.Description,
			Text:        text,
		})
	}
	stats.Kept = len(docs)
	if len(docs) == 0 {
		return nil, stats, ErrEmptyCorpus
	}
	return docs, stats, nil
}

// Distribution counts documents per label, most frequent first, ties by label.
func Distribution(docs []models.Document) []models.LabelCount {
	counts := map[models.ClassLabel]int{}
	for _, d := range docs {
		counts[d.Label]++
	}
	out := make([]models.LabelCount, 0, len(counts))
	for label, n := range counts {
		out = append(out, models.LabelCount{Label: label, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Label < out[j].Label
	})
	return out
}

// MinCount returns the size of the rarest class, 0 for no documents.
func MinCount(dist []models.LabelCount) int {
	if len(dist) == 0 {
		return 0
	}
	lowest := dist[0].Count
	for _, lc := range dist[1:] {
		if lc.Count < lowest {
			lowest = lc.Count
		}
	}
	return lowest
}

// Read runs Load, Normalize, and Clean on path.
func Read(path string) ([]models.Document, *Table, CleanStats, error) {
	t, err := Load(path)
	if err != nil {
		return nil, nil, CleanStats{}, err
	}
	f, err := Normalize(t)
	if err != nil {
		return nil, t, CleanStats{}, err
	}
	docs, stats, err := Clean(f)
	if err != nil {
		return nil, t, stats, err
	}
	return docs, t, stats, nil
}
