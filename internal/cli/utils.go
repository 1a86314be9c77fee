// Package cli provides output and argument helpers for the bunrui commands.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/hyperjump/bunrui/internal/models"
	"github.com/hyperjump/bunrui/pkg/utils"
)

// OutputFormat is the format for command output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// ParseOutputFormat validates a -output flag value.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch OutputFormat(s) {
	case OutputText, OutputJSON:
		return OutputFormat(s), nil
	default:
		return "", fmt.Errorf("unknown output format %q; use text or json", s)
	}
}

// PredictionView is a prediction as printed by the predict command. Its JSON
// form matches the /predict response, plus the class probabilities when known.
type PredictionView struct {
	Text           string             `json:"-"`
	PredictedClass interface{}        `json:"predicted_class"`
	Category       string             `json:"category"`
	Probabilities  map[string]float64 `json:"probabilities,omitempty"`
}

// NewPredictionView converts a local prediction.
func NewPredictionView(text string, p *models.Prediction) PredictionView {
	resp := p.Response()
	view := PredictionView{
		Text:           text,
		PredictedClass: resp.PredictedClass,
		Category:       resp.Category,
	}
	if len(p.Probabilities) > 0 {
		view.Probabilities = make(map[string]float64, len(p.Probabilities))
		for label, pr := range p.Probabilities {
			view.Probabilities[string(label)] = pr
		}
	}
	return view
}

// WritePrediction writes a prediction to w in the given format.
func WritePrediction(w io.Writer, view PredictionView, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, view)
	}
	if view.Text != "" {
		fmt.Fprintf(w, "Text:      %s\n", TruncateWords(view.Text, 20))
	}
	fmt.Fprintf(w, "Class:     %v\n", view.PredictedClass)
	fmt.Fprintf(w, "Category:  %s\n", view.Category)
	if len(view.Probabilities) == 0 {
		return nil
	}
	labels := make([]string, 0, len(view.Probabilities))
	for label := range view.Probabilities {
		labels = append(labels, label)
	}
	sort.Slice(labels, func(i, j int) bool {
		pi, pj := view.Probabilities[labels[i]], view.Probabilities[labels[j]]
		if pi != pj {
			return pi > pj
		}
		return labels[i] < labels[j]
	})
	fmt.Fprintln(w, "Probabilities:")
	for _, label := range labels {
		fmt.Fprintf(w, "  %-8s %.4f\n", label, view.Probabilities[label])
	}
	return nil
}

// WriteRuns writes training run history, newest first, to w in the given format.
func WriteRuns(w io.Writer, runs []*models.TrainingRun, total int64, format OutputFormat) error {
	if format == OutputJSON {
		if runs == nil {
			runs = []*models.TrainingRun{}
		}
		return writeJSON(w, map[string]interface{}{"total": total, "runs": runs})
	}
	if len(runs) == 0 {
		fmt.Fprintln(w, "No training runs recorded.")
		return nil
	}
	fmt.Fprintf(w, "Showing %d of %d training runs\n\n", len(runs), total)
	fmt.Fprintf(w, "%-36s  %-19s  %8s  %8s  %6s  %s\n", "ID", "CREATED", "ROWS", "ACCURACY", "STRAT", "DATASET")
	for _, run := range runs {
		fmt.Fprintf(w, "%-36s  %-19s  %8s  %8.4f  %6t  %s\n",
			run.ID,
			run.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			utils.Count(run.Rows),
			run.Accuracy,
			run.Stratified,
			utils.Truncate(run.DatasetPath, 60),
		)
	}
	return nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// TruncateWords returns up to maxWords from the space-separated string.
func TruncateWords(s string, maxWords int) string {
	words := strings.Fields(s)
	if len(words) <= maxWords {
		return s
	}
	return strings.Join(words[:maxWords], " ") + "..."
}

// JoinArgs joins positional args with spaces so multi-word input works the
// same with or without shell quoting.
func JoinArgs(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// ReorderArgs moves any flags (and their values) that appear after the
// positional arguments to the front so that flag.Parse sees them. The flag
// package stops at the first non-flag argument, so `bunrui predict "some text"
// -output json` would otherwise leave -output unparsed.
func ReorderArgs(args []string) []string {
	for i, a := range args {
		if len(a) > 0 && a[0] == '-' {
			if i == 0 {
				return args
			}
			reordered := make([]string, 0, len(args))
			reordered = append(reordered, args[i:]...)
			reordered = append(reordered, args[:i]...)
			return reordered
		}
	}
	return args
}
