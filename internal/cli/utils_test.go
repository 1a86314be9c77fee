package cli

import (
	"bytes"
	"encoding/json"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/hyperjump/bunrui/internal/models"
)

func samplePrediction() *models.Prediction {
	return &models.Prediction{
		Label:    "3",
		Category: "Business",
		Probabilities: map[models.ClassLabel]float64{
			"1": 0.05, "2": 0.05, "3": 0.8, "4": 0.1,
		},
	}
}

func TestParseOutputFormat(t *testing.T) {
	for _, s := range []string{"text", "json"} {
		if f, err := ParseOutputFormat(s); err != nil || string(f) != s {
			t.Errorf("ParseOutputFormat(%q) = %q, %v", s, f, err)
		}
	}
	if _, err := ParseOutputFormat("compact"); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestWritePrediction_JSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WritePrediction(&buf, NewPredictionView("stocks rally", samplePrediction()), OutputJSON); err != nil {
		t.Fatalf("WritePrediction(json): %v", err)
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, buf.String())
	}
	if decoded["predicted_class"] != float64(3) || decoded["category"] != "Business" {
		t.Errorf("decoded: %v", decoded)
	}
	if _, ok := decoded["text"]; ok {
		t.Error("input text should not be part of the JSON output")
	}
	probs, ok := decoded["probabilities"].(map[string]interface{})
	if !ok || probs["3"] != 0.8 {
		t.Errorf("probabilities: %v", decoded["probabilities"])
	}
}

func TestWritePrediction_JSON_withoutProbabilities(t *testing.T) {
	view := PredictionView{PredictedClass: 2, Category: "Sports"}
	var buf bytes.Buffer
	if err := WritePrediction(&buf, view, OutputJSON); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(buf.String(), "probabilities") {
		t.Errorf("empty probabilities should be omitted: %s", buf.String())
	}
}

func TestWritePrediction_text(t *testing.T) {
	var buf bytes.Buffer
	if err := WritePrediction(&buf, NewPredictionView("stocks rally", samplePrediction()), OutputText); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, sub := range []string{"Text:      stocks rally", "Class:     3", "Category:  Business", "Probabilities:"} {
		if !strings.Contains(out, sub) {
			t.Errorf("text output missing %q:\n%s", sub, out)
		}
	}
	// Highest probability first.
	if strings.Index(out, "0.8000") > strings.Index(out, "0.1000") {
		t.Errorf("probabilities not sorted:\n%s", out)
	}
}

func TestWriteRuns_text(t *testing.T) {
	runs := []*models.TrainingRun{{
		ID:          "run-1",
		CreatedAt:   time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		DatasetPath: "data/test.csv",
		Rows:        7600,
		Accuracy:    0.8912,
		Stratified:  true,
	}}
	var buf bytes.Buffer
	if err := WriteRuns(&buf, runs, 3, OutputText); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, sub := range []string{"Showing 1 of 3", "run-1", "7,600", "0.8912", "data/test.csv"} {
		if !strings.Contains(out, sub) {
			t.Errorf("text output missing %q:\n%s", sub, out)
		}
	}
}

func TestWriteRuns_empty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteRuns(&buf, nil, 0, OutputText); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "No training runs") {
		t.Errorf("got %q", buf.String())
	}

	buf.Reset()
	if err := WriteRuns(&buf, nil, 0, OutputJSON); err != nil {
		t.Fatal(err)
	}
	var decoded struct {
		Total int64                `json:"total"`
		Runs  []models.TrainingRun `json:"runs"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if decoded.Runs == nil || len(decoded.Runs) != 0 {
		t.Errorf("runs should be an empty array: %s", buf.String())
	}
}

func TestTruncateWords(t *testing.T) {
	tests := []struct {
		name     string
		s        string
		maxWords int
		want     string
	}{
		{"empty", "", 3, ""},
		{"few words", "one two", 3, "one two"},
		{"exact", "one two three", 3, "one two three"},
		{"more", "one two three four", 3, "one two three..."},
		{"single long", "word", 1, "word"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TruncateWords(tt.s, tt.maxWords)
			if got != tt.want {
				t.Errorf("TruncateWords(%q, %d) = %q, want %q", tt.s, tt.maxWords, got, tt.want)
			}
		})
	}
}

func TestJoinArgs(t *testing.T) {
	if got := JoinArgs([]string{" stocks", "rally "}); got != "stocks rally" {
		t.Errorf("JoinArgs = %q", got)
	}
}

func TestReorderArgs(t *testing.T) {
	tests := []struct {
		args []string
		want []string
	}{
		{[]string{"-output", "json", "text"}, []string{"-output", "json", "text"}},
		{[]string{"some", "text", "-output", "json"}, []string{"-output", "json", "some", "text"}},
		{[]string{"only", "text"}, []string{"only", "text"}},
		{nil, nil},
	}
	for _, tt := range tests {
		if got := ReorderArgs(tt.args); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("ReorderArgs(%v) = %v, want %v", tt.args, got, tt.want)
		}
	}
}
