package training

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hyperjump/bunrui/internal/models"
)

// Averages holds aggregated precision, recall, and F1.
type Averages struct {
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	Support   int     `json:"support"`
}

// Report is the evaluation of predictions against true labels.
type Report struct {
	Accuracy    float64               `json:"accuracy"`
	Classes     []models.ClassMetrics `json:"classes"`
	MacroAvg    Averages              `json:"macro_avg"`
	WeightedAvg Averages              `json:"weighted_avg"`
	Support     int                   `json:"support"`
}

// Evaluate scores yPred against yTrue. Classes are every label present in
// either slice, in ascending order. Undefined ratios (no predictions or no true
// examples of a class) count as 0.
func Evaluate(yTrue, yPred []models.ClassLabel) (*Report, error) {
	if len(yTrue) != len(yPred) {
		return nil, fmt.Errorf("evaluate: %d true labels but %d predictions", len(yTrue), len(yPred))
	}
	if len(yTrue) == 0 {
		return nil, fmt.Errorf("evaluate: no examples")
	}

	type tally struct{ tp, fp, fn int }
	tallies := map[models.ClassLabel]*tally{}
	get := func(l models.ClassLabel) *tally {
		t, ok := tallies[l]
		if !ok {
			t = &tally{}
			tallies[l] = t
		}
		return t
	}
	correct := 0
	for i := range yTrue {
		if yTrue[i] == yPred[i] {
			correct++
			get(yTrue[i]).tp++
			continue
		}
		get(yTrue[i]).fn++
		get(yPred[i]).fp++
	}

	labels := make([]models.ClassLabel, 0, len(tallies))
	for l := range tallies {
		labels = append(labels, l)
	}
	sort.Slice(labels, func(i, j int) bool { return labels[i] < labels[j] })

	r := &Report{
		Accuracy: float64(correct) / float64(len(yTrue)),
		Support:  len(yTrue),
	}
	for _, l := range labels {
		t := tallies[l]
		m := models.ClassMetrics{
			Label:     l,
			Precision: ratio(t.tp, t.tp+t.fp),
			Recall:    ratio(t.tp, t.tp+t.fn),
			Support:   t.tp + t.fn,
		}
		if m.Precision+m.Recall > 0 {
			m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
		}
		r.Classes = append(r.Classes, m)

		r.MacroAvg.Precision += m.Precision
		r.MacroAvg.Recall += m.Recall
		r.MacroAvg.F1 += m.F1
		w := float64(m.Support)
		r.WeightedAvg.Precision += w * m.Precision
		r.WeightedAvg.Recall += w * m.Recall
		r.WeightedAvg.F1 += w * m.F1
	}
	k := float64(len(r.Classes))
	r.MacroAvg.Precision /= k
	r.MacroAvg.Recall /= k
	r.MacroAvg.F1 /= k
	r.MacroAvg.Support = r.Support
	total := float64(r.Support)
	r.WeightedAvg.Precision /= total
	r.WeightedAvg.Recall /= total
	r.WeightedAvg.F1 /= total
	r.WeightedAvg.Support = r.Support
	return r, nil
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}

// String renders the per-class table followed by accuracy and averages.
func (r *Report) String() string {
	width := len("weighted avg")
	for _, c := range r.Classes {
		if len(c.Label) > width {
			width = len(c.Label)
		}
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%*s %9s %9s %9s %9s\n\n", width, "", "precision", "recall", "f1-score", "support")
	for _, c := range r.Classes {
		fmt.Fprintf(&b, "%*s %9.2f %9.2f %9.2f %9d\n", width, c.Label, c.Precision, c.Recall, c.F1, c.Support)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "%*s %9s %9s %9.2f %9d\n", width, "accuracy", "", "", r.Accuracy, r.Support)
	fmt.Fprintf(&b, "%*s %9.2f %9.2f %9.2f %9d\n", width, "macro avg",
		r.MacroAvg.Precision, r.MacroAvg.Recall, r.MacroAvg.F1, r.MacroAvg.Support)
	fmt.Fprintf(&b, "%*s %9.2f %9.2f %9.2f %9d\n", width, "weighted avg",
		r.WeightedAvg.Precision, r.WeightedAvg.Recall, r.WeightedAvg.F1, r.WeightedAvg.Support)
	return b.String()
}
