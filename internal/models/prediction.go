package models

import "strconv"

// Prediction is the outcome of classifying one text.
type Prediction struct {
	Label    ClassLabel
	Category string
	// Probabilities holds the posterior of every class, keyed by label.
	Probabilities map[ClassLabel]float64
}

// PredictResponse is the wire form of a Prediction.
type PredictResponse struct {
	// PredictedClass is an int when the label parses as an integer, else the label string.
	PredictedClass interface{} `json:"predicted_class"`
	Category       string      `json:"category"`
}

// Response converts p to its wire form.
func (p *Prediction) Response() PredictResponse {
	return PredictResponse{
		PredictedClass: PresentLabel(p.Label),
		Category:       p.Category,
	}
}

// PresentLabel returns the label as an int when it parses as one, otherwise as
// its string token. This only affects presentation; labels stay strings internally.
func PresentLabel(label ClassLabel) interface{} {
	if n, err := strconv.Atoi(string(label)); err == nil {
		return n
	}
	return string(label)
}
