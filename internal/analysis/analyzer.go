// Package analysis turns raw text into the token stream the feature extractor counts.
package analysis

import (
	"fmt"
	"unicode/utf8"

	bleveanalysis "github.com/blevesearch/bleve/v2/analysis"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	"github.com/blevesearch/bleve/v2/analysis/token/stop"
	"github.com/blevesearch/bleve/v2/analysis/tokenizer/unicode"
)

// MinTokenLength is the shortest token kept; single characters carry no signal.
const MinTokenLength = 2

// Analyzer splits text into lower-cased words (Unicode word boundaries) and drops
// English stop words and tokens shorter than MinTokenLength. It holds no mutable
// state and is safe for concurrent use.
type Analyzer struct {
	tokenizer bleveanalysis.Tokenizer
	filters   []bleveanalysis.TokenFilter
}

// NewEnglishAnalyzer returns an Analyzer using bleve's English stop-word list.
func NewEnglishAnalyzer() (*Analyzer, error) {
	stops := bleveanalysis.NewTokenMap()
	if err := stops.LoadBytes(en.EnglishStopWords); err != nil {
		return nil, fmt.Errorf("load english stop words: %w", err)
	}
	return &Analyzer{
		tokenizer: unicode.NewUnicodeTokenizer(),
		filters: []bleveanalysis.TokenFilter{
			lowercase.NewLowerCaseFilter(),
			stop.NewStopTokensFilter(stops),
		},
	}, nil
}

// MustEnglishAnalyzer is NewEnglishAnalyzer for package-level setup; it panics on error.
func MustEnglishAnalyzer() *Analyzer {
	a, err := NewEnglishAnalyzer()
	if err != nil {
		panic(err)
	}
	return a
}

// Tokens returns the analyzed tokens of text in order of appearance.
func (a *Analyzer) Tokens(text string) []string {
	if text == "" {
		return nil
	}
	stream := a.tokenizer.Tokenize([]byte(text))
	for _, f := range a.filters {
		stream = f.Filter(stream)
	}
	out := make([]string, 0, len(stream))
	for _, tok := range stream {
		if utf8.RuneCount(tok.Term) < MinTokenLength {
			continue
		}
		out = append(out, string(tok.Term))
	}
	return out
}

// Counts returns how many times each analyzed token occurs in text.
func (a *Analyzer) Counts(text string) map[string]int {
	tokens := a.Tokens(text)
	counts := make(map[string]int, len(tokens))
	for _, t := range tokens {
		counts[t]++
	}
	return counts
}
