// Package e2e provides end-to-end tests over a generated four-topic news corpus.
package e2e

import (
	"fmt"
)

// NewsItem is one corpus row.
type NewsItem struct {
	ClassID     string
	Title       string
	Description string
}

// ProbeCase is a text the trained model must put in ExpectedClass.
type ProbeCase struct {
	Text             string
	ExpectedClass    int
	ExpectedCategory string
}

// topicWords are disjoint per class so a model trained on the corpus separates them cleanly.
var topicWords = map[string][]string{
	"1": {"president", "election", "minister", "parliament", "embassy", "treaty", "summit", "ceasefire", "diplomats", "refugees"},
	"2": {"striker", "goal", "coach", "league", "match", "tournament", "stadium", "championship", "playoff", "quarterback"},
	"3": {"stocks", "markets", "earnings", "shares", "investors", "profit", "merger", "inflation", "dividend", "quarterly"},
	"4": {"software", "chip", "internet", "processor", "researchers", "computer", "robot", "browser", "spacecraft", "genome"},
}

var fillers = []string{"today", "reported", "new", "week", "officials", "according", "latest", "plans"}

// ClassIDs lists the corpus labels in order.
var ClassIDs = []string{"1", "2", "3", "4"}

// BuildCorpus returns perClass rows for each of the four classes, interleaved by class.
// Output is deterministic.
func BuildCorpus(perClass int) []NewsItem {
	items := make([]NewsItem, 0, perClass*len(ClassIDs))
	for i := 0; i < perClass; i++ {
		for _, id := range ClassIDs {
			words := topicWords[id]
			n := len(words)
			items = append(items, NewsItem{
				ClassID:     id,
				Title:       fmt.Sprintf("%s %s %s", capitalize(words[i%n]), words[(i+3)%n], fillers[i%len(fillers)]),
				Description: fmt.Sprintf("The %s and %s %s %s.", words[(i+1)%n], words[(i+5)%n], fillers[(i+3)%len(fillers)], words[(i+7)%n]),
			})
		}
	}
	return items
}

// ProbeCases returns one clearly on-topic text per class.
func ProbeCases() []ProbeCase {
	return []ProbeCase{
		{"President opens summit as ministers sign treaty", 1, "World"},
		{"Striker scores late goal to win championship match", 2, "Sports"},
		{"stocks rally as markets surge", 3, "Business"},
		{"New processor chip lets computer run robot software", 4, "Sci/Tech"},
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}
