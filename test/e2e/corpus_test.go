package e2e

import (
	"reflect"
	"testing"
)

func TestBuildCorpus(t *testing.T) {
	items := BuildCorpus(25)
	if len(items) != 100 {
		t.Fatalf("got %d items, want 100", len(items))
	}
	counts := map[string]int{}
	for _, it := range items {
		counts[it.ClassID]++
		if it.Title == "" || it.Description == "" {
			t.Errorf("empty field in %+v", it)
		}
	}
	for _, id := range ClassIDs {
		if counts[id] != 25 {
			t.Errorf("class %s: got %d rows, want 25", id, counts[id])
		}
	}
	if !reflect.DeepEqual(items, BuildCorpus(25)) {
		t.Error("BuildCorpus is not deterministic")
	}
}

func TestProbeCases(t *testing.T) {
	seen := map[int]bool{}
	for _, pc := range ProbeCases() {
		seen[pc.ExpectedClass] = true
	}
	if len(seen) != len(ClassIDs) {
		t.Errorf("probe cases cover %d classes, want %d", len(seen), len(ClassIDs))
	}
}
