// Package training fits, evaluates, and persists the text classifier.
package training

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/hyperjump/bunrui/internal/models"
)

// ErrTooFewRows is returned when the corpus cannot be split into non-empty
// training and evaluation subsets.
var ErrTooFewRows = errors.New("not enough rows to split into training and evaluation sets")

// SplitOptions configures TrainTestSplit.
type SplitOptions struct {
	TestSize float64
	Seed     int64
	Stratify bool
}

// Split is the result of TrainTestSplit.
type Split struct {
	Train []models.Document
	Test  []models.Document
	// Stratified is false when stratification was not requested or had to be abandoned.
	Stratified bool
	// FallbackReason explains why a requested stratified split was not possible.
	FallbackReason string
}

// TestCount returns the evaluation subset size for n rows: ceil(testSize*n).
func TestCount(n int, testSize float64) int {
	// The epsilon keeps products like 0.2*5 from rounding up past an integer.
	return int(math.Ceil(testSize*float64(n) - 1e-9))
}

// TrainTestSplit partitions docs using a seeded generator, so identical input
// and options always give the identical split. With Stratify each label's
// share of the evaluation set matches its share of the corpus, and every label
// keeps at least one training example.
func TrainTestSplit(docs []models.Document, opts SplitOptions) (*Split, error) {
	n := len(docs)
	nTest := TestCount(n, opts.TestSize)
	if nTest < 1 || n-nTest < 1 {
		return nil, fmt.Errorf("%w: %d rows with test size %.2f", ErrTooFewRows, n, opts.TestSize)
	}
	rng := rand.New(rand.NewSource(opts.Seed))

	if opts.Stratify {
		groups := groupByLabel(docs)
		switch {
		case nTest < len(groups):
			return plainSplit(docs, nTest, rng, fmt.Sprintf(
				"evaluation set of %d rows is smaller than the %d classes", nTest, len(groups))), nil
		case n-nTest < len(groups):
			return plainSplit(docs, nTest, rng, fmt.Sprintf(
				"training set of %d rows is smaller than the %d classes", n-nTest, len(groups))), nil
		}
		return stratifiedSplit(docs, groups, nTest, rng), nil
	}
	return plainSplit(docs, nTest, rng, ""), nil
}

func plainSplit(docs []models.Document, nTest int, rng *rand.Rand, fallback string) *Split {
	perm := rng.Perm(len(docs))
	s := &Split{
		Test:           make([]models.Document, 0, nTest),
		Train:          make([]models.Document, 0, len(docs)-nTest),
		FallbackReason: fallback,
	}
	for i, idx := range perm {
		if i < nTest {
			s.Test = append(s.Test, docs[idx])
		} else {
			s.Train = append(s.Train, docs[idx])
		}
	}
	return s
}

type labelGroup struct {
	label   models.ClassLabel
	indices []int
}

func groupByLabel(docs []models.Document) []*labelGroup {
	byLabel := map[models.ClassLabel]*labelGroup{}
	var groups []*labelGroup
	for i, d := range docs {
		g, ok := byLabel[d.Label]
		if !ok {
			g = &labelGroup{label: d.Label}
			byLabel[d.Label] = g
			groups = append(groups, g)
		}
		g.indices = append(g.indices, i)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].label < groups[j].label })
	return groups
}

// allocate distributes nTest evaluation slots over groups proportionally to
// their size (largest remainder), never taking a group's last example.
func allocate(groups []*labelGroup, n, nTest int) []int {
	alloc := make([]int, len(groups))
	type rem struct {
		group int
		frac  float64
	}
	rems := make([]rem, len(groups))
	assigned := 0
	for i, g := range groups {
		exact := float64(len(g.indices)) * float64(nTest) / float64(n)
		alloc[i] = int(math.Floor(exact))
		if limit := len(g.indices) - 1; alloc[i] > limit {
			alloc[i] = limit
		}
		assigned += alloc[i]
		rems[i] = rem{group: i, frac: exact - math.Floor(exact)}
	}
	sort.SliceStable(rems, func(i, j int) bool { return rems[i].frac > rems[j].frac })
	for assigned < nTest {
		progressed := false
		for _, r := range rems {
			if assigned == nTest {
				break
			}
			if alloc[r.group] < len(groups[r.group].indices)-1 {
				alloc[r.group]++
				assigned++
				progressed = true
			}
		}
		if !progressed {
			break
		}
	}
	return alloc
}

func stratifiedSplit(docs []models.Document, groups []*labelGroup, nTest int, rng *rand.Rand) *Split {
	alloc := allocate(groups, len(docs), nTest)
	s := &Split{Stratified: true}
	for i, g := range groups {
		idx := append([]int(nil), g.indices...)
		rng.Shuffle(len(idx), func(a, b int) { idx[a], idx[b] = idx[b], idx[a] })
		for k, di := range idx {
			if k < alloc[i] {
				s.Test = append(s.Test, docs[di])
			} else {
				s.Train = append(s.Train, docs[di])
			}
		}
	}
	rng.Shuffle(len(s.Test), func(a, b int) { s.Test[a], s.Test[b] = s.Test[b], s.Test[a] })
	rng.Shuffle(len(s.Train), func(a, b int) { s.Train[a], s.Train[b] = s.Train[b], s.Train[a] })
	return s
}
