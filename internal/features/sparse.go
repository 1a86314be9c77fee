// Package features converts text into TF-IDF weighted sparse vectors.
package features

import "fmt"

// SparseVector is a fixed-dimension vector storing only its non-zero entries.
// Indices are strictly ascending.
type SparseVector struct {
	Dim     int
	Indices []int
	Values  []float64
}

// at returns the value at index i.
func (v SparseVector) at(i int) float64 {
	lo, hi := 0, len(v.Indices)
	for lo < hi {
		mid := (lo + hi) / 2
		switch {
		case v.Indices[mid] == i:
			return v.Values[mid]
		case v.Indices[mid] < i:
			lo = mid + 1
		default:
			hi = mid
		}
	}
	return 0
}

// NNZ returns the number of stored entries.
func (v SparseVector) NNZ() int {
	return len(v.Indices)
}

// dense expands v into a slice of length Dim.
func (v SparseVector) dense() []float64 {
	out := make([]float64, v.Dim)
	for k, i := range v.Indices {
		out[i] = v.Values[k]
	}
	return out
}

// Validate checks the index invariants.
func (v SparseVector) Validate() error {
	if len(v.Indices) != len(v.Values) {
		return fmt.Errorf("sparse vector: %d indices but %d values", len(v.Indices), len(v.Values))
	}
	prev := -1
	for _, i := range v.Indices {
		if i <= prev || i >= v.Dim {
			return fmt.Errorf("sparse vector: index %d out of order or outside dimension %d", i, v.Dim)
		}
		prev = i
	}
	return nil
}
