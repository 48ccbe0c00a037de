package harness

import (
	"fmt"

	"epqref/internal/request"
)

// Dim is one parametrization dimension: an argument key and every value a
// test will run with.
type Dim struct {
	Key    string
	Values []string
}

// Ints renders integer parameter values for a dimension.
func Ints(values ...int) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = fmt.Sprintf("%d", v)
	}
	return out
}

// IntRange renders the half-open range [lo, hi) as parameter values.
func IntRange(lo, hi int) []string {
	if hi <= lo {
		return nil
	}
	out := make([]string, 0, hi-lo)
	for v := lo; v < hi; v++ {
		out = append(out, fmt.Sprintf("%d", v))
	}
	return out
}

// Product expands parametrization dimensions into their cartesian product,
// one argument combination per test invocation. A test parametrized over
// Z and trans declares Product(Dim{"Z", ...}, Dim{"trans", ...}).
func Product(dims ...Dim) [][]request.Pair {
	if len(dims) == 0 {
		return nil
	}
	combos := [][]request.Pair{{}}
	for _, dim := range dims {
		next := make([][]request.Pair, 0, len(combos)*len(dim.Values))
		for _, combo := range combos {
			for _, value := range dim.Values {
				expanded := make([]request.Pair, len(combo), len(combo)+1)
				copy(expanded, combo)
				expanded = append(expanded, request.Pair{Key: dim.Key, Value: value})
				next = append(next, expanded)
			}
		}
		combos = next
	}
	return combos
}
