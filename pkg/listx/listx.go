// Package listx provides the generic slice helpers behind the list
// expression functions. All helpers return fresh slices and leave their
// inputs untouched.
package listx

import (
	"sort"

	"golang.org/x/exp/constraints"
)

// Number covers the numeric types Sum accepts.
type Number interface {
	constraints.Integer | constraints.Float
}

// Map applies fn to every element and collects the results.
func Map[T, U any](in []T, fn func(T) U) []U {
	out := make([]U, len(in))
	for i, v := range in {
		out[i] = fn(v)
	}
	return out
}

// Filter keeps the elements for which keep returns true.
func Filter[T any](in []T, keep func(T) bool) []T {
	out := make([]T, 0, len(in))
	for _, v := range in {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}

// Unique drops duplicates, keeping the first occurrence of each value.
func Unique[T comparable](in []T) []T {
	seen := make(map[T]struct{}, len(in))
	out := make([]T, 0, len(in))
	for _, v := range in {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// Chunk splits in into consecutive slices of at most size elements. A size
// below one yields a single chunk with everything.
func Chunk[T any](in []T, size int) [][]T {
	if len(in) == 0 {
		return nil
	}
	if size < 1 {
		size = len(in)
	}
	out := make([][]T, 0, (len(in)+size-1)/size)
	for start := 0; start < len(in); start += size {
		end := start + size
		if end > len(in) {
			end = len(in)
		}
		chunk := make([]T, end-start)
		copy(chunk, in[start:end])
		out = append(out, chunk)
	}
	return out
}

// Flatten concatenates the inner slices in order.
func Flatten[T any](in [][]T) []T {
	total := 0
	for _, inner := range in {
		total += len(inner)
	}
	out := make([]T, 0, total)
	for _, inner := range in {
		out = append(out, inner...)
	}
	return out
}

// GroupBy buckets elements by the key fn derives. Bucket order within a
// key follows the input order.
func GroupBy[T any, K comparable](in []T, fn func(T) K) map[K][]T {
	out := make(map[K][]T)
	for _, v := range in {
		k := fn(v)
		out[k] = append(out[k], v)
	}
	return out
}

// SortBy returns a copy of in ordered by the key fn derives. The sort is
// stable, so equal keys keep their input order.
func SortBy[T any, K constraints.Ordered](in []T, fn func(T) K) []T {
	out := make([]T, len(in))
	copy(out, in)
	sort.SliceStable(out, func(i, j int) bool {
		return fn(out[i]) < fn(out[j])
	})
	return out
}

// SortByDesc is SortBy with the order reversed.
func SortByDesc[T any, K constraints.Ordered](in []T, fn func(T) K) []T {
	out := make([]T, len(in))
	copy(out, in)
	sort.SliceStable(out, func(i, j int) bool {
		return fn(out[j]) < fn(out[i])
	})
	return out
}

// Pluck extracts the named key from each map, skipping maps where the key
// is absent.
func Pluck[K comparable, V any](in []map[K]V, key K) []V {
	out := make([]V, 0, len(in))
	for _, m := range in {
		if v, ok := m[key]; ok {
			out = append(out, v)
		}
	}
	return out
}

// Sum adds the elements up. An empty slice sums to zero.
func Sum[T Number](in []T) T {
	var total T
	for _, v := range in {
		total += v
	}
	return total
}

// Min returns the smallest element, comma-ok for empty input.
func Min[T constraints.Ordered](in []T) (T, bool) {
	if len(in) == 0 {
		var zero T
		return zero, false
	}
	m := in[0]
	for _, v := range in[1:] {
		if v < m {
			m = v
		}
	}
	return m, true
}

// Max returns the largest element, comma-ok for empty input.
func Max[T constraints.Ordered](in []T) (T, bool) {
	if len(in) == 0 {
		var zero T
		return zero, false
	}
	m := in[0]
	for _, v := range in[1:] {
		if v > m {
			m = v
		}
	}
	return m, true
}

// Avg returns the arithmetic mean, comma-ok for empty input.
func Avg[T Number](in []T) (float64, bool) {
	if len(in) == 0 {
		return 0, false
	}
	var total float64
	for _, v := range in {
		total += float64(v)
	}
	return total / float64(len(in)), true
}

// First returns the first element, comma-ok for empty input.
func First[T any](in []T) (T, bool) {
	if len(in) == 0 {
		var zero T
		return zero, false
	}
	return in[0], true
}

// Last returns the last element, comma-ok for empty input.
func Last[T any](in []T) (T, bool) {
	if len(in) == 0 {
		var zero T
		return zero, false
	}
	return in[len(in)-1], true
}

// Reverse returns the elements in the opposite order.
func Reverse[T any](in []T) []T {
	out := make([]T, len(in))
	for i, v := range in {
		out[len(in)-1-i] = v
	}
	return out
}
