// Package subfields implements set operations over ordered subfield lists.
// Lists are treated as multisets by Difference and Identical; order only
// matters for Pairs and for the output of Combine and Pick.
package subfields

import (
	"slices"
	"strings"

	"github.com/agentstation/marcmerge/pkg/errors"
	"github.com/agentstation/marcmerge/pkg/record"
)

// EqualFunc reports whether two elements are considered equal.
type EqualFunc[T any] func(a, b T) bool

// Equal is exact code and value equality.
func Equal(a, b record.Subfield) bool {
	return a.Code == b.Code && a.Value == b.Value
}

// SameCode matches subfields by code only.
func SameCode(a, b record.Subfield) bool {
	return a.Code == b.Code
}

// Difference returns the elements of a that match no element of b.
// A nil eq falls back to ==, which for pointers is identity.
func Difference[T comparable](a, b []T, eq EqualFunc[T]) []T {
	eq = orIdentity(eq)
	var out []T
	for _, x := range a {
		if !slices.ContainsFunc(b, func(y T) bool { return eq(x, y) }) {
			out = append(out, x)
		}
	}
	return out
}

// Identical reports whether neither list has an element missing from the other.
func Identical[T comparable](a, b []T, eq EqualFunc[T]) bool {
	return len(Difference(a, b, eq)) == 0 && len(Difference(b, a, eq)) == 0
}

// Pair couples an element of the first list with one of the second.
type Pair[T any] struct {
	A T
	B T
}

// Pairs matches each element of b with the first not yet paired element of
// a that satisfies eq. Elements of b with no partner are left out. The
// lists must have equal length.
func Pairs[T comparable](a, b []T, eq EqualFunc[T]) ([]Pair[T], error) {
	if len(a) != len(b) {
		return nil, errors.ErrSubfieldCountMismatch
	}
	eq = orIdentity(eq)

	used := make([]bool, len(a))
	pairs := make([]Pair[T], 0, len(b))
	for _, y := range b {
		for i, x := range a {
			if used[i] || !eq(x, y) {
				continue
			}
			used[i] = true
			pairs = append(pairs, Pair[T]{A: x, B: y})
			break
		}
	}
	return pairs, nil
}

// Combine merges every subfield with the given code into one subfield at the
// position of the first occurrence. The combined value is "[v1, v2, ...]".
// Fields with fewer than two such subfields are left alone.
func Combine(code string, f *record.Field) {
	var values []string
	first := -1
	for i, sf := range f.Subfields {
		if sf.Code == code {
			if first < 0 {
				first = i
			}
			values = append(values, sf.Value)
		}
	}
	if len(values) < 2 {
		return
	}

	combined := record.Subfield{Code: code, Value: "[" + strings.Join(values, ", ") + "]"}
	out := make([]record.Subfield, 0, len(f.Subfields)-len(values)+1)
	for i, sf := range f.Subfields {
		switch {
		case i == first:
			out = append(out, combined)
		case sf.Code == code:
			// folded into combined
		default:
			out = append(out, sf)
		}
	}
	f.Subfields = out
}

// Pick appends copies of the subfields of from whose code is listed. With
// missingOnly, codes already present in to before picking are skipped;
// presence is checked once up front, so every repeat of a missing code in
// from is appended. It returns the number of subfields appended.
func Pick(to, from *record.Field, codes []string, missingOnly bool) int {
	if to.IsControl() || len(codes) == 0 {
		return 0
	}
	present := make(map[string]bool)
	if missingOnly {
		for _, sf := range to.Subfields {
			present[sf.Code] = true
		}
	}

	picked := 0
	for _, sf := range from.Subfields {
		if !slices.Contains(codes, sf.Code) || present[sf.Code] {
			continue
		}
		to.Subfields = append(to.Subfields, sf)
		picked++
	}
	return picked
}

func orIdentity[T comparable](eq EqualFunc[T]) EqualFunc[T] {
	if eq != nil {
		return eq
	}
	return func(a, b T) bool { return a == b }
}
