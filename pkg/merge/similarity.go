package merge

import (
	"github.com/agentstation/marcmerge/pkg/normalize"
	"github.com/agentstation/marcmerge/pkg/record"
	"github.com/agentstation/marcmerge/pkg/subfields"
)

// SimilarityOptions tune FieldsSimilar.
type SimilarityOptions struct {
	// CompareWithout lists subfield codes ignored on both sides.
	CompareWithout []string
	// CompareWithoutIndicators skips the indicator check.
	CompareWithoutIndicators bool
	// MustBeIdentical requires both sides to hold the same subfields.
	// Otherwise one side may be a subset of the other.
	MustBeIdentical bool
}

func (o Options) similarity() SimilarityOptions {
	return SimilarityOptions{
		CompareWithout:           o.CompareWithout,
		CompareWithoutIndicators: o.CompareWithoutIndicators,
		MustBeIdentical:          o.MustBeIdentical,
	}
}

// FieldsSimilar reports whether two fields describe the same thing after
// normalization. Neither field is modified.
func FieldsSimilar(a, b *record.Field, opts SimilarityOptions) bool {
	if a == nil || b == nil || a.Tag != b.Tag {
		return false
	}
	if a.IsControl() || b.IsControl() {
		if a.IsControl() != b.IsControl() {
			return false
		}
		return normalize.String(a.Value) == normalize.String(b.Value)
	}
	if !opts.CompareWithoutIndicators && (a.Ind1 != b.Ind1 || a.Ind2 != b.Ind2) {
		return false
	}

	na, nb := stripped(a, opts.CompareWithout), stripped(b, opts.CompareWithout)
	if len(na.Subfields) == 0 || len(nb.Subfields) == 0 {
		return false
	}
	onlyA := subfields.Difference(na.Subfields, nb.Subfields, subfields.Equal)
	onlyB := subfields.Difference(nb.Subfields, na.Subfields, subfields.Equal)
	if opts.MustBeIdentical {
		return len(onlyA) == 0 && len(onlyB) == 0
	}
	return len(onlyA) == 0 || len(onlyB) == 0
}

// stripped returns a normalized copy of f without the excluded codes.
func stripped(f *record.Field, without []string) *record.Field {
	n := normalize.Field(f)
	n.RemoveCodes(without...)
	return n
}

// findSimilar returns the first candidate similar to field, preferring an
// identical match over a subset match.
func findSimilar(candidates []*record.Field, field *record.Field, opts SimilarityOptions) *record.Field {
	strict := opts
	strict.MustBeIdentical = true
	for _, c := range candidates {
		if FieldsSimilar(c, field, strict) {
			return c
		}
	}
	if opts.MustBeIdentical {
		return nil
	}
	for _, c := range candidates {
		if FieldsSimilar(c, field, opts) {
			return c
		}
	}
	return nil
}
