package merge

import (
	"slices"

	"github.com/agentstation/marcmerge/pkg/normalize"
	"github.com/agentstation/marcmerge/pkg/record"
	"github.com/agentstation/marcmerge/pkg/subfields"
)

// copyField keeps the richer of two similar fields, or adds the field when
// nothing similar exists.
func copyField(merged *record.Record, field *record.Field, opts Options, env Env) (Detail, error) {
	match := findSimilar(merged.FieldsByTag(field.Tag), field, opts.similarity())
	if match == nil {
		if t := opts.TransformOnInequality; t != nil {
			nf := t.apply(field)
			d := Detail{Outcome: OutcomeTransformed, Index: env.Sorter.Insert(merged, nf)}
			d.Extra = map[string]any{"tag": nf.Tag}
			return d, nil
		}
		return inserted(env.Sorter.Insert(merged, adopt(field))), nil
	}

	idx := merged.IndexOf(match)
	if match.IsControl() {
		return Detail{Outcome: OutcomeKept, Index: idx}, nil
	}

	var (
		winner, loser *record.Field
		detail        Detail
	)
	if strictSuperset(field, match, opts.CompareWithout) {
		winner = adopt(field)
		if opts.CompareWithoutIndicators {
			if isBlank(winner.Ind1) {
				winner.Ind1 = match.Ind1
			}
			if isBlank(winner.Ind2) {
				winner.Ind2 = match.Ind2
			}
		}
		restoreExcluded(winner, match, opts.CompareWithout)
		merged.ReplaceAt(idx, winner)
		loser = match
		detail = Detail{Outcome: OutcomeReplaced, Index: idx}
	} else {
		winner = match
		if restoreExcluded(winner, field, opts.CompareWithout) > 0 {
			winner.FromOther = true
		}
		loser = field
		detail = Detail{Outcome: OutcomeKept, Index: idx}
	}

	for _, code := range opts.Combine {
		subfields.Combine(code, winner)
	}
	if p := opts.Pick; p != nil {
		if subfields.Pick(winner, loser, p.Subfields, p.MissingOnly) > 0 && loser == field {
			winner.FromOther = true
		}
	}
	return detail, nil
}

// strictSuperset reports whether a holds every subfield of b and more,
// ignoring the excluded codes and comparing normalized values.
func strictSuperset(a, b *record.Field, without []string) bool {
	na, nb := stripped(a, without), stripped(b, without)
	return len(subfields.Difference(nb.Subfields, na.Subfields, subfields.Equal)) == 0 &&
		len(subfields.Difference(na.Subfields, nb.Subfields, subfields.Equal)) > 0
}

// restoreExcluded appends to dst the subfields of src carrying excluded codes
// that dst does not already hold with the same value. Differing values are
// all kept, so dst may end up with repeated codes.
func restoreExcluded(dst, src *record.Field, codes []string) int {
	if len(codes) == 0 {
		return 0
	}
	n := 0
	for _, sf := range src.Subfields {
		if !slices.Contains(codes, sf.Code) {
			continue
		}
		if slices.ContainsFunc(dst.Subfields, func(have record.Subfield) bool {
			return have.Code == sf.Code && normalize.String(have.Value) == normalize.String(sf.Value)
		}) {
			continue
		}
		dst.Subfields = append(dst.Subfields, sf)
		n++
	}
	return n
}

// apply builds the field inserted when a copy finds no similar field.
func (t *Transform) apply(field *record.Field) *record.Field {
	nf := adopt(field)
	nf.Tag = t.Tag
	if field.IsControl() {
		return nf
	}
	if t.Ind1 != "" {
		nf.Ind1 = t.Ind1
	}
	if t.Ind2 != "" {
		nf.Ind2 = t.Ind2
	}
	nf.Subfields = make([]record.Subfield, 0, len(field.Subfields)+len(t.Add))
	for _, sf := range field.Subfields {
		if slices.Contains(t.Drop, sf.Code) {
			continue
		}
		if to, ok := t.Map[sf.Code]; ok {
			sf.Code = to
		}
		nf.Subfields = append(nf.Subfields, sf)
	}
	nf.Subfields = append(nf.Subfields, t.Add...)
	return nf
}

func isBlank(ind string) bool {
	return ind == "" || ind == " "
}
