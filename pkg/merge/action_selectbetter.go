package merge

import (
	"unicode/utf8"

	"github.com/agentstation/marcmerge/pkg/errors"
	"github.com/agentstation/marcmerge/pkg/normalize"
	"github.com/agentstation/marcmerge/pkg/record"
	"github.com/agentstation/marcmerge/pkg/subfields"
)

// selectBetter keeps whichever of the preferred and other field carries more
// information. Only one field of the tag may exist in the merged record.
func selectBetter(merged *record.Record, field *record.Field, opts Options, env Env) (Detail, error) {
	existing := merged.FieldsByTag(field.Tag)
	switch {
	case len(existing) > 1:
		if opts.SkipOnMultiple {
			return skipped("multiple fields of tag"), nil
		}
		return Detail{}, errors.ErrMultipleFields
	case len(existing) == 0:
		if opts.RequireFieldInBoth {
			return skipped("field missing from preferred record"), nil
		}
		return inserted(env.Sorter.Insert(merged, adopt(field))), nil
	case opts.OnlyIfMissing:
		return skipped("field already present"), nil
	}

	preferred := existing[0]
	idx := merged.IndexOf(preferred)
	eq := subfields.EqualFunc[record.Subfield](env.Comparator(opts.Comparator))
	a, b := scored(preferred), scored(field)

	replace := false
	switch {
	case subfields.Identical(a, b, eq):
		pairs, err := subfields.Pairs(a, b, eq)
		if err != nil {
			return Detail{}, err
		}
		prefPoints, otherPoints := 0, 0
		for _, p := range pairs {
			la, lb := utf8.RuneCountInString(p.A.Value), utf8.RuneCountInString(p.B.Value)
			switch {
			case la > lb:
				prefPoints++
			case lb > la:
				otherPoints++
			}
		}
		replace = otherPoints > prefPoints
	case len(subfields.Difference(a, b, eq)) == 0:
		replace = true
	}

	if !replace {
		return Detail{Outcome: OutcomeKept, Index: idx}, nil
	}

	winner := adopt(field)
	merged.ReplaceAt(idx, winner)
	if p := opts.Pick; p != nil {
		subfields.Pick(winner, preferred, p.Subfields, p.MissingOnly)
	}
	if len(opts.PickMissing) > 0 {
		subfields.Pick(winner, preferred, opts.PickMissing, true)
	}
	return Detail{Outcome: OutcomeReplaced, Index: idx}, nil
}

// scored returns the normalized subfields used for comparison. A control
// field is treated as a single subfield holding its value.
func scored(f *record.Field) []record.Subfield {
	n := normalize.Field(f)
	if n.IsControl() {
		return []record.Subfield{{Value: n.Value}}
	}
	return n.Subfields
}
