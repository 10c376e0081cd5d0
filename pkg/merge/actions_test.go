package merge_test

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/marcmerge/pkg/errors"
	"github.com/agentstation/marcmerge/pkg/merge"
	"github.com/agentstation/marcmerge/pkg/record"
)

func newMerger(t *testing.T, rules ...merge.Rule) *merge.Merger {
	t.Helper()
	m, err := merge.New(merge.Config{Fields: rules})
	require.NoError(t, err)
	return m
}

func TestControlField(t *testing.T) {
	m := newMerger(t, merge.Rule{Pattern: "00[1-9]", Action: merge.ActionControlField})
	ctx := context.Background()

	t.Run("appends when missing", func(t *testing.T) {
		preferred := record.New("leader", cf("005", "20200101"))
		other := record.New("leader", cf("001", "2"))

		res, err := m.MergeWithDetails(ctx, preferred, other)
		require.NoError(t, err)
		require.Len(t, res.Record.Fields, 2)

		got := res.Record.Fields[1]
		assert.Equal(t, "001", got.Tag)
		assert.Equal(t, "2", got.Value)
		assert.True(t, got.FromOther)
		assert.True(t, got.WasUsed)
		assert.False(t, got.FromPreferred)

		entries := res.Details.Get("001")
		require.Len(t, entries, 1)
		assert.Equal(t, merge.OutcomeInserted, entries[0].Outcome)
		assert.Equal(t, 1, entries[0].Index)
		assert.Equal(t, merge.ActionControlField, entries[0].Action)
	})

	t.Run("keeps existing", func(t *testing.T) {
		preferred := record.New("leader", cf("001", "1"))
		other := record.New("leader", cf("001", "2"))

		merged, err := m.Merge(ctx, preferred, other)
		require.NoError(t, err)
		require.Len(t, merged.Fields, 1)
		assert.Equal(t, "1", merged.Fields[0].Value)
		assert.True(t, merged.Fields[0].FromPreferred)
		assert.False(t, merged.Fields[0].FromOther)
	})
}

func TestCopyInheritsBlankIndicators(t *testing.T) {
	m := newMerger(t, merge.Rule{
		Pattern: "022",
		Action:  merge.ActionCopy,
		Options: merge.Options{CompareWithoutIndicators: true},
	})
	preferred := record.New("leader", cf("001", "1"), df("022", " ", " ", "a", "1234-5678"))
	other := record.New("leader", df("022", "0", " ", "a", "1234-5678", "l", "1234-5678"))

	res, err := m.MergeWithDetails(context.Background(), preferred, other)
	require.NoError(t, err)
	require.Equal(t, []string{"001", "022"}, tags(res.Record))

	got := res.Record.Fields[1]
	assert.Equal(t, "0", got.Ind1)
	assert.Equal(t, " ", got.Ind2)
	assert.Equal(t, []string{"a", "l"}, got.Codes())
	assert.True(t, got.FromOther)
	assert.False(t, got.FromPreferred)
	assert.Equal(t, merge.OutcomeReplaced, res.Details.Get("022")[0].Outcome)
}

func TestCopyIndicatorMismatchInserts(t *testing.T) {
	m := newMerger(t, merge.Rule{Pattern: "022", Action: merge.ActionCopy})
	preferred := record.New("leader", df("022", " ", " ", "a", "1234-5678"), df("245", "1", "0", "a", "Title"))
	other := record.New("leader", df("022", "0", " ", "a", "1234-5678"))

	merged, err := m.Merge(context.Background(), preferred, other)
	require.NoError(t, err)
	assert.Equal(t, []string{"022", "022", "245"}, tags(merged))
	assert.Equal(t, "0", merged.Fields[1].Ind1)
}

func TestCopyKeepsPreferredWhenIdentical(t *testing.T) {
	m := newMerger(t,
		merge.Rule{Pattern: "001", Action: merge.ActionControlField},
		merge.Rule{Pattern: "245", Action: merge.ActionCopy, Options: merge.Options{CompareWithout: []string{"c"}}},
		merge.Rule{Pattern: "500", Action: merge.ActionControlField},
	)
	preferred := record.New("leader",
		cf("001", "1"),
		df("245", "1", "0", "a", "Title", "c", "by X"),
	)
	other := record.New("leader",
		cf("001", "2"),
		df("245", "1", "0", "a", "Title.", "c", "by X"),
		df("500", " ", " ", "a", "Note"),
	)

	merged, err := m.Merge(context.Background(), preferred, other)
	require.NoError(t, err)
	require.Equal(t, []string{"001", "245", "500"}, tags(merged))

	assert.Equal(t, "1", merged.Fields[0].Value)

	title := merged.Fields[1]
	if diff := cmp.Diff(preferred.Fields[1].Subfields, title.Subfields); diff != "" {
		t.Errorf("245 subfields mismatch (-want +got):\n%s", diff)
	}
	assert.True(t, title.FromPreferred)
	assert.True(t, title.WasUsed)
	assert.False(t, title.FromOther)

	note := merged.Fields[2]
	assert.True(t, note.FromOther)
	assert.True(t, note.WasUsed)
	assert.False(t, note.FromPreferred)
}

func TestCopyExcludedSubfieldsWithDifferentValuesAreBothKept(t *testing.T) {
	m := newMerger(t, merge.Rule{
		Pattern: "245",
		Action:  merge.ActionCopy,
		Options: merge.Options{CompareWithout: []string{"c"}},
	})
	preferred := record.New("leader", df("245", "1", "0", "a", "Title", "c", "by X"))
	other := record.New("leader", df("245", "1", "0", "a", "Title", "c", "by Y"))

	merged, err := m.Merge(context.Background(), preferred, other)
	require.NoError(t, err)
	require.Len(t, merged.Fields, 1)

	want := []record.Subfield{
		{Code: "a", Value: "Title"},
		{Code: "c", Value: "by X"},
		{Code: "c", Value: "by Y"},
	}
	if diff := cmp.Diff(want, merged.Fields[0].Subfields); diff != "" {
		t.Errorf("subfields mismatch (-want +got):\n%s", diff)
	}
	assert.True(t, merged.Fields[0].FromPreferred)
	assert.True(t, merged.Fields[0].FromOther)
}

func TestCopyReplacementKeepsPreferredExcludedSubfields(t *testing.T) {
	m := newMerger(t, merge.Rule{
		Pattern: "245",
		Action:  merge.ActionCopy,
		Options: merge.Options{CompareWithout: []string{"c"}},
	})
	preferred := record.New("leader", df("245", "1", "0", "a", "Title", "c", "by X"))
	other := record.New("leader", df("245", "1", "0", "a", "Title", "b", "subtitle"))

	merged, err := m.Merge(context.Background(), preferred, other)
	require.NoError(t, err)
	require.Len(t, merged.Fields, 1)
	assert.Equal(t, []string{"a", "b", "c"}, merged.Fields[0].Codes())
	assert.True(t, merged.Fields[0].FromOther)
}

func TestCopyTransformOnInequality(t *testing.T) {
	m := newMerger(t, merge.Rule{
		Pattern: "020",
		Action:  merge.ActionCopy,
		Options: merge.Options{TransformOnInequality: &merge.Transform{
			Tag:  "776",
			Ind1: "0",
			Ind2: "8",
			Drop: []string{"q"},
			Map:  map[string]string{"a": "z"},
			Add:  []record.Subfield{{Code: "i", Value: "Print version"}},
		}},
	})
	preferred := record.New("leader", cf("001", "1"), df("020", " ", " ", "a", "111"), df("245", "1", "0", "a", "Title"))
	other := record.New("leader", df("020", " ", " ", "a", "222", "q", "pbk"))

	res, err := m.MergeWithDetails(context.Background(), preferred, other)
	require.NoError(t, err)
	require.Equal(t, []string{"001", "020", "245", "776"}, tags(res.Record))

	got := res.Record.Fields[3]
	assert.Equal(t, "0", got.Ind1)
	assert.Equal(t, "8", got.Ind2)
	want := []record.Subfield{{Code: "z", Value: "222"}, {Code: "i", Value: "Print version"}}
	if diff := cmp.Diff(want, got.Subfields); diff != "" {
		t.Errorf("subfields mismatch (-want +got):\n%s", diff)
	}

	entries := res.Details.Get("020")
	require.Len(t, entries, 1)
	assert.Equal(t, merge.OutcomeTransformed, entries[0].Outcome)
	assert.Equal(t, 3, entries[0].Index)
	assert.Equal(t, "776", entries[0].Extra["tag"])
}

func TestCopyCombine(t *testing.T) {
	m := newMerger(t, merge.Rule{
		Pattern: "650",
		Action:  merge.ActionCopy,
		Options: merge.Options{Combine: []string{"x"}},
	})
	preferred := record.New("leader", df("650", " ", "0", "a", "Topic", "x", "A"))
	other := record.New("leader", df("650", " ", "0", "a", "Topic", "x", "A", "x", "B"))

	merged, err := m.Merge(context.Background(), preferred, other)
	require.NoError(t, err)
	require.Len(t, merged.Fields, 1)
	want := []record.Subfield{{Code: "a", Value: "Topic"}, {Code: "x", Value: "[A, B]"}}
	if diff := cmp.Diff(want, merged.Fields[0].Subfields); diff != "" {
		t.Errorf("subfields mismatch (-want +got):\n%s", diff)
	}
}

func TestCopyPickMissingOnlySkipsPresentCodes(t *testing.T) {
	m := newMerger(t, merge.Rule{
		Pattern: "700",
		Action:  merge.ActionCopy,
		Options: merge.Options{
			CompareWithout: []string{"0"},
			Pick:           &merge.PickOptions{Subfields: []string{"e"}, MissingOnly: true},
		},
	})
	preferred := record.New("leader", df("700", "1", " ", "a", "Smith, John", "e", "author"))
	other := record.New("leader", df("700", "1", " ", "a", "Smith, John", "e", "author", "0", "(id)42"))

	merged, err := m.Merge(context.Background(), preferred, other)
	require.NoError(t, err)
	require.Len(t, merged.Fields, 1)
	assert.Equal(t, []string{"a", "e", "0"}, merged.Fields[0].Codes())
}

func TestSelectBetterLongerValueWins(t *testing.T) {
	m := newMerger(t, merge.Rule{
		Pattern: "245",
		Action:  merge.ActionSelectBetter,
		Options: merge.Options{Comparator: merge.ComparatorSubstring},
	})
	ctx := context.Background()

	t.Run("other longer", func(t *testing.T) {
		preferred := record.New("leader", df("245", "1", "0", "a", "Foo"))
		other := record.New("leader", df("245", "1", "0", "a", "Foobar"))

		res, err := m.MergeWithDetails(ctx, preferred, other)
		require.NoError(t, err)
		require.Len(t, res.Record.Fields, 1)
		assert.Equal(t, "Foobar", res.Record.Fields[0].Subfields[0].Value)
		assert.True(t, res.Record.Fields[0].FromOther)
		assert.Equal(t, merge.OutcomeReplaced, res.Details.Get("245")[0].Outcome)
	})

	t.Run("preferred longer", func(t *testing.T) {
		preferred := record.New("leader", df("245", "1", "0", "a", "Foobar"))
		other := record.New("leader", df("245", "1", "0", "a", "Foo"))

		merged, err := m.Merge(ctx, preferred, other)
		require.NoError(t, err)
		if diff := cmp.Diff(preferred.Fields[0].Subfields, merged.Fields[0].Subfields); diff != "" {
			t.Errorf("preferred field changed (-want +got):\n%s", diff)
		}
		assert.False(t, merged.Fields[0].FromOther)
	})

	t.Run("equal length keeps preferred", func(t *testing.T) {
		preferred := record.New("leader", df("245", "1", "0", "a", "Foo"))
		other := record.New("leader", df("245", "1", "0", "a", "foo"))

		merged, err := m.Merge(ctx, preferred, other)
		require.NoError(t, err)
		assert.Equal(t, "Foo", merged.Fields[0].Subfields[0].Value)
	})
}

func TestSelectBetterSubsetIsReplaced(t *testing.T) {
	m := newMerger(t, merge.Rule{Pattern: "100", Action: merge.ActionSelectBetter})
	preferred := record.New("leader", df("100", "1", " ", "a", "Smith, John"))
	other := record.New("leader", df("100", "1", " ", "a", "Smith, John", "d", "1900-1980"))

	merged, err := m.Merge(context.Background(), preferred, other)
	require.NoError(t, err)
	require.Len(t, merged.Fields, 1)
	assert.Equal(t, []string{"a", "d"}, merged.Fields[0].Codes())
}

func TestSelectBetterDivergentKeepsPreferred(t *testing.T) {
	m := newMerger(t, merge.Rule{Pattern: "100", Action: merge.ActionSelectBetter})
	preferred := record.New("leader", df("100", "1", " ", "a", "Smith, John", "e", "author"))
	other := record.New("leader", df("100", "1", " ", "a", "Smith, John", "d", "1900-1980"))

	merged, err := m.Merge(context.Background(), preferred, other)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "e"}, merged.Fields[0].Codes())
}

func TestSelectBetterMultipleFields(t *testing.T) {
	preferred := record.New("leader",
		df("700", "1", " ", "a", "One"),
		df("700", "1", " ", "a", "Two"),
	)
	other := record.New("leader", df("700", "1", " ", "a", "Three"), df("500", " ", " ", "a", "Note"))

	t.Run("fails", func(t *testing.T) {
		m := newMerger(t,
			merge.Rule{Pattern: "700", Action: merge.ActionSelectBetter},
			merge.Rule{Pattern: "500", Action: merge.ActionControlField},
		)
		merged, err := m.Merge(context.Background(), preferred, other)
		require.Error(t, err)
		assert.Nil(t, merged)
		assert.True(t, errors.IsMultipleFields(err))
		assert.Contains(t, err.Error(), "selectBetter cannot be used if there are multiple fields of same tag")

		var actionErr *errors.ActionError
		require.True(t, errors.As(err, &actionErr))
		assert.Equal(t, "700", actionErr.Tag)
		assert.Equal(t, merge.ActionSelectBetter, actionErr.Action)

		var mergeErr *errors.MergeError
		assert.True(t, errors.As(err, &mergeErr))
	})

	t.Run("skipOnMultiple", func(t *testing.T) {
		m := newMerger(t, merge.Rule{
			Pattern: "700",
			Action:  merge.ActionSelectBetter,
			Options: merge.Options{SkipOnMultiple: true},
		})
		res, err := m.MergeWithDetails(context.Background(), preferred, other)
		require.NoError(t, err)
		assert.Equal(t, []string{"700", "700"}, tags(res.Record))
		assert.Equal(t, merge.OutcomeSkipped, res.Details.Get("700")[0].Outcome)
		assert.Nil(t, res.Details.Get("500"))
	})
}

func TestSelectBetterGapFilling(t *testing.T) {
	other := record.New("leader", df("100", "1", " ", "a", "Smith, John", "d", "1900-1980"))

	t.Run("inserts when missing", func(t *testing.T) {
		m := newMerger(t, merge.Rule{Pattern: "100", Action: merge.ActionSelectBetter})
		merged, err := m.Merge(context.Background(), record.New("leader", df("245", "1", "0", "a", "T")), other)
		require.NoError(t, err)
		assert.Equal(t, []string{"100", "245"}, tags(merged))
	})

	t.Run("requireFieldInBoth", func(t *testing.T) {
		m := newMerger(t, merge.Rule{
			Pattern: "100",
			Action:  merge.ActionSelectBetter,
			Options: merge.Options{RequireFieldInBoth: true},
		})
		merged, err := m.Merge(context.Background(), record.New("leader", df("245", "1", "0", "a", "T")), other)
		require.NoError(t, err)
		assert.Equal(t, []string{"245"}, tags(merged))
	})

	t.Run("onlyIfMissing", func(t *testing.T) {
		m := newMerger(t, merge.Rule{
			Pattern: "100",
			Action:  merge.ActionSelectBetter,
			Options: merge.Options{OnlyIfMissing: true},
		})
		preferred := record.New("leader", df("100", "1", " ", "a", "Smith, John"))
		merged, err := m.Merge(context.Background(), preferred, other)
		require.NoError(t, err)
		assert.Equal(t, []string{"a"}, merged.Fields[0].Codes())
	})
}

func TestSelectBetterPickMissingWithPluginComparator(t *testing.T) {
	ignoreLocal := func(a, b record.Subfield) bool {
		return a.Code == "9" || b.Code == "9" || merge.Equality(a, b)
	}
	m, err := merge.New(merge.Config{Fields: []merge.Rule{{
		Pattern: "245",
		Action:  merge.ActionSelectBetter,
		Options: merge.Options{Comparator: "ignoreLocal", PickMissing: []string{"9"}},
	}}}, merge.WithPlugins(merge.Plugin{
		Name:        "local",
		Comparators: map[string]merge.Comparator{"ignoreLocal": ignoreLocal},
	}))
	require.NoError(t, err)

	preferred := record.New("leader", df("245", "1", "0", "a", "Foo", "9", "x"))
	other := record.New("leader", df("245", "1", "0", "a", "Foo", "b", "Barbaz"))

	merged, err := m.Merge(context.Background(), preferred, other)
	require.NoError(t, err)
	want := []record.Subfield{
		{Code: "a", Value: "Foo"},
		{Code: "b", Value: "Barbaz"},
		{Code: "9", Value: "x"},
	}
	if diff := cmp.Diff(want, merged.Fields[0].Subfields); diff != "" {
		t.Errorf("subfields mismatch (-want +got):\n%s", diff)
	}
}

func TestSelectBetterControlFields(t *testing.T) {
	m := newMerger(t, merge.Rule{
		Pattern: "008",
		Action:  merge.ActionSelectBetter,
		Options: merge.Options{Comparator: merge.ComparatorSubstring},
	})
	preferred := record.New("leader", cf("008", "abc"))
	other := record.New("leader", cf("008", "abcdef"))

	merged, err := m.Merge(context.Background(), preferred, other)
	require.NoError(t, err)
	assert.Equal(t, "abcdef", merged.Fields[0].Value)
	assert.True(t, merged.Fields[0].IsControl())
}
