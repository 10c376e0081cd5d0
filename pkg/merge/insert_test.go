package merge_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/marcmerge/pkg/errors"
	"github.com/agentstation/marcmerge/pkg/merge"
	"github.com/agentstation/marcmerge/pkg/record"
)

func sample() *record.Record {
	return record.New("leader",
		cf("001", "1"),
		df("100", "1", " ", "a", "Author"),
		df("245", "1", "0", "a", "First"),
		df("245", "1", "0", "a", "Second"),
		df("500", " ", " ", "a", "Note"),
	)
}

func TestInsertField(t *testing.T) {
	tests := []struct {
		name     string
		sort     merge.SortConfig
		base     *record.Record
		field    *record.Field
		wantIdx  int
		wantTags []string
	}{
		{
			name:     "after same-tag run",
			base:     sample(),
			field:    df("245", "1", "0", "a", "Third"),
			wantIdx:  4,
			wantTags: []string{"001", "100", "245", "245", "245", "500"},
		},
		{
			name:     "before same-tag run",
			sort:     merge.SortConfig{Insert: merge.InsertBefore},
			base:     sample(),
			field:    df("245", "1", "0", "a", "Third"),
			wantIdx:  2,
			wantTags: []string{"001", "100", "245", "245", "245", "500"},
		},
		{
			name:     "numeric order",
			base:     sample(),
			field:    df("300", " ", " ", "a", "200 p."),
			wantIdx:  4,
			wantTags: []string{"001", "100", "245", "245", "300", "500"},
		},
		{
			name:     "greater than all",
			base:     sample(),
			field:    df("650", " ", "0", "a", "Topic"),
			wantIdx:  5,
			wantTags: []string{"001", "100", "245", "245", "500", "650"},
		},
		{
			name:     "keyless tag appended",
			base:     sample(),
			field:    df("CAT", " ", " ", "a", "x"),
			wantIdx:  5,
			wantTags: []string{"001", "100", "245", "245", "500", "CAT"},
		},
		{
			name:     "alphanumeric tag sorts by leading digits",
			base:     sample(),
			field:    df("24A", " ", " ", "a", "x"),
			wantIdx:  1,
			wantTags: []string{"001", "24A", "100", "245", "245", "500"},
		},
		{
			name:     "ranked pseudo-tag",
			sort:     merge.SortConfig{Indexes: []merge.SortIndex{{Pattern: "SID", Rank: 1000}, {Pattern: "LOW", Rank: 999}}},
			base:     record.New("leader", cf("001", "1"), df("245", "1", "0", "a", "T"), df("SID", " ", " ", "a", "x")),
			field:    df("LOW", " ", " ", "a", "ORG"),
			wantIdx:  2,
			wantTags: []string{"001", "245", "LOW", "SID"},
		},
		{
			name:     "rank overrides numeric value",
			sort:     merge.SortConfig{Indexes: []merge.SortIndex{{Pattern: "9..", Rank: 50}}},
			base:     sample(),
			field:    df("910", " ", " ", "a", "local"),
			wantIdx:  1,
			wantTags: []string{"001", "910", "100", "245", "245", "500"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx, err := merge.InsertField(tt.base, tt.field, tt.sort)
			require.NoError(t, err)
			assert.Equal(t, tt.wantIdx, idx)
			assert.Equal(t, tt.wantTags, tags(tt.base))
			assert.Same(t, tt.field, tt.base.Fields[idx])
		})
	}
}

func TestSorterIndex(t *testing.T) {
	s, err := merge.NewSorter(merge.SortConfig{Indexes: []merge.SortIndex{
		{Pattern: "L.W", Rank: 999},
		{Pattern: "LOW", Rank: 1},
	}})
	require.NoError(t, err)

	key, ok := s.Index("LOW")
	assert.True(t, ok)
	assert.Equal(t, 999.0, key, "first declared index wins")

	key, ok = s.Index("245")
	assert.True(t, ok)
	assert.Equal(t, 245.0, key)

	key, ok = s.Index("24A")
	assert.True(t, ok)
	assert.Equal(t, 24.0, key)

	key, ok = s.Index("009")
	assert.True(t, ok)
	assert.Equal(t, 9.0, key)

	_, ok = s.Index("CAT")
	assert.False(t, ok)

	_, ok = s.Index("")
	assert.False(t, ok)
}

func TestNewSorterBadPattern(t *testing.T) {
	_, err := merge.NewSorter(merge.SortConfig{Indexes: []merge.SortIndex{{Pattern: "(", Rank: 1}}})
	require.Error(t, err)
	assert.True(t, errors.IsConfigError(err))
}
