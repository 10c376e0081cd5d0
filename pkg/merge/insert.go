package merge

import (
	"regexp"
	"strconv"

	"github.com/agentstation/marcmerge/pkg/errors"
	"github.com/agentstation/marcmerge/pkg/record"
)

// Sorter places new fields into a record according to a SortConfig.
type Sorter struct {
	insert  InsertMode
	indexes []compiledIndex
}

type compiledIndex struct {
	re   *regexp.Regexp
	rank float64
}

// NewSorter compiles the index patterns of cfg.
func NewSorter(cfg SortConfig) (*Sorter, error) {
	s := &Sorter{insert: cfg.Insert}
	if s.insert == "" {
		s.insert = InsertAfter
	}
	for _, idx := range cfg.Indexes {
		re, err := compilePattern(idx.Pattern)
		if err != nil {
			return nil, errors.NewConfigError("sort.indexes", err.Error(), err)
		}
		s.indexes = append(s.indexes, compiledIndex{re: re, rank: idx.Rank})
	}
	return s, nil
}

// Index returns the sort key of tag. A matching index pattern wins; otherwise
// the leading digits of the tag are read as a decimal number, so 24A sorts
// as 24. Tags with neither have no key.
func (s *Sorter) Index(tag string) (float64, bool) {
	for _, idx := range s.indexes {
		if idx.re.MatchString(tag) {
			return idx.rank, true
		}
	}
	return leadingNumber(tag)
}

func leadingNumber(tag string) (float64, bool) {
	end := 0
	for end < len(tag) && tag[end] >= '0' && tag[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}
	n, err := strconv.ParseFloat(tag[:end], 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Insert adds field to rec and returns its position. A field whose tag is
// already present joins that run of fields at the start or end depending on
// the insert mode. Otherwise it goes before the first field with a greater
// sort key, or at the end.
func (s *Sorter) Insert(rec *record.Record, field *record.Field) int {
	first, last := -1, -1
	for i, f := range rec.Fields {
		if f.Tag == field.Tag {
			if first < 0 {
				first = i
			}
			last = i
		}
	}
	if first >= 0 {
		if s.insert == InsertBefore {
			return rec.InsertAt(first, field)
		}
		return rec.InsertAt(last+1, field)
	}

	key, ok := s.Index(field.Tag)
	if !ok {
		return rec.Append(field)
	}
	for i, f := range rec.Fields {
		if k, ok := s.Index(f.Tag); ok && k > key {
			return rec.InsertAt(i, field)
		}
	}
	return rec.Append(field)
}

// InsertField places field into rec using cfg and returns its position.
func InsertField(rec *record.Record, field *record.Field, cfg SortConfig) (int, error) {
	s, err := NewSorter(cfg)
	if err != nil {
		return -1, err
	}
	return s.Insert(rec, field), nil
}
