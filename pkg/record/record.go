// Package record defines the bibliographic record model consumed by the
// merge engine: a leader plus an ordered list of control and data fields.
package record

import (
	"slices"
	"strings"
)

// SubfieldDelimiter separates subfields in the text rendering of a field.
const SubfieldDelimiter = "‡"

// Subfield is a (code, value) pair within a data field. Codes may repeat.
type Subfield struct {
	Code  string `json:"code" yaml:"code" msgpack:"code"`
	Value string `json:"value" yaml:"value" msgpack:"value"`
}

// Field is either a control field (Tag, Value) or a data field
// (Tag, Ind1, Ind2, Subfields). A field is a control field iff Subfields is nil.
//
// WasUsed, FromPreferred and FromOther are provenance annotations
// maintained by the merge engine.
type Field struct {
	Tag       string     `json:"tag" yaml:"tag" msgpack:"tag"`
	Ind1      string     `json:"ind1,omitempty" yaml:"ind1,omitempty" msgpack:"ind1,omitempty"`
	Ind2      string     `json:"ind2,omitempty" yaml:"ind2,omitempty" msgpack:"ind2,omitempty"`
	Value     string     `json:"value,omitempty" yaml:"value,omitempty" msgpack:"value,omitempty"`
	Subfields []Subfield `json:"subfields" yaml:"subfields" msgpack:"subfields"`

	WasUsed       bool `json:"wasUsed,omitempty" yaml:"wasUsed,omitempty" msgpack:"wasUsed,omitempty"`
	FromPreferred bool `json:"fromPreferred,omitempty" yaml:"fromPreferred,omitempty" msgpack:"fromPreferred,omitempty"`
	FromOther     bool `json:"fromOther,omitempty" yaml:"fromOther,omitempty" msgpack:"fromOther,omitempty"`
}

// NewControlField creates a control field.
func NewControlField(tag, value string) *Field {
	return &Field{Tag: tag, Value: value}
}

// NewDataField creates a data field. Blank indicators are stored as a single space.
func NewDataField(tag, ind1, ind2 string, subfields ...Subfield) *Field {
	if subfields == nil {
		subfields = []Subfield{}
	}
	return &Field{
		Tag:       tag,
		Ind1:      blankIndicator(ind1),
		Ind2:      blankIndicator(ind2),
		Subfields: subfields,
	}
}

// IsControl reports whether f is a control field.
func (f *Field) IsControl() bool {
	return f.Subfields == nil
}

// Clone returns a deep copy of f, including its annotations.
func (f *Field) Clone() *Field {
	if f == nil {
		return nil
	}
	c := *f
	if f.Subfields != nil {
		c.Subfields = make([]Subfield, len(f.Subfields))
		copy(c.Subfields, f.Subfields)
	}
	return &c
}

// Codes returns the subfield codes of f in order.
func (f *Field) Codes() []string {
	codes := make([]string, len(f.Subfields))
	for i, sf := range f.Subfields {
		codes[i] = sf.Code
	}
	return codes
}

// HasCode reports whether f has at least one subfield with the given code.
func (f *Field) HasCode(code string) bool {
	for _, sf := range f.Subfields {
		if sf.Code == code {
			return true
		}
	}
	return false
}

// RemoveCodes deletes every subfield whose code is listed and returns the
// removed subfields in their original order.
func (f *Field) RemoveCodes(codes ...string) []Subfield {
	if len(codes) == 0 || f.Subfields == nil {
		return nil
	}
	var removed []Subfield
	kept := f.Subfields[:0:0]
	for _, sf := range f.Subfields {
		if slices.Contains(codes, sf.Code) {
			removed = append(removed, sf)
			continue
		}
		kept = append(kept, sf)
	}
	f.Subfields = kept
	return removed
}

// String renders f as a MARC-like text line, e.g. "245 10 ‡aTitle ‡cAuthor".
func (f *Field) String() string {
	var b strings.Builder
	b.WriteString(f.Tag)
	if f.IsControl() {
		b.WriteString("    ")
		b.WriteString(f.Value)
		return b.String()
	}
	b.WriteByte(' ')
	b.WriteString(printableIndicator(f.Ind1))
	b.WriteString(printableIndicator(f.Ind2))
	for _, sf := range f.Subfields {
		b.WriteByte(' ')
		b.WriteString(SubfieldDelimiter)
		b.WriteString(sf.Code)
		b.WriteString(sf.Value)
	}
	return b.String()
}

// Record is a bibliographic record.
type Record struct {
	Leader string   `json:"leader" yaml:"leader" msgpack:"leader"`
	Fields []*Field `json:"fields" yaml:"fields" msgpack:"fields"`
}

// New creates a record with the given leader and fields.
func New(leader string, fields ...*Field) *Record {
	if fields == nil {
		fields = []*Field{}
	}
	return &Record{Leader: leader, Fields: fields}
}

// Clone returns a deep copy of r.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	c := &Record{Leader: r.Leader, Fields: make([]*Field, len(r.Fields))}
	for i, f := range r.Fields {
		c.Fields[i] = f.Clone()
	}
	return c
}

// ID returns the value of the 001 control field, or "" if there is none.
func (r *Record) ID() string {
	for _, f := range r.Fields {
		if f.Tag == "001" && f.IsControl() {
			return f.Value
		}
	}
	return ""
}

// FieldsByTag returns the fields with the given tag in record order.
func (r *Record) FieldsByTag(tag string) []*Field {
	var out []*Field
	for _, f := range r.Fields {
		if f.Tag == tag {
			out = append(out, f)
		}
	}
	return out
}

// HasTag reports whether r contains a field with the given tag.
func (r *Record) HasTag(tag string) bool {
	for _, f := range r.Fields {
		if f.Tag == tag {
			return true
		}
	}
	return false
}

// IndexOf returns the position of field (by identity) or -1.
func (r *Record) IndexOf(field *Field) int {
	for i, f := range r.Fields {
		if f == field {
			return i
		}
	}
	return -1
}

// Append adds a field at the end and returns its index.
func (r *Record) Append(field *Field) int {
	r.Fields = append(r.Fields, field)
	return len(r.Fields) - 1
}

// InsertAt inserts field at position i, clamped to the valid range, and
// returns the index it ended up at.
func (r *Record) InsertAt(i int, field *Field) int {
	if i < 0 {
		i = 0
	}
	if i >= len(r.Fields) {
		return r.Append(field)
	}
	r.Fields = append(r.Fields, nil)
	copy(r.Fields[i+1:], r.Fields[i:])
	r.Fields[i] = field
	return i
}

// ReplaceAt swaps the field at position i for field.
func (r *Record) ReplaceAt(i int, field *Field) {
	r.Fields[i] = field
}

// String renders the record as text lines, leader first.
func (r *Record) String() string {
	lines := make([]string, 0, len(r.Fields)+1)
	lines = append(lines, "LDR    "+r.Leader)
	for _, f := range r.Fields {
		lines = append(lines, f.String())
	}
	return strings.Join(lines, "\n")
}

func blankIndicator(ind string) string {
	if ind == "" {
		return " "
	}
	return ind
}

func printableIndicator(ind string) string {
	if ind == "" || ind == " " {
		return "_"
	}
	return ind
}
