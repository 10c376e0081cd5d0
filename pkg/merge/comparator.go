package merge

import (
	"strings"

	"github.com/agentstation/marcmerge/pkg/record"
)

// Comparator decides whether two normalized subfields count as equal.
type Comparator func(a, b record.Subfield) bool

// Built-in comparator names.
const (
	ComparatorEquality  = "equality"
	ComparatorSubstring = "substring"
)

// Equality matches subfields with the same code and value.
func Equality(a, b record.Subfield) bool {
	return a.Code == b.Code && a.Value == b.Value
}

// Substring matches subfields with the same code when either value contains
// the other.
func Substring(a, b record.Subfield) bool {
	if a.Code != b.Code {
		return false
	}
	return strings.Contains(a.Value, b.Value) || strings.Contains(b.Value, a.Value)
}
