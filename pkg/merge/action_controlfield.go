package merge

import (
	"github.com/agentstation/marcmerge/pkg/record"
)

// controlField copies the field only when merged has no field of its tag.
// It appends rather than sorting.
func controlField(merged *record.Record, field *record.Field, _ Options, _ Env) (Detail, error) {
	if merged.HasTag(field.Tag) {
		return skipped("tag already present"), nil
	}
	return inserted(merged.Append(adopt(field))), nil
}

// adopt clones a field of the other record for use in the merged record.
func adopt(field *record.Field) *record.Field {
	c := field.Clone()
	c.WasUsed = true
	c.FromOther = true
	c.FromPreferred = false
	return c
}
