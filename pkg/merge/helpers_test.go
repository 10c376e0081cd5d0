package merge_test

import (
	"github.com/agentstation/marcmerge/pkg/record"
)

// df builds a data field from alternating code/value arguments.
func df(tag, ind1, ind2 string, codeValues ...string) *record.Field {
	sfs := make([]record.Subfield, 0, len(codeValues)/2)
	for i := 0; i+1 < len(codeValues); i += 2 {
		sfs = append(sfs, record.Subfield{Code: codeValues[i], Value: codeValues[i+1]})
	}
	return record.NewDataField(tag, ind1, ind2, sfs...)
}

func cf(tag, value string) *record.Field {
	return record.NewControlField(tag, value)
}

func tags(r *record.Record) []string {
	out := make([]string, len(r.Fields))
	for i, f := range r.Fields {
		out[i] = f.Tag
	}
	return out
}
