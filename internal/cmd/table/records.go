// Package table converts merge results into rows for terminal tables.
package table

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/agentstation/marcmerge/internal/cmd/emoji"
	"github.com/agentstation/marcmerge/pkg/merge"
	"github.com/agentstation/marcmerge/pkg/record"
)

// Align represents column alignment in tables.
type Align int

const (
	// AlignDefault uses the default alignment (skip).
	AlignDefault Align = iota
	// AlignLeft aligns content to the left.
	AlignLeft
	// AlignCenter centers content.
	AlignCenter
	// AlignRight aligns content to the right.
	AlignRight
)

// Data represents table formatting data to avoid import cycles.
type Data struct {
	Headers         []string
	Rows            [][]string
	ColumnAlignment []Align
}

// maxContent bounds the content column so wide fields don't wrap the table.
const maxContent = 72

// RecordToTableData lists the fields of a record with their origin.
func RecordToTableData(rec *record.Record, wide bool) Data {
	headers := []string{"#", "Tag", "Ind", "Content", "Source"}
	rows := make([][]string, 0, len(rec.Fields)+1)
	rows = append(rows, []string{"", "LDR", "", rec.Leader, ""})

	for i, f := range rec.Fields {
		ind := ""
		content := f.Value
		if !f.IsControl() {
			ind = indicator(f.Ind1) + indicator(f.Ind2)
			content = subfieldText(f.Subfields)
		}
		if r := []rune(content); !wide && len(r) > maxContent {
			content = string(r[:maxContent-3]) + "..."
		}
		rows = append(rows, []string{strconv.Itoa(i), f.Tag, ind, content, Source(f)})
	}

	return Data{
		Headers:         headers,
		Rows:            rows,
		ColumnAlignment: []Align{AlignRight, AlignLeft, AlignCenter, AlignLeft, AlignLeft},
	}
}

// DetailsToTableData lists every action call of a merge.
func DetailsToTableData(details merge.Details) Data {
	headers := []string{"Tag", "Action", "Outcome", "Index", "Reason"}
	var rows [][]string
	for _, td := range details {
		for i, d := range td.Entries {
			tag := ""
			if i == 0 {
				tag = td.Tag
			}
			index := emoji.Skipped
			if d.Index >= 0 {
				index = strconv.Itoa(d.Index)
			}
			reason := d.Reason
			if reason == "" {
				reason = formatExtra(d.Extra)
			}
			rows = append(rows, []string{tag, d.Action, string(d.Outcome), index, reason})
		}
	}
	return Data{
		Headers:         headers,
		Rows:            rows,
		ColumnAlignment: []Align{AlignLeft, AlignLeft, AlignLeft, AlignRight, AlignLeft},
	}
}

// RulesToTableData lists rules in declared order.
func RulesToTableData(cfg *merge.Config) Data {
	headers := []string{"Order", "Pattern", "Action", "Options"}
	rows := make([][]string, 0, len(cfg.Fields))
	for i, r := range cfg.Fields {
		rows = append(rows, []string{strconv.Itoa(i + 1), r.Pattern, r.Action, optionSummary(r.Options)})
	}
	return Data{
		Headers:         headers,
		Rows:            rows,
		ColumnAlignment: []Align{AlignRight, AlignLeft, AlignLeft, AlignLeft},
	}
}

// Source names where a merged field came from.
func Source(f *record.Field) string {
	switch {
	case f.FromPreferred && f.FromOther:
		return "both"
	case f.FromPreferred:
		return "preferred"
	case f.FromOther:
		return "other"
	default:
		return "-"
	}
}

func indicator(ind string) string {
	if ind == "" || ind == " " {
		return "_"
	}
	return ind
}

func subfieldText(sfs []record.Subfield) string {
	parts := make([]string, len(sfs))
	for i, sf := range sfs {
		parts[i] = record.SubfieldDelimiter + sf.Code + sf.Value
	}
	return strings.Join(parts, " ")
}

func optionSummary(o merge.Options) string {
	var parts []string
	add := func(name string, codes []string) {
		if len(codes) > 0 {
			parts = append(parts, fmt.Sprintf("%s=%s", name, strings.Join(codes, ",")))
		}
	}
	add("compareWithout", o.CompareWithout)
	add("combine", o.Combine)
	add("pickMissing", o.PickMissing)
	if o.Pick != nil {
		add("pick", o.Pick.Subfields)
	}
	flags := map[string]bool{
		"compareWithoutIndicators": o.CompareWithoutIndicators,
		"mustBeIdentical":          o.MustBeIdentical,
		"skipOnMultiple":           o.SkipOnMultiple,
		"requireFieldInBoth":       o.RequireFieldInBoth,
		"onlyIfMissing":            o.OnlyIfMissing,
	}
	for _, name := range sortedKeys(flags) {
		if flags[name] {
			parts = append(parts, name)
		}
	}
	if o.Comparator != "" {
		parts = append(parts, "comparator="+o.Comparator)
	}
	if o.TransformOnInequality != nil {
		parts = append(parts, "transform->"+o.TransformOnInequality.Tag)
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, " ")
}

func formatExtra(extra map[string]any) string {
	if len(extra) == 0 {
		return ""
	}
	parts := make([]string, 0, len(extra))
	for _, k := range sortedKeys(extra) {
		parts = append(parts, fmt.Sprintf("%s=%v", k, extra[k]))
	}
	return strings.Join(parts, " ")
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
