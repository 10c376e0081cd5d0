package merge

import (
	"github.com/agentstation/marcmerge/pkg/record"
)

// Outcome says what an action did with a field.
type Outcome string

// Outcomes reported by the built-in actions.
const (
	OutcomeInserted    Outcome = "inserted"
	OutcomeReplaced    Outcome = "replaced"
	OutcomeKept        Outcome = "kept"
	OutcomeTransformed Outcome = "transformed"
	OutcomeSkipped     Outcome = "skipped"
)

// Detail describes one action call. Index is the position of the affected
// field in the merged record at the time of the call, or -1.
type Detail struct {
	Action  string         `json:"action" yaml:"action"`
	Outcome Outcome        `json:"outcome" yaml:"outcome"`
	Index   int            `json:"index" yaml:"index"`
	Reason  string         `json:"reason,omitempty" yaml:"reason,omitempty"`
	Extra   map[string]any `json:"extra,omitempty" yaml:"extra,omitempty"`
}

// TagDetails holds the details recorded for one tag.
type TagDetails struct {
	Tag     string   `json:"tag" yaml:"tag"`
	Entries []Detail `json:"entries" yaml:"entries"`
}

// Details lists per-tag details in the order tags were first seen.
type Details []TagDetails

// Add appends d under tag.
func (d *Details) Add(tag string, detail Detail) {
	for i := range *d {
		if (*d)[i].Tag == tag {
			(*d)[i].Entries = append((*d)[i].Entries, detail)
			return
		}
	}
	*d = append(*d, TagDetails{Tag: tag, Entries: []Detail{detail}})
}

// Get returns the entries recorded for tag.
func (d Details) Get(tag string) []Detail {
	for _, td := range d {
		if td.Tag == tag {
			return td.Entries
		}
	}
	return nil
}

// Summary counts outcomes per action.
func (d Details) Summary() map[string]map[Outcome]int {
	out := make(map[string]map[Outcome]int)
	for _, td := range d {
		for _, e := range td.Entries {
			if out[e.Action] == nil {
				out[e.Action] = make(map[Outcome]int)
			}
			out[e.Action][e.Outcome]++
		}
	}
	return out
}

// Outcomes counts entries per outcome across all actions.
func (d Details) Outcomes() map[Outcome]int {
	out := make(map[Outcome]int)
	for _, td := range d {
		for _, e := range td.Entries {
			out[e.Outcome]++
		}
	}
	return out
}

// Result is the output of MergeWithDetails.
type Result struct {
	Record  *record.Record `json:"record" yaml:"record"`
	Details Details        `json:"details" yaml:"details"`
}

func inserted(idx int) Detail {
	return Detail{Outcome: OutcomeInserted, Index: idx}
}

func skipped(reason string) Detail {
	return Detail{Outcome: OutcomeSkipped, Index: -1, Reason: reason}
}
