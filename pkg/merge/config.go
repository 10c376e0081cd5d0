package merge

import (
	"fmt"
	"regexp"

	"github.com/agentstation/marcmerge/pkg/errors"
	"github.com/agentstation/marcmerge/pkg/record"
)

// InsertMode decides where a field goes when its tag is already present.
type InsertMode string

// Insert modes.
const (
	InsertBefore InsertMode = "before"
	InsertAfter  InsertMode = "after"
)

// Config maps tag patterns to merge actions. Rules and sort indexes are
// ordered: when several patterns match a tag, the first declared wins.
type Config struct {
	Sort   SortConfig `json:"sort" yaml:"sort"`
	Fields []Rule     `json:"fields" yaml:"fields"`
}

// SortConfig controls field insertion.
type SortConfig struct {
	Insert  InsertMode  `json:"insert,omitempty" yaml:"insert,omitempty"`
	Indexes []SortIndex `json:"indexes,omitempty" yaml:"indexes,omitempty"`
}

// SortIndex ranks tags matching Pattern at Rank instead of their numeric value.
type SortIndex struct {
	Pattern string  `json:"pattern" yaml:"pattern"`
	Rank    float64 `json:"rank" yaml:"rank"`
}

// Rule binds a tag pattern to an action.
type Rule struct {
	Pattern string  `json:"pattern" yaml:"pattern"`
	Action  string  `json:"action" yaml:"action"`
	Options Options `json:"options,omitempty" yaml:"options,omitempty"`
}

// Options are the per-rule settings read by the built-in actions. Keys the
// built-ins do not know are kept in Extra for plugin actions.
type Options struct {
	// copy and similarity
	CompareWithout           []string   `json:"compareWithout,omitempty" yaml:"compareWithout,omitempty"`
	CompareWithoutIndicators bool       `json:"compareWithoutIndicators,omitempty" yaml:"compareWithoutIndicators,omitempty"`
	MustBeIdentical          bool       `json:"mustBeIdentical,omitempty" yaml:"mustBeIdentical,omitempty"`
	Combine                  []string   `json:"combine,omitempty" yaml:"combine,omitempty"`
	TransformOnInequality    *Transform `json:"transformOnInequality,omitempty" yaml:"transformOnInequality,omitempty"`

	// copy and selectBetter
	Pick *PickOptions `json:"pick,omitempty" yaml:"pick,omitempty"`

	// selectBetter
	PickMissing        []string `json:"pickMissing,omitempty" yaml:"pickMissing,omitempty"`
	SkipOnMultiple     bool     `json:"skipOnMultiple,omitempty" yaml:"skipOnMultiple,omitempty"`
	RequireFieldInBoth bool     `json:"requireFieldInBoth,omitempty" yaml:"requireFieldInBoth,omitempty"`
	OnlyIfMissing      bool     `json:"onlyIfMissing,omitempty" yaml:"onlyIfMissing,omitempty"`
	Comparator         string   `json:"comparator,omitempty" yaml:"comparator,omitempty"`

	Extra map[string]any `json:"extra,omitempty" yaml:"-"`
}

// PickOptions selects subfields to copy from the losing field onto the winner.
// In configuration files it may be written as a plain list of codes.
type PickOptions struct {
	Subfields   []string `json:"subfields" yaml:"subfields"`
	MissingOnly bool     `json:"missingOnly,omitempty" yaml:"missingOnly,omitempty"`
}

// UnmarshalYAML accepts either a list of codes or {subfields, missingOnly}.
func (p *PickOptions) UnmarshalYAML(unmarshal func(any) error) error {
	var codes []string
	if err := unmarshal(&codes); err == nil {
		*p = PickOptions{Subfields: codes}
		return nil
	}
	type plain PickOptions
	var v plain
	if err := unmarshal(&v); err != nil {
		return err
	}
	*p = PickOptions(v)
	return nil
}

// Transform describes how copy re-creates an unmatched field under another tag.
type Transform struct {
	Tag  string            `json:"tag" yaml:"tag"`
	Ind1 string            `json:"ind1,omitempty" yaml:"ind1,omitempty"`
	Ind2 string            `json:"ind2,omitempty" yaml:"ind2,omitempty"`
	Drop []string          `json:"drop,omitempty" yaml:"drop,omitempty"`
	Map  map[string]string `json:"map,omitempty" yaml:"map,omitempty"`
	Add  []record.Subfield `json:"add,omitempty" yaml:"add,omitempty"`
}

// Validate checks the configuration without resolving action names, which
// depends on the registry and happens in New.
func (c *Config) Validate() error {
	switch c.Sort.Insert {
	case "", InsertBefore, InsertAfter:
	default:
		return &errors.ValidationError{
			Field:   "sort.insert",
			Value:   c.Sort.Insert,
			Message: `must be "before" or "after"`,
		}
	}

	for i, idx := range c.Sort.Indexes {
		if _, err := compilePattern(idx.Pattern); err != nil {
			return &errors.ValidationError{
				Field:   fmt.Sprintf("sort.indexes[%d]", i),
				Value:   idx.Pattern,
				Message: err.Error(),
			}
		}
	}

	for i, rule := range c.Fields {
		field := fmt.Sprintf("fields[%d]", i)
		if _, err := compilePattern(rule.Pattern); err != nil {
			return &errors.ValidationError{Field: field, Value: rule.Pattern, Message: err.Error()}
		}
		if rule.Action == "" {
			return &errors.ValidationError{Field: field + ".action", Value: rule.Pattern, Message: "cannot be empty"}
		}
		if t := rule.Options.TransformOnInequality; t != nil && t.Tag == "" {
			return &errors.ValidationError{
				Field:   field + ".options.transformOnInequality.tag",
				Value:   rule.Pattern,
				Message: "cannot be empty",
			}
		}
	}
	return nil
}

// compilePattern anchors a tag pattern so it must match the whole tag.
func compilePattern(pattern string) (*regexp.Regexp, error) {
	if pattern == "" {
		return nil, fmt.Errorf("pattern cannot be empty")
	}
	return regexp.Compile("^(?:" + pattern + ")$")
}
