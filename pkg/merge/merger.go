// Package merge combines two bibliographic records field by field according
// to a rule configuration.
//
// The preferred record is the base. Every field of the other record is
// routed to the first rule whose tag pattern matches it, and that rule's
// action decides whether the field is inserted, replaces a preferred field,
// or is dropped. Fields matching no rule are dropped. Both input records
// are left untouched.
package merge

import (
	"context"
	"regexp"

	"github.com/rs/zerolog"

	"github.com/agentstation/marcmerge/pkg/errors"
	"github.com/agentstation/marcmerge/pkg/logging"
	"github.com/agentstation/marcmerge/pkg/record"
)

// Merger applies a compiled configuration. It is safe for concurrent use.
type Merger struct {
	rules    []compiledRule
	sorter   *Sorter
	registry *Registry
	logger   *zerolog.Logger
}

type compiledRule struct {
	Rule
	re     *regexp.Regexp
	action Action
}

// New validates cfg and resolves every action and comparator it names.
func New(cfg Config, opts ...Option) (*Merger, error) {
	o, err := defaultOptions().apply(opts...)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	sorter, err := NewSorter(cfg.Sort)
	if err != nil {
		return nil, err
	}

	m := &Merger{sorter: sorter, registry: o.registry, logger: o.logger}
	for _, rule := range cfg.Fields {
		action, ok := o.registry.Action(rule.Action)
		if !ok {
			return nil, errors.NewUndefinedActionError(rule.Pattern, rule.Action)
		}
		if name := rule.Options.Comparator; name != "" {
			if _, ok := o.registry.Comparator(name); !ok {
				return nil, errors.NewUndefinedComparatorError(rule.Pattern, name)
			}
		}
		re, err := compilePattern(rule.Pattern)
		if err != nil {
			return nil, errors.NewConfigError("rule "+rule.Pattern, err.Error(), err)
		}
		m.rules = append(m.rules, compiledRule{Rule: rule, re: re, action: action})
	}
	return m, nil
}

// RuleFor returns the rule that handles tag.
func (m *Merger) RuleFor(tag string) (Rule, bool) {
	if r := m.match(tag); r != nil {
		return r.Rule, true
	}
	return Rule{}, false
}

// Merge returns a new record combining preferred and other.
func (m *Merger) Merge(ctx context.Context, preferred, other *record.Record) (*record.Record, error) {
	res, err := m.run(ctx, preferred, other, false)
	if err != nil {
		return nil, err
	}
	return res.Record, nil
}

// MergeWithDetails is Merge plus a per-tag account of every action call.
func (m *Merger) MergeWithDetails(ctx context.Context, preferred, other *record.Record) (*Result, error) {
	return m.run(ctx, preferred, other, true)
}

func (m *Merger) run(ctx context.Context, preferred, other *record.Record, wantDetails bool) (*Result, error) {
	if preferred == nil || other == nil {
		return nil, &errors.ValidationError{Field: "record", Message: "both records are required"}
	}
	if m.logger != nil {
		ctx = logging.WithLogger(ctx, m.logger)
	}

	merged := preferred.Clone()
	for _, f := range merged.Fields {
		f.WasUsed = true
		f.FromPreferred = true
	}

	env := Env{
		Sorter:      m.sorter,
		WantDetails: wantDetails,
		comparators: m.registry.comparators,
	}
	res := &Result{Record: merged}

	for _, field := range other.Fields {
		if err := ctx.Err(); err != nil {
			return nil, errors.NewMergeError(preferred.ID(), other.ID(), errors.ErrCanceled)
		}

		fieldCtx := logging.WithTag(ctx, field.Tag)
		rule := m.match(field.Tag)
		if rule == nil {
			logging.FromContext(fieldCtx).Trace().Msg("No rule for field, dropping")
			continue
		}
		fieldCtx = logging.WithAction(fieldCtx, rule.Action)

		detail, err := rule.action.Apply(merged, field, rule.Options, env)
		if err != nil {
			logging.FromContext(logging.WithError(fieldCtx, err)).Debug().Msg("Merge action failed")
			return nil, errors.NewMergeError(preferred.ID(), other.ID(),
				errors.NewActionError(rule.Action, field.Tag, err))
		}
		if detail.Action == "" {
			detail.Action = rule.Action
		}

		logging.FromContext(fieldCtx).Debug().
			Str("outcome", string(detail.Outcome)).
			Int("index", detail.Index).
			Msg("Merged field")

		if wantDetails {
			res.Details.Add(field.Tag, detail)
		}
	}
	return res, nil
}

func (m *Merger) match(tag string) *compiledRule {
	for i := range m.rules {
		if m.rules[i].re.MatchString(tag) {
			return &m.rules[i]
		}
	}
	return nil
}
