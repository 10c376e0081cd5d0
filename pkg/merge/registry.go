package merge

import (
	"maps"
	"slices"

	"github.com/agentstation/marcmerge/pkg/record"
)

// Action merges one field of the other record into the merged record.
// It may insert, replace or mutate fields of merged that it owns, but must
// treat field as read-only.
type Action interface {
	Apply(merged *record.Record, field *record.Field, opts Options, env Env) (Detail, error)
}

// ActionFunc adapts a function to the Action interface.
type ActionFunc func(merged *record.Record, field *record.Field, opts Options, env Env) (Detail, error)

// Apply calls f.
func (f ActionFunc) Apply(merged *record.Record, field *record.Field, opts Options, env Env) (Detail, error) {
	return f(merged, field, opts, env)
}

// Env is what the merger hands to every action call.
type Env struct {
	Sorter      *Sorter
	WantDetails bool

	comparators map[string]Comparator
}

// Comparator returns the named comparator, or Equality when name is empty
// or unknown.
func (e Env) Comparator(name string) Comparator {
	if c, ok := e.comparators[name]; ok && name != "" {
		return c
	}
	return Equality
}

// Built-in action names.
const (
	ActionControlField = "controlfield"
	ActionCopy         = "copy"
	ActionSelectBetter = "selectBetter"
)

// Plugin bundles extra actions and comparators.
type Plugin struct {
	Name        string
	Actions     map[string]Action
	Comparators map[string]Comparator
}

// Registry resolves action and comparator names. A Registry is immutable;
// With returns an extended copy.
type Registry struct {
	actions     map[string]Action
	comparators map[string]Comparator
}

// NewRegistry returns a registry holding the built-in actions and comparators.
func NewRegistry() *Registry {
	return &Registry{
		actions: map[string]Action{
			ActionControlField: ActionFunc(controlField),
			ActionCopy:         ActionFunc(copyField),
			ActionSelectBetter: ActionFunc(selectBetter),
		},
		comparators: map[string]Comparator{
			ComparatorEquality:  Equality,
			ComparatorSubstring: Substring,
		},
	}
}

// With returns a new registry with the plugin's entries added. Entries with
// an existing name override the previous ones.
func (r *Registry) With(p Plugin) *Registry {
	out := &Registry{
		actions:     maps.Clone(r.actions),
		comparators: maps.Clone(r.comparators),
	}
	maps.Copy(out.actions, p.Actions)
	maps.Copy(out.comparators, p.Comparators)
	return out
}

// Action looks up an action by name.
func (r *Registry) Action(name string) (Action, bool) {
	a, ok := r.actions[name]
	return a, ok
}

// Comparator looks up a comparator by name.
func (r *Registry) Comparator(name string) (Comparator, bool) {
	c, ok := r.comparators[name]
	return c, ok
}

// ActionNames lists the registered actions in sorted order.
func (r *Registry) ActionNames() []string {
	return slices.Sorted(maps.Keys(r.actions))
}

// ComparatorNames lists the registered comparators in sorted order.
func (r *Registry) ComparatorNames() []string {
	return slices.Sorted(maps.Keys(r.comparators))
}
