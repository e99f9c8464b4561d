// Package cssparse turns raw stylesheet text into an ordered rule model and
// the per-class index consumed by the normalizer and the scene-graph emitter.
package cssparse

import "strings"

// A Declaration is a single property: value pair. Value keeps the authored
// text verbatim, units included.
type Declaration struct {
	Name  string
	Value string
}

// MediaClass is the breakpoint classification of an @media prelude.
type MediaClass struct {
	// Tag is one of tiny, small, medium for max-width buckets; empty for
	// base rules and for promoted min-width rules.
	Tag string
	// Promote marks a min-width rule folded into base styles. Narrower
	// lists the breakpoint tags the rule does not cover, for back-filling
	// the pre-existing base values.
	Promote  bool
	Narrower []string
}

// A Rule is one selector with its ordered declarations. Grouped selectors are
// split at parse time, so Selector always holds a single selector's text.
type Rule struct {
	Selector string
	// Declarations hold normal properties after shorthand expansion, in
	// authored order, last writer winning per name.
	Declarations []Declaration
	// Custom holds --* declarations, kept distinct from normal properties.
	Custom []Declaration
	Media  MediaClass
}

// Clone returns a deep copy of the rule.
func (r *Rule) Clone() *Rule {
	c := &Rule{Selector: r.Selector, Media: r.Media}
	c.Declarations = append([]Declaration(nil), r.Declarations...)
	c.Custom = append([]Declaration(nil), r.Custom...)
	c.Media.Narrower = append([]string(nil), r.Media.Narrower...)
	return c
}

// Get returns the last value declared for the named property.
func (r *Rule) Get(name string) (string, bool) {
	for i := len(r.Declarations) - 1; i >= 0; i-- {
		if r.Declarations[i].Name == name {
			return r.Declarations[i].Value, true
		}
	}
	return "", false
}

// Set appends or overwrites the named property in place.
func (r *Rule) Set(name, value string) {
	for i := range r.Declarations {
		if r.Declarations[i].Name == name {
			r.Declarations[i].Value = value
			return
		}
	}
	r.Declarations = append(r.Declarations, Declaration{Name: name, Value: value})
}

// Remove drops every declaration with the given name.
func (r *Rule) Remove(name string) {
	kept := r.Declarations[:0]
	for _, d := range r.Declarations {
		if d.Name != name {
			kept = append(kept, d)
		}
	}
	r.Declarations = kept
}

// VarTable is an ordered --name to value mapping.
type VarTable struct {
	names  []string
	values map[string]string
}

func NewVarTable() *VarTable {
	return &VarTable{values: map[string]string{}}
}

func (t *VarTable) Set(name, value string) {
	if _, ok := t.values[name]; !ok {
		t.names = append(t.names, name)
	}
	t.values[name] = value
}

func (t *VarTable) Get(name string) (string, bool) {
	v, ok := t.values[name]
	return v, ok
}

// Names returns variable names in first-declared order.
func (t *VarTable) Names() []string {
	return append([]string(nil), t.names...)
}

func (t *VarTable) Len() int {
	return len(t.names)
}

// Map returns a plain name to value copy, for protocol payloads.
func (t *VarTable) Map() map[string]string {
	out := make(map[string]string, len(t.values))
	for k, v := range t.values {
		out[k] = v
	}
	return out
}

// Stylesheet is the parse result for one concatenated CSS input.
type Stylesheet struct {
	Rules []*Rule
	// Variables collects custom properties declared on :root and .fp-root.
	Variables *VarTable
	// UnsupportedAtRules keeps the raw text of at-rule blocks the target
	// cannot express (@container, @layer, @supports, ...), for the CSS
	// embed channel.
	UnsupportedAtRules []string
	Warnings           []string
}

// RulesForSelector returns every rule with the exact selector text.
func (s *Stylesheet) RulesForSelector(sel string) []*Rule {
	var out []*Rule
	for _, r := range s.Rules {
		if r.Selector == sel {
			out = append(out, r)
		}
	}
	return out
}

// Serialize renders declarations as a "name: value;" list joined by spaces,
// the styleLess wire form.
func Serialize(decls []Declaration) string {
	parts := make([]string, 0, len(decls))
	for _, d := range decls {
		parts = append(parts, d.Name+": "+d.Value+";")
	}
	return strings.Join(parts, " ")
}

// ParseDeclarationList parses a serialized "name: value;" list back into
// declarations. Paren depth is tracked so semicolons inside calc() or
// gradient stops do not split.
func ParseDeclarationList(s string) []Declaration {
	var out []Declaration
	for _, part := range SplitTopLevel(s, ';') {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, value, ok := CutTopLevel(part, ':')
		if !ok {
			continue
		}
		out = append(out, Declaration{
			Name:  strings.TrimSpace(name),
			Value: strings.TrimSpace(value),
		})
	}
	return out
}
