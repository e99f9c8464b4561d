package component

import (
	"fmt"
	"regexp"
	"strings"
)

// genericName matches names the componentizer produced without semantic
// signal.
var genericName = regexp.MustCompile(`^(Section( \d+)?|Block|Wrapper|Div|Content)$`)

// nameRule maps keyword evidence in classes or heading text to a display
// name. First match wins, so the order encodes specificity.
type nameRule struct {
	classHints []string
	textHints  []string
	name       string
}

var nameRules = []nameRule{
	{classHints: []string{"nav-links", "navbar", "nav"}, name: "Nav"},
	{classHints: []string{"hero"}, name: "Hero"},
	{classHints: []string{"pricing"}, textHints: []string{"pricing"}, name: "Pricing"},
	{classHints: []string{"bento"}, name: "Bento"},
	{classHints: []string{"card-grid", "features"}, name: "Features"},
	{textHints: []string{"3 steps", "three steps", "how it works"}, name: "How it works"},
	{textHints: []string{"the problem"}, name: "Problem"},
	{classHints: []string{"faq"}, textHints: []string{"frequently asked"}, name: "FAQ"},
	{classHints: []string{"cta"}, textHints: []string{"get started"}, name: "CTA"},
	{classHints: []string{"testimonial"}, name: "Testimonials"},
	{classHints: []string{"footer"}, textHints: []string{"copyright", "©"}, name: "Footer"},
}

// ApplyDeterministicNames overrides still-generic component names using
// keyword heuristics over classes and heading text, then enforces uniqueness
// with numeric suffixes. Runs before any LLM renaming so the model only sees
// what the heuristics could not resolve.
func ApplyDeterministicNames(tree *Tree) {
	for _, comp := range tree.Components {
		if !genericName.MatchString(comp.Name) {
			continue
		}
		if name := heuristicName(comp); name != "" {
			comp.Name = name
		}
	}

	seen := map[string]int{}
	for _, comp := range tree.Components {
		key := strings.ToLower(comp.Name)
		seen[key]++
		if n := seen[key]; n > 1 {
			comp.Name = fmt.Sprintf("%s %d", comp.Name, n)
		}
	}
}

func heuristicName(comp *Component) string {
	classBlob := strings.ToLower(strings.Join(comp.ClassesUsed, " "))
	textBlob := ""
	if comp.Root != nil {
		textBlob = strings.ToLower(firstHeadingText(comp.Root))
	}
	for _, rule := range nameRules {
		for _, hint := range rule.classHints {
			if strings.Contains(classBlob, hint) {
				return rule.name
			}
		}
		for _, hint := range rule.textHints {
			if strings.Contains(textBlob, hint) {
				return rule.name
			}
		}
	}
	return ""
}

// HasGenericName reports whether a component still carries a machine name.
// The semantic patch decision uses this as one of its triggers.
func HasGenericName(tree *Tree) bool {
	for _, comp := range tree.Components {
		if genericName.MatchString(comp.Name) {
			return true
		}
	}
	return false
}
