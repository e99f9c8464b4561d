package tokens

import (
	"fmt"
	"strings"

	"github.com/flowbridge/compiler/internal/cssparse"
)

// LiteralizeResult reports what the literalizer changed.
type LiteralizeResult struct {
	// RemovedPseudoElements holds ::before/::after rules removed wholesale;
	// they re-enter through the CSS embed channel.
	RemovedPseudoElements []*cssparse.Rule
	// Unresolved lists var() names that had no declaration and no fallback.
	Unresolved []string
	Warnings   []string
}

// Literalize rewrites the stylesheet in place: every var(--x) reference is
// replaced by its resolved value, custom-property declarations and content:
// properties are stripped from non-pseudo rules, and pseudo-element rules are
// removed for the embed channel. In strict mode an unresolved variable is an
// error; otherwise it degrades to a warning and the reference stays in the
// value.
func Literalize(sheet *cssparse.Stylesheet, strict bool) (*LiteralizeResult, error) {
	res := &LiteralizeResult{}
	lookup := sheet.Variables.Get
	seen := map[string]bool{}

	kept := sheet.Rules[:0]
	for _, rule := range sheet.Rules {
		info := cssparse.ClassifySelector(rule.Selector)
		if isPseudoElementRule(info) {
			res.RemovedPseudoElements = append(res.RemovedPseudoElements, rule)
			continue
		}

		for i := range rule.Declarations {
			d := &rule.Declarations[i]
			resolved, unresolved := cssparse.ResolveVars(d.Value, lookup)
			if d.Name == "font-family" {
				resolved = normalizeFontQuotes(resolved)
			}
			d.Value = resolved
			for _, u := range unresolved {
				if !seen[u] {
					seen[u] = true
					res.Unresolved = append(res.Unresolved, u)
				}
			}
		}

		// The target has no var() support and no content property outside
		// pseudo-element context.
		rule.Custom = nil
		rule.Remove("content")
		kept = append(kept, rule)
	}
	sheet.Rules = kept

	if len(res.Unresolved) > 0 {
		msg := fmt.Sprintf("unresolved CSS variables: %s", strings.Join(res.Unresolved, ", "))
		if strict {
			return res, fmt.Errorf("literalize: %s", msg)
		}
		res.Warnings = append(res.Warnings, msg)
	}
	return res, nil
}

func isPseudoElementRule(info cssparse.SelectorInfo) bool {
	for _, p := range info.Parts {
		if p.PseudoElement && (p.Pseudo == "before" || p.Pseudo == "after") {
			return true
		}
	}
	// Single-colon legacy forms also count.
	last := info.Last()
	return last.Pseudo == "before" || last.Pseudo == "after"
}

// normalizeFontQuotes trims one outer quote pair from a resolved font value
// and collapses doubled quotes the resolution may have introduced.
func normalizeFontQuotes(v string) string {
	v = strings.TrimSpace(v)
	if len(v) >= 2 {
		if (v[0] == '"' && v[len(v)-1] == '"') || (v[0] == '\'' && v[len(v)-1] == '\'') {
			inner := v[1 : len(v)-1]
			if !strings.ContainsAny(inner, `"'`) {
				v = inner
			}
		}
	}
	v = strings.ReplaceAll(v, `""`, `"`)
	v = strings.ReplaceAll(v, `''`, `'`)
	return v
}
