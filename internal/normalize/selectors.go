package normalize

import (
	"fmt"
	"strings"

	flowbridge "github.com/flowbridge/compiler/internal"
	"github.com/flowbridge/compiler/internal/cssparse"
)

// elementMap names the synthetic class injected for sectioning-tag rules.
var elementMap = map[string]string{
	"section": "wf-section",
	"nav":     "wf-nav",
	"header":  "wf-header",
	"footer":  "wf-footer",
	"main":    "wf-main",
	"article": "wf-article",
	"aside":   "wf-aside",
	"body":    "wf-body",
}

// mappedName is the class a tag flattens to: the canonical wf- class for
// sectioning tags, heading-hN for headings, text-body for paragraphs, wf-<tag>
// for the rest.
func mappedName(tag string) string {
	if m, ok := elementMap[tag]; ok {
		return m
	}
	if n := headingLevel(tag); n > 0 {
		return fmt.Sprintf("heading-h%d", n)
	}
	if tag == "p" {
		return "text-body"
	}
	return "wf-" + tag
}

// rewriteSelectors reduces every rule to a single class selector and augments
// the markup to carry the classes those selectors now require.
func rewriteSelectors(doc *flowbridge.Node, sheet *cssparse.Stylesheet, res *Result) {
	// Headings and paragraphs get their semantic classes unconditionally so
	// the emitter always has a style hook, CSS or not.
	injectTypographyClasses(doc)

	kept := sheet.Rules[:0]
	for _, rule := range sheet.Rules {
		info := cssparse.ClassifySelector(rule.Selector)
		switch info.Kind {
		case cssparse.SelClass, cssparse.SelClassPseudo:
			kept = append(kept, rule)

		case cssparse.SelTag:
			part := info.Parts[0]
			class := mappedName(part.Tag)
			rule.Selector = "." + class
			if part.Pseudo != "" {
				rule.Selector += ":" + part.Pseudo
			}
			if part.Tag != "body" {
				injectClassForTag(doc, part.Tag, class)
				res.rename(class, "synthesized from "+part.Tag+" selector")
			}
			kept = append(kept, rule)

		case cssparse.SelTagClass:
			part := info.Parts[0]
			rule.Selector = "." + part.Class
			if part.Pseudo != "" {
				rule.Selector += ":" + part.Pseudo
			}
			kept = append(kept, rule)

		case cssparse.SelDescendant:
			synthetic := flattenedName(info)
			matches := findDescendantMatches(doc, info)
			if len(matches) == 0 {
				res.warnf("descendant selector %q matched no elements; rule kept for .%s", rule.Selector, synthetic)
			}
			for _, m := range matches {
				m.AddClass(synthetic)
			}
			rule.Selector = "." + synthetic
			if p := info.Last().Pseudo; p != "" && !info.Last().PseudoElement {
				rule.Selector += ":" + p
			}
			res.rename(synthetic, "flattened from "+info.Raw)
			kept = append(kept, rule)

		default:
			// Variable-only blocks (:root, .fp-root) are already drained
			// into the variables table; nothing is lost by dropping them.
			if len(rule.Declarations) == 0 {
				continue
			}
			res.LeftoverRules = append(res.LeftoverRules, rule)
			res.warnf("selector %q is not expressible as a class; routed to embed", rule.Selector)
		}
	}
	sheet.Rules = kept
}

// flattenedName joins the chain's part names: ".card .title" becomes
// card-title, ".hero > h1" becomes hero-heading-h1.
func flattenedName(info cssparse.SelectorInfo) string {
	var parts []string
	for _, p := range info.Parts {
		if p.Class != "" {
			parts = append(parts, p.Class)
		} else if p.Tag != "" {
			parts = append(parts, mappedName(p.Tag))
		}
	}
	return strings.Join(parts, "-")
}

func injectTypographyClasses(doc *flowbridge.Node) {
	flowbridge.Walk(doc, func(n *flowbridge.Node) {
		if n.Type != flowbridge.ElementNode {
			return
		}
		if lvl := headingLevel(n.Data); lvl > 0 {
			if !hasClassPrefix(n, "heading-") {
				n.AddClass(fmt.Sprintf("heading-h%d", lvl))
			}
			return
		}
		if n.Data == "p" && !hasClassPrefix(n, "text-") {
			n.AddClass("text-body")
		}
	})
}

func hasClassPrefix(n *flowbridge.Node, prefix string) bool {
	for _, c := range n.Classes() {
		if strings.HasPrefix(c, prefix) {
			return true
		}
	}
	return false
}

func injectClassForTag(doc *flowbridge.Node, tag, class string) {
	flowbridge.Walk(doc, func(n *flowbridge.Node) {
		if n.Type == flowbridge.ElementNode && n.Data == tag {
			n.AddClass(class)
		}
	})
}

// matchesPart reports whether an element satisfies one compound part.
func matchesPart(n *flowbridge.Node, p cssparse.SimplePart) bool {
	if n.Type != flowbridge.ElementNode {
		return false
	}
	if p.Tag != "" && n.Data != p.Tag {
		return false
	}
	if p.Class != "" && !n.HasClass(p.Class) {
		return false
	}
	return true
}

// findDescendantMatches returns the elements matched by the rightmost part of
// a descendant chain whose ancestors satisfy the rest of the chain.
func findDescendantMatches(doc *flowbridge.Node, info cssparse.SelectorInfo) []*flowbridge.Node {
	var out []*flowbridge.Node
	last := len(info.Parts) - 1
	flowbridge.Walk(doc, func(n *flowbridge.Node) {
		if !matchesPart(n, info.Parts[last]) {
			return
		}
		if chainSatisfied(n, info, last) {
			out = append(out, n)
		}
	})
	return out
}

func chainSatisfied(n *flowbridge.Node, info cssparse.SelectorInfo, idx int) bool {
	cur := n
	for i := idx - 1; i >= 0; i-- {
		comb := byte(' ')
		if i < len(info.Combinators) {
			comb = info.Combinators[i]
		}
		if comb == '>' {
			cur = cur.Parent
			if cur == nil || !matchesPart(cur, info.Parts[i]) {
				return false
			}
			continue
		}
		found := false
		for anc := cur.Parent; anc != nil; anc = anc.Parent {
			if matchesPart(anc, info.Parts[i]) {
				cur = anc
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
