package normalize

import (
	"fmt"

	flowbridge "github.com/flowbridge/compiler/internal"
	"github.com/flowbridge/compiler/internal/cssparse"
	"github.com/iancoleman/strcase"
)

// synthesizeBodyWrapper wraps the document content in <div class="wf-body">
// when body-level CSS existed, so those properties survive the move into the
// builder (which supplies its own body element).
func synthesizeBodyWrapper(doc *flowbridge.Node, sheet *cssparse.Stylesheet, res *Result) {
	hasBodyRule := false
	for _, rule := range sheet.Rules {
		if rule.Selector == ".wf-body" {
			hasBodyRule = true
			break
		}
	}
	if !hasBodyRule {
		return
	}

	body := flowbridge.Body(doc)
	wrapper := flowbridge.Element("div", flowbridge.Attribute{Key: "class", Val: "wf-body"})
	for _, c := range body.Children() {
		body.RemoveChild(c)
		wrapper.AppendChild(c)
	}
	body.AppendChild(wrapper)
	res.BodyWrapped = true
	res.rename("wf-body", "synthesized wrapper carrying body-level styles")
}

// bemSuffixes cycle for classless div naming before numeric fallbacks.
var bemSuffixes = []string{"__content", "__wrapper", "__inner", "__container"}

// nameClasslessDivs assigns every classless <div> a BEM-style class derived
// from its nearest classed ancestor, so the emitter has a style hook for each
// structural node.
func nameClasslessDivs(doc *flowbridge.Node, sheet *cssparse.Stylesheet, res *Result) {
	used := map[string]bool{}
	flowbridge.Walk(doc, func(n *flowbridge.Node) {
		for _, c := range n.Classes() {
			used[c] = true
		}
	})
	for _, rule := range sheet.Rules {
		info := cssparse.ClassifySelector(rule.Selector)
		for _, p := range info.Parts {
			if p.Class != "" {
				used[p.Class] = true
			}
		}
	}

	// Snapshot first so a name minted here never becomes another div's base.
	type pending struct {
		div  *flowbridge.Node
		base string
	}
	var queue []pending
	flowbridge.Walk(doc, func(n *flowbridge.Node) {
		if n.Type != flowbridge.ElementNode || n.Data != "div" || len(n.Classes()) > 0 {
			return
		}
		base := "block"
		if anc := n.Closest(func(a *flowbridge.Node) bool {
			return a != n && a.Type == flowbridge.ElementNode && a.FirstClass() != ""
		}); anc != nil {
			base = strcase.ToKebab(anc.FirstClass())
		}
		queue = append(queue, pending{div: n, base: base})
	})

	for _, item := range queue {
		base := item.base
		name := ""
		for _, suffix := range bemSuffixes {
			if cand := base + suffix; !used[cand] {
				name = cand
				break
			}
		}
		if name == "" {
			for i := 2; ; i++ {
				if cand := fmt.Sprintf("%s%s-%d", base, bemSuffixes[0], i); !used[cand] {
					name = cand
					break
				}
			}
		}
		used[name] = true
		item.div.AddClass(name)
		res.rename(name, "assigned to classless div under ."+base)
	}
}
