package normalize

import (
	"strings"

	flowbridge "github.com/flowbridge/compiler/internal"
	"github.com/flowbridge/compiler/internal/cssparse"
)

// applyTypographyFallbacks injects the site-default font-family into every
// class that styles a heading, paragraph, or button but declares no family of
// its own. Without this the target falls back to its own default font and the
// imported page visibly drifts.
func applyTypographyFallbacks(doc *flowbridge.Node, sheet *cssparse.Stylesheet, res *Result) {
	defaultFamily := siteDefaultFamily(sheet)
	if defaultFamily == "" {
		return
	}

	classHasFamily := map[string]bool{}
	classKnown := map[string]bool{}
	for _, rule := range sheet.Rules {
		info := cssparse.ClassifySelector(rule.Selector)
		if info.Kind != cssparse.SelClass {
			continue
		}
		class := info.Parts[0].Class
		classKnown[class] = true
		if _, ok := rule.Get("font-family"); ok {
			classHasFamily[class] = true
		}
	}

	needed := map[string]bool{}
	var order []string
	flowbridge.Walk(doc, func(n *flowbridge.Node) {
		if n.Type != flowbridge.ElementNode || !isTypographyTag(n.Data) {
			return
		}
		covered := false
		for _, c := range n.Classes() {
			if classHasFamily[c] {
				covered = true
				break
			}
		}
		if covered {
			return
		}
		primary := n.FirstClass()
		if primary == "" || needed[primary] {
			return
		}
		needed[primary] = true
		order = append(order, primary)
	})

	for _, class := range order {
		sheet.Rules = append(sheet.Rules, &cssparse.Rule{
			Selector:     "." + class,
			Declarations: []cssparse.Declaration{{Name: "font-family", Value: defaultFamily}},
		})
		res.warnf("injected default font-family into .%s", class)
	}
}

func isTypographyTag(tag string) bool {
	return isHeadingTag(tag) || tag == "p" || tag == "button"
}

// siteDefaultFamily prefers the body rule's family (now living on .wf-body),
// then the first family any rule declares.
func siteDefaultFamily(sheet *cssparse.Stylesheet) string {
	for _, rule := range sheet.Rules {
		if rule.Selector != ".wf-body" {
			continue
		}
		if v, ok := rule.Get("font-family"); ok && !strings.Contains(v, "var(") {
			return v
		}
	}
	for _, rule := range sheet.Rules {
		if v, ok := rule.Get("font-family"); ok && !strings.Contains(v, "var(") {
			return v
		}
	}
	return ""
}
