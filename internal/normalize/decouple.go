package normalize

import (
	"strings"

	flowbridge "github.com/flowbridge/compiler/internal"
	"github.com/flowbridge/compiler/internal/cssparse"
)

// The target's renderer races a gradient-bearing background layer against a
// transform-bearing layer; when both sit on one element the gradient drops.
// decouple splits such classes structurally: the original class keeps layout
// and transforms, a synthetic "<class>-bg" child absorbs the gradient.
func decouple(doc *flowbridge.Node, sheet *cssparse.Stylesheet, opts Options, res *Result) {
	for _, class := range classesNeedingDecouple(sheet) {
		bgClass := class + opts.DecouplerSuffix
		if classExists(sheet, doc, bgClass) {
			res.warnf("decoupling skipped for .%s: class .%s already exists", class, bgClass)
			continue
		}
		splitClass(sheet, class, bgClass)
		injectBackgroundDivs(doc, class, bgClass)
		res.rename(bgClass, "gradient layer split from ."+class)
	}
}

// classesNeedingDecouple returns classes whose base declarations carry both a
// gradient and a transform-family property, in rule order.
func classesNeedingDecouple(sheet *cssparse.Stylesheet) []string {
	var order []string
	seen := map[string]bool{}
	hasGradient := map[string]bool{}
	hasTransform := map[string]bool{}

	for _, rule := range sheet.Rules {
		info := cssparse.ClassifySelector(rule.Selector)
		if info.Kind != cssparse.SelClass {
			continue
		}
		class := info.Parts[0].Class
		if !seen[class] {
			seen[class] = true
			order = append(order, class)
		}
		for _, d := range rule.Declarations {
			if isGradientDecl(d) {
				hasGradient[class] = true
			}
			if isTransformDecl(d) {
				hasTransform[class] = true
			}
		}
	}

	var out []string
	for _, c := range order {
		if hasGradient[c] && hasTransform[c] {
			out = append(out, c)
		}
	}
	return out
}

func isGradientDecl(d cssparse.Declaration) bool {
	return (d.Name == "background" || d.Name == "background-image") && cssparse.HasGradient(d.Value)
}

func isTransformDecl(d cssparse.Declaration) bool {
	switch {
	case d.Name == "transform":
		return true
	case d.Name == "will-change" && strings.Contains(d.Value, "transform"):
		return true
	case strings.HasPrefix(d.Name, "transition"):
		return true
	}
	return false
}

// sharedDecl marks properties duplicated onto the gradient layer so rounded
// corners and clipping behave identically on both.
func sharedDecl(name string) bool {
	return strings.HasPrefix(name, "border-radius") ||
		strings.HasPrefix(name, "border-top-left-radius") ||
		strings.HasPrefix(name, "border-top-right-radius") ||
		strings.HasPrefix(name, "border-bottom-left-radius") ||
		strings.HasPrefix(name, "border-bottom-right-radius") ||
		strings.HasPrefix(name, "overflow")
}

// splitClass rewrites every rule of class, moving gradient declarations to
// bgClass rules. Pseudo and media variants split the same way.
func splitClass(sheet *cssparse.Stylesheet, class, bgClass string) {
	var newRules []*cssparse.Rule

	for _, rule := range sheet.Rules {
		info := cssparse.ClassifySelector(rule.Selector)
		if len(info.Parts) != 1 || info.Parts[0].Class != class || info.Parts[0].Tag != "" {
			continue
		}
		pseudo := info.Parts[0].Pseudo

		var gradientDecls, shared []cssparse.Declaration
		kept := rule.Declarations[:0]
		for _, d := range rule.Declarations {
			switch {
			case isGradientDecl(d):
				gradientDecls = append(gradientDecls, cssparse.Declaration{Name: "background-image", Value: d.Value})
			case sharedDecl(d.Name):
				shared = append(shared, d)
				kept = append(kept, d)
			default:
				kept = append(kept, d)
			}
		}
		rule.Declarations = kept
		if len(gradientDecls) == 0 && pseudo == "" {
			continue
		}

		sel := "." + bgClass
		if pseudo != "" {
			if len(gradientDecls) == 0 && len(shared) == 0 {
				continue
			}
			sel += ":" + pseudo
		}
		child := &cssparse.Rule{Selector: sel, Media: rule.Media}
		if pseudo == "" && rule.Media.Tag == "" && !rule.Media.Promote {
			child.Declarations = append(child.Declarations,
				cssparse.Declaration{Name: "position", Value: "absolute"},
				cssparse.Declaration{Name: "inset", Value: "0"},
				cssparse.Declaration{Name: "z-index", Value: "-1"},
			)
		}
		child.Declarations = append(child.Declarations, gradientDecls...)
		child.Declarations = append(child.Declarations, shared...)
		newRules = append(newRules, child)

		// The parent becomes the positioning context.
		if pseudo == "" && rule.Media.Tag == "" && !rule.Media.Promote {
			if _, ok := rule.Get("position"); !ok {
				rule.Set("position", "relative")
			}
		}
	}
	sheet.Rules = append(sheet.Rules, newRules...)
}

func injectBackgroundDivs(doc *flowbridge.Node, class, bgClass string) {
	flowbridge.Walk(doc, func(n *flowbridge.Node) {
		if n.Type != flowbridge.ElementNode || !n.HasClass(class) {
			return
		}
		bg := flowbridge.Element("div", flowbridge.Attribute{Key: "class", Val: bgClass})
		n.PrependChild(bg)
	})
}

func classExists(sheet *cssparse.Stylesheet, doc *flowbridge.Node, class string) bool {
	needle := "." + class
	for _, rule := range sheet.Rules {
		if strings.Contains(rule.Selector, needle) {
			return true
		}
	}
	found := false
	flowbridge.Walk(doc, func(n *flowbridge.Node) {
		if !found && n.Type == flowbridge.ElementNode && n.HasClass(class) {
			found = true
		}
	})
	return found
}
