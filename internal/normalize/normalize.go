// Package normalize rewrites the parsed document and stylesheet into the
// class-per-element model the scene-graph emitter consumes: every element the
// pipeline cares about carries a class, and every surviving CSS rule is a
// single class selector optionally suffixed by a pseudo-state.
package normalize

import (
	"fmt"
	"strings"

	flowbridge "github.com/flowbridge/compiler/internal"
	"github.com/flowbridge/compiler/internal/cssparse"
	"github.com/flowbridge/compiler/internal/tokens"
	"go.uber.org/zap"
)

// Options tune the normalizer. Zero value is usable.
type Options struct {
	// DecouplerSuffix names the synthetic gradient-layer class. Default "-bg".
	DecouplerSuffix string
	// StrictVars makes an unresolved var() reference fail the run.
	StrictVars bool
	Logger     *zap.Logger
}

func (o *Options) defaults() {
	if o.DecouplerSuffix == "" {
		o.DecouplerSuffix = "-bg"
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
}

// Result reports everything the normalizer changed or displaced.
type Result struct {
	Warnings []string
	// ClassRenames maps synthetic class names to a short description of why
	// they were introduced (the class-renaming report).
	ClassRenames map[string]string
	// LeftoverRules could not be flattened to a class selector and belong
	// in the CSS embed channel.
	LeftoverRules []*cssparse.Rule
	// RemovedPseudoElements are ::before/::after rules for the embed channel.
	RemovedPseudoElements []*cssparse.Rule
	// Unresolved lists var() names with no declaration.
	Unresolved []string
	// BodyWrapped records whether a wf-body wrapper was synthesized.
	BodyWrapped bool
}

func (r *Result) warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

func (r *Result) rename(class, why string) {
	if _, exists := r.ClassRenames[class]; !exists {
		r.ClassRenames[class] = why
	}
}

// Normalize runs the fixed pass sequence over the document and stylesheet.
// Passes only append warnings; none abort.
//
// Order is load-bearing: literalization must see gradient-sanitized values,
// the decoupler must run before selector rewrite so its synthetic classes are
// plain class selectors, and the body wrapper must exist before classless
// divs are named.
func Normalize(doc *flowbridge.Node, sheet *cssparse.Stylesheet, opts Options) (*Result, error) {
	opts.defaults()
	res := &Result{ClassRenames: map[string]string{}}
	log := opts.Logger.Named("normalize")

	stripProblematicAttrs(doc, res)
	replaceHeadingBreaks(doc, res)
	sanitizeGradients(sheet)

	lit, err := tokens.Literalize(sheet, opts.StrictVars)
	if err != nil {
		return res, err
	}
	res.RemovedPseudoElements = lit.RemovedPseudoElements
	res.Unresolved = lit.Unresolved
	res.Warnings = append(res.Warnings, lit.Warnings...)

	decouple(doc, sheet, opts, res)
	rewriteSelectors(doc, sheet, res)
	synthesizeBodyWrapper(doc, sheet, res)
	nameClasslessDivs(doc, sheet, res)
	applyTypographyFallbacks(doc, sheet, res)

	log.Debug("normalized document",
		zap.Int("warnings", len(res.Warnings)),
		zap.Int("leftoverRules", len(res.LeftoverRules)),
		zap.Int("renames", len(res.ClassRenames)))
	return res, nil
}

// stripProblematicAttrs drops inline event handlers and contenteditable.
// Inline handlers cannot run inside the builder and contenteditable fights
// its editor surface.
func stripProblematicAttrs(doc *flowbridge.Node, res *Result) {
	flowbridge.Walk(doc, func(n *flowbridge.Node) {
		if n.Type != flowbridge.ElementNode {
			return
		}
		kept := n.Attr[:0]
		for _, a := range n.Attr {
			key := strings.ToLower(a.Key)
			if strings.HasPrefix(key, "on") && len(key) > 2 {
				res.warnf("removed inline handler %s on <%s>", a.Key, n.Data)
				continue
			}
			if key == "contenteditable" {
				res.warnf("removed contenteditable on <%s>", n.Data)
				continue
			}
			kept = append(kept, a)
		}
		n.Attr = kept
	})
}

// replaceHeadingBreaks swaps <br> inside h1..h6 for a block span. A raw <br>
// inside a heading crashes the target's reactive runtime.
func replaceHeadingBreaks(doc *flowbridge.Node, res *Result) {
	flowbridge.Walk(doc, func(n *flowbridge.Node) {
		if n.Type != flowbridge.ElementNode || !isHeadingTag(n.Data) {
			return
		}
		var brs []*flowbridge.Node
		flowbridge.Walk(n, func(c *flowbridge.Node) {
			if c.Type == flowbridge.ElementNode && c.Data == "br" {
				brs = append(brs, c)
			}
		})
		for _, br := range brs {
			span := flowbridge.Element("span", flowbridge.Attribute{Key: "style", Val: "display:block"})
			parent := br.Parent
			parent.InsertBefore(span, br)
			parent.RemoveChild(br)
			res.warnf("replaced <br> inside <%s> with a block span", n.Data)
		}
	})
}

func isHeadingTag(tag string) bool {
	return len(tag) == 2 && tag[0] == 'h' && tag[1] >= '1' && tag[1] <= '6'
}

// headingLevel returns N for h1..h6, 0 otherwise.
func headingLevel(tag string) int {
	if isHeadingTag(tag) {
		return int(tag[1] - '0')
	}
	return 0
}
