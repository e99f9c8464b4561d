// Package component segments the normalized document into independently
// pastable components and derives their names, types, and hook inventories.
package component

import (
	"fmt"
	"strings"

	flowbridge "github.com/flowbridge/compiler/internal"
	"github.com/iancoleman/strcase"
)

// Type is the semantic role of a component.
type Type string

const (
	TypeNav          Type = "nav"
	TypeHeader       Type = "header"
	TypeHero         Type = "hero"
	TypeSection      Type = "section"
	TypeFooter       Type = "footer"
	TypeSubcomponent Type = "subcomponent"
	TypeWrapper      Type = "wrapper"
)

// Component is one independently pastable slice of the document.
type Component struct {
	ID           string
	Name         string
	Type         Type
	Tag          string
	PrimaryClass string
	HTMLContent  string
	ClassesUsed  []string
	AssetsUsed   []string
	JSHooks      []string
	Children     []*Component
	Order        int

	// Root keeps the component's subtree for downstream passes that need
	// structure rather than text.
	Root *flowbridge.Node
}

// Tree is the ordered component forest for one document.
type Tree struct {
	Components []*Component
	RootOrder  []string
	Warnings   []string
}

// ByID returns the component with the given id, or nil.
func (t *Tree) ByID(id string) *Component {
	for _, c := range t.Components {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// sectioningTags are extracted as components wherever they sit at top level.
var sectioningTags = map[string]bool{
	"nav": true, "header": true, "main": true, "section": true,
	"article": true, "aside": true, "footer": true,
}

// divClassPatterns admit top-level divs whose class smells like a landing
// page section. '*' globs any run; '?' a single optional character.
var divClassPatterns = []string{
	"nav*", "header*", "hero*", "section*", "*-section", "footer*",
	"navbar*", "w-nav*", "cta*", "banner*", "features?*", "pricing*",
	"testimonial*", "faq*",
}

// Componentize segments the document body into components. When no semantic
// boundary is found the whole body becomes a single wrapper component.
func Componentize(doc *flowbridge.Node) *Tree {
	tree := &Tree{}
	root := flowbridge.Body(doc)

	// A synthesized wf-body wrapper is transparent for segmentation.
	if only := singleElementChild(root); only != nil && only.HasClass("wf-body") {
		root = only
	}

	var candidates []*flowbridge.Node
	for _, c := range root.Children() {
		if c.Type != flowbridge.ElementNode {
			continue
		}
		if sectioningTags[c.Data] || (c.Data == "div" && matchesAnyPattern(c.Classes(), divClassPatterns)) {
			candidates = append(candidates, c)
		}
	}
	candidates = dropContained(candidates)

	// <main> is a grouping element, not a section; lift its children.
	var extracted []*flowbridge.Node
	for _, c := range candidates {
		if c.Data == "main" {
			for _, inner := range c.Children() {
				if inner.Type == flowbridge.ElementNode {
					extracted = append(extracted, inner)
				}
			}
			continue
		}
		extracted = append(extracted, c)
	}

	if len(extracted) == 0 {
		comp := buildComponent(root, 0)
		comp.Type = TypeWrapper
		assignID(tree, comp)
		tree.Components = append(tree.Components, comp)
		tree.RootOrder = append(tree.RootOrder, comp.ID)
		tree.Warnings = append(tree.Warnings, "no semantic sections found; document imported as a single wrapper")
		return tree
	}

	for i, el := range extracted {
		comp := buildComponent(el, i)
		assignID(tree, comp)
		tree.Components = append(tree.Components, comp)
		tree.RootOrder = append(tree.RootOrder, comp.ID)
	}
	return tree
}

func singleElementChild(n *flowbridge.Node) *flowbridge.Node {
	var only *flowbridge.Node
	for _, c := range n.Children() {
		switch c.Type {
		case flowbridge.ElementNode:
			if only != nil {
				return nil
			}
			only = c
		case flowbridge.TextNode:
			if strings.TrimSpace(c.Data) != "" {
				return nil
			}
		}
	}
	return only
}

func dropContained(candidates []*flowbridge.Node) []*flowbridge.Node {
	var out []*flowbridge.Node
	for _, c := range candidates {
		contained := false
		for _, earlier := range out {
			if isAncestorOf(earlier, c) {
				contained = true
				break
			}
		}
		if !contained {
			out = append(out, c)
		}
	}
	return out
}

func isAncestorOf(anc, n *flowbridge.Node) bool {
	for cur := n.Parent; cur != nil; cur = cur.Parent {
		if cur == anc {
			return true
		}
	}
	return false
}

func buildComponent(el *flowbridge.Node, order int) *Component {
	comp := &Component{
		Tag:          el.Data,
		PrimaryClass: el.FirstClass(),
		Order:        order,
		Root:         el,
		HTMLContent:  flowbridge.Render(el),
	}
	comp.ClassesUsed = collectClasses(el)
	comp.AssetsUsed = collectAssets(el)
	comp.JSHooks = collectHooks(el)
	comp.Name = deriveName(el, comp.PrimaryClass, order)
	comp.Type = deriveType(el, comp.PrimaryClass, order)
	return comp
}

const nameMaxLen = 48

func deriveName(el *flowbridge.Node, primaryClass string, order int) string {
	if h := firstHeadingText(el); h != "" {
		if len(h) > nameMaxLen {
			h = strings.TrimSpace(h[:nameMaxLen])
		}
		return h
	}
	if primaryClass != "" {
		return humanizeClass(primaryClass)
	}
	return fmt.Sprintf("Section %d", order+1)
}

func firstHeadingText(el *flowbridge.Node) string {
	var text string
	flowbridge.Walk(el, func(n *flowbridge.Node) {
		if text != "" || n.Type != flowbridge.ElementNode {
			return
		}
		switch n.Data {
		case "h1", "h2", "h3":
			text = n.Text()
		}
	})
	return text
}

func humanizeClass(class string) string {
	words := strings.Split(strcase.ToDelimited(class, ' '), " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// deriveType applies the precedence nav < header < footer < hero < section.
func deriveType(el *flowbridge.Node, primaryClass string, order int) Type {
	classID := strings.ToLower(primaryClass + " " + el.ID())
	switch el.Data {
	case "nav":
		return TypeNav
	case "header":
		return TypeHeader
	case "footer":
		return TypeFooter
	}
	if strings.Contains(classID, "nav") {
		return TypeNav
	}
	if strings.Contains(classID, "header") {
		return TypeHeader
	}
	if strings.Contains(classID, "footer") {
		return TypeFooter
	}
	if strings.Contains(classID, "hero") || (order <= 2 && containsTag(el, "h1")) {
		return TypeHero
	}
	return TypeSection
}

func containsTag(el *flowbridge.Node, tag string) bool {
	found := false
	flowbridge.Walk(el, func(n *flowbridge.Node) {
		if n.Type == flowbridge.ElementNode && n.Data == tag {
			found = true
		}
	})
	return found
}

func collectClasses(el *flowbridge.Node) []string {
	seen := map[string]bool{}
	var out []string
	flowbridge.Walk(el, func(n *flowbridge.Node) {
		for _, c := range n.Classes() {
			if !seen[c] {
				seen[c] = true
				out = append(out, c)
			}
		}
	})
	return out
}

func collectAssets(el *flowbridge.Node) []string {
	seen := map[string]bool{}
	var out []string
	flowbridge.Walk(el, func(n *flowbridge.Node) {
		if n.Type != flowbridge.ElementNode || n.Data != "img" {
			return
		}
		if src, ok := n.GetAttr("src"); ok && src != "" && !seen[src] {
			seen[src] = true
			out = append(out, src)
		}
	})
	return out
}

func collectHooks(el *flowbridge.Node) []string {
	seen := map[string]bool{}
	var out []string
	add := func(h string) {
		if h != "" && !seen[h] {
			seen[h] = true
			out = append(out, h)
		}
	}
	flowbridge.Walk(el, func(n *flowbridge.Node) {
		if n.Type != flowbridge.ElementNode {
			return
		}
		for _, a := range n.Attr {
			if strings.HasPrefix(strings.ToLower(a.Key), "data-") {
				add(a.Key)
			}
		}
		if id := n.ID(); id != "" {
			add("#" + id)
		}
	})
	return out
}

// assignID derives a slug id from the component name, suffixing on collision.
func assignID(tree *Tree, comp *Component) {
	base := strcase.ToKebab(comp.Name)
	if base == "" {
		base = "component"
	}
	id := base
	for i := 2; tree.ByID(id) != nil; i++ {
		id = fmt.Sprintf("%s-%d", base, i)
	}
	comp.ID = id
}

// ReSync refreshes the derived fields after HTMLContent is replaced by a
// semantic patch.
func (c *Component) ReSync() {
	doc := flowbridge.Parse(c.HTMLContent)
	var rootEl *flowbridge.Node
	for _, child := range doc.Children() {
		if child.Type == flowbridge.ElementNode {
			rootEl = child
			break
		}
	}
	if rootEl == nil {
		c.Root = doc
		c.ClassesUsed = nil
		c.PrimaryClass = ""
		return
	}
	c.Root = rootEl
	c.Tag = rootEl.Data
	c.PrimaryClass = rootEl.FirstClass()
	c.ClassesUsed = collectClasses(rootEl)
	c.AssetsUsed = collectAssets(rootEl)
	c.JSHooks = collectHooks(rootEl)
}

// matchesAnyPattern does simple glob matching: '*' matches any run, '?' one
// optional character.
func matchesAnyPattern(classes []string, patterns []string) bool {
	for _, class := range classes {
		for _, pat := range patterns {
			if globMatch(pat, strings.ToLower(class)) {
				return true
			}
		}
	}
	return false
}

func globMatch(pattern, s string) bool {
	return globMatchAt(pattern, s)
}

func globMatchAt(pattern, s string) bool {
	if pattern == "" {
		return s == ""
	}
	switch pattern[0] {
	case '*':
		for i := 0; i <= len(s); i++ {
			if globMatchAt(pattern[1:], s[i:]) {
				return true
			}
		}
		return false
	case '?':
		if globMatchAt(pattern[1:], s) {
			return true
		}
		if s != "" && globMatchAt(pattern[1:], s[1:]) {
			return true
		}
		return false
	default:
		if s == "" || s[0] != pattern[0] {
			return false
		}
		return globMatchAt(pattern[1:], s[1:])
	}
}
