package scene

import (
	"fmt"
	"hash/fnv"
	"strings"

	flowbridge "github.com/flowbridge/compiler/internal"
	"github.com/flowbridge/compiler/internal/component"
	"github.com/flowbridge/compiler/internal/cssparse"
	"go.uber.org/zap"
)

// embedTags cannot be expressed as scene nodes and relocate wholesale into
// HtmlEmbed nodes.
var embedTags = map[string]bool{
	"script": true, "style": true, "iframe": true, "svg": true,
	"canvas": true, "video": true, "audio": true, "object": true,
	"embed": true, "noscript": true,
}

// Emitter converts one component into a clipboard payload.
type Emitter struct {
	Index *cssparse.ClassIndex
	// NewID mints node and style UUIDs; defaults to NewID.
	NewID func() string
	Log   *zap.Logger
}

func NewEmitter(index *cssparse.ClassIndex, log *zap.Logger) *Emitter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Emitter{Index: index, NewID: NewID, Log: log.Named("emit")}
}

type emitState struct {
	e           *Emitter
	inner       *Inner
	styleByName map[string]*Style
}

// Emit walks the component's tree depth-first and produces its payload.
// Every class referenced by any node gets a style record, placeholder or
// not, so the safety gate never has to invent one.
func (e *Emitter) Emit(comp *component.Component) *Payload {
	st := &emitState{e: e, inner: &Inner{}, styleByName: map[string]*Style{}}

	root := comp.Root
	if root == nil {
		doc := flowbridge.Parse(comp.HTMLContent)
		for _, c := range doc.Children() {
			if c.Type == flowbridge.ElementNode {
				root = c
				break
			}
		}
	}
	if root != nil {
		st.emitElement(root)
	}

	if st.inner.Nodes == nil {
		st.inner.Nodes = []*Node{}
	}
	if st.inner.Styles == nil {
		st.inner.Styles = []*Style{}
	}
	if st.inner.Assets == nil {
		st.inner.Assets = []Asset{}
	}
	e.Log.Debug("emitted component",
		zap.String("component", comp.ID),
		zap.Int("nodes", len(st.inner.Nodes)),
		zap.Int("styles", len(st.inner.Styles)))
	return &Payload{Type: PayloadType, Payload: *st.inner}
}

func (st *emitState) emitElement(n *flowbridge.Node) string {
	node := &Node{
		ID:       st.e.NewID(),
		Classes:  []string{},
		Children: []string{},
	}
	st.inner.Nodes = append(st.inner.Nodes, node)

	if embedTags[n.Data] {
		html := flowbridge.Render(n)
		node.Type = NodeHtmlEmbed
		node.Tag = "div"
		node.V = html
		node.Data = map[string]any{"embed": map[string]any{"meta": map[string]any{"html": html}}}
		return node.ID
	}

	node.Tag = n.Data
	switch n.Data {
	case "a":
		node.Type = NodeLink
		if href, ok := n.GetAttr("href"); ok {
			node.Data = map[string]any{"link": map[string]any{"url": href}}
		}
	case "img":
		node.Type = NodeImage
		src, _ := n.GetAttr("src")
		alt, _ := n.GetAttr("alt")
		node.Data = map[string]any{"attr": map[string]any{"src": src, "alt": alt}}
		if src != "" {
			st.inner.Assets = append(st.inner.Assets, Asset{ID: st.e.NewID(), URL: src, Alt: alt})
		}
	case "ul", "ol":
		node.Type = NodeList
	case "li":
		node.Type = NodeListItem
	default:
		node.Type = NodeBlock
	}

	for _, class := range n.Classes() {
		node.Classes = append(node.Classes, st.ensureStyle(class).ID)
	}
	if inline, ok := n.GetAttr("style"); ok && strings.TrimSpace(inline) != "" {
		node.Classes = append(node.Classes, st.inlineStyle(inline).ID)
	}

	if flowbridge.IsVoidTag(n.Data) {
		return node.ID
	}

	// A run of pure text and line breaks collapses into one text leaf; the
	// safety gate later relocates the breaks to newlines.
	if textOnly(n) {
		var v strings.Builder
		for _, c := range n.Children() {
			switch c.Type {
			case flowbridge.TextNode:
				v.WriteString(c.Data)
			case flowbridge.ElementNode:
				v.WriteString("<br>")
			}
		}
		if s := v.String(); strings.TrimSpace(s) != "" {
			leaf := &Node{ID: st.e.NewID(), Text: true, V: s, Classes: []string{}, Children: []string{}}
			st.inner.Nodes = append(st.inner.Nodes, leaf)
			node.Children = append(node.Children, leaf.ID)
		}
		return node.ID
	}

	for _, c := range n.Children() {
		switch c.Type {
		case flowbridge.ElementNode:
			node.Children = append(node.Children, st.emitElement(c))
		case flowbridge.TextNode:
			if strings.TrimSpace(c.Data) == "" {
				continue
			}
			leaf := &Node{ID: st.e.NewID(), Text: true, V: c.Data, Classes: []string{}, Children: []string{}}
			st.inner.Nodes = append(st.inner.Nodes, leaf)
			node.Children = append(node.Children, leaf.ID)
		}
	}
	return node.ID
}

// textOnly reports whether n's children are exclusively text and <br>.
func textOnly(n *flowbridge.Node) bool {
	hasText := false
	for _, c := range n.Children() {
		switch {
		case c.Type == flowbridge.TextNode:
			if strings.TrimSpace(c.Data) != "" {
				hasText = true
			}
		case c.Type == flowbridge.ElementNode && c.Data == "br":
		case c.Type == flowbridge.CommentNode:
		default:
			return false
		}
	}
	return hasText
}

func (st *emitState) ensureStyle(class string) *Style {
	if s, ok := st.styleByName[class]; ok {
		return s
	}
	s := &Style{ID: st.e.NewID(), Name: class}
	if entry := st.e.Index.Get(class); entry != nil {
		s.StyleLess = ConvertStyleLess(entry.BaseStyles)
		for tag, serialized := range entry.MediaQueries {
			if s.Variants == nil {
				s.Variants = map[string]Variant{}
			}
			s.Variants[tag] = Variant{StyleLess: ConvertStyleLess(serialized)}
		}
		for pseudo, serialized := range entry.Pseudos {
			if !cssparse.IsPseudoState(pseudo) {
				continue
			}
			if s.Variants == nil {
				s.Variants = map[string]Variant{}
			}
			s.Variants[pseudo] = Variant{StyleLess: ConvertStyleLess(serialized)}
		}
	}
	st.styleByName[class] = s
	st.inner.Styles = append(st.inner.Styles, s)
	return s
}

// inlineStyle lifts a style="..." attribute into a synthetic class keyed by
// content hash, so identical inline styles share one record.
func (st *emitState) inlineStyle(inline string) *Style {
	h := fnv.New32a()
	h.Write([]byte(inline))
	name := fmt.Sprintf("inline-%08x", h.Sum32())
	if s, ok := st.styleByName[name]; ok {
		return s
	}
	s := &Style{ID: st.e.NewID(), Name: name, StyleLess: ConvertStyleLess(inline)}
	st.styleByName[name] = s
	st.inner.Styles = append(st.inner.Styles, s)
	return s
}
