package flowbridge

import (
	"strconv"
	"strings"

	"github.com/flowbridge/compiler/internal/loc"
	"golang.org/x/net/html/atom"
)

// A NodeType is the type of a Node.
type NodeType uint32

const (
	ErrorNode NodeType = iota
	DocumentNode
	ElementNode
	TextNode
	CommentNode
)

// String returns a string representation of the NodeType.
func (t NodeType) String() string {
	switch t {
	case ErrorNode:
		return "Error"
	case DocumentNode:
		return "Document"
	case ElementNode:
		return "Element"
	case TextNode:
		return "Text"
	case CommentNode:
		return "Comment"
	}
	return "Invalid(" + strconv.Itoa(int(t)) + ")"
}

// An Attribute is a key-value pair on an element. Keys are case-preserving;
// Val is the raw attribute value with surrounding quotes removed.
type Attribute struct {
	Key string
	Val string
}

// A Node is a single node in the parsed HTML tree. Elements link to their
// children through FirstChild/NextSibling in authored order, mirroring the
// x/net/html tree shape.
//
// Data holds the tag name for ElementNode and the literal content for
// TextNode and CommentNode.
type Node struct {
	Parent, FirstChild, LastChild, PrevSibling, NextSibling *Node

	Type     NodeType
	DataAtom atom.Atom
	Data     string
	Attr     []Attribute
	Loc      loc.Loc

	// Warnings is populated on the document node only.
	Warnings []string
}

// voidTags never carry children and serialize in self-closing form.
var voidTags = map[string]bool{
	"img": true, "br": true, "hr": true, "input": true, "meta": true,
	"link": true, "area": true, "base": true, "col": true, "embed": true,
	"param": true, "source": true, "track": true, "wbr": true,
}

// rawTextTags hold character data that must not be tokenized as markup.
var rawTextTags = map[string]bool{
	"script": true, "style": true, "textarea": true, "title": true,
}

// IsVoidTag reports whether tag is an HTML void element.
func IsVoidTag(tag string) bool {
	return voidTags[strings.ToLower(tag)]
}

// AppendChild adds a node c as a child of n.
//
// It will panic if c already has a parent or siblings.
func (n *Node) AppendChild(c *Node) {
	if c.Parent != nil || c.PrevSibling != nil || c.NextSibling != nil {
		panic("flowbridge: AppendChild called for an attached child Node")
	}
	last := n.LastChild
	if last != nil {
		last.NextSibling = c
	} else {
		n.FirstChild = c
	}
	n.LastChild = c
	c.Parent = n
	c.PrevSibling = last
}

// RemoveChild removes a node c that is a child of n. Afterwards, c will have
// no parent and no siblings.
//
// It will panic if c's parent is not n.
func (n *Node) RemoveChild(c *Node) {
	if c.Parent != n {
		panic("flowbridge: RemoveChild called for a non-child Node")
	}
	if n.FirstChild == c {
		n.FirstChild = c.NextSibling
	}
	if c.NextSibling != nil {
		c.NextSibling.PrevSibling = c.PrevSibling
	}
	if n.LastChild == c {
		n.LastChild = c.PrevSibling
	}
	if c.PrevSibling != nil {
		c.PrevSibling.NextSibling = c.NextSibling
	}
	c.Parent = nil
	c.PrevSibling = nil
	c.NextSibling = nil
}

// InsertBefore inserts newChild as a child of n, immediately before oldChild
// in the sequence of n's children. oldChild may be nil, in which case
// newChild is appended to the end of n's children.
//
// It will panic if newChild already has a parent or siblings.
func (n *Node) InsertBefore(newChild, oldChild *Node) {
	if newChild.Parent != nil || newChild.PrevSibling != nil || newChild.NextSibling != nil {
		panic("flowbridge: InsertBefore called for an attached child Node")
	}
	var prev, next *Node
	if oldChild != nil {
		prev, next = oldChild.PrevSibling, oldChild
	} else {
		prev = n.LastChild
	}
	if prev != nil {
		prev.NextSibling = newChild
	} else {
		n.FirstChild = newChild
	}
	if next != nil {
		next.PrevSibling = newChild
	} else {
		n.LastChild = newChild
	}
	newChild.Parent = n
	newChild.PrevSibling = prev
	newChild.NextSibling = next
}

// PrependChild adds c as the first child of n.
func (n *Node) PrependChild(c *Node) {
	n.InsertBefore(c, n.FirstChild)
}

// Children collects n's children into a slice. The slice is a snapshot; it
// stays valid while the caller detaches nodes during iteration.
func (n *Node) Children() []*Node {
	var out []*Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, c)
	}
	return out
}

// Closest traverses upward from the current node to find a node matching the
// provided condition, including the node itself.
func (n *Node) Closest(match func(*Node) bool) *Node {
	for cur := n; cur != nil; cur = cur.Parent {
		if match(cur) {
			return cur
		}
	}
	return nil
}

// Walk visits n and every descendant in document order.
func Walk(n *Node, cb func(*Node)) {
	cb(n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		Walk(c, cb)
	}
}

// GetAttr returns the value of the named attribute and whether it is present.
// Lookup is case-insensitive on the key, matching browser behavior.
func (n *Node) GetAttr(key string) (string, bool) {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val, true
		}
	}
	return "", false
}

// SetAttr sets the named attribute, replacing an existing value.
func (n *Node) SetAttr(key, val string) {
	for i, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, Attribute{Key: key, Val: val})
}

// RemoveAttr deletes every attribute with the given key.
func (n *Node) RemoveAttr(key string) {
	kept := n.Attr[:0]
	for _, a := range n.Attr {
		if !strings.EqualFold(a.Key, key) {
			kept = append(kept, a)
		}
	}
	n.Attr = kept
}

// ID returns the element's id attribute, if any.
func (n *Node) ID() string {
	v, _ := n.GetAttr("id")
	return v
}

// Classes returns the element's class tokens in authored order with
// duplicates removed, first occurrence winning.
func (n *Node) Classes() []string {
	raw, ok := n.GetAttr("class")
	if !ok {
		return nil
	}
	seen := map[string]bool{}
	var out []string
	for _, c := range strings.Fields(raw) {
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out
}

// HasClass reports whether the element carries the given class token.
func (n *Node) HasClass(class string) bool {
	for _, c := range n.Classes() {
		if c == class {
			return true
		}
	}
	return false
}

// AddClass appends a class token unless already present.
func (n *Node) AddClass(class string) {
	if class == "" || n.HasClass(class) {
		return
	}
	raw, ok := n.GetAttr("class")
	if !ok || strings.TrimSpace(raw) == "" {
		n.SetAttr("class", class)
		return
	}
	n.SetAttr("class", strings.TrimSpace(raw)+" "+class)
}

// SetClasses replaces the class attribute with the given tokens.
func (n *Node) SetClasses(classes []string) {
	if len(classes) == 0 {
		n.RemoveAttr("class")
		return
	}
	n.SetAttr("class", strings.Join(classes, " "))
}

// FirstClass returns the first class token, or "".
func (n *Node) FirstClass() string {
	cs := n.Classes()
	if len(cs) == 0 {
		return ""
	}
	return cs[0]
}

// Text returns the concatenated text content of n and its descendants.
func (n *Node) Text() string {
	var b strings.Builder
	Walk(n, func(c *Node) {
		if c.Type == TextNode {
			b.WriteString(c.Data)
		}
	})
	return strings.TrimSpace(b.String())
}

// Element creates a detached element node for the given tag.
func Element(tag string, attrs ...Attribute) *Node {
	return &Node{
		Type:     ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(strings.ToLower(tag))),
		Attr:     attrs,
	}
}

// Text node constructor.
func TextOf(value string) *Node {
	return &Node{Type: TextNode, Data: value}
}
