package flowbridge

import "strings"

// PrintToSource serializes the tree rooted at n. Output is deterministic:
// attribute values are double-quoted, the class attribute (when present) is
// emitted last, and void tags take their self-closing XHTML form.
func PrintToSource(b *strings.Builder, n *Node) {
	switch n.Type {
	case DocumentNode:
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			PrintToSource(b, c)
		}
	case TextNode:
		b.WriteString(n.Data)
	case CommentNode:
		b.WriteString("<!--")
		b.WriteString(n.Data)
		b.WriteString("-->")
	case ElementNode:
		b.WriteByte('<')
		b.WriteString(n.Data)
		printAttrs(b, n.Attr)
		if IsVoidTag(n.Data) {
			b.WriteString(" />")
			return
		}
		b.WriteByte('>')
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			PrintToSource(b, c)
		}
		b.WriteString("</")
		b.WriteString(n.Data)
		b.WriteByte('>')
	}
}

// Render returns the serialized form of n.
func Render(n *Node) string {
	var b strings.Builder
	PrintToSource(&b, n)
	return b.String()
}

// RenderChildren serializes only the children of n, concatenated.
func RenderChildren(n *Node) string {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		PrintToSource(&b, c)
	}
	return b.String()
}

func printAttrs(b *strings.Builder, attrs []Attribute) {
	var class *Attribute
	for i := range attrs {
		if strings.EqualFold(attrs[i].Key, "class") {
			class = &attrs[i]
			continue
		}
		printAttr(b, attrs[i])
	}
	if class != nil {
		printAttr(b, *class)
	}
}

func printAttr(b *strings.Builder, a Attribute) {
	b.WriteByte(' ')
	b.WriteString(a.Key)
	if a.Val == "" {
		return
	}
	b.WriteString(`="`)
	escapeAttr(b, a.Val)
	b.WriteByte('"')
}

func escapeAttr(b *strings.Builder, s string) {
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString("&quot;")
		default:
			b.WriteRune(r)
		}
	}
}
