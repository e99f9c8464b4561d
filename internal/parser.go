package flowbridge

import "fmt"

// maxParseDepth caps the open-element stack. Opens past the cap attach their
// children to the capped ancestor instead of nesting further.
const maxParseDepth = 512

// Parse builds a document tree from arbitrary HTML input. Parsing is
// tolerant: it cannot fail, and every text, comment and element token lands
// somewhere in the tree; doctypes are skipped. Unclosed tags flush at the
// nearest ancestor boundary; close tags with no matching open element are
// dropped.
func Parse(source string) *Node {
	doc := &Node{Type: DocumentNode}
	z := NewTokenizer(source)
	stack := []*Node{doc}
	depthWarned := false

	top := func() *Node { return stack[len(stack)-1] }

	for {
		t := z.Next()
		if t.Type == ErrorToken {
			break
		}
		switch t.Type {
		case TextToken:
			if t.Data == "" {
				continue
			}
			top().AppendChild(&Node{Type: TextNode, Data: t.Data, Loc: t.Loc})
		case CommentToken:
			top().AppendChild(&Node{Type: CommentNode, Data: t.Data, Loc: t.Loc})
		case DoctypeToken:
			// skipped
		case StartTagToken, SelfClosingTagToken:
			n := &Node{
				Type:     ElementNode,
				Data:     t.Data,
				DataAtom: t.DataAtom,
				Attr:     t.Attr,
				Loc:      t.Loc,
			}
			top().AppendChild(n)
			if t.Type == SelfClosingTagToken || IsVoidTag(t.Data) {
				continue
			}
			if len(stack) >= maxParseDepth {
				if !depthWarned {
					doc.Warnings = append(doc.Warnings,
						fmt.Sprintf("element nesting exceeds %d levels; deeper elements are attached at the cap", maxParseDepth))
					depthWarned = true
				}
				continue
			}
			stack = append(stack, n)
		case EndTagToken:
			// Pop until the matching open tag. A close tag with no match
			// anywhere on the stack is dropped; the elements it would have
			// closed stay open (implicit closers at the ancestor boundary).
			match := -1
			for i := len(stack) - 1; i > 0; i-- {
				if stack[i].Data == t.Data {
					match = i
					break
				}
			}
			if match > 0 {
				stack = stack[:match]
			}
		}
	}
	return doc
}

// Body returns the content root of a parsed document: the <body> element if
// the input carried full document structure, otherwise the document itself.
func Body(doc *Node) *Node {
	var body *Node
	Walk(doc, func(n *Node) {
		if body == nil && n.Type == ElementNode && n.Data == "body" {
			body = n
		}
	})
	if body != nil {
		return body
	}
	return doc
}

// Depth returns the number of ancestors above n, the document node included.
func Depth(n *Node) int {
	d := 0
	for cur := n.Parent; cur != nil; cur = cur.Parent {
		d++
	}
	return d
}
