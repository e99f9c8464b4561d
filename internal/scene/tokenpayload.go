package scene

import (
	"github.com/iancoleman/strcase"

	"github.com/flowbridge/compiler/internal/tokens"
)

// TokenPayload builds the shared style-guide payload: a swatch block per
// color token and a sample per font and spacing token, so pasting it gives
// the builder one element per shared style to adopt.
func TokenPayload(m *tokens.Manifest, newID func() string) *Payload {
	if newID == nil {
		newID = NewID
	}
	inner := &Inner{Nodes: []*Node{}, Styles: []*Style{}, Assets: []Asset{}}

	rootStyle := &Style{ID: newID(), Name: "style-guide", StyleLess: "display: flex; flex-direction: column; row-gap: 1rem; column-gap: 1rem; padding-top: 2rem; padding-right: 2rem; padding-bottom: 2rem; padding-left: 2rem;"}
	inner.Styles = append(inner.Styles, rootStyle)
	root := &Node{ID: newID(), Type: NodeBlock, Tag: "div", Classes: []string{rootStyle.ID}, Children: []string{}}
	inner.Nodes = append(inner.Nodes, root)

	for _, v := range m.Variables {
		name := "token-" + strcase.ToKebab(v.Path)
		var styleLess string
		switch v.Type {
		case tokens.TypeColor:
			value := v.Value
			if v.Values != nil {
				value = v.Values.Light
			}
			styleLess = "background-color: " + value + "; height: 3rem;"
		case tokens.TypeFontFamily:
			styleLess = "font-family: " + v.Value + "; font-size: 1.5rem;"
		case tokens.TypeSpacing:
			styleLess = "padding-top: " + v.Value + "; padding-bottom: " + v.Value + ";"
		}
		style := &Style{ID: newID(), Name: name, StyleLess: ConvertStyleLess(styleLess)}
		inner.Styles = append(inner.Styles, style)

		swatch := &Node{ID: newID(), Type: NodeBlock, Tag: "div", Classes: []string{style.ID}, Children: []string{}}
		label := &Node{ID: newID(), Text: true, V: v.Path, Classes: []string{}, Children: []string{}}
		inner.Nodes = append(inner.Nodes, swatch, label)
		swatch.Children = append(swatch.Children, label.ID)
		root.Children = append(root.Children, swatch.ID)
	}

	return &Payload{Type: PayloadType, Payload: *inner}
}
