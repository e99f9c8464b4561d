// Package scene models the target builder's clipboard payload and emits it
// from normalized components.
package scene

import "github.com/google/uuid"

// PayloadType is the bit-significant discriminator the builder's paste
// handler matches on.
const PayloadType = "@webflow/XscpData"

// Node types.
const (
	NodeBlock     = "Block"
	NodeLink      = "Link"
	NodeImage     = "Image"
	NodeHtmlEmbed = "HtmlEmbed"
	NodeList      = "List"
	NodeListItem  = "ListItem"
)

// Payload is one clipboard artifact.
type Payload struct {
	Type    string `json:"type"`
	Payload Inner  `json:"payload"`
	Meta    Meta   `json:"meta"`
}

// Inner carries the scene graph proper.
type Inner struct {
	Nodes  []*Node  `json:"nodes"`
	Styles []*Style `json:"styles"`
	Assets []Asset  `json:"assets"`
	IX1    []any    `json:"ix1"`
	IX2    IX2      `json:"ix2"`
}

// Meta mirrors the flags the builder reads on paste.
type Meta struct {
	UnlinkedSymbolCount int  `json:"unlinkedSymbolCount"`
	DroppedLinks        int  `json:"droppedLinks"`
	DynBindRemoved      int  `json:"dynBindRemovedCount"`
	PaginationRemoved   int  `json:"paginationRemovedCount"`
	UniversalBindings   bool `json:"universalBindingsRemovedCount,omitempty"`
}

// Node is one scene-graph node. Classes holds style UUIDs, never class
// names; Children holds node UUIDs.
type Node struct {
	ID       string         `json:"_id"`
	Type     string         `json:"type,omitempty"`
	Tag      string         `json:"tag,omitempty"`
	Classes  []string       `json:"classes"`
	Children []string       `json:"children"`
	Text     bool           `json:"text,omitempty"`
	V        string         `json:"v,omitempty"`
	Data     map[string]any `json:"data,omitempty"`
}

// Variant is one breakpoint / pseudo-state / per-instance override.
type Variant struct {
	StyleLess string `json:"styleLess"`
}

// Style is one class record.
type Style struct {
	ID        string             `json:"_id"`
	Name      string             `json:"name"`
	StyleLess string             `json:"styleLess"`
	Variants  map[string]Variant `json:"variants,omitempty"`
	Children  []string           `json:"children,omitempty"`
}

// Asset is an external file reference carried with the payload.
type Asset struct {
	ID  string `json:"_id"`
	URL string `json:"url"`
	Alt string `json:"alt,omitempty"`
}

// IX2 carries the builder's second-generation interaction records.
type IX2 struct {
	Interactions []Interaction `json:"interactions"`
	Events       []any         `json:"events"`
	ActionLists  []any         `json:"actionLists"`
}

// Interaction is the slice of the ix2 record the safety gate needs: identity,
// trigger kind, and the node it targets.
type Interaction struct {
	ID      string `json:"id"`
	Trigger string `json:"trigger"`
	Target  string `json:"target"`
	Config  map[string]any `json:"config,omitempty"`
}

// NewID mints a lowercase UUIDv4. Tests that need fixed ids replace
// Emitter.NewID instead.
func NewID() string {
	return uuid.NewString()
}

// NodeByID returns the node with the given id, or nil.
func (in *Inner) NodeByID(id string) *Node {
	for _, n := range in.Nodes {
		if n.ID == id {
			return n
		}
	}
	return nil
}

// StyleByID returns the style with the given id, or nil.
func (in *Inner) StyleByID(id string) *Style {
	for _, s := range in.Styles {
		if s.ID == id {
			return s
		}
	}
	return nil
}

// Roots returns the nodes that no other node references as a child.
func (in *Inner) Roots() []*Node {
	referenced := map[string]bool{}
	for _, n := range in.Nodes {
		for _, c := range n.Children {
			referenced[c] = true
		}
	}
	var roots []*Node
	for _, n := range in.Nodes {
		if !referenced[n.ID] {
			roots = append(roots, n)
		}
	}
	return roots
}

// Placeholder is the payload substituted when the safety gate blocks a
// component.
func Placeholder() map[string]bool {
	return map[string]bool{"placeholder": true}
}
