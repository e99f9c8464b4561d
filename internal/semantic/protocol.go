// Package semantic defines the patch protocol spoken with the external
// model, the deterministic application of its responses, and the transport.
// The protocol is deliberately over-constrained: the response schema is
// closed, every deviation rejects the response, and the pipeline always has a
// deterministic baseline to fall back on.
package semantic

import (
	"fmt"

	"github.com/go-json-experiment/json"

	flowbridge "github.com/flowbridge/compiler/internal"
	"github.com/flowbridge/compiler/internal/component"
)

// OutlineNode is one entry of the BFS DOM outline. Node ids (n1, n2, ...)
// are minted in BFS order.
type OutlineNode struct {
	NodeID  string   `json:"nodeId"`
	Tag     string   `json:"tag"`
	Classes []string `json:"classes"`
	ID      string   `json:"id,omitempty"`
	Text    string   `json:"text,omitempty"`
}

// ComponentRef ties a component to its outline nodes.
type ComponentRef struct {
	ComponentID string   `json:"componentId"`
	Name        string   `json:"name"`
	RootNodeIDs []string `json:"rootNodeIds"`
}

// Request is the full context handed to the model.
type Request struct {
	DOMOutline        []OutlineNode     `json:"domOutline"`
	Components        []ComponentRef    `json:"components"`
	Warnings          []string          `json:"warnings"`
	Tokens            map[string]string `json:"tokens"`
	FullHTML          string            `json:"fullHtml"`
	ComponentHTML     []string          `json:"componentHtml"`
	ComponentFullHTML []string          `json:"componentFullHtml"`
}

// Rename proposes a display name for a component.
type Rename struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// HTMLPatch replaces one component's HTML fragment.
type HTMLPatch struct {
	ComponentID string `json:"componentId"`
	Op          string `json:"op"`
	HTML        string `json:"html"`
}

// CSSPatch replaces the CSS feeding the emitter. Only the last one applies.
type CSSPatch struct {
	Op  string `json:"op"`
	CSS string `json:"css"`
}

// Response is the model's full patch set.
type Response struct {
	ComponentRenames []Rename    `json:"componentRenames"`
	HTMLPatches      []HTMLPatch `json:"htmlPatches"`
	CSSPatches       []CSSPatch  `json:"cssPatches"`
	Notes            []string    `json:"notes"`
}

const (
	opReplaceHTML = "replaceHtml"
	opReplaceCSS  = "replaceFinalCss"
)

// DecodeResponse parses and validates a response body. The schema is closed:
// unknown members, wrong op strings, or type mismatches reject the whole
// response.
func DecodeResponse(data []byte) (*Response, error) {
	var resp Response
	if err := json.Unmarshal(data, &resp, json.RejectUnknownMembers(true)); err != nil {
		return nil, fmt.Errorf("semantic response rejected: %w", err)
	}
	for _, p := range resp.HTMLPatches {
		if p.Op != opReplaceHTML {
			return nil, fmt.Errorf("semantic response rejected: unknown html patch op %q", p.Op)
		}
		if p.ComponentID == "" {
			return nil, fmt.Errorf("semantic response rejected: html patch without componentId")
		}
	}
	for _, p := range resp.CSSPatches {
		if p.Op != opReplaceCSS {
			return nil, fmt.Errorf("semantic response rejected: unknown css patch op %q", p.Op)
		}
	}
	for _, r := range resp.ComponentRenames {
		if r.ID == "" || r.Name == "" {
			return nil, fmt.Errorf("semantic response rejected: rename with empty id or name")
		}
	}
	return &resp, nil
}

const outlineTextMax = 80

// BuildRequest assembles the protocol request from the normalized document
// and the component tree.
func BuildRequest(doc *flowbridge.Node, tree *component.Tree, warnings []string, tokens map[string]string) *Request {
	req := &Request{
		Warnings: warnings,
		Tokens:   tokens,
		FullHTML: flowbridge.RenderChildren(flowbridge.Body(doc)),
	}

	nodeIDs := map[*flowbridge.Node]string{}
	// BFS over elements, minting n1, n2, ... in visit order.
	queue := []*flowbridge.Node{}
	for _, c := range flowbridge.Body(doc).Children() {
		if c.Type == flowbridge.ElementNode {
			queue = append(queue, c)
		}
	}
	next := 1
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		id := fmt.Sprintf("n%d", next)
		next++
		nodeIDs[n] = id

		text := n.Text()
		if len(text) > outlineTextMax {
			text = text[:outlineTextMax]
		}
		req.DOMOutline = append(req.DOMOutline, OutlineNode{
			NodeID:  id,
			Tag:     n.Data,
			Classes: n.Classes(),
			ID:      n.ID(),
			Text:    text,
		})
		for _, c := range n.Children() {
			if c.Type == flowbridge.ElementNode {
				queue = append(queue, c)
			}
		}
	}

	for _, comp := range tree.Components {
		ref := ComponentRef{ComponentID: comp.ID, Name: comp.Name}
		if comp.Root != nil {
			if id, ok := nodeIDs[comp.Root]; ok {
				ref.RootNodeIDs = append(ref.RootNodeIDs, id)
			}
		}
		req.Components = append(req.Components, ref)
		req.ComponentHTML = append(req.ComponentHTML, comp.HTMLContent)
		req.ComponentFullHTML = append(req.ComponentFullHTML, comp.HTMLContent)
	}
	return req
}
