package safety

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowbridge/compiler/internal/scene"
	"github.com/flowbridge/compiler/internal/validate"
)

func newGate() *Gate {
	return New(DefaultConfig(), nil)
}

func payloadOf(nodes []*scene.Node, styles []*scene.Style) *scene.Payload {
	return &scene.Payload{
		Type:    scene.PayloadType,
		Payload: scene.Inner{Nodes: nodes, Styles: styles},
	}
}

func hasFix(r *Report, substr string) bool {
	for _, f := range r.AutoFixes {
		if strings.Contains(f, substr) {
			return true
		}
	}
	return false
}

func hasIssue(issues []validate.Issue, code string) bool {
	for _, is := range issues {
		if is.Code == code {
			return true
		}
	}
	return false
}

func TestGateCleanPayloadPasses(t *testing.T) {
	style := &scene.Style{ID: scene.NewID(), Name: "hero", StyleLess: "color: red;"}
	leaf := &scene.Node{ID: scene.NewID(), Text: true, V: "hi"}
	root := &scene.Node{ID: scene.NewID(), Type: scene.NodeBlock, Tag: "section",
		Classes: []string{style.ID}, Children: []string{leaf.ID}}

	report, embeds := newGate().Run(payloadOf([]*scene.Node{root, leaf}, []*scene.Style{style}))
	assert.Equal(t, StatusPass, report.Status)
	assert.False(t, report.Blocked)
	assert.Empty(t, report.AutoFixes)
	assert.True(t, embeds.Empty())
}

func TestGateDeduplicatesUUIDs(t *testing.T) {
	dup := "11111111-1111-4111-8111-111111111111"
	a := &scene.Node{ID: dup, Type: scene.NodeBlock, Tag: "div"}
	b := &scene.Node{ID: dup, Type: scene.NodeBlock, Tag: "div"}

	report, _ := newGate().Run(payloadOf([]*scene.Node{a, b}, nil))
	assert.NotEqual(t, a.ID, b.ID)
	assert.True(t, hasFix(report, "reminted duplicate node id"))
	assert.Equal(t, StatusWarn, report.Status)
}

func TestGateBreaksNodeCycle(t *testing.T) {
	a := &scene.Node{ID: scene.NewID(), Type: scene.NodeBlock}
	b := &scene.Node{ID: scene.NewID(), Type: scene.NodeBlock}
	a.Children = []string{b.ID}
	b.Children = []string{a.ID}

	report, _ := newGate().Run(payloadOf([]*scene.Node{a, b}, nil))
	assert.Equal(t, StatusWarn, report.Status)
	assert.True(t, hasIssue(report.Warnings, validate.CodeCircularReference))

	// No cycle remains.
	childCount := len(a.Children) + len(b.Children)
	assert.Less(t, childCount, 2)
	assert.False(t, report.Blocked)
}

func TestGateFlattensDeepSubtree(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxDepth = 5
	gate := New(cfg, nil)

	var nodes []*scene.Node
	var prev *scene.Node
	for i := 0; i < 10; i++ {
		n := &scene.Node{ID: scene.NewID(), Type: scene.NodeBlock, Tag: "div"}
		nodes = append(nodes, n)
		if prev != nil {
			prev.Children = []string{n.ID}
		}
		prev = n
	}
	leafText := &scene.Node{ID: scene.NewID(), Text: true, V: "deep"}
	nodes = append(nodes, leafText)
	prev.Children = []string{leafText.ID}

	report, embeds := gate.Run(payloadOf(nodes, nil))
	assert.True(t, hasIssue(report.Warnings, validate.CodeExcessiveDepth))
	assert.Contains(t, embeds.HTML, "deep")

	// The demoted node is an embed and the subtree below it is gone.
	var embed *scene.Node
	for _, n := range nodes {
		if n.Type == scene.NodeHtmlEmbed {
			embed = n
		}
	}
	require.NotNil(t, embed)
	assert.Empty(t, embed.Children)
	assert.Contains(t, embed.V, "deep")
}

func TestGateWrapsMultipleRoots(t *testing.T) {
	a := &scene.Node{ID: scene.NewID(), Type: scene.NodeBlock, Tag: "section"}
	b := &scene.Node{ID: scene.NewID(), Type: scene.NodeBlock, Tag: "section"}
	p := payloadOf([]*scene.Node{a, b}, nil)

	report, _ := newGate().Run(p)
	assert.True(t, hasFix(report, "Wrapped 2 root elements"))

	roots := p.Payload.Roots()
	require.Len(t, roots, 1)
	wrapperStyle := p.Payload.StyleByID(roots[0].Classes[0])
	require.NotNil(t, wrapperStyle)
	assert.Equal(t, "multi-root-wrapper", wrapperStyle.Name)
}

func TestGateMultiRootOptOut(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AllowMultiRoot = true
	a := &scene.Node{ID: scene.NewID(), Type: scene.NodeBlock}
	b := &scene.Node{ID: scene.NewID(), Type: scene.NodeBlock}
	p := payloadOf([]*scene.Node{a, b}, nil)

	New(cfg, nil).Run(p)
	assert.Len(t, p.Payload.Roots(), 2)
}

func TestGateStripsTextBreaks(t *testing.T) {
	leaf := &scene.Node{ID: scene.NewID(), Text: true, V: "one<br>two<br />three"}
	report, _ := newGate().Run(payloadOf([]*scene.Node{leaf}, nil))
	assert.Equal(t, "one\ntwo\nthree", leaf.V)
	assert.True(t, hasFix(report, "relocated <br>"))
}

func TestGateDropsOrphanPseudoStyle(t *testing.T) {
	base := &scene.Style{ID: scene.NewID(), Name: "card"}
	okHover := &scene.Style{ID: scene.NewID(), Name: "card:hover"}
	orphan := &scene.Style{ID: scene.NewID(), Name: "ghost:hover"}
	p := payloadOf(nil, []*scene.Style{base, okHover, orphan})

	newGate().Run(p)
	names := []string{}
	for _, s := range p.Payload.Styles {
		names = append(names, s.Name)
	}
	assert.ElementsMatch(t, []string{"card", "card:hover"}, names)
}

func TestGateDropsGhostAndInvalidVariants(t *testing.T) {
	node := &scene.Node{ID: scene.NewID(), Type: scene.NodeBlock}
	style := &scene.Style{ID: scene.NewID(), Name: "card", Variants: map[string]scene.Variant{
		"hover":                                {StyleLess: "color: red;"},
		"tiny":                                 {StyleLess: "color: blue;"},
		node.ID:                                {StyleLess: "color: green;"},
		"99999999-9999-4999-8999-999999999999": {StyleLess: "color: gray;"},
		"bogus-key":                            {StyleLess: "color: black;"},
	}}
	node.Classes = []string{style.ID}

	report, _ := newGate().Run(payloadOf([]*scene.Node{node}, []*scene.Style{style}))
	assert.True(t, hasIssue(report.Warnings, validate.CodeGhostVariantKey))
	assert.True(t, hasIssue(report.Warnings, validate.CodeInvalidVariantKey))

	keys := []string{}
	for k := range style.Variants {
		keys = append(keys, k)
	}
	assert.ElementsMatch(t, []string{"hover", "tiny", node.ID}, keys)
}

func TestGateRenamesReservedClasses(t *testing.T) {
	style := &scene.Style{ID: scene.NewID(), Name: "w-nav"}
	node := &scene.Node{ID: scene.NewID(), Type: scene.NodeBlock, Classes: []string{style.ID}}

	report, _ := newGate().Run(payloadOf([]*scene.Node{node}, []*scene.Style{style}))
	assert.Equal(t, "custom-nav", style.Name)
	assert.True(t, hasIssue(report.Warnings, validate.CodeReservedClassName))
}

func TestGateDropsOrphanChildReferences(t *testing.T) {
	node := &scene.Node{ID: scene.NewID(), Type: scene.NodeBlock,
		Children: []string{"00000000-dead-4000-8000-000000000000"}}

	report, _ := newGate().Run(payloadOf([]*scene.Node{node}, nil))
	assert.Empty(t, node.Children)
	assert.True(t, hasIssue(report.Warnings, validate.CodeOrphanChildReference))
	assert.False(t, report.Blocked)
}
