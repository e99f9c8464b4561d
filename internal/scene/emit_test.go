package scene

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	flowbridge "github.com/flowbridge/compiler/internal"
	"github.com/flowbridge/compiler/internal/component"
	"github.com/flowbridge/compiler/internal/cssparse"
)

// seqIDs hands out deterministic ids so tests can reference them.
func seqIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("00000000-0000-4000-8000-%012d", n)
	}
}

func emitHTML(t *testing.T, html, css string) *Payload {
	t.Helper()
	sheet := cssparse.NewParser(nil).Parse(css)
	doc := flowbridge.Parse(html)
	var classes []string
	flowbridge.Walk(doc, func(n *flowbridge.Node) {
		if n.Type == flowbridge.ElementNode {
			classes = append(classes, n.Classes()...)
		}
	})
	index := cssparse.BuildIndex(sheet, classes)

	tree := component.Componentize(doc)
	require.NotEmpty(t, tree.Components)

	e := NewEmitter(index, nil)
	e.NewID = seqIDs()
	return e.Emit(tree.Components[0])
}

func styleByName(p *Payload, name string) *Style {
	for _, s := range p.Payload.Styles {
		if s.Name == name {
			return s
		}
	}
	return nil
}

func TestEmitBasicTree(t *testing.T) {
	p := emitHTML(t,
		`<section class="hero"><h1 class="heading-h1">Hi</h1></section>`,
		`.hero { padding-top: 32px; }`)

	assert.Equal(t, PayloadType, p.Type)
	require.Len(t, p.Payload.Nodes, 3)

	root := p.Payload.Nodes[0]
	assert.Equal(t, NodeBlock, root.Type)
	assert.Equal(t, "section", root.Tag)
	require.Len(t, root.Classes, 1)

	hero := styleByName(p, "hero")
	require.NotNil(t, hero)
	assert.Equal(t, root.Classes[0], hero.ID, "node classes are style uuids")
	assert.Equal(t, "padding-top: 2rem;", hero.StyleLess)

	// Placeholder style for the class with no CSS behind it.
	heading := styleByName(p, "heading-h1")
	require.NotNil(t, heading)
	assert.Empty(t, heading.StyleLess)

	leaf := p.Payload.Nodes[2]
	assert.True(t, leaf.Text)
	assert.Equal(t, "Hi", leaf.V)
}

func TestEmitVariants(t *testing.T) {
	p := emitHTML(t,
		`<section class="hero">x</section>`,
		`.hero { color: red; }
		.hero:hover { color: blue; }
		@media (max-width: 479px) { .hero { color: green; } }`)

	hero := styleByName(p, "hero")
	require.NotNil(t, hero)
	require.Contains(t, hero.Variants, "hover")
	assert.Equal(t, "color: blue;", hero.Variants["hover"].StyleLess)
	require.Contains(t, hero.Variants, "tiny")
	assert.Equal(t, "color: green;", hero.Variants["tiny"].StyleLess)
}

func TestEmitLinkAndImage(t *testing.T) {
	p := emitHTML(t,
		`<section class="hero"><a href="/go" class="btn">Go</a><img src="/a.png" alt="pic" /></section>`,
		``)

	var link, img *Node
	for _, n := range p.Payload.Nodes {
		switch n.Type {
		case NodeLink:
			link = n
		case NodeImage:
			img = n
		}
	}
	require.NotNil(t, link)
	assert.Equal(t, map[string]any{"link": map[string]any{"url": "/go"}}, link.Data)
	require.NotNil(t, img)
	assert.Empty(t, img.Children, "void elements never have children")
	require.Len(t, p.Payload.Assets, 1)
	assert.Equal(t, "/a.png", p.Payload.Assets[0].URL)
}

func TestEmitInlineStyleLifted(t *testing.T) {
	p := emitHTML(t,
		`<section class="hero"><div style="margin-top: 16px">x</div></section>`,
		``)

	var inline *Style
	for _, s := range p.Payload.Styles {
		if s.Name != "hero" {
			inline = s
		}
	}
	require.NotNil(t, inline)
	assert.Contains(t, inline.Name, "inline-")
	assert.Equal(t, "margin-top: 1rem;", inline.StyleLess)
}

func TestEmitTextRunWithBreaks(t *testing.T) {
	p := emitHTML(t, `<section class="hero"><p>one<br>two</p></section>`, ``)

	var leaf *Node
	for _, n := range p.Payload.Nodes {
		if n.Text {
			leaf = n
		}
	}
	require.NotNil(t, leaf)
	assert.Equal(t, "one<br>two", leaf.V, "the safety gate relocates the break")
}

func TestEmitSVGBecomesEmbed(t *testing.T) {
	p := emitHTML(t, `<section class="hero"><svg viewBox="0 0 1 1"></svg></section>`, ``)

	var embed *Node
	for _, n := range p.Payload.Nodes {
		if n.Type == NodeHtmlEmbed {
			embed = n
		}
	}
	require.NotNil(t, embed)
	assert.Contains(t, embed.V, "<svg")
	meta := embed.Data["embed"].(map[string]any)["meta"].(map[string]any)
	assert.Equal(t, embed.V, meta["html"], "embed html is duplicated in data")
}

func TestEmitSharedStylePerClass(t *testing.T) {
	p := emitHTML(t,
		`<section class="hero"><div class="card">a</div><div class="card">b</div></section>`,
		`.card { color: red; }`)

	count := 0
	for _, s := range p.Payload.Styles {
		if s.Name == "card" {
			count++
		}
	}
	assert.Equal(t, 1, count, "one style record per class")
}
