package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	flowbridge "github.com/flowbridge/compiler/internal"
	"github.com/flowbridge/compiler/internal/cssparse"
)

func TestDecoupleGradientAndTransform(t *testing.T) {
	doc, sheet, _ := run(t,
		`<div class="card">x</div>`,
		`.card { background: linear-gradient(red, blue); transform: scale(1.05); }`)

	html := flowbridge.Render(flowbridge.Body(doc))
	assert.Equal(t, `<div class="card"><div class="card-bg"></div>x</div>`, html)

	card := ruleFor(sheet, ".card")
	require.NotNil(t, card)
	_, hasGradient := card.Get("background-image")
	assert.False(t, hasGradient)
	pos, _ := card.Get("position")
	assert.Equal(t, "relative", pos)
	tr, _ := card.Get("transform")
	assert.Equal(t, "scale(1.05)", tr)

	bg := ruleFor(sheet, ".card-bg")
	require.NotNil(t, bg)
	assert.Equal(t,
		"position: absolute; inset: 0; z-index: -1; background-image: linear-gradient(red, blue);",
		cssparse.Serialize(bg.Declarations))
}

func TestDecoupleSharedPropsDuplicated(t *testing.T) {
	_, sheet, _ := run(t,
		`<div class="card">x</div>`,
		`.card { background-image: linear-gradient(red, blue); will-change: transform; border-radius: 12px; overflow: hidden; }`)

	bg := ruleFor(sheet, ".card-bg")
	require.NotNil(t, bg)
	v, ok := bg.Get("border-top-left-radius")
	require.True(t, ok)
	assert.Equal(t, "12px", v)
	ov, ok := bg.Get("overflow-x")
	require.True(t, ok)
	assert.Equal(t, "hidden", ov)

	card := ruleFor(sheet, ".card")
	_, stillHasRadius := card.Get("border-top-left-radius")
	assert.True(t, stillHasRadius, "shared props are duplicated, not moved")
}

func TestDecoupleMirrorsHoverVariant(t *testing.T) {
	_, sheet, _ := run(t,
		`<div class="card">x</div>`,
		`.card { background-image: linear-gradient(red, blue); transition: transform 0.2s; }
		.card:hover { background-image: linear-gradient(blue, red); }`)

	var hoverChild *cssparse.Rule
	for _, r := range sheet.Rules {
		if r.Selector == ".card-bg:hover" {
			hoverChild = r
		}
	}
	require.NotNil(t, hoverChild)
	v, _ := hoverChild.Get("background-image")
	assert.Equal(t, "linear-gradient(blue, red)", v)
}

func TestDecoupleCollisionAborts(t *testing.T) {
	doc, _, res := run(t,
		`<div class="card"><div class="card-bg">existing</div>x</div>`,
		`.card { background-image: linear-gradient(red, blue); transform: scale(1); }`)

	found := false
	for _, w := range res.Warnings {
		if w == `decoupling skipped for .card: class .card-bg already exists` {
			found = true
		}
	}
	assert.True(t, found)

	// No second card-bg was injected.
	count := 0
	flowbridge.Walk(doc, func(n *flowbridge.Node) {
		if n.Type == flowbridge.ElementNode && n.HasClass("card-bg") {
			count++
		}
	})
	assert.Equal(t, 1, count)
}

func TestNoDecoupleWithoutTransform(t *testing.T) {
	doc, sheet, _ := run(t,
		`<div class="card">x</div>`,
		`.card { background-image: linear-gradient(red, blue); }`)

	assert.Nil(t, ruleFor(sheet, ".card-bg"))
	html := flowbridge.Render(flowbridge.Body(doc))
	assert.NotContains(t, html, "card-bg")
}
