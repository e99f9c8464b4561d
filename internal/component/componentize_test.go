package component

import (
	"strings"
	"testing"

	"github.com/lithammer/dedent"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	flowbridge "github.com/flowbridge/compiler/internal"
)

func componentize(t *testing.T, html string) *Tree {
	t.Helper()
	return Componentize(flowbridge.Parse(dedent.Dedent(html)))
}

func TestComponentizeSections(t *testing.T) {
	tree := componentize(t, `
		<body>
		<nav class="navbar">links</nav>
		<section class="hero"><h1>Build faster</h1></section>
		<footer class="footer">© 2025</footer>
		</body>
	`)
	require.Len(t, tree.Components, 3)
	assert.Equal(t, []string{tree.Components[0].ID, tree.Components[1].ID, tree.Components[2].ID}, tree.RootOrder)

	nav, hero, footer := tree.Components[0], tree.Components[1], tree.Components[2]
	assert.Equal(t, TypeNav, nav.Type)
	assert.Equal(t, TypeHero, hero.Type)
	assert.Equal(t, TypeFooter, footer.Type)
	assert.Equal(t, "Build faster", hero.Name)
	assert.Equal(t, "hero", hero.PrimaryClass)
}

func TestComponentizeDivByClassPattern(t *testing.T) {
	tree := componentize(t, `
		<body>
		<div class="pricing-section"><h2>Plans</h2></div>
		<div class="random">skipped</div>
		</body>
	`)
	require.Len(t, tree.Components, 1)
	assert.Equal(t, "Plans", tree.Components[0].Name)
}

func TestComponentizeMainRecursesOneLevel(t *testing.T) {
	tree := componentize(t, `
		<body>
		<main>
		<section class="hero"><h1>A</h1></section>
		<section class="features"><h2>B</h2></section>
		</main>
		</body>
	`)
	require.Len(t, tree.Components, 2)
	assert.Equal(t, "A", tree.Components[0].Name)
	assert.Equal(t, "B", tree.Components[1].Name)
}

func TestComponentizeFallbackWrapper(t *testing.T) {
	tree := componentize(t, `<body><div class="misc"><p>loose</p></div></body>`)
	require.Len(t, tree.Components, 1)
	assert.Equal(t, TypeWrapper, tree.Components[0].Type)
	require.NotEmpty(t, tree.Warnings)
}

func TestComponentizeUnwrapsBodyWrapper(t *testing.T) {
	tree := componentize(t, `
		<body><div class="wf-body">
		<section class="hero"><h1>A</h1></section>
		<section class="cta"><h2>B</h2></section>
		</div></body>
	`)
	require.Len(t, tree.Components, 2)
}

func TestComponentInventories(t *testing.T) {
	tree := componentize(t, `
		<body>
		<section class="hero" id="top" data-track="hero">
		<h1 class="title">Hi</h1>
		<img src="/a.png" alt="a" />
		<img src="/a.png" alt="dup" />
		<div class="cta" data-open="modal">go</div>
		</section>
		</body>
	`)
	require.Len(t, tree.Components, 1)
	c := tree.Components[0]

	assert.ElementsMatch(t, []string{"hero", "title", "cta"}, c.ClassesUsed)
	assert.Equal(t, []string{"/a.png"}, c.AssetsUsed)
	assert.ElementsMatch(t, []string{"data-track", "data-open", "#top"}, c.JSHooks)
}

func TestComponentNameTruncation(t *testing.T) {
	long := strings.Repeat("Word ", 20)
	tree := componentize(t, `<body><section class="hero"><h1>`+long+`</h1></section></body>`)
	require.Len(t, tree.Components, 1)
	assert.LessOrEqual(t, len(tree.Components[0].Name), 48)
}

func TestComponentIDCollisionSuffix(t *testing.T) {
	tree := componentize(t, `
		<body>
		<section class="hero"><h1>Same</h1></section>
		<section class="cta"><h1>Same</h1></section>
		</body>
	`)
	require.Len(t, tree.Components, 2)
	assert.Equal(t, "same", tree.Components[0].ID)
	assert.Equal(t, "same-2", tree.Components[1].ID)
}

func TestRootOrderRoundTrip(t *testing.T) {
	tree := componentize(t, `
		<body>
		<section class="a"><h2>A</h2></section>
		<section class="b"><h2>B</h2></section>
		</body>
	`)
	var joined strings.Builder
	for _, id := range tree.RootOrder {
		joined.WriteString(tree.ByID(id).HTMLContent)
	}
	reparsed := Componentize(flowbridge.Parse(joined.String()))
	require.Len(t, reparsed.Components, len(tree.Components))
	for i := range tree.Components {
		assert.Equal(t, tree.Components[i].PrimaryClass, reparsed.Components[i].PrimaryClass)
	}
}

func TestApplyDeterministicNames(t *testing.T) {
	tree := &Tree{Components: []*Component{
		{ID: "a", Name: "Section 1", ClassesUsed: []string{"faq-list"}},
		{ID: "b", Name: "Section 2", ClassesUsed: []string{"cta-banner"}},
		{ID: "c", Name: "Keep Me", ClassesUsed: []string{"faq"}},
		{ID: "d", Name: "Section 3", ClassesUsed: []string{"nothing-known"}},
	}}
	ApplyDeterministicNames(tree)

	assert.Equal(t, "FAQ", tree.Components[0].Name)
	assert.Equal(t, "CTA", tree.Components[1].Name)
	assert.Equal(t, "Keep Me", tree.Components[2].Name)
	assert.Equal(t, "Section 3", tree.Components[3].Name)
}

func TestApplyDeterministicNamesUniqueness(t *testing.T) {
	tree := &Tree{Components: []*Component{
		{ID: "a", Name: "Section 1", ClassesUsed: []string{"hero-top"}},
		{ID: "b", Name: "Section 2", ClassesUsed: []string{"hero-bottom"}},
	}}
	ApplyDeterministicNames(tree)
	assert.Equal(t, "Hero", tree.Components[0].Name)
	assert.Equal(t, "Hero 2", tree.Components[1].Name)
}
