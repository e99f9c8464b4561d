package cssparse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifySelector(t *testing.T) {
	tests := []struct {
		sel  string
		kind SelectorKind
	}{
		{".foo", SelClass},
		{".foo:hover", SelClassPseudo},
		{"h1", SelTag},
		{"h1.big", SelTagClass},
		{".parent .child", SelDescendant},
		{".parent > h1", SelDescendant},
		{".a .b .c", SelDescendant},
		{"#id", SelOther},
		{"[data-x]", SelOther},
		{".a:not(.b)", SelOther},
		{".a ~ .b", SelOther},
		{".a + .b", SelOther},
		{"*", SelOther},
	}
	for _, tt := range tests {
		t.Run(tt.sel, func(t *testing.T) {
			assert.Equal(t, tt.kind, ClassifySelector(tt.sel).Kind, "selector %q", tt.sel)
		})
	}
}

func TestClassifySelectorParts(t *testing.T) {
	info := ClassifySelector(".parent > h1")
	require.Len(t, info.Parts, 2)
	assert.Equal(t, "parent", info.Parts[0].Class)
	assert.Equal(t, "h1", info.Parts[1].Tag)
	require.Len(t, info.Combinators, 1)
	assert.Equal(t, byte('>'), info.Combinators[0])

	info = ClassifySelector(".card:hover")
	assert.Equal(t, "hover", info.Parts[0].Pseudo)
	assert.False(t, info.Parts[0].PseudoElement)

	info = ClassifySelector(".card::after")
	assert.Equal(t, "after", info.Parts[0].Pseudo)
	assert.True(t, info.Parts[0].PseudoElement)
}

func TestBuildIndex(t *testing.T) {
	sheet := NewParser(nil).Parse(`
		.hero { color: red; }
		.hero:hover { color: blue; }
		@media (max-width: 767px) { .hero { color: green; } }
	`)
	ix := BuildIndex(sheet, []string{"hero", "unstyled"})

	hero := ix.Get("hero")
	require.NotNil(t, hero)
	assert.Equal(t, "color: red;", hero.BaseStyles)
	assert.Equal(t, "color: green;", hero.MediaQueries[BreakpointSmall])
	assert.Equal(t, "color: blue;", hero.Pseudos["hover"])

	// The placeholder invariant: classes used in markup always index.
	unstyled := ix.Get("unstyled")
	require.NotNil(t, unstyled)
	assert.True(t, unstyled.Empty())
}

func TestBuildIndexPromoteBackfill(t *testing.T) {
	// Mobile-first source: the base styles are the mobile styles and the
	// min-width override is the desktop layout. Desktop-first target: the
	// override folds into base, the displaced values back-fill narrower
	// breakpoints.
	sheet := NewParser(nil).Parse(`
		.grid { display: block; color: red; }
		@media (min-width: 992px) { .grid { display: grid; } }
	`)
	ix := BuildIndex(sheet, nil)
	grid := ix.Get("grid")
	require.NotNil(t, grid)

	assert.Equal(t, "display: grid; color: red;", grid.BaseStyles)
	assert.Equal(t, "display: block;", grid.MediaQueries[BreakpointMedium])
	assert.Equal(t, "display: block;", grid.MediaQueries[BreakpointSmall])
	assert.Equal(t, "display: block;", grid.MediaQueries[BreakpointTiny])
}

func TestSerializeRoundTrip(t *testing.T) {
	decls := []Declaration{
		{Name: "width", Value: "calc(100% - 2rem)"},
		{Name: "color", Value: "red"},
	}
	s := Serialize(decls)
	assert.Equal(t, "width: calc(100% - 2rem); color: red;", s)
	assert.Equal(t, decls, ParseDeclarationList(s))
}
