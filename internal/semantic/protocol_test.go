package semantic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	flowbridge "github.com/flowbridge/compiler/internal"
	"github.com/flowbridge/compiler/internal/component"
)

func TestDecodeResponseAcceptsWellFormed(t *testing.T) {
	body := `{
		"componentRenames": [{"id": "hero", "name": "Hero"}],
		"htmlPatches": [{"componentId": "hero", "op": "replaceHtml", "html": "<section class=\"hero\">x</section>"}],
		"cssPatches": [{"op": "replaceFinalCss", "css": ".hero { color: red; }"}],
		"notes": ["renamed one component"]
	}`
	resp, err := DecodeResponse([]byte(body))
	require.NoError(t, err)
	assert.Len(t, resp.ComponentRenames, 1)
	assert.Len(t, resp.HTMLPatches, 1)
	assert.Len(t, resp.CSSPatches, 1)
}

func TestDecodeResponseRejectsDeviations(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "unknown top-level key", body: `{"componentRenames": [], "extra": true}`},
		{name: "unknown nested key", body: `{"componentRenames": [{"id": "a", "name": "b", "why": "nope"}]}`},
		{name: "wrong html op", body: `{"htmlPatches": [{"componentId": "a", "op": "setHtml", "html": "<p>x</p>"}]}`},
		{name: "wrong css op", body: `{"cssPatches": [{"op": "appendCss", "css": ".a{}"}]}`},
		{name: "wrong type", body: `{"notes": "not a list"}`},
		{name: "rename without name", body: `{"componentRenames": [{"id": "a", "name": ""}]}`},
		{name: "patch without componentId", body: `{"htmlPatches": [{"componentId": "", "op": "replaceHtml", "html": "<p>x</p>"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeResponse([]byte(tt.body))
			assert.Error(t, err)
		})
	}
}

func TestBuildRequestOutline(t *testing.T) {
	doc := flowbridge.Parse(`<body><section class="hero" id="top"><h1>Hello world</h1></section><footer>end</footer></body>`)
	tree := component.Componentize(doc)
	req := BuildRequest(doc, tree, []string{"warn"}, map[string]string{"--a": "red"})

	require.NotEmpty(t, req.DOMOutline)
	assert.Equal(t, "n1", req.DOMOutline[0].NodeID)
	assert.Equal(t, "section", req.DOMOutline[0].Tag)
	assert.Equal(t, "top", req.DOMOutline[0].ID)

	// BFS: both top-level elements come before the nested heading.
	assert.Equal(t, "footer", req.DOMOutline[1].Tag)
	assert.Equal(t, "h1", req.DOMOutline[2].Tag)

	require.Len(t, req.Components, len(tree.Components))
	assert.Equal(t, req.Components[0].RootNodeIDs, []string{"n1"})
	assert.Len(t, req.ComponentHTML, len(tree.Components))
}

func TestApplySemantics(t *testing.T) {
	doc := flowbridge.Parse(`<body><section class="hero"><h1>A</h1></section></body>`)
	tree := component.Componentize(doc)
	compID := tree.Components[0].ID

	resp := &Response{
		ComponentRenames: []Rename{{ID: compID, Name: "Hero"}, {ID: "ghost", Name: "Ignored"}},
		HTMLPatches:      []HTMLPatch{{ComponentID: compID, Op: "replaceHtml", HTML: `<section class="hero-new"><h1>B</h1></section>`}},
		CSSPatches: []CSSPatch{
			{Op: "replaceFinalCss", CSS: ".old { color: red; }"},
			{Op: "replaceFinalCss", CSS: ".new { color: blue; }"},
		},
	}
	res, err := Apply(tree, resp)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Renamed)
	assert.Equal(t, "Hero", tree.Components[0].Name)
	assert.Equal(t, "hero-new", tree.Components[0].PrimaryClass)
	assert.True(t, res.CSSReplaced)
	assert.Equal(t, ".new { color: blue; }", res.FinalCSS, "last css patch wins")
}

func TestApplyRejectsEmptyingPatch(t *testing.T) {
	doc := flowbridge.Parse(`<body><section class="hero"><h1>A</h1></section></body>`)
	tree := component.Componentize(doc)
	compID := tree.Components[0].ID

	resp := &Response{
		ComponentRenames: []Rename{{ID: compID, Name: "ShouldNotApply"}},
		HTMLPatches:      []HTMLPatch{{ComponentID: compID, Op: "replaceHtml", HTML: "   "}},
	}
	_, err := Apply(tree, resp)
	require.Error(t, err)
	assert.NotEqual(t, "ShouldNotApply", tree.Components[0].Name, "rejected responses leave the tree untouched")
}

func TestShouldInvoke(t *testing.T) {
	named := &component.Tree{Components: []*component.Component{{Name: "Hero"}}}
	generic := &component.Tree{Components: []*component.Component{{Name: "Section 2"}}}

	assert.False(t, ShouldInvoke(nil, nil, named, false))
	assert.True(t, ShouldInvoke([]string{"--x"}, nil, named, false))
	assert.True(t, ShouldInvoke(nil, []string{"warn"}, named, false))
	assert.True(t, ShouldInvoke(nil, nil, generic, false))
	assert.True(t, ShouldInvoke(nil, nil, named, true))
}
