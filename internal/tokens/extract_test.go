package tokens

import (
	"testing"

	"github.com/lithammer/dedent"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowbridge/compiler/internal/cssparse"
)

func parseSheet(t *testing.T, css string) *cssparse.Stylesheet {
	t.Helper()
	return cssparse.NewParser(nil).Parse(dedent.Dedent(css))
}

func TestExtractModesAndPairs(t *testing.T) {
	sheet := parseSheet(t, `
		:root {
			--light-bg: #ffffff;
			--dark-bg: #0a0a0a;
			--light-text: #111111;
			--dark-text: #eeeeee;
		}
	`)
	m := Extract(sheet, "Launch Page", "flowbridge")

	assert.Equal(t, "Launch Page", m.Name)
	assert.Equal(t, "launch-page", m.Slug)
	assert.Equal(t, []string{"light", "dark"}, m.Modes)

	require.Len(t, m.Variables, 2)
	bg := m.Variables[0]
	assert.Equal(t, "--bg", bg.CSSVar)
	assert.Equal(t, "Colors / Background / Base", bg.Path)
	require.NotNil(t, bg.Values)
	assert.Equal(t, "#ffffff", bg.Values.Light)
	assert.Equal(t, "#0a0a0a", bg.Values.Dark)
}

func TestExtractClassification(t *testing.T) {
	sheet := parseSheet(t, `
		:root {
			--accent-coral: #ff6b5d;
			--section-padding: 6rem;
			--font-heading: "Space Grotesk", sans-serif;
			--radius-large: 24px;
		}
	`)
	m := Extract(sheet, "p", "ns")

	byVar := map[string]Variable{}
	for _, v := range m.Variables {
		byVar[v.CSSVar] = v
	}

	require.Contains(t, byVar, "--accent-coral")
	assert.Equal(t, TypeColor, byVar["--accent-coral"].Type)

	require.Contains(t, byVar, "--section-padding")
	assert.Equal(t, TypeSpacing, byVar["--section-padding"].Type)

	require.Contains(t, byVar, "--font-heading")
	assert.Equal(t, TypeFontFamily, byVar["--font-heading"].Type)

	// Radius variables surface only through CSS, never the manifest.
	assert.NotContains(t, byVar, "--radius-large")
}

func TestExtractValueBeatsName(t *testing.T) {
	// The name smells like spacing but the value is a color; value wins.
	sheet := parseSheet(t, `:root { --section-gap: #999999; }`)
	m := Extract(sheet, "p", "ns")
	require.Len(t, m.Variables, 1)
	assert.Equal(t, TypeColor, m.Variables[0].Type)
}

func TestExtractFonts(t *testing.T) {
	sheet := parseSheet(t, `
		:root { --font-body: "Inter", sans-serif; }
		.hero h1 { font-family: "Space Grotesk", sans-serif; }
		.other { font-family: var(--font-body); }
		.mono { font-family: Inter, monospace; }
	`)
	m := Extract(sheet, "p", "ns")

	assert.Equal(t, []string{"Inter", "Space Grotesk"}, m.Fonts.Families)
	assert.Contains(t, m.Fonts.GoogleFontsURL, "family=Inter")
	assert.Contains(t, m.Fonts.GoogleFontsURL, "family=Space+Grotesk")
	assert.Contains(t, m.Fonts.GoogleFontsURL, "display=swap")
}
