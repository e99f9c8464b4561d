package tokens

import (
	"regexp"
	"strings"

	"github.com/flowbridge/compiler/internal/cssparse"
	"github.com/iancoleman/strcase"
)

// spacingValue matches sequences of plain lengths: "16px", "1.5rem 2rem", ...
var spacingValue = regexp.MustCompile(`^\d+(\.\d+)?(px|rem|em|vw|vh|%)(\s+\d+(\.\d+)?(px|rem|em|vw|vh|%))*$`)

var spacingNameHints = []string{"padding", "margin", "gap", "spacing", "section-", "page-", "container-"}

var colorNameHints = []string{"bg", "text", "border", "accent", "coral", "dark", "light", "card", "muted"}

// colorPairGroups re-groups --light-X / --dark-X variables into mode pairs
// under a canonical token path.
var colorPairGroups = map[string]string{
	"bg":     "Colors / Background / Base",
	"text":   "Colors / Text / Base",
	"border": "Colors / Border / Base",
	"accent": "Colors / Accent / Base",
	"card":   "Colors / Card / Base",
	"muted":  "Colors / Muted / Base",
}

// Extract builds the design-token manifest from the variables collected on
// :root and .fp-root blocks. Classification inspects the value first and
// falls back to name heuristics; --radius-* variables stay out of the
// manifest (they surface only through CSS).
func Extract(sheet *cssparse.Stylesheet, projectName, namespace string) *Manifest {
	m := &Manifest{
		Name:      projectName,
		Slug:      strcase.ToKebab(projectName),
		Namespace: namespace,
		Modes:     []string{"light"},
	}

	type pending struct {
		name, value string
		typ         VariableType
	}
	var singles []pending
	pairLight := map[string]string{}
	pairDark := map[string]string{}
	pairOrder := []string{}

	for _, name := range sheet.Variables.Names() {
		value, _ := sheet.Variables.Get(name)
		bare := strings.TrimPrefix(name, "--")

		if strings.HasPrefix(bare, "radius-") || bare == "radius" {
			continue
		}
		if strings.HasPrefix(bare, "font-") || strings.HasPrefix(bare, "font") && strings.Contains(bare, "family") {
			singles = append(singles, pending{name: name, value: value, typ: TypeFontFamily})
			continue
		}

		switch classifyValue(bare, value) {
		case TypeColor:
			if group, mode, ok := colorPairKey(bare); ok {
				if _, seen := pairLight[group]; !seen {
					if _, seenDark := pairDark[group]; !seenDark {
						pairOrder = append(pairOrder, group)
					}
				}
				if mode == "light" {
					pairLight[group] = value
				} else {
					pairDark[group] = value
				}
				continue
			}
			singles = append(singles, pending{name: name, value: value, typ: TypeColor})
		case TypeSpacing:
			singles = append(singles, pending{name: name, value: value, typ: TypeSpacing})
		default:
			// Unclassifiable variables stay out of the manifest; the
			// literalizer still resolves them in CSS.
		}
	}

	hasDark := false
	for _, group := range pairOrder {
		light, dark := pairLight[group], pairDark[group]
		if dark != "" {
			hasDark = true
		}
		m.Variables = append(m.Variables, Variable{
			CSSVar: "--" + group,
			Path:   colorPairGroups[group],
			Type:   TypeColor,
			Values: &ModeValues{Light: light, Dark: dark},
		})
	}
	if hasDark {
		m.Modes = []string{"light", "dark"}
	}

	for _, p := range singles {
		m.Variables = append(m.Variables, Variable{
			CSSVar: p.name,
			Path:   tokenPath(p.typ, strings.TrimPrefix(p.name, "--")),
			Type:   p.typ,
			Value:  p.value,
		})
	}

	m.Fonts = extractFonts(sheet)
	return m
}

// classifyValue decides the token type, value first, name second.
func classifyValue(bare, value string) VariableType {
	if cssparse.IsColorValue(value) {
		return TypeColor
	}
	if spacingValue.MatchString(strings.TrimSpace(value)) {
		return TypeSpacing
	}
	for _, hint := range spacingNameHints {
		if strings.Contains(bare, hint) {
			return TypeSpacing
		}
	}
	for _, hint := range colorNameHints {
		if strings.Contains(bare, hint) {
			return TypeColor
		}
	}
	return ""
}

// colorPairKey recognizes --light-bg / --dark-bg style names and returns the
// pair group plus which mode this variable carries.
func colorPairKey(bare string) (group, mode string, ok bool) {
	var rest string
	switch {
	case strings.HasPrefix(bare, "light-"):
		mode, rest = "light", strings.TrimPrefix(bare, "light-")
	case strings.HasPrefix(bare, "dark-"):
		mode, rest = "dark", strings.TrimPrefix(bare, "dark-")
	default:
		return "", "", false
	}
	if _, known := colorPairGroups[rest]; !known {
		return "", "", false
	}
	return rest, mode, true
}

func tokenPath(typ VariableType, bare string) string {
	human := humanize(bare)
	switch typ {
	case TypeColor:
		return "Colors / " + human
	case TypeSpacing:
		return "Spacing / " + human
	case TypeFontFamily:
		return "Fonts / " + human
	}
	return human
}

func humanize(s string) string {
	words := strings.FieldsFunc(s, func(r rune) bool { return r == '-' || r == '_' })
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
