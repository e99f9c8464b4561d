package tokens

import (
	"net/url"
	"strings"

	"github.com/flowbridge/compiler/internal/cssparse"
)

// genericFamilies never count as installable fonts.
var genericFamilies = map[string]bool{
	"serif": true, "sans-serif": true, "monospace": true, "cursive": true,
	"fantasy": true, "system-ui": true, "ui-serif": true, "ui-sans-serif": true,
	"ui-monospace": true, "inherit": true, "initial": true, "unset": true,
}

// extractFonts collects families from --font-* variables and font-family
// declarations. The first family token of each stack wins; var() references
// are skipped because they resolve to a stack already collected.
func extractFonts(sheet *cssparse.Stylesheet) Fonts {
	var families []string
	seen := map[string]bool{}

	add := func(stack string) {
		fam := firstFamily(stack)
		if fam == "" || seen[strings.ToLower(fam)] {
			return
		}
		seen[strings.ToLower(fam)] = true
		families = append(families, fam)
	}

	for _, name := range sheet.Variables.Names() {
		if !strings.HasPrefix(name, "--font") {
			continue
		}
		v, _ := sheet.Variables.Get(name)
		add(v)
	}
	for _, rule := range sheet.Rules {
		if v, ok := rule.Get("font-family"); ok {
			add(v)
		}
	}

	f := Fonts{Families: families}
	if len(families) > 0 {
		f.GoogleFontsURL = googleFontsURL(families)
	}
	return f
}

// firstFamily returns the first family token of a font stack, unquoted.
func firstFamily(stack string) string {
	stack = strings.TrimSpace(stack)
	if stack == "" || strings.HasPrefix(stack, "var(") {
		return ""
	}
	first := strings.TrimSpace(cssparse.SplitTopLevel(stack, ',')[0])
	first = strings.Trim(first, `"'`)
	if first == "" || genericFamilies[strings.ToLower(first)] {
		return ""
	}
	return first
}

func googleFontsURL(families []string) string {
	var parts []string
	for _, fam := range families {
		parts = append(parts, "family="+url.QueryEscape(fam))
	}
	return "https://fonts.googleapis.com/css2?" + strings.Join(parts, "&") + "&display=swap"
}
