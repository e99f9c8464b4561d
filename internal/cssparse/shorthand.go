package cssparse

import "strings"

// ExpandShorthand expands a shorthand declaration into its longhand
// components. Declarations that are not shorthands, or whose value resists
// decomposition (var() references, forms a decomposer does not recognize),
// pass through unchanged.
// The target's property-list language does not reliably accept shorthands,
// so box shorthands, border shorthands, background, and font all expand.
func ExpandShorthand(d Declaration) []Declaration {
	if strings.Contains(d.Value, "var(") {
		return []Declaration{d}
	}
	switch d.Name {
	case "padding", "margin", "inset":
		return expandBox(d.Name, d.Value)
	case "border-radius":
		return expandRadius(d.Value)
	case "border", "border-top", "border-right", "border-bottom", "border-left":
		return expandBorder(d.Name, d.Value)
	case "background":
		return expandBackground(d.Value)
	case "font":
		return expandFont(d.Value)
	case "overflow":
		return expandOverflow(d.Value)
	case "gap":
		return expandGap(d.Value)
	}
	return []Declaration{d}
}

// ExpandAll runs shorthand expansion over a declaration list.
func ExpandAll(decls []Declaration) []Declaration {
	var out []Declaration
	for _, d := range decls {
		out = append(out, ExpandShorthand(d)...)
	}
	return out
}

func valueParts(v string) []string {
	var out []string
	for _, p := range SplitTopLevel(v, ' ') {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// expandBox applies the 1/2/3/4-value TRBL convention.
func expandBox(name, value string) []Declaration {
	parts := valueParts(value)
	var top, right, bottom, left string
	switch len(parts) {
	case 1:
		top, right, bottom, left = parts[0], parts[0], parts[0], parts[0]
	case 2:
		top, right, bottom, left = parts[0], parts[1], parts[0], parts[1]
	case 3:
		top, right, bottom, left = parts[0], parts[1], parts[2], parts[1]
	case 4:
		top, right, bottom, left = parts[0], parts[1], parts[2], parts[3]
	default:
		return []Declaration{{Name: name, Value: value}}
	}
	return []Declaration{
		{Name: name + "-top", Value: top},
		{Name: name + "-right", Value: right},
		{Name: name + "-bottom", Value: bottom},
		{Name: name + "-left", Value: left},
	}
}

func expandRadius(value string) []Declaration {
	// Elliptical radii (a / b) stay as authored.
	if strings.Contains(value, "/") {
		return []Declaration{{Name: "border-radius", Value: value}}
	}
	parts := valueParts(value)
	var tl, tr, br, bl string
	switch len(parts) {
	case 1:
		tl, tr, br, bl = parts[0], parts[0], parts[0], parts[0]
	case 2:
		tl, tr, br, bl = parts[0], parts[1], parts[0], parts[1]
	case 3:
		tl, tr, br, bl = parts[0], parts[1], parts[2], parts[1]
	case 4:
		tl, tr, br, bl = parts[0], parts[1], parts[2], parts[3]
	default:
		return []Declaration{{Name: "border-radius", Value: value}}
	}
	return []Declaration{
		{Name: "border-top-left-radius", Value: tl},
		{Name: "border-top-right-radius", Value: tr},
		{Name: "border-bottom-right-radius", Value: br},
		{Name: "border-bottom-left-radius", Value: bl},
	}
}

var borderStyles = map[string]bool{
	"none": true, "hidden": true, "dotted": true, "dashed": true,
	"solid": true, "double": true, "groove": true, "ridge": true,
	"inset": true, "outset": true,
}

// expandBorder decomposes "1px solid red" style values into width/style/color
// longhands. "border" fans out to all four sides.
func expandBorder(name, value string) []Declaration {
	parts := valueParts(value)
	var width, style, color string
	for _, p := range parts {
		switch {
		case borderStyles[strings.ToLower(p)]:
			style = p
		case IsColorValue(p) || isNamedColorish(p):
			color = p
		case width == "":
			width = p
		}
	}
	if width == "" && style == "" && color == "" {
		return []Declaration{{Name: name, Value: value}}
	}
	sides := []string{strings.TrimPrefix(name, "border-")}
	if name == "border" {
		sides = []string{"top", "right", "bottom", "left"}
	}
	var out []Declaration
	for _, side := range sides {
		if width != "" {
			out = append(out, Declaration{Name: "border-" + side + "-width", Value: width})
		}
		if style != "" {
			out = append(out, Declaration{Name: "border-" + side + "-style", Value: style})
		}
		if color != "" {
			out = append(out, Declaration{Name: "border-" + side + "-color", Value: color})
		}
	}
	return out
}

// isNamedColorish covers the named colors that show up in AI-generated pages.
// Unknown idents are treated as widths/styles by the caller, which is safe
// because the component order rarely matters for the target.
func isNamedColorish(p string) bool {
	switch strings.ToLower(p) {
	case "white", "black", "red", "green", "blue", "gray", "grey", "coral",
		"orange", "yellow", "purple", "pink", "teal", "navy", "silver",
		"gold", "crimson", "indigo", "violet", "salmon", "khaki", "plum":
		return true
	}
	return false
}

// expandBackground splits a background shorthand into image and color
// longhands. Positional/repeat components of the full shorthand grammar are
// rare in generated pages; values that mix them stay as authored.
func expandBackground(value string) []Declaration {
	v := strings.TrimSpace(value)
	for _, layer := range SplitTopLevel(v, ',') {
		if len(valueParts(layer)) > 1 {
			return []Declaration{{Name: "background", Value: v}}
		}
	}
	if HasGradient(v) || strings.HasPrefix(v, "url(") {
		return []Declaration{{Name: "background-image", Value: v}}
	}
	if IsColorValue(v) || isNamedColorish(v) {
		return []Declaration{{Name: "background-color", Value: v}}
	}
	return []Declaration{{Name: "background", Value: v}}
}

// expandFont handles the common "style weight size/line-height family" form.
// Anything it cannot decompose passes through.
func expandFont(value string) []Declaration {
	parts := valueParts(value)
	if len(parts) < 2 {
		return []Declaration{{Name: "font", Value: value}}
	}
	var out []Declaration
	i := 0
	for i < len(parts) {
		p := strings.ToLower(parts[i])
		if p == "italic" || p == "oblique" || p == "normal" {
			out = append(out, Declaration{Name: "font-style", Value: parts[i]})
			i++
			continue
		}
		if p == "bold" || p == "bolder" || p == "lighter" || isWeightNumber(p) {
			out = append(out, Declaration{Name: "font-weight", Value: parts[i]})
			i++
			continue
		}
		break
	}
	if i >= len(parts) {
		return []Declaration{{Name: "font", Value: value}}
	}
	size := parts[i]
	if slash := strings.IndexByte(size, '/'); slash >= 0 {
		out = append(out, Declaration{Name: "font-size", Value: size[:slash]})
		out = append(out, Declaration{Name: "line-height", Value: size[slash+1:]})
	} else {
		out = append(out, Declaration{Name: "font-size", Value: size})
	}
	i++
	if i < len(parts) {
		out = append(out, Declaration{Name: "font-family", Value: strings.Join(parts[i:], " ")})
	}
	return out
}

func isWeightNumber(p string) bool {
	switch p {
	case "100", "200", "300", "400", "500", "600", "700", "800", "900":
		return true
	}
	return false
}

func expandOverflow(value string) []Declaration {
	parts := valueParts(value)
	switch len(parts) {
	case 1:
		return []Declaration{
			{Name: "overflow-x", Value: parts[0]},
			{Name: "overflow-y", Value: parts[0]},
		}
	case 2:
		return []Declaration{
			{Name: "overflow-x", Value: parts[0]},
			{Name: "overflow-y", Value: parts[1]},
		}
	}
	return []Declaration{{Name: "overflow", Value: value}}
}

func expandGap(value string) []Declaration {
	parts := valueParts(value)
	switch len(parts) {
	case 1:
		return []Declaration{
			{Name: "row-gap", Value: parts[0]},
			{Name: "column-gap", Value: parts[0]},
		}
	case 2:
		return []Declaration{
			{Name: "row-gap", Value: parts[0]},
			{Name: "column-gap", Value: parts[1]},
		}
	}
	return []Declaration{{Name: "gap", Value: value}}
}
