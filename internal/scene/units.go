package scene

import (
	"math"
	"strconv"
	"strings"

	"github.com/flowbridge/compiler/internal/cssparse"
)

// remBase is the px-per-rem conversion base.
const remBase = 16

// ConvertStyleLess applies the emission-time value rewrites to a serialized
// declaration list: clamp(a, b, c) collapses to c, and px lengths convert to
// rem. 1px and -1px stay as authored (hairlines), and zero stays a bare 0.
// Every other unit passes through verbatim.
func ConvertStyleLess(s string) string {
	decls := cssparse.ParseDeclarationList(s)
	for i := range decls {
		decls[i].Value = ConvertValue(decls[i].Value)
	}
	return cssparse.Serialize(decls)
}

// ConvertValue rewrites a single declaration value.
func ConvertValue(v string) string {
	return pxToRem(collapseClamp(v))
}

// collapseClamp replaces every clamp(a, b, c) with its maximum term c.
func collapseClamp(v string) string {
	for {
		idx := strings.Index(v, "clamp(")
		if idx < 0 {
			return v
		}
		inner, rest, ok := matchParen(v[idx+len("clamp("):])
		if !ok {
			return v
		}
		args := cssparse.SplitTopLevel(inner, ',')
		replacement := inner
		if len(args) == 3 {
			replacement = strings.TrimSpace(args[2])
		}
		v = v[:idx] + replacement + rest
	}
}

// pxToRem converts px lengths outside function arguments and inside them
// alike; numeric content is preserved exactly for every other unit.
func pxToRem(v string) string {
	var b strings.Builder
	i := 0
	for i < len(v) {
		c := v[i]
		if c >= '0' && c <= '9' || c == '-' || c == '.' {
			j := i
			if v[j] == '-' {
				j++
			}
			numEnd := j
			for numEnd < len(v) && (v[numEnd] >= '0' && v[numEnd] <= '9' || v[numEnd] == '.') {
				numEnd++
			}
			if numEnd == j {
				b.WriteByte(c)
				i++
				continue
			}
			// A px suffix not followed by more ident chars is a length.
			if strings.HasPrefix(v[numEnd:], "px") && (numEnd+2 >= len(v) || !isIdentByte(v[numEnd+2])) {
				if n, err := strconv.ParseFloat(v[i:numEnd], 64); err == nil {
					b.WriteString(formatRem(n))
					i = numEnd + 2
					continue
				}
			}
			b.WriteString(v[i:numEnd])
			i = numEnd
			continue
		}
		b.WriteByte(c)
		i++
	}
	return b.String()
}

// formatRem renders the converted length. Hairline widths keep their px form
// because sub-pixel rem rounding erases them.
func formatRem(px float64) string {
	if px == 1 {
		return "1px"
	}
	if px == -1 {
		return "-1px"
	}
	if px == 0 {
		return "0"
	}
	rem := math.Round(px/remBase*10000) / 10000
	return strconv.FormatFloat(rem, 'f', -1, 64) + "rem"
}

func isIdentByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '-' || c == '%'
}

func matchParen(s string) (inner, rest string, ok bool) {
	depth := 1
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return s[:i], s[i+1:], true
			}
		}
	}
	return "", "", false
}
