package normalize

import (
	"strconv"
	"strings"

	"github.com/flowbridge/compiler/internal/cssparse"
)

// sanitizeGradients resolves var() references inside gradient functions and
// rounds percentage stops to integers. The target's gradient editor rejects
// fractional stops and cannot resolve variables inside the function.
func sanitizeGradients(sheet *cssparse.Stylesheet) {
	for _, rule := range sheet.Rules {
		for i := range rule.Declarations {
			d := &rule.Declarations[i]
			if !cssparse.HasGradient(d.Value) {
				continue
			}
			v, _ := cssparse.ResolveVars(d.Value, sheet.Variables.Get)
			d.Value = roundGradientPercentages(v)
		}
	}
}

// roundGradientPercentages rewrites fractional percentages inside gradient
// function arguments: 12.5% becomes 13%.
func roundGradientPercentages(v string) string {
	var b strings.Builder
	i := 0
	for i < len(v) {
		fn := nextGradientCall(v[i:])
		if fn < 0 {
			b.WriteString(v[i:])
			break
		}
		open := strings.IndexByte(v[i+fn:], '(')
		start := i + fn + open + 1
		b.WriteString(v[i:start])
		inner, rest, ok := matchParen(v[start:])
		if !ok {
			b.WriteString(v[start:])
			break
		}
		b.WriteString(roundPercents(inner))
		b.WriteByte(')')
		i = len(v) - len(rest)
	}
	return b.String()
}

func nextGradientCall(s string) int {
	best := -1
	for _, fn := range []string{"linear-gradient(", "radial-gradient(", "conic-gradient("} {
		if idx := strings.Index(s, fn); idx >= 0 && (best < 0 || idx < best) {
			best = idx
		}
	}
	return best
}

func roundPercents(s string) string {
	var b strings.Builder
	i := 0
	for i < len(s) {
		c := s[i]
		if c >= '0' && c <= '9' {
			j := i
			for j < len(s) && (s[j] >= '0' && s[j] <= '9' || s[j] == '.') {
				j++
			}
			if j < len(s) && s[j] == '%' {
				if f, err := strconv.ParseFloat(s[i:j], 64); err == nil {
					b.WriteString(strconv.Itoa(int(f + 0.5)))
					b.WriteByte('%')
					i = j + 1
					continue
				}
			}
			b.WriteString(s[i:j])
			i = j
			continue
		}
		b.WriteByte(c)
		i++
	}
	return b.String()
}

// matchParen scans s positioned just after '(' and splits at the matching
// close paren.
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
