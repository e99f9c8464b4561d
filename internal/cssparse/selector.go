package cssparse

import "strings"

// SelectorKind classifies the selector shapes the normalizer knows how to
// flatten. Everything else is SelOther and ends up in the embed channel.
type SelectorKind int

const (
	SelClass SelectorKind = iota
	SelClassPseudo
	SelTag
	SelTagClass
	SelDescendant
	SelOther
)

// SimplePart is one compound selector unit: tag, class, or tag.class, with an
// optional pseudo suffix.
type SimplePart struct {
	Tag    string
	Class  string
	Pseudo string // without leading colon(s); "" when absent
	// PseudoElement marks ::before / ::after style suffixes.
	PseudoElement bool
}

// SelectorInfo is the parsed form of a single selector.
type SelectorInfo struct {
	Kind  SelectorKind
	Parts []SimplePart
	// Combinators[i] joins Parts[i] and Parts[i+1]: ' ' for descendant,
	// '>' for child.
	Combinators []byte
	Raw         string
}

// Last returns the rightmost compound part.
func (s SelectorInfo) Last() SimplePart {
	if len(s.Parts) == 0 {
		return SimplePart{}
	}
	return s.Parts[len(s.Parts)-1]
}

// ClassifySelector parses a single selector's text. The classification is
// intentionally shallow: the normalizer only needs to recognize the shapes it
// rewrites, and anything with attribute brackets, :not()/:has() functions, or
// sibling combinators is SelOther.
func ClassifySelector(sel string) SelectorInfo {
	info := SelectorInfo{Raw: strings.TrimSpace(sel)}
	s := info.Raw
	if s == "" || strings.ContainsAny(s, "[~+*") || strings.Contains(s, "(") {
		info.Kind = SelOther
		return info
	}

	// Tokenize on descendant/child combinators.
	var tokens []string
	var combs []byte
	cur := strings.Builder{}
	flush := func() {
		if cur.Len() > 0 {
			tokens = append(tokens, cur.String())
			cur.Reset()
		}
	}
	pendingComb := byte(0)
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case ' ', '\t', '\n':
			if cur.Len() > 0 {
				flush()
				pendingComb = ' '
			}
		case '>':
			flush()
			pendingComb = '>'
		default:
			if cur.Len() == 0 && len(tokens) > 0 {
				combs = append(combs, pendingComb)
				pendingComb = 0
			}
			cur.WriteByte(c)
		}
	}
	flush()
	if len(tokens) == 0 {
		info.Kind = SelOther
		return info
	}

	for _, tok := range tokens {
		part, ok := parseSimplePart(tok)
		if !ok {
			info.Kind = SelOther
			return info
		}
		info.Parts = append(info.Parts, part)
	}
	info.Combinators = combs

	if len(info.Parts) > 1 {
		info.Kind = SelDescendant
		return info
	}
	p := info.Parts[0]
	switch {
	case p.Class != "" && p.Tag == "" && p.Pseudo == "":
		info.Kind = SelClass
	case p.Class != "" && p.Tag == "" && p.Pseudo != "":
		info.Kind = SelClassPseudo
	case p.Class == "" && p.Tag != "":
		info.Kind = SelTag
	case p.Class != "" && p.Tag != "":
		info.Kind = SelTagClass
	default:
		info.Kind = SelOther
	}
	return info
}

func parseSimplePart(tok string) (SimplePart, bool) {
	var part SimplePart
	// Pseudo suffix first.
	if idx := strings.Index(tok, "::"); idx >= 0 {
		part.Pseudo = tok[idx+2:]
		part.PseudoElement = true
		tok = tok[:idx]
	} else if idx := strings.IndexByte(tok, ':'); idx >= 0 {
		part.Pseudo = tok[idx+1:]
		tok = tok[:idx]
	}
	if strings.ContainsAny(part.Pseudo, ":.#") {
		return part, false
	}
	switch {
	case tok == "":
		return part, part.Pseudo != "" // bare pseudo like ":root" is tolerated
	case strings.HasPrefix(tok, "#"):
		return part, false // id selectors go through the embed channel
	case strings.HasPrefix(tok, "."):
		rest := tok[1:]
		if rest == "" || strings.Contains(rest, ".") {
			return part, false
		}
		part.Class = rest
		return part, true
	default:
		if dot := strings.IndexByte(tok, '.'); dot >= 0 {
			part.Tag = strings.ToLower(tok[:dot])
			part.Class = tok[dot+1:]
			if part.Class == "" || strings.Contains(part.Class, ".") {
				return part, false
			}
			return part, true
		}
		part.Tag = strings.ToLower(tok)
		return part, true
	}
}

// PseudoStates is the closed set of pseudo-state variant keys the target
// accepts.
var PseudoStates = map[string]bool{
	"hover": true, "focus": true, "active": true, "visited": true,
	"focus-visible": true, "focus-within": true, "disabled": true,
}

// IsPseudoState reports whether the pseudo suffix maps to a target variant.
func IsPseudoState(pseudo string) bool {
	return PseudoStates[pseudo]
}
