package cssparse

import (
	"fmt"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"go.uber.org/zap"
)

// Parser parses concatenated stylesheet text into a Stylesheet.
type Parser struct {
	log *zap.Logger

	// pending accumulates selectors emitted as QualifiedRuleGrammar ahead
	// of the BeginRulesetGrammar that carries the block.
	pending []string
}

// NewParser creates a CSS parser. A nil logger is replaced with a no-op.
func NewParser(log *zap.Logger) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	return &Parser{log: log.Named("cssparse")}
}

// Parse tokenizes the stylesheet and builds the rule model. Grouped selectors
// are split on top-level commas, shorthands expand to longhands, and @media
// preludes classify onto the breakpoint set. Parsing never fails; malformed
// constructs degrade to warnings.
func (p *Parser) Parse(cssText string) *Stylesheet {
	sheet := &Stylesheet{Variables: NewVarTable()}

	input := parse.NewInputString(cssText)
	parser := css.NewParser(input, false)

	for {
		gt, _, data := parser.Next()
		switch gt {
		case css.ErrorGrammar:
			return sheet

		case css.BeginAtRuleGrammar:
			name := string(data)
			prelude := joinTokens(parser.Values())
			if name == "@media" {
				p.parseMediaBlock(parser, sheet, prelude)
				continue
			}
			// Everything else the target cannot express; keep the raw
			// block for the embed channel.
			raw := p.captureAtRule(parser, name, prelude)
			sheet.UnsupportedAtRules = append(sheet.UnsupportedAtRules, raw)
			p.log.Debug("at-rule routed to embed", zap.String("rule", name))

		case css.AtRuleGrammar:
			// Blockless at-rules (@import, @charset) have no home in the
			// target; note and drop.
			sheet.Warnings = append(sheet.Warnings, fmt.Sprintf("dropped %s rule", string(data)))

		case css.BeginRulesetGrammar, css.QualifiedRuleGrammar:
			selectors := splitSelectors(string(data) + joinTokens(parser.Values()))
			if gt == css.QualifiedRuleGrammar {
				// Part of a grouped selector; the ruleset body follows on a
				// later BeginRulesetGrammar. Collect via pending list.
				p.pending = append(p.pending, selectors...)
				continue
			}
			selectors = append(p.pending, selectors...)
			p.pending = nil
			decls, custom := p.parseDeclarations(parser)
			p.appendRules(sheet, selectors, decls, custom, MediaClass{})
		}
	}
}

func (p *Parser) parseMediaBlock(parser *css.Parser, sheet *Stylesheet, prelude string) {
	mc, ok := ClassifyMedia(prelude)
	if !ok {
		sheet.Warnings = append(sheet.Warnings,
			fmt.Sprintf("dropped @media without a width axis: %s", strings.TrimSpace(prelude)))
		p.skipBlock(parser)
		return
	}
	for {
		gt, _, data := parser.Next()
		switch gt {
		case css.ErrorGrammar, css.EndAtRuleGrammar:
			return
		case css.BeginRulesetGrammar, css.QualifiedRuleGrammar:
			selectors := splitSelectors(string(data) + joinTokens(parser.Values()))
			if gt == css.QualifiedRuleGrammar {
				p.pending = append(p.pending, selectors...)
				continue
			}
			selectors = append(p.pending, selectors...)
			p.pending = nil
			decls, custom := p.parseDeclarations(parser)
			p.appendRules(sheet, selectors, decls, custom, mc)
		}
	}
}

func (p *Parser) appendRules(sheet *Stylesheet, selectors []string, decls, custom []Declaration, mc MediaClass) {
	for _, sel := range selectors {
		rule := &Rule{
			Selector:     sel,
			Declarations: ExpandAll(decls),
			Custom:       append([]Declaration(nil), custom...),
			Media:        mc,
		}
		if (sel == ":root" || sel == ".fp-root") && mc.Tag == "" && !mc.Promote {
			for _, c := range rule.Custom {
				sheet.Variables.Set(c.Name, c.Value)
			}
		}
		sheet.Rules = append(sheet.Rules, rule)
	}
}

// parseDeclarations consumes a ruleset body, splitting normal properties from
// custom ones.
func (p *Parser) parseDeclarations(parser *css.Parser) (decls, custom []Declaration) {
	for {
		gt, _, data := parser.Next()
		switch gt {
		case css.ErrorGrammar, css.EndRulesetGrammar:
			return decls, custom
		case css.DeclarationGrammar:
			d := Declaration{Name: strings.ToLower(string(data)), Value: joinTokens(parser.Values())}
			// Last writer wins per name while keeping first-seen order.
			replaced := false
			for i := range decls {
				if decls[i].Name == d.Name {
					decls[i].Value = d.Value
					replaced = true
					break
				}
			}
			if !replaced {
				decls = append(decls, d)
			}
		case css.CustomPropertyGrammar:
			custom = append(custom, Declaration{
				Name:  string(data),
				Value: strings.TrimSpace(joinTokens(parser.Values())),
			})
		}
	}
}

// captureAtRule re-serializes an at-rule block from grammar events so the raw
// text can travel through the embed channel.
func (p *Parser) captureAtRule(parser *css.Parser, name, prelude string) string {
	var b strings.Builder
	b.WriteString(name)
	if strings.TrimSpace(prelude) != "" {
		b.WriteByte(' ')
		b.WriteString(strings.TrimSpace(prelude))
	}
	b.WriteString(" {")
	depth := 1
	for depth > 0 {
		gt, _, data := parser.Next()
		switch gt {
		case css.ErrorGrammar:
			b.WriteString(" }")
			return b.String()
		case css.BeginAtRuleGrammar:
			depth++
			b.WriteString(" " + string(data))
			if v := strings.TrimSpace(joinTokens(parser.Values())); v != "" {
				b.WriteString(" " + v)
			}
			b.WriteString(" {")
		case css.BeginRulesetGrammar:
			depth++
			b.WriteString(" " + strings.TrimSpace(string(data)+joinTokens(parser.Values())) + " {")
		case css.DeclarationGrammar:
			b.WriteString(" " + string(data) + ": " + joinTokens(parser.Values()) + ";")
		case css.CustomPropertyGrammar:
			b.WriteString(" " + string(data) + ": " + strings.TrimSpace(joinTokens(parser.Values())) + ";")
		case css.EndAtRuleGrammar, css.EndRulesetGrammar:
			depth--
			b.WriteString(" }")
		}
	}
	return b.String()
}

func (p *Parser) skipBlock(parser *css.Parser) {
	depth := 1
	for depth > 0 {
		gt, _, _ := parser.Next()
		switch gt {
		case css.ErrorGrammar:
			return
		case css.BeginAtRuleGrammar, css.BeginRulesetGrammar:
			depth++
		case css.EndAtRuleGrammar, css.EndRulesetGrammar:
			depth--
		}
	}
}

// joinTokens renders parser value tokens back to text, collapsing whitespace
// runs to single spaces.
func joinTokens(tokens []css.Token) string {
	var parts []string
	space := false
	for _, t := range tokens {
		if t.TokenType == css.WhitespaceToken {
			space = len(parts) > 0
			continue
		}
		s := string(t.Data)
		if space {
			parts = append(parts, " ")
			space = false
		}
		parts = append(parts, s)
	}
	return strings.TrimSpace(strings.Join(parts, ""))
}

// splitSelectors splits grouped selector text on top-level commas.
func splitSelectors(selText string) []string {
	var out []string
	for _, s := range SplitTopLevel(selText, ',') {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
