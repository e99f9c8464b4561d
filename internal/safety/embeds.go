package safety

import (
	"fmt"
	"strings"

	flowbridge "github.com/flowbridge/compiler/internal"
	"github.com/flowbridge/compiler/internal/cssparse"
	"github.com/flowbridge/compiler/internal/scene"
	"github.com/flowbridge/compiler/internal/validate"
)

// unsupportedDecl reports whether a declaration is on the extraction
// blacklist: features the builder's style panel rejects outright.
func unsupportedDecl(d cssparse.Declaration) bool {
	switch d.Name {
	case "backdrop-filter", "-webkit-backdrop-filter", "accent-color":
		return true
	case "text-wrap":
		return strings.Contains(d.Value, "balance")
	}
	v := d.Value
	return strings.Contains(v, "oklch(") || strings.Contains(v, "color-mix(")
}

// extractUnsupportedCSS sweeps every styleLess, base and variants alike,
// relocating blacklisted declarations into the CSS embed grouped under
// proper selectors.
func (g *Gate) extractUnsupportedCSS(in *scene.Inner, report *Report, embeds *EmbedContent) {
	var out strings.Builder

	emit := func(selector, serialized string, variantKey string) {
		block := "." + selector + " { " + serialized + " }"
		if prefix, ok := cssparse.MediaPrelude(variantKey); ok {
			block = prefix + " { " + block + " }"
		}
		out.WriteString(block + "\n")
	}

	for _, s := range in.Styles {
		base, extracted := splitUnsupported(s.StyleLess)
		if extracted != "" {
			s.StyleLess = base
			emit(s.Name, extracted, "")
			report.ExtractedToEmbeds++
			report.warn(validate.Warning(validate.CodeCSSExtractedToEmbed,
				fmt.Sprintf("unsupported CSS on .%s moved to the embed", s.Name)))
		}
		for key, variant := range s.Variants {
			vbase, vextracted := splitUnsupported(variant.StyleLess)
			if vextracted == "" {
				continue
			}
			s.Variants[key] = scene.Variant{StyleLess: vbase}
			selector := s.Name
			if cssparse.IsPseudoState(key) {
				selector += ":" + key
				emit(selector, vextracted, "")
			} else {
				emit(selector, vextracted, key)
			}
			report.ExtractedToEmbeds++
			report.warn(validate.Warning(validate.CodeCSSExtractedToEmbed,
				fmt.Sprintf("unsupported CSS on .%s (%s) moved to the embed", s.Name, key)))
		}
	}
	if out.Len() > 0 {
		embeds.CSS += out.String()
	}
}

// splitUnsupported partitions a serialized declaration list into supported
// and blacklisted halves.
func splitUnsupported(styleLess string) (kept, extracted string) {
	decls := cssparse.ParseDeclarationList(styleLess)
	var keep, extract []cssparse.Declaration
	for _, d := range decls {
		if unsupportedDecl(d) {
			extract = append(extract, d)
		} else {
			keep = append(keep, d)
		}
	}
	if len(extract) == 0 {
		return styleLess, ""
	}
	return cssparse.Serialize(keep), cssparse.Serialize(extract)
}

// sanitizeEmbeds parses every HtmlEmbed's content, strips inline handlers
// and document-structure tags, enforces the size budget, and chunks
// oversize embeds into siblings.
func (g *Gate) sanitizeEmbeds(in *scene.Inner, report *Report, embeds *EmbedContent) {
	parents := map[string]*scene.Node{}
	for _, n := range in.Nodes {
		for _, childID := range n.Children {
			parents[childID] = n
		}
	}

	var newNodes []*scene.Node
	for _, n := range in.Nodes {
		if n.Type != scene.NodeHtmlEmbed || n.V == "" {
			continue
		}
		cleaned, notes := sanitizeEmbedHTML(n.V)
		if len(notes) > 0 {
			report.HTMLSanitization = append(report.HTMLSanitization, notes...)
		}
		n.V = cleaned
		syncEmbedMeta(n)

		if len(cleaned) <= g.cfg.EmbedHardLimit {
			if len(cleaned) > g.cfg.EmbedSoftLimit {
				report.EmbedSize.Warnings = append(report.EmbedSize.Warnings,
					fmt.Sprintf("embed is %d chars, above the %d soft limit", len(cleaned), g.cfg.EmbedSoftLimit))
				report.warn(validate.Warning(validate.CodeEmbedOversize,
					fmt.Sprintf("an embed is %d chars; consider splitting the source section", len(cleaned))))
			}
			continue
		}

		// Hard-oversize embeds chunk into siblings; each chunk is an
		// independent embed node appended after the original.
		chunks := chunkString(cleaned, g.cfg.EmbedHardLimit)
		n.V = chunks[0]
		syncEmbedMeta(n)
		parent := parents[n.ID]
		for i, chunk := range chunks[1:] {
			sibling := &scene.Node{
				ID:      scene.NewID(),
				Type:    scene.NodeHtmlEmbed,
				Tag:     "div",
				V:       chunk,
				Classes: []string{},
			}
			syncEmbedMeta(sibling)
			newNodes = append(newNodes, sibling)
			if parent != nil {
				parent.Children = insertAfter(parent.Children, n.ID, sibling.ID)
			}
			report.EmbedChunking = append(report.EmbedChunking,
				fmt.Sprintf("embed chunk %d/%d created; paste order matters", i+2, len(chunks)))
		}
		report.fix(fmt.Sprintf("chunked an oversize embed into %d nodes", len(chunks)))
		report.warn(validate.Warning(validate.CodeEmbedChunked,
			fmt.Sprintf("an embed exceeded %d chars and was split into %d chunks", g.cfg.EmbedHardLimit, len(chunks))))
	}
	in.Nodes = append(in.Nodes, newNodes...)
}

// syncEmbedMeta keeps node.v and node.data.embed.meta.html identical; the
// builder reads both.
func syncEmbedMeta(n *scene.Node) {
	n.Data = map[string]any{"embed": map[string]any{"meta": map[string]any{"html": n.V}}}
}

// sanitizeEmbedHTML strips inline handlers and unwraps doctype/html/head/body
// structure from embed content.
func sanitizeEmbedHTML(html string) (string, []string) {
	var notes []string
	doc := flowbridge.Parse(html)

	var unwrap func(n *flowbridge.Node)
	unwrap = func(n *flowbridge.Node) {
		for _, c := range n.Children() {
			if c.Type != flowbridge.ElementNode {
				continue
			}
			switch c.Data {
			case "html", "body":
				notes = append(notes, "unwrapped <"+c.Data+"> inside embed")
				for _, inner := range c.Children() {
					c.RemoveChild(inner)
					n.InsertBefore(inner, c)
				}
				n.RemoveChild(c)
				unwrap(n)
				return
			case "head":
				notes = append(notes, "removed <head> inside embed")
				n.RemoveChild(c)
			default:
				unwrap(c)
			}
		}
	}
	unwrap(doc)

	flowbridge.Walk(doc, func(n *flowbridge.Node) {
		if n.Type != flowbridge.ElementNode {
			return
		}
		kept := n.Attr[:0]
		for _, a := range n.Attr {
			key := strings.ToLower(a.Key)
			if strings.HasPrefix(key, "on") && len(key) > 2 {
				notes = append(notes, "stripped inline handler "+a.Key+" inside embed")
				continue
			}
			kept = append(kept, a)
		}
		n.Attr = kept
	})

	return flowbridge.Render(doc), notes
}

func chunkString(s string, size int) []string {
	var out []string
	for len(s) > size {
		out = append(out, s[:size])
		s = s[size:]
	}
	out = append(out, s)
	return out
}

func insertAfter(ids []string, after, id string) []string {
	for i, existing := range ids {
		if existing == after {
			out := append([]string{}, ids[:i+1]...)
			out = append(out, id)
			return append(out, ids[i+1:]...)
		}
	}
	return append(ids, id)
}
