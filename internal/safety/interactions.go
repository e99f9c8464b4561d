package safety

import (
	"fmt"
	"strings"

	"github.com/flowbridge/compiler/internal/scene"
	"github.com/flowbridge/compiler/internal/validate"
)

// gsapTemplates map interaction triggers onto equivalent animation code.
// Converted interactions reference nodes by their data-w-id attribute, which
// the builder preserves on paste.
var gsapTemplates = map[string]string{
	"scroll": `gsap.from(%q, { opacity: 0, y: 40, scrollTrigger: { trigger: %q, start: "top 80%%" } });`,
	"click":  `document.querySelectorAll(%q).forEach(function (el) { el.addEventListener("click", function () { gsap.to(el, { scale: 0.97, yoyo: true, repeat: 1, duration: 0.12 }); }); });`,
	"hover":  `document.querySelectorAll(%q).forEach(function (el) { el.addEventListener("mouseenter", function () { gsap.to(el, { scale: 1.03, duration: 0.2 }); }); el.addEventListener("mouseleave", function () { gsap.to(el, { scale: 1, duration: 0.2 }); }); });`,
	"load":   `gsap.from(%q, { opacity: 0, duration: 0.6 });`,
}

// convertBrokenInteractions rewrites interactions whose target no longer
// resolves into plain animation JS on the embed channel and removes them from
// ix2. Interactions that cannot be converted either strip the whole ix2 set:
// a half-wired interaction graph crashes the builder's interaction panel.
func (g *Gate) convertBrokenInteractions(in *scene.Inner, report *Report, embeds *EmbedContent) {
	if len(in.IX2.Interactions) == 0 {
		return
	}
	live := map[string]bool{}
	for _, n := range in.Nodes {
		live[n.ID] = true
	}

	var kept []scene.Interaction
	var converted []string
	unconvertible := false
	for _, ix := range in.IX2.Interactions {
		if live[ix.Target] {
			kept = append(kept, ix)
			continue
		}
		tpl, ok := gsapTemplates[ix.Trigger]
		if !ok {
			unconvertible = true
			continue
		}
		selector := fmt.Sprintf("[data-w-id=%q]", ix.ID)
		var code string
		if ix.Trigger == "scroll" {
			code = fmt.Sprintf(tpl, selector, selector)
		} else {
			code = fmt.Sprintf(tpl, selector)
		}
		converted = append(converted, code)
		report.fix(fmt.Sprintf("converted broken %s interaction %s to animation JS", ix.Trigger, ix.ID))
		report.warn(validate.Warning(validate.CodeInteractionConverted,
			fmt.Sprintf("interaction %s targeted a missing node; converted to script", ix.ID)))
	}

	if unconvertible {
		// One unresolvable interaction poisons the set.
		in.IX2 = scene.IX2{}
		report.fix("stripped all interactions: at least one had an unresolvable reference")
		report.warn(validate.Warning(validate.CodeInteractionsStripped,
			"interactions removed; an unresolvable reference could not be converted"))
		return
	}
	in.IX2.Interactions = kept

	if len(converted) > 0 {
		var b strings.Builder
		b.WriteString("<script src=\"" + g.cfg.GSAPCoreURL + "\"></script>\n")
		b.WriteString("<script src=\"" + g.cfg.GSAPScrollTriggerURL + "\"></script>\n")
		b.WriteString("<script>\ngsap.registerPlugin(ScrollTrigger);\n")
		for _, code := range converted {
			b.WriteString(code + "\n")
		}
		b.WriteString("</script>\n")
		embeds.JS += b.String()
	}
}
