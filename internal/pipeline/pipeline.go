package pipeline

import (
	"context"
	"strings"

	flowbridge "github.com/flowbridge/compiler/internal"
	"github.com/flowbridge/compiler/internal/component"
	"github.com/flowbridge/compiler/internal/cssparse"
	"github.com/flowbridge/compiler/internal/normalize"
	"github.com/flowbridge/compiler/internal/safety"
	"github.com/flowbridge/compiler/internal/scene"
	"github.com/flowbridge/compiler/internal/semantic"
	"github.com/flowbridge/compiler/internal/tokens"
	"github.com/flowbridge/compiler/internal/validate"
	"github.com/iancoleman/strcase"
	"go.uber.org/zap"
)

// Progress reports stage transitions to the caller.
type Progress func(stage string, percent int)

// Stage names and completion percentages, reported in order.
const (
	StageParsing        = "parsing"
	StageExtracting     = "extracting"
	StageComponentizing = "componentizing"
	StageSemantic       = "semantic"
	StageGenerating     = "generating"
	StageComplete       = "complete"
)

var stagePercent = map[string]int{
	StageParsing:        10,
	StageExtracting:     30,
	StageComponentizing: 50,
	StageSemantic:       70,
	StageGenerating:     90,
	StageComplete:       100,
}

// ProcessImport runs the full import pipeline: one HTML document in, one
// artifact bundle out. The function is pure for a fixed input and config; the
// only suspension point is the optional semantic patch round behind the llm
// capability. Malformed input never errors; it degrades into issues on the
// bundle. The returned error is non-nil only for cancellation or a strict
// normalization failure.
func ProcessImport(ctx context.Context, htmlInput, projectName string, progress Progress, llm semantic.Client, cfg Config, log *zap.Logger) (*ArtifactBundle, error) {
	if progress == nil {
		progress = func(string, int) {}
	}
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("pipeline")
	report := func(stage string) {
		log.Debug("stage", zap.String("stage", stage))
		progress(stage, stagePercent[stage])
	}

	bundle := &ArtifactBundle{
		ProjectName: projectName,
		Slug:        strcase.ToKebab(projectName),
	}
	cancelled := func() (*ArtifactBundle, error) {
		return &ArtifactBundle{ProjectName: projectName, Slug: bundle.Slug, Cancelled: true}, ctx.Err()
	}

	// --- parsing ---------------------------------------------------------
	if ctx.Err() != nil {
		return cancelled()
	}
	report(StageParsing)
	doc := flowbridge.Parse(htmlInput)
	bundle.Warnings = append(bundle.Warnings, doc.Warnings...)
	cssText, jsText := detachEmbeddedSources(doc)
	sheet := cssparse.NewParser(log).Parse(cssText)

	// --- extracting ------------------------------------------------------
	if ctx.Err() != nil {
		return cancelled()
	}
	report(StageExtracting)
	manifest := tokens.Extract(sheet, projectName, cfg.Namespace)

	normOpts := cfg.Normalize
	if normOpts.Logger == nil {
		normOpts.Logger = log
	}
	normRes, err := normalize.Normalize(doc, sheet, normOpts)
	if err != nil {
		return bundle, err
	}
	bundle.Warnings = append(bundle.Warnings, sheet.Warnings...)
	bundle.Warnings = append(bundle.Warnings, normRes.Warnings...)
	bundle.ClassRenames = normRes.ClassRenames
	for _, u := range normRes.Unresolved {
		bundle.Validation.Append(validate.Warning(validate.CodeUnresolvedVariable,
			"variable "+u+" could not be resolved"))
	}

	if jsText != "" {
		ids, classes := documentIDsAndClasses(doc)
		bundle.Validation = validate.Merge(bundle.Validation, validate.CrossReference(jsText, ids, classes))
	}

	// --- componentizing --------------------------------------------------
	if ctx.Err() != nil {
		return cancelled()
	}
	report(StageComponentizing)
	tree := component.Componentize(doc)
	component.ApplyDeterministicNames(tree)
	bundle.Warnings = append(bundle.Warnings, tree.Warnings...)

	// --- semantic --------------------------------------------------------
	if ctx.Err() != nil {
		return cancelled()
	}
	report(StageSemantic)
	indexWarnings := append(append([]string{}, sheet.Warnings...), normRes.Warnings...)
	if cfg.UseLLM && llm != nil &&
		semantic.ShouldInvoke(normRes.Unresolved, indexWarnings, tree, cfg.ForceLLM) {
		sheet = runSemanticRound(ctx, llm, doc, tree, sheet, normRes, bundle, cfg, log)
	}
	if ctx.Err() != nil {
		return cancelled()
	}

	// --- generating ------------------------------------------------------
	report(StageGenerating)
	index := cssparse.BuildIndex(sheet, allDocumentClasses(doc, tree))
	emitter := scene.NewEmitter(index, log)
	gate := safety.New(cfg.Safety, log)

	imageSeen := map[string]bool{}
	for _, comp := range tree.Components {
		payload := emitter.Emit(comp)
		gateReport, embeds := gate.Run(payload)

		artifact := ComponentArtifact{
			ID:          comp.ID,
			Name:        comp.Name,
			Slug:        strcase.ToKebab(comp.Name),
			Category:    string(comp.Type),
			HTMLContent: comp.HTMLContent,
			ClassesUsed: comp.ClassesUsed,
			JSHooks:     comp.JSHooks,
			Report:      gateReport,
		}
		if gateReport.Blocked {
			artifact.ScenePayload = scene.Placeholder()
			bundle.Validation.Append(validate.Error(validate.CodePlaceholderEmitted,
				"component "+comp.ID+" was blocked by the safety gate"))
		} else {
			artifact.ScenePayload = payload
		}
		if !embeds.Empty() {
			artifact.Embeds = embeds
			artifact.CodePayload = CodePayload(embeds)
		}
		for _, iss := range gateReport.Warnings {
			bundle.Validation.Append(iss)
		}
		for _, iss := range gateReport.FatalIssues {
			bundle.Validation.Append(iss)
		}
		for _, src := range comp.AssetsUsed {
			if !imageSeen[src] {
				imageSeen[src] = true
				bundle.Images = append(bundle.Images, src)
			}
		}
		bundle.Components = append(bundle.Components, artifact)
	}

	bundle.TokenManifest = manifest
	bundle.TokensPayload = scene.TokenPayload(manifest, nil)
	if code, err := TokenCodePayload(manifest); err == nil {
		bundle.TokensCodePayload = code
	}
	for _, fam := range manifest.Fonts.Families {
		info := FontInfo{Family: fam, Guidance: "Upload the font or enable it in the builder's font settings."}
		if manifest.Fonts.GoogleFontsURL != "" {
			info.Guidance = "Available on Google Fonts: " + manifest.Fonts.GoogleFontsURL
		}
		bundle.Fonts = append(bundle.Fonts, info)
	}
	bundle.SharedEmbeds = sharedEmbeds(normRes, sheet)

	// --- complete --------------------------------------------------------
	report(StageComplete)
	log.Info("import complete",
		zap.String("project", projectName),
		zap.Int("components", len(bundle.Components)),
		zap.String("validation", bundle.Validation.Summary()))
	return bundle, nil
}

// runSemanticRound performs the optional model consultation. Every failure
// path returns the sheet unchanged: the deterministic baseline is always a
// safe fallback.
func runSemanticRound(ctx context.Context, llm semantic.Client, doc *flowbridge.Node, tree *component.Tree, sheet *cssparse.Stylesheet, normRes *normalize.Result, bundle *ArtifactBundle, cfg Config, log *zap.Logger) *cssparse.Stylesheet {
	req := semantic.BuildRequest(doc, tree, normRes.Warnings, sheet.Variables.Map())
	resp, meta, err := llm.Patch(ctx, req, cfg.Model)
	bundle.LLMMeta = meta
	if err != nil {
		if bundle.LLMMeta == nil {
			bundle.LLMMeta = &semantic.Meta{Mode: "fallback", Reason: err.Error()}
		} else {
			bundle.LLMMeta.Mode = "fallback"
			bundle.LLMMeta.Reason = err.Error()
		}
		bundle.Validation.Append(validate.Info(validate.CodeLLMFallback,
			"semantic round failed; deterministic baseline used"))
		log.Warn("semantic round failed", zap.Error(err))
		return sheet
	}
	applied, err := semantic.Apply(tree, resp)
	if err != nil {
		bundle.Validation.Append(validate.Warning(validate.CodeComponentEmptied, err.Error()))
		log.Warn("semantic response rejected on apply", zap.Error(err))
		return sheet
	}
	bundle.LLMNotes = applied.Notes
	if !applied.CSSReplaced {
		return sheet
	}
	// The replacement CSS feeds the emitter; it goes through the same parse
	// and literalize steps as the original.
	newSheet := cssparse.NewParser(log).Parse(applied.FinalCSS)
	if _, err := tokens.Literalize(newSheet, false); err != nil {
		return sheet
	}
	return newSheet
}

// detachEmbeddedSources removes every <style> and <script> from the tree and
// returns their concatenated contents. Styles feed the CSS parser; scripts
// feed the cross-reference checks. External scripts have no body to collect
// and are dropped with the rest: the builder cannot host them.
func detachEmbeddedSources(doc *flowbridge.Node) (cssText, jsText string) {
	var styles, scripts []*flowbridge.Node
	flowbridge.Walk(doc, func(n *flowbridge.Node) {
		if n.Type != flowbridge.ElementNode {
			return
		}
		switch n.Data {
		case "style":
			styles = append(styles, n)
		case "script":
			scripts = append(scripts, n)
		}
	})
	var css, js strings.Builder
	for _, s := range styles {
		css.WriteString(s.Text())
		css.WriteString("\n")
		s.Parent.RemoveChild(s)
	}
	for _, s := range scripts {
		js.WriteString(s.Text())
		js.WriteString("\n")
		s.Parent.RemoveChild(s)
	}
	return css.String(), js.String()
}

func documentIDsAndClasses(doc *flowbridge.Node) (ids, classes map[string]bool) {
	ids = map[string]bool{}
	classes = map[string]bool{}
	flowbridge.Walk(doc, func(n *flowbridge.Node) {
		if n.Type != flowbridge.ElementNode {
			return
		}
		if id := n.ID(); id != "" {
			ids[id] = true
		}
		for _, c := range n.Classes() {
			classes[c] = true
		}
	})
	return ids, classes
}

func allDocumentClasses(doc *flowbridge.Node, tree *component.Tree) []string {
	seen := map[string]bool{}
	var out []string
	add := func(c string) {
		if c != "" && !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	flowbridge.Walk(doc, func(n *flowbridge.Node) {
		if n.Type == flowbridge.ElementNode {
			for _, c := range n.Classes() {
				add(c)
			}
		}
	})
	for _, comp := range tree.Components {
		for _, c := range comp.ClassesUsed {
			add(c)
		}
	}
	return out
}

// sharedEmbeds renders document-level relocations: rules no class selector
// could express, pseudo-element rules, and unsupported at-rule blocks.
func sharedEmbeds(normRes *normalize.Result, sheet *cssparse.Stylesheet) *safety.EmbedContent {
	var css strings.Builder
	for _, rule := range normRes.LeftoverRules {
		css.WriteString(ruleCSS(rule))
	}
	for _, rule := range normRes.RemovedPseudoElements {
		css.WriteString(ruleCSS(rule))
	}
	for _, raw := range sheet.UnsupportedAtRules {
		css.WriteString(raw)
		css.WriteString("\n")
	}
	if css.Len() == 0 {
		return nil
	}
	return &safety.EmbedContent{CSS: css.String()}
}

func ruleCSS(rule *cssparse.Rule) string {
	body := rule.Selector + " { " + cssparse.Serialize(rule.Declarations) + " }\n"
	if prelude, ok := cssparse.MediaPrelude(rule.Media.Tag); ok && rule.Media.Tag != "" {
		return prelude + " { " + strings.TrimSuffix(body, "\n") + " }\n"
	}
	return body
}
