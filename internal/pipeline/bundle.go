package pipeline

import (
	"encoding/json"
	"strings"

	"github.com/flowbridge/compiler/internal/safety"
	"github.com/flowbridge/compiler/internal/scene"
	"github.com/flowbridge/compiler/internal/semantic"
	"github.com/flowbridge/compiler/internal/tokens"
	"github.com/flowbridge/compiler/internal/validate"
)

// ComponentArtifact is one independently pastable output.
type ComponentArtifact struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Slug        string   `json:"slug"`
	Category    string   `json:"category"`
	HTMLContent string   `json:"htmlContent"`
	ClassesUsed []string `json:"classesUsed"`
	JSHooks     []string `json:"jsHooks"`
	// ScenePayload is the clipboard payload, or the literal placeholder
	// object when the safety gate blocked the component.
	ScenePayload any    `json:"scenePayload"`
	CodePayload  string `json:"codePayload,omitempty"`

	Embeds *safety.EmbedContent `json:"embeds,omitempty"`
	Report *safety.Report       `json:"report"`
}

// FontInfo carries a detected family plus installation guidance.
type FontInfo struct {
	Family   string `json:"family"`
	Guidance string `json:"guidance"`
}

// ArtifactBundle is the pipeline's terminal value.
type ArtifactBundle struct {
	ProjectName string `json:"projectName"`
	Slug        string `json:"slug"`
	Cancelled   bool   `json:"cancelled,omitempty"`

	TokenManifest     *tokens.Manifest `json:"tokenManifest,omitempty"`
	TokensPayload     *scene.Payload   `json:"tokensPayload,omitempty"`
	TokensCodePayload string           `json:"tokensCodePayload,omitempty"`

	Components []ComponentArtifact `json:"components"`

	Fonts  []FontInfo `json:"fonts,omitempty"`
	Images []string   `json:"images,omitempty"`

	// SharedEmbeds carries document-level relocations: selectors that could
	// not be flattened, pseudo-element rules, unsupported at-rule blocks.
	SharedEmbeds *safety.EmbedContent `json:"sharedEmbeds,omitempty"`

	LLMMeta      *semantic.Meta    `json:"llmMeta,omitempty"`
	LLMNotes     []string          `json:"llmNotes,omitempty"`
	ClassRenames map[string]string `json:"classRenames,omitempty"`

	Validation validate.Result `json:"validation"`
	Warnings   []string        `json:"warnings,omitempty"`
}

// ClipboardString renders a payload exactly as it goes onto the system
// clipboard: compact JSON, no whitespace.
func ClipboardString(p *scene.Payload) (string, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Token payload prefixes. The downstream UI tells token payloads apart from
// component payloads by the literal manifest prefix.
const (
	tokenManifestPrefix = "/* TOKEN MANIFEST */"
	tokenCSSPrefix      = "/* CSS */"
)

// TokenCodePayload serializes the manifest as a code payload: the manifest
// JSON behind the literal prefix, followed by the derived CSS custom
// properties.
func TokenCodePayload(m *tokens.Manifest) (string, error) {
	manifestJSON, err := json.Marshal(m)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	b.WriteString(tokenManifestPrefix)
	b.WriteString("\n")
	b.Write(manifestJSON)
	b.WriteString("\n")
	b.WriteString(tokenCSSPrefix)
	b.WriteString("\n")
	b.WriteString(deriveTokenCSS(m))
	return b.String(), nil
}

func deriveTokenCSS(m *tokens.Manifest) string {
	var b strings.Builder
	b.WriteString(":root {\n")
	for _, v := range m.Variables {
		switch {
		case v.Values != nil:
			b.WriteString("  " + v.CSSVar + ": " + v.Values.Light + ";\n")
		case v.Value != "":
			b.WriteString("  " + v.CSSVar + ": " + v.Value + ";\n")
		}
	}
	b.WriteString("}\n")
	if dark := deriveDarkBlock(m); dark != "" {
		b.WriteString(dark)
	}
	return b.String()
}

func deriveDarkBlock(m *tokens.Manifest) string {
	var lines []string
	for _, v := range m.Variables {
		if v.Values != nil && v.Values.Dark != "" {
			lines = append(lines, "  "+v.CSSVar+": "+v.Values.Dark+";")
		}
	}
	if len(lines) == 0 {
		return ""
	}
	return "@media (prefers-color-scheme: dark) {\n:root {\n" + strings.Join(lines, "\n") + "\n}\n}\n"
}

// CodePayload renders a component's embed channels as one pasteable code
// block: CSS first, then markup, then scripts.
func CodePayload(e *safety.EmbedContent) string {
	if e == nil || e.Empty() {
		return ""
	}
	var b strings.Builder
	if e.CSS != "" {
		b.WriteString("<style>\n" + e.CSS + "</style>\n")
	}
	if e.HTML != "" {
		b.WriteString(e.HTML)
		if !strings.HasSuffix(e.HTML, "\n") {
			b.WriteString("\n")
		}
	}
	if e.JS != "" {
		b.WriteString(e.JS)
	}
	return b.String()
}
