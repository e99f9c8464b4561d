package safety

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/flowbridge/compiler/internal/cssparse"
	"github.com/flowbridge/compiler/internal/scene"
	"github.com/flowbridge/compiler/internal/validate"
	"go.uber.org/zap"
)

// Config carries the gate's tunables.
type Config struct {
	// ReservedPrefix is the builder's own class namespace.
	ReservedPrefix string
	// MaxDepth bounds the node tree; deeper subtrees demote to HtmlEmbed.
	MaxDepth int
	// Embed size budget in characters.
	EmbedSoftLimit int
	EmbedHardLimit int
	// CDN locations for the animation runtime used by converted
	// interactions.
	GSAPCoreURL          string
	GSAPScrollTriggerURL string
	// AllowMultiRoot skips the multi-root wrapper (component bundles).
	AllowMultiRoot bool
}

// DefaultConfig returns the production tunables.
func DefaultConfig() Config {
	return Config{
		ReservedPrefix:       "w-",
		MaxDepth:             30,
		EmbedSoftLimit:       40000,
		EmbedHardLimit:       50000,
		GSAPCoreURL:          "https://cdn.jsdelivr.net/npm/gsap@3/dist/gsap.min.js",
		GSAPScrollTriggerURL: "https://cdn.jsdelivr.net/npm/gsap@3/dist/ScrollTrigger.min.js",
	}
}

// Gate is the 12-step sanitizer.
type Gate struct {
	cfg Config
	log *zap.Logger
}

func New(cfg Config, log *zap.Logger) *Gate {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.MaxDepth == 0 {
		cfg = DefaultConfig()
	}
	return &Gate{cfg: cfg, log: log.Named("safety")}
}

// Run executes the fixed repair pipeline over the payload in place. Step
// order is mandatory: later steps assume earlier ones (for example the
// variant cleanup assumes duplicate UUIDs are already reminted).
func (g *Gate) Run(p *scene.Payload) (*Report, *EmbedContent) {
	report := &Report{}
	embeds := &EmbedContent{}
	in := &p.Payload

	g.dedupeUUIDs(in, report)
	g.breakStyleCycles(in, report)
	g.breakNodeCycles(in, report)
	g.flattenDeepSubtrees(in, report, embeds)
	g.wrapMultipleRoots(in, report)
	g.stripTextBreaks(in, report)
	g.dropOrphanPseudoStyles(in, report)
	g.dropGhostVariants(in, report)
	g.dropInvalidVariantKeys(in, report)
	g.renameReservedClasses(in, report)
	g.dropOrphanChildRefs(in, report)
	g.convertBrokenInteractions(in, report, embeds)

	g.extractUnsupportedCSS(in, report, embeds)
	g.sanitizeEmbeds(in, report, embeds)

	g.verify(in, report)
	report.EmbedSize = EmbedSize{
		Limit: g.cfg.EmbedHardLimit,
		CSS:   len(embeds.CSS),
		JS:    len(embeds.JS),
		HTML:  len(embeds.HTML),
	}
	report.finalize()
	g.log.Debug("safety gate complete",
		zap.String("status", string(report.Status)),
		zap.Int("autoFixes", len(report.AutoFixes)),
		zap.Int("extracted", report.ExtractedToEmbeds))
	return report, embeds
}

// --- step 1 ---------------------------------------------------------------

func (g *Gate) dedupeUUIDs(in *scene.Inner, report *Report) {
	seen := map[string]bool{}
	for _, n := range in.Nodes {
		if seen[n.ID] {
			old := n.ID
			n.ID = scene.NewID()
			report.fix(fmt.Sprintf("reminted duplicate node id %s", old))
		}
		seen[n.ID] = true
	}
	for _, s := range in.Styles {
		if seen[s.ID] {
			old := s.ID
			s.ID = scene.NewID()
			report.fix(fmt.Sprintf("reminted duplicate style id %s", old))
		}
		seen[s.ID] = true
	}
}

// --- step 2 ---------------------------------------------------------------

func (g *Gate) breakStyleCycles(in *scene.Inner, report *Report) {
	live := map[string]*scene.Style{}
	for _, s := range in.Styles {
		live[s.ID] = s
	}
	var walk func(s *scene.Style, ancestors map[string]bool)
	walk = func(s *scene.Style, ancestors map[string]bool) {
		ancestors[s.ID] = true
		kept := s.Children[:0]
		for _, childID := range s.Children {
			child, ok := live[childID]
			if !ok {
				kept = append(kept, childID)
				continue
			}
			if ancestors[childID] {
				report.fix(fmt.Sprintf("broke circular style reference %s -> %s", s.Name, child.Name))
				report.warn(validate.Warning(validate.CodeCircularReference,
					fmt.Sprintf("style %q referenced its ancestor", child.Name)))
				continue
			}
			kept = append(kept, childID)
			walk(child, ancestors)
		}
		s.Children = kept
		delete(ancestors, s.ID)
	}
	for _, s := range in.Styles {
		walk(s, map[string]bool{})
	}
}

// --- step 3 ---------------------------------------------------------------

func (g *Gate) breakNodeCycles(in *scene.Inner, report *Report) {
	live := map[string]*scene.Node{}
	for _, n := range in.Nodes {
		live[n.ID] = n
	}
	visited := map[string]bool{}
	var walk func(n *scene.Node, ancestors map[string]bool)
	walk = func(n *scene.Node, ancestors map[string]bool) {
		visited[n.ID] = true
		ancestors[n.ID] = true
		kept := n.Children[:0]
		for _, childID := range n.Children {
			if ancestors[childID] {
				report.fix(fmt.Sprintf("removed circular node reference %s -> %s", n.ID, childID))
				report.warn(validate.Warning(validate.CodeCircularReference,
					fmt.Sprintf("node %s referenced its ancestor %s", n.ID, childID)))
				continue
			}
			kept = append(kept, childID)
			if child, ok := live[childID]; ok && !ancestors[childID] {
				walk(child, ancestors)
			}
		}
		n.Children = kept
		delete(ancestors, n.ID)
	}
	for _, root := range in.Roots() {
		walk(root, map[string]bool{})
	}
	// A pure cycle has no root at all; sweep whatever the root walk missed.
	for _, n := range in.Nodes {
		if !visited[n.ID] {
			walk(n, map[string]bool{})
		}
	}
}

// --- step 4 ---------------------------------------------------------------

func (g *Gate) flattenDeepSubtrees(in *scene.Inner, report *Report, embeds *EmbedContent) {
	live := map[string]*scene.Node{}
	for _, n := range in.Nodes {
		live[n.ID] = n
	}
	var demoted []string

	var walk func(n *scene.Node, depth int)
	walk = func(n *scene.Node, depth int) {
		if depth >= g.cfg.MaxDepth && len(n.Children) > 0 {
			html := serializeSubtree(in, live, n)
			removeSubtreeNodes(in, live, n)
			n.Type = scene.NodeHtmlEmbed
			n.Tag = "div"
			n.Text = false
			n.V = html
			n.Data = map[string]any{"embed": map[string]any{"meta": map[string]any{"html": html}}}
			n.Children = []string{}
			demoted = append(demoted, n.ID)
			embeds.HTML += html + "\n"
			report.fix(fmt.Sprintf("flattened subtree at depth %d into an embed", depth))
			report.warn(validate.Warning(validate.CodeExcessiveDepth,
				fmt.Sprintf("subtree deeper than %d levels was demoted to an HtmlEmbed", g.cfg.MaxDepth)))
			return
		}
		for _, childID := range n.Children {
			if child, ok := live[childID]; ok {
				walk(child, depth+1)
			}
		}
	}
	for _, root := range in.Roots() {
		walk(root, 1)
	}
	if len(demoted) > 0 {
		report.ExtractedToEmbeds += len(demoted)
	}
}

// serializeSubtree re-renders a scene subtree as HTML, resolving style UUIDs
// back to class names.
func serializeSubtree(in *scene.Inner, live map[string]*scene.Node, n *scene.Node) string {
	styleNames := map[string]string{}
	for _, s := range in.Styles {
		styleNames[s.ID] = s.Name
	}
	var render func(n *scene.Node, b *strings.Builder)
	render = func(n *scene.Node, b *strings.Builder) {
		if n.Text {
			b.WriteString(n.V)
			return
		}
		if n.Type == scene.NodeHtmlEmbed {
			b.WriteString(n.V)
			return
		}
		tag := n.Tag
		if tag == "" {
			tag = "div"
		}
		b.WriteByte('<')
		b.WriteString(tag)
		var classes []string
		for _, styleID := range n.Classes {
			if name, ok := styleNames[styleID]; ok {
				classes = append(classes, name)
			}
		}
		if len(classes) > 0 {
			b.WriteString(` class="` + strings.Join(classes, " ") + `"`)
		}
		b.WriteByte('>')
		for _, childID := range n.Children {
			if child, ok := live[childID]; ok {
				render(child, b)
			}
		}
		b.WriteString("</" + tag + ">")
	}
	var b strings.Builder
	render(n, &b)
	return b.String()
}

func removeSubtreeNodes(in *scene.Inner, live map[string]*scene.Node, root *scene.Node) {
	doomed := map[string]bool{}
	var mark func(n *scene.Node)
	mark = func(n *scene.Node) {
		for _, childID := range n.Children {
			if child, ok := live[childID]; ok && !doomed[childID] {
				doomed[childID] = true
				mark(child)
			}
		}
	}
	mark(root)
	kept := in.Nodes[:0]
	for _, n := range in.Nodes {
		if !doomed[n.ID] {
			kept = append(kept, n)
		}
	}
	in.Nodes = kept
}

// --- step 5 ---------------------------------------------------------------

const multiRootClass = "multi-root-wrapper"

func (g *Gate) wrapMultipleRoots(in *scene.Inner, report *Report) {
	if g.cfg.AllowMultiRoot {
		return
	}
	roots := in.Roots()
	if len(roots) <= 1 {
		return
	}
	var wrapperStyle *scene.Style
	for _, s := range in.Styles {
		if s.Name == multiRootClass {
			wrapperStyle = s
			break
		}
	}
	if wrapperStyle == nil {
		wrapperStyle = &scene.Style{ID: scene.NewID(), Name: multiRootClass}
		in.Styles = append(in.Styles, wrapperStyle)
	}
	wrapper := &scene.Node{
		ID:      scene.NewID(),
		Type:    scene.NodeBlock,
		Tag:     "div",
		Classes: []string{wrapperStyle.ID},
	}
	for _, r := range roots {
		wrapper.Children = append(wrapper.Children, r.ID)
	}
	in.Nodes = append([]*scene.Node{wrapper}, in.Nodes...)
	report.fix(fmt.Sprintf("Wrapped %d root elements in a %s block", len(roots), multiRootClass))
	report.warn(validate.Warning(validate.CodeMultipleRoots,
		fmt.Sprintf("payload had %d roots; a wrapper was synthesized", len(roots))))
}

// --- step 6 ---------------------------------------------------------------

var brTag = regexp.MustCompile(`<br\s*/?>`)

func (g *Gate) stripTextBreaks(in *scene.Inner, report *Report) {
	for _, n := range in.Nodes {
		if !n.Text || !strings.Contains(n.V, "<br") {
			continue
		}
		n.V = brTag.ReplaceAllString(n.V, "\n")
		report.fix("relocated <br> inside a text node to a newline")
	}
}

// --- step 7 ---------------------------------------------------------------

func (g *Gate) dropOrphanPseudoStyles(in *scene.Inner, report *Report) {
	baseNames := map[string]bool{}
	for _, s := range in.Styles {
		if !strings.Contains(s.Name, ":") {
			baseNames[s.Name] = true
		}
	}
	removed := map[string]bool{}
	kept := in.Styles[:0]
	for _, s := range in.Styles {
		if colon := strings.IndexByte(s.Name, ':'); colon > 0 && !baseNames[s.Name[:colon]] {
			removed[s.ID] = true
			report.fix(fmt.Sprintf("deleted pseudo-state style %q without a base style", s.Name))
			report.warn(validate.Warning(validate.CodeOrphanPseudoVariant,
				fmt.Sprintf("style %q has no base class", s.Name)))
			continue
		}
		kept = append(kept, s)
	}
	in.Styles = kept
	if len(removed) == 0 {
		return
	}
	for _, n := range in.Nodes {
		classes := n.Classes[:0]
		for _, id := range n.Classes {
			if !removed[id] {
				classes = append(classes, id)
			}
		}
		n.Classes = classes
	}
}

// --- steps 8 + 9 ----------------------------------------------------------

var uuidShape = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

func (g *Gate) dropGhostVariants(in *scene.Inner, report *Report) {
	liveNodes := map[string]bool{}
	for _, n := range in.Nodes {
		liveNodes[n.ID] = true
	}
	for _, s := range in.Styles {
		for key := range s.Variants {
			if uuidShape.MatchString(key) && !liveNodes[key] {
				delete(s.Variants, key)
				report.fix(fmt.Sprintf("stripped ghost variant %s from style %q", key, s.Name))
				report.warn(validate.Warning(validate.CodeGhostVariantKey,
					fmt.Sprintf("style %q carried a variant for a dead node", s.Name)))
			}
		}
	}
}

func (g *Gate) dropInvalidVariantKeys(in *scene.Inner, report *Report) {
	liveNodes := map[string]bool{}
	for _, n := range in.Nodes {
		liveNodes[n.ID] = true
	}
	for _, s := range in.Styles {
		for key := range s.Variants {
			if cssparse.IsBreakpointTag(key) || cssparse.IsPseudoState(key) || liveNodes[key] {
				continue
			}
			delete(s.Variants, key)
			report.fix(fmt.Sprintf("removed invalid variant key %q from style %q", key, s.Name))
			report.warn(validate.Warning(validate.CodeInvalidVariantKey,
				fmt.Sprintf("style %q carried unrecognized variant key %q", s.Name, key)))
		}
	}
}

// --- step 10 --------------------------------------------------------------

func (g *Gate) renameReservedClasses(in *scene.Inner, report *Report) {
	taken := map[string]bool{}
	for _, s := range in.Styles {
		taken[s.Name] = true
	}
	for _, s := range in.Styles {
		if !strings.HasPrefix(s.Name, g.cfg.ReservedPrefix) {
			continue
		}
		suffix := strings.TrimPrefix(s.Name, g.cfg.ReservedPrefix)
		candidate := "custom-" + suffix
		for i := 2; taken[candidate]; i++ {
			candidate = fmt.Sprintf("custom-%s-%d", suffix, i)
		}
		report.fix(fmt.Sprintf("renamed reserved class %q to %q", s.Name, candidate))
		report.warn(validate.Warning(validate.CodeReservedClassName,
			fmt.Sprintf("class %q uses the builder's reserved prefix", s.Name)))
		s.Name = candidate
		taken[candidate] = true
	}
}

// --- step 11 --------------------------------------------------------------

func (g *Gate) dropOrphanChildRefs(in *scene.Inner, report *Report) {
	live := map[string]bool{}
	for _, n := range in.Nodes {
		live[n.ID] = true
	}
	for _, n := range in.Nodes {
		kept := n.Children[:0]
		for _, id := range n.Children {
			if live[id] {
				kept = append(kept, id)
				continue
			}
			report.fix(fmt.Sprintf("dropped orphan child reference %s", id))
			report.warn(validate.Warning(validate.CodeOrphanChildReference,
				fmt.Sprintf("node %s referenced missing child %s", n.ID, id)))
		}
		n.Children = kept
	}
}

// --- final verification ---------------------------------------------------

// verify re-checks the invariants after all repairs. Anything still broken
// here blocks the payload; the placeholder downstream is better than a paste
// that corrupts the builder.
func (g *Gate) verify(in *scene.Inner, report *Report) {
	seen := map[string]bool{}
	for _, n := range in.Nodes {
		if seen[n.ID] {
			report.fatal(validate.Fatal(validate.CodeDuplicateUUID,
				fmt.Sprintf("node id %s still duplicated after repair", n.ID)))
		}
		seen[n.ID] = true
	}
	styleLive := map[string]bool{}
	for _, s := range in.Styles {
		if seen[s.ID] {
			report.fatal(validate.Fatal(validate.CodeDuplicateUUID,
				fmt.Sprintf("style id %s still duplicated after repair", s.ID)))
		}
		seen[s.ID] = true
		styleLive[s.ID] = true
	}
	nodeLive := map[string]bool{}
	for _, n := range in.Nodes {
		nodeLive[n.ID] = true
	}
	for _, n := range in.Nodes {
		for _, c := range n.Children {
			if !nodeLive[c] {
				report.fatal(validate.Fatal(validate.CodeOrphanChildReference,
					fmt.Sprintf("node %s still references missing child %s", n.ID, c)))
			}
		}
		for _, c := range n.Classes {
			if !styleLive[c] {
				report.fatal(validate.Fatal(validate.CodeOrphanChildReference,
					fmt.Sprintf("node %s references missing style %s", n.ID, c)))
			}
		}
	}
}
