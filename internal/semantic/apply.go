package semantic

import (
	"fmt"
	"strings"

	"github.com/flowbridge/compiler/internal/component"
)

// ApplyResult reports what a response changed.
type ApplyResult struct {
	Renamed  int
	Patched  int
	FinalCSS string
	// CSSReplaced is true when the last replaceFinalCss patch applies.
	CSSReplaced bool
	Notes       []string
}

// Apply folds a validated response into the component tree. Renames with
// unknown ids are ignored; html patches replace the fragment and re-derive
// the class inventory; the last css patch (if any) becomes the CSS feeding
// the emitter. If any patch would leave a component with empty HTML the whole
// response is rejected and the tree is left untouched.
func Apply(tree *component.Tree, resp *Response) (*ApplyResult, error) {
	for _, p := range resp.HTMLPatches {
		if tree.ByID(p.ComponentID) == nil {
			continue
		}
		if strings.TrimSpace(p.HTML) == "" {
			return nil, fmt.Errorf("semantic apply rejected: patch empties component %q", p.ComponentID)
		}
	}

	res := &ApplyResult{Notes: resp.Notes}
	for _, r := range resp.ComponentRenames {
		comp := tree.ByID(r.ID)
		if comp == nil {
			continue
		}
		comp.Name = r.Name
		res.Renamed++
	}
	for _, p := range resp.HTMLPatches {
		comp := tree.ByID(p.ComponentID)
		if comp == nil {
			continue
		}
		comp.HTMLContent = p.HTML
		comp.ReSync()
		res.Patched++
	}
	if len(resp.CSSPatches) > 0 {
		res.FinalCSS = resp.CSSPatches[len(resp.CSSPatches)-1].CSS
		res.CSSReplaced = true
	}
	return res, nil
}

// ShouldInvoke decides whether the model is consulted at all. The call is
// made only when the deterministic pipeline left something on the table.
func ShouldInvoke(unresolvedVars []string, indexWarnings []string, tree *component.Tree, force bool) bool {
	if force {
		return true
	}
	if len(unresolvedVars) > 0 {
		return true
	}
	if len(indexWarnings) > 0 {
		return true
	}
	return component.HasGenericName(tree)
}
