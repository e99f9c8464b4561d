package cssparse

import "fmt"

// ClassEntry is the per-class slice of the stylesheet: base declarations plus
// breakpoint and pseudo-state overrides, all in serialized "name: value;"
// form.
type ClassEntry struct {
	BaseStyles   string
	MediaQueries map[string]string
	Pseudos      map[string]string
	Warnings     []string
}

// Empty reports whether the entry is a pure placeholder.
func (e *ClassEntry) Empty() bool {
	return e.BaseStyles == "" && len(e.MediaQueries) == 0 && len(e.Pseudos) == 0
}

// ClassIndex maps class names to their entries, preserving first-seen order.
type ClassIndex struct {
	names   []string
	entries map[string]*ClassEntry
}

func NewClassIndex() *ClassIndex {
	return &ClassIndex{entries: map[string]*ClassEntry{}}
}

// Get returns the entry for a class, or nil.
func (ix *ClassIndex) Get(name string) *ClassEntry {
	return ix.entries[name]
}

// Ensure returns the entry for a class, creating a placeholder if absent.
func (ix *ClassIndex) Ensure(name string) *ClassEntry {
	if e, ok := ix.entries[name]; ok {
		return e
	}
	e := &ClassEntry{
		MediaQueries: map[string]string{},
		Pseudos:      map[string]string{},
	}
	ix.entries[name] = e
	ix.names = append(ix.names, name)
	return e
}

// Names returns class names in first-seen order.
func (ix *ClassIndex) Names() []string {
	return append([]string(nil), ix.names...)
}

// Len returns the number of indexed classes.
func (ix *ClassIndex) Len() int {
	return len(ix.names)
}

// classBuild accumulates ordered declarations for one class while the index
// is assembled.
type classBuild struct {
	base   []Declaration
	media  map[string][]Declaration
	pseudo map[string][]Declaration
	warns  []string
}

func mergeDecls(dst []Declaration, src []Declaration) []Declaration {
	for _, d := range src {
		replaced := false
		for i := range dst {
			if dst[i].Name == d.Name {
				dst[i].Value = d.Value
				replaced = true
				break
			}
		}
		if !replaced {
			dst = append(dst, d)
		}
	}
	return dst
}

// BuildIndex assembles the class index from a normalized stylesheet, where
// every rule's selector is a single class optionally suffixed by a pseudo.
// Rules that still have another shape are skipped with a warning on the
// sheet. htmlClasses guarantees the placeholder invariant: every class used
// in markup gets an entry even with no CSS behind it.
//
// Promoted min-width rules fold into base styles; base values they displace
// are back-filled into the narrower breakpoints the promoted rule does not
// cover, so the desktop-first cascade reproduces the mobile-first source.
func BuildIndex(sheet *Stylesheet, htmlClasses []string) *ClassIndex {
	ix := NewClassIndex()
	builds := map[string]*classBuild{}
	order := []string{}

	buildFor := func(name string) *classBuild {
		if b, ok := builds[name]; ok {
			return b
		}
		b := &classBuild{media: map[string][]Declaration{}, pseudo: map[string][]Declaration{}}
		builds[name] = b
		order = append(order, name)
		return b
	}

	for _, rule := range sheet.Rules {
		if len(rule.Declarations) == 0 {
			continue
		}
		info := ClassifySelector(rule.Selector)
		var class, pseudo string
		switch info.Kind {
		case SelClass:
			class = info.Parts[0].Class
		case SelClassPseudo:
			class = info.Parts[0].Class
			pseudo = info.Parts[0].Pseudo
		default:
			sheet.Warnings = append(sheet.Warnings,
				fmt.Sprintf("selector %q not reduced to a class; routed to embed", rule.Selector))
			continue
		}
		b := buildFor(class)

		switch {
		case pseudo != "":
			b.pseudo[pseudo] = mergeDecls(b.pseudo[pseudo], rule.Declarations)
		case rule.Media.Tag != "":
			b.media[rule.Media.Tag] = mergeDecls(b.media[rule.Media.Tag], rule.Declarations)
		case rule.Media.Promote:
			// Back-fill displaced base values before the promoted rule
			// overwrites them.
			for _, d := range rule.Declarations {
				for _, old := range b.base {
					if old.Name != d.Name {
						continue
					}
					for _, tag := range rule.Media.Narrower {
						if !hasDecl(b.media[tag], d.Name) {
							b.media[tag] = append(b.media[tag], old)
						}
					}
				}
			}
			b.base = mergeDecls(b.base, rule.Declarations)
		default:
			b.base = mergeDecls(b.base, rule.Declarations)
		}
	}

	for _, name := range order {
		b := builds[name]
		e := ix.Ensure(name)
		e.BaseStyles = Serialize(b.base)
		for tag, decls := range b.media {
			e.MediaQueries[tag] = Serialize(decls)
		}
		for ps, decls := range b.pseudo {
			e.Pseudos[ps] = Serialize(decls)
		}
		e.Warnings = b.warns
	}

	for _, c := range htmlClasses {
		ix.Ensure(c)
	}
	return ix
}

func hasDecl(decls []Declaration, name string) bool {
	for _, d := range decls {
		if d.Name == name {
			return true
		}
	}
	return false
}
