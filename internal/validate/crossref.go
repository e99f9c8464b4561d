package validate

import (
	"fmt"
	"regexp"
	"strings"
)

// JS reference patterns. These are anchored on literal call shapes; arguments
// that are template literals or identifiers fall through to the dynamic-skip
// patterns below. All patterns are RE2-safe.
var (
	idRefPatterns = []*regexp.Regexp{
		regexp.MustCompile(`getElementById\(\s*['"]([^'"]+)['"]\s*\)`),
		regexp.MustCompile(`querySelector(?:All)?\(\s*['"]#([A-Za-z][\w-]*)['"]\s*\)`),
		regexp.MustCompile(`\$\(\s*['"]#([A-Za-z][\w-]*)['"]\s*\)`),
	}
	classRefPatterns = []*regexp.Regexp{
		regexp.MustCompile(`querySelector(?:All)?\(\s*['"]\.([A-Za-z][\w-]*)['"]\s*\)`),
		regexp.MustCompile(`getElementsByClassName\(\s*['"]([^'"]+)['"]\s*\)`),
		regexp.MustCompile(`\$\(\s*['"]\.([A-Za-z][\w-]*)['"]\s*\)`),
		regexp.MustCompile(`classList\.(?:add|remove|toggle|contains)\(\s*['"]([^'"]+)['"]`),
	}
	dynamicRefPatterns = []*regexp.Regexp{
		regexp.MustCompile("getElementById\\(\\s*[`$\\w]"),
		regexp.MustCompile("querySelector(?:All)?\\(\\s*[`$\\w]"),
		regexp.MustCompile("getElementsByClassName\\(\\s*[`$\\w]"),
		regexp.MustCompile("classList\\.(?:add|remove|toggle|contains)\\(\\s*[`$\\w]"),
	}
)

// CrossReference checks JS selector references against the ids and classes
// present in the document. Missing ids are errors (the script will throw);
// missing classes are warnings (querySelector returns null, scripts commonly
// guard for it).
func CrossReference(js string, htmlIDs, htmlClasses map[string]bool) Result {
	var res Result

	for _, pat := range dynamicRefPatterns {
		for _, m := range pat.FindAllString(js, -1) {
			res.Append(Issue{
				Severity: SeverityInfo,
				Code:     CodeDynamicReferenceSkip,
				Message:  "dynamic selector argument cannot be statically checked",
				Context:  strings.TrimSpace(m),
			})
		}
	}

	seen := map[string]bool{}
	for _, pat := range idRefPatterns {
		for _, m := range pat.FindAllStringSubmatch(js, -1) {
			id := m[1]
			if htmlIDs[id] || seen["#"+id] {
				continue
			}
			seen["#"+id] = true
			res.Append(Issue{
				Severity:   SeverityError,
				Code:       CodeOrphanIDReference,
				Message:    fmt.Sprintf("script references id %q which does not exist in the document", id),
				Context:    m[0],
				Suggestion: "add the id to the markup or remove the reference",
			})
		}
	}
	for _, pat := range classRefPatterns {
		for _, m := range pat.FindAllStringSubmatch(js, -1) {
			class := m[1]
			if htmlClasses[class] || seen["."+class] {
				continue
			}
			seen["."+class] = true
			res.Append(Issue{
				Severity: SeverityWarning,
				Code:     CodeOrphanClassReference,
				Message:  fmt.Sprintf("script references class %q which does not exist in the document", class),
				Context:  m[0],
			})
		}
	}
	return res
}
