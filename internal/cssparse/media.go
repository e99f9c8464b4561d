package cssparse

import (
	"strconv"
	"strings"
)

// Breakpoint tags, desktop-first. Base styles carry no tag; the three
// max-width buckets narrow from medium down to tiny.
const (
	BreakpointTiny   = "tiny"
	BreakpointSmall  = "small"
	BreakpointMedium = "medium"
	BreakpointLarge  = "large"
	BreakpointXL     = "xl"
	BreakpointXXL    = "xxl"
)

// BreakpointTags lists every recognized breakpoint variant key: the min-width
// tags in ascending order, then the max-width buckets narrowing to tiny.
var BreakpointTags = []string{
	BreakpointLarge, BreakpointXL, BreakpointXXL,
	BreakpointMedium, BreakpointSmall, BreakpointTiny,
}

// Max-width thresholds in px for the narrowing buckets.
const (
	tinyMax   = 479
	smallMax  = 767
	mediumMax = 991
)

// MediaPrelude maps a breakpoint tag back to the @media prelude used when
// re-prefixing extracted CSS.
func MediaPrelude(tag string) (string, bool) {
	switch tag {
	case BreakpointTiny:
		return "@media (max-width: 479px)", true
	case BreakpointSmall:
		return "@media (max-width: 767px)", true
	case BreakpointMedium:
		return "@media (max-width: 991px)", true
	case BreakpointLarge:
		return "@media (min-width: 992px)", true
	case BreakpointXL:
		return "@media (min-width: 1280px)", true
	case BreakpointXXL:
		return "@media (min-width: 1440px)", true
	}
	return "", false
}

// IsBreakpointTag reports whether s is a recognized breakpoint key.
func IsBreakpointTag(s string) bool {
	for _, t := range BreakpointTags {
		if s == t {
			return true
		}
	}
	return false
}

// ClassifyMedia maps an @media prelude onto the closed breakpoint set.
//
// The source is mobile-first and the target desktop-first: max-width rules
// bucket into tiny/small/medium, while min-width rules promote into base
// styles with Narrower carrying the buckets the rule does not cover (so the
// displaced base values can be back-filled). A prelude with no width axis is
// unsupported and reported via ok=false.
func ClassifyMedia(prelude string) (MediaClass, bool) {
	prelude = strings.ToLower(prelude)
	if maxW, found := widthValue(prelude, "max-width"); found {
		switch {
		case maxW <= tinyMax:
			return MediaClass{Tag: BreakpointTiny}, true
		case maxW <= smallMax:
			return MediaClass{Tag: BreakpointSmall}, true
		default:
			// Anything wider than the medium threshold still lands in the
			// widest narrowing bucket.
			return MediaClass{Tag: BreakpointMedium}, true
		}
	}
	if minW, found := widthValue(prelude, "min-width"); found {
		return MediaClass{Promote: true, Narrower: narrowerTags(minW)}, true
	}
	if _, found := widthValue(prelude, "width"); found {
		return MediaClass{}, true
	}
	return MediaClass{}, false
}

// narrowerTags returns the max-width buckets entirely below a min-width
// threshold, narrowest last.
func narrowerTags(minWidth float64) []string {
	var out []string
	if minWidth > mediumMax {
		out = append(out, BreakpointMedium)
	}
	if minWidth > smallMax {
		out = append(out, BreakpointSmall)
	}
	if minWidth > tinyMax {
		out = append(out, BreakpointTiny)
	}
	if len(out) == 0 {
		// A min-width at or below the tiny threshold effectively always
		// applies; nothing to back-fill.
		return nil
	}
	return out
}

// widthValue scans a prelude for "feature: <len>" and converts the length to
// px. rem and em thresholds convert at 16px per unit.
func widthValue(prelude, feature string) (float64, bool) {
	idx := strings.Index(prelude, feature)
	for idx >= 0 {
		// Reject partial matches: "max-width" contains "width".
		if idx > 0 && (prelude[idx-1] == '-' || isIdentChar(prelude[idx-1])) {
			next := strings.Index(prelude[idx+1:], feature)
			if next < 0 {
				return 0, false
			}
			idx += 1 + next
			continue
		}
		break
	}
	if idx < 0 {
		return 0, false
	}
	rest := prelude[idx+len(feature):]
	colon := strings.IndexByte(rest, ':')
	if colon < 0 {
		return 0, false
	}
	val := rest[colon+1:]
	if end := strings.IndexByte(val, ')'); end >= 0 {
		val = val[:end]
	}
	val = strings.TrimSpace(val)

	numEnd := 0
	for numEnd < len(val) && (val[numEnd] >= '0' && val[numEnd] <= '9' || val[numEnd] == '.') {
		numEnd++
	}
	if numEnd == 0 {
		return 0, false
	}
	num, err := strconv.ParseFloat(val[:numEnd], 64)
	if err != nil {
		return 0, false
	}
	unit := strings.TrimSpace(val[numEnd:])
	switch unit {
	case "px", "":
		return num, true
	case "rem", "em":
		return num * 16, true
	}
	return 0, false
}
