package extraction

import (
	"regexp"
	"strings"
)

// junkStoplist holds bare words that are section labels or placeholders, not
// values.
var junkStoplist = map[string]struct{}{
	"information": {},
	"details":     {},
	"section":     {},
	"data":        {},
	"summary":     {},
	"n/a":         {},
	"na":          {},
	"none":        {},
	"null":        {},
	"tbd":         {},
	"---":         {},
	"===":         {},
}

// headerKeywords are column names frequently seen in table header rows. A
// candidate containing several of them is a captured header, not a value.
var headerKeywords = map[string]struct{}{
	"carrier":   {},
	"mc":        {},
	"phone":     {},
	"equipment": {},
	"agreed":    {},
	"amount":    {},
	"size":      {},
	"feet":      {},
	"column":    {},
	"field":     {},
	"value":     {},
	"type":      {},
	"name":      {},
	"address":   {},
	"city":      {},
	"state":     {},
	"zip":       {},
	"contact":   {},
	"email":     {},
	"fax":       {},
}

var dashesOnlyPattern = regexp.MustCompile(`^[\s\-]+$`)

// IsJunkValue reports whether a candidate extracted string looks like
// extraction noise (table header, separator, placeholder) rather than real
// data. Past these filters the judge is intentionally permissive.
func IsJunkValue(val string) bool {
	if len(strings.TrimSpace(val)) < 2 {
		return true
	}

	valLower := strings.ToLower(strings.TrimSpace(val))
	if _, ok := junkStoplist[valLower]; ok {
		return true
	}

	if strings.HasPrefix(val, "---") || strings.HasPrefix(val, "===") {
		return true
	}

	if dashesOnlyPattern.MatchString(val) {
		return true
	}

	seen := map[string]struct{}{}
	for _, word := range strings.Fields(valLower) {
		seen[word] = struct{}{}
	}
	overlap := 0
	for word := range seen {
		if _, ok := headerKeywords[word]; ok {
			overlap++
		}
	}
	if overlap >= 3 && len(seen) >= 4 {
		return true
	}

	if strings.Count(val, "|") >= 2 {
		return true
	}

	return false
}
