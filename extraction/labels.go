package extraction

import (
	"regexp"
	"strings"
)

// maxValueLength caps values captured after a label.
const maxValueLength = 150

var (
	nameLinePattern  = regexp.MustCompile(`(?i)^(?:name|company)\s*:\s*(.+)`)
	subLabelPattern  = regexp.MustCompile(`(?i)^(?:address|contact|phone|email|fax|city|state|zip)\s*:`)
	separatorPrefixes = []string{"---", "==="}
)

// FindAfterLabel tries each pattern in order and returns the first captured
// value that is not junk. Earlier patterns encode more specific phrasing and
// always win over later, looser ones; a junk capture counts as a non-match
// and scanning continues.
func FindAfterLabel(text string, patterns []*regexp.Regexp) string {
	for _, pattern := range patterns {
		match := pattern.FindStringSubmatch(text)
		if match == nil {
			continue
		}
		val := strings.TrimSpace(match[1])
		if IsJunkValue(val) {
			continue
		}
		if len(val) > maxValueLength {
			val = val[:maxValueLength]
		}
		return val
	}
	return ""
}

// findNextValueLine walks forward from a header line and returns the first
// line that looks like real data, skipping blanks, separators, junk, and
// known sub-labels. A "Name:"/"Company:" line short-circuits with its
// trailing value. Returns "" when nothing usable appears within maxSkip
// lines.
func findNextValueLine(lines []string, startIdx, maxSkip int) string {
	limit := startIdx + maxSkip + 1
	if limit > len(lines) {
		limit = len(lines)
	}
	for j := startIdx + 1; j < limit; j++ {
		candidate := strings.TrimSpace(lines[j])
		if candidate == "" {
			continue
		}
		if hasSeparatorPrefix(candidate) {
			continue
		}
		if IsJunkValue(candidate) {
			continue
		}
		if match := nameLinePattern.FindStringSubmatch(candidate); match != nil {
			return strings.TrimSpace(match[1])
		}
		if subLabelPattern.MatchString(candidate) {
			continue
		}
		return candidate
	}
	return ""
}

func hasSeparatorPrefix(line string) bool {
	for _, prefix := range separatorPrefixes {
		if strings.HasPrefix(line, prefix) {
			return true
		}
	}
	return false
}
