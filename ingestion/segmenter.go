package ingestion

import (
	"regexp"
	"strings"
	"unicode"
)

const (
	// DefaultChunkSize is the target chunk length in characters.
	DefaultChunkSize = 512
	// DefaultChunkOverlap is the window overlap used when a single sentence
	// has to be hard-sliced.
	DefaultChunkOverlap = 64

	// minChunkLength is the shortest chunk worth indexing; smaller fragments
	// are dropped, not merged.
	minChunkLength = 20
)

// Chunk is a bounded span of document text sized for semantic indexing.
// Indices follow document order and are contiguous from zero.
type Chunk struct {
	Text  string
	Index int
}

// sectionPatterns match section headers commonly found in logistics
// documents. New template families extend this table by appending entries;
// any single match marks a boundary, so order is not significant here.
var sectionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^shipment\s+(?:details|information|summary)`),
	regexp.MustCompile(`(?i)^shipper\s+(?:information|details|name)`),
	regexp.MustCompile(`(?i)^consignee\s+(?:information|details|name)`),
	regexp.MustCompile(`(?i)^carrier\s+(?:information|details|name)`),
	regexp.MustCompile(`(?i)^rate\s+(?:confirmation|details|summary)`),
	regexp.MustCompile(`(?i)^pickup\s+(?:details|information|date|time)`),
	regexp.MustCompile(`(?i)^delivery\s+(?:details|information|date|time)`),
	regexp.MustCompile(`(?i)^bill\s+of\s+lading`),
	regexp.MustCompile(`(?i)^freight\s+(?:charges|details|bill)`),
	regexp.MustCompile(`(?i)^special\s+(?:instructions|notes|requirements)`),
	regexp.MustCompile(`(?i)^equipment\s+(?:type|details|requirements)`),
	regexp.MustCompile(`(?i)^terms\s+and\s+conditions`),
	regexp.MustCompile(`(?i)^payment\s+(?:terms|details)`),
	regexp.MustCompile(`(?i)^(?:insurance|claims|liability)`),
	regexp.MustCompile(`(?i)^(?:commodity|cargo|goods)\s`),
	regexp.MustCompile(`(?i)^(?:origin|destination)\s`),
	regexp.MustCompile(`(?i)^(?:weight|dimensions)\s`),
	regexp.MustCompile(`^#{1,3}\s`),
}

// IsSectionBoundary reports whether a line looks like the start of a new
// logical document section: either a known logistics header or a short
// all-caps line.
func IsSectionBoundary(line string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return false
	}
	for _, pattern := range sectionPatterns {
		if pattern.MatchString(trimmed) {
			return true
		}
	}
	if isAllUpper(trimmed) && len(trimmed) > 3 && len(trimmed) < 80 {
		return true
	}
	return false
}

func isAllUpper(s string) bool {
	hasCased := false
	for _, r := range s {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) {
			hasCased = true
		}
	}
	return hasCased
}

// Segment splits raw document text into indexed chunks:
//  1. split at section boundaries,
//  2. split oversized sections at sentence boundaries, greedily packing
//     sentences up to targetSize,
//  3. hard-slice sentences longer than targetSize into overlapping windows.
//
// Chunks shorter than 20 characters after trimming are dropped. Blank input
// yields no chunks.
func Segment(text string, targetSize, overlap int) []Chunk {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if targetSize <= 0 {
		targetSize = DefaultChunkSize
	}
	if overlap < 0 {
		overlap = 0
	}

	var sections []string
	var current []string
	for _, line := range strings.Split(text, "\n") {
		if IsSectionBoundary(line) && len(current) > 0 {
			sections = append(sections, strings.Join(current, "\n"))
			current = []string{line}
		} else {
			current = append(current, line)
		}
	}
	if len(current) > 0 {
		sections = append(sections, strings.Join(current, "\n"))
	}

	var pieces []string
	for _, section := range sections {
		section = strings.TrimSpace(section)
		if section == "" {
			continue
		}

		if len(section) <= targetSize {
			pieces = append(pieces, section)
			continue
		}

		buffer := ""
		for _, sentence := range splitSentences(section) {
			if len(buffer)+len(sentence)+1 <= targetSize {
				if buffer == "" {
					buffer = sentence
				} else {
					buffer += " " + sentence
				}
				continue
			}

			if buffer != "" {
				pieces = append(pieces, strings.TrimSpace(buffer))
			}

			if len(sentence) > targetSize {
				pieces = append(pieces, sliceWindows(sentence, targetSize, overlap)...)
				buffer = ""
			} else {
				buffer = sentence
			}
		}
		if strings.TrimSpace(buffer) != "" {
			pieces = append(pieces, strings.TrimSpace(buffer))
		}
	}

	chunks := make([]Chunk, 0, len(pieces))
	for _, piece := range pieces {
		if len(strings.TrimSpace(piece)) < minChunkLength {
			continue
		}
		chunks = append(chunks, Chunk{Text: piece, Index: len(chunks)})
	}
	return chunks
}

// sliceWindows cuts an oversized sentence into fixed windows of targetSize
// characters, each window starting targetSize-overlap after the previous one.
func sliceWindows(sentence string, targetSize, overlap int) []string {
	step := targetSize - overlap
	if step < 1 {
		step = targetSize
	}

	var windows []string
	for i := 0; i < len(sentence); i += step {
		end := i + targetSize
		if end > len(sentence) {
			end = len(sentence)
		}
		if window := strings.TrimSpace(sentence[i:end]); window != "" {
			windows = append(windows, window)
		}
	}
	return windows
}

// splitSentences splits text after a sentence terminator (. ! ?) followed by
// whitespace. The terminator stays with its sentence; the whitespace run is
// consumed.
func splitSentences(text string) []string {
	var sentences []string
	start := 0
	i := 0
	for i < len(text) {
		c := text[i]
		if (c == '.' || c == '!' || c == '?') && i+1 < len(text) && isSpaceByte(text[i+1]) {
			sentences = append(sentences, text[start:i+1])
			i++
			for i < len(text) && isSpaceByte(text[i]) {
				i++
			}
			start = i
			continue
		}
		i++
	}
	if start < len(text) {
		sentences = append(sentences, text[start:])
	}
	return sentences
}

func isSpaceByte(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\f', '\v':
		return true
	}
	return false
}
