package qa

import (
	"sort"
	"strings"
)

// ExtractiveAnswer builds an answer without an LLM by ranking the sentences
// of the best-matching chunk on keyword overlap with the question and
// returning the top three. When no sentence overlaps at all, it returns the
// opening of the chunk instead.
func ExtractiveAnswer(question string, chunks []SourceChunk) string {
	if len(chunks) == 0 {
		return "No relevant information found."
	}

	text := chunks[0].Text

	var sentences []string
	for _, s := range strings.Split(text, ".") {
		if trimmed := strings.TrimSpace(s); trimmed != "" {
			sentences = append(sentences, trimmed)
		}
	}

	questionWords := map[string]struct{}{}
	for _, w := range strings.Fields(strings.ToLower(question)) {
		questionWords[w] = struct{}{}
	}

	type scored struct {
		overlap  int
		sentence string
	}
	ranked := make([]scored, 0, len(sentences))
	for _, sent := range sentences {
		overlap := 0
		seen := map[string]struct{}{}
		for _, w := range strings.Fields(strings.ToLower(sent)) {
			if _, dup := seen[w]; dup {
				continue
			}
			seen[w] = struct{}{}
			if _, ok := questionWords[w]; ok {
				overlap++
			}
		}
		ranked = append(ranked, scored{overlap: overlap, sentence: sent})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].overlap > ranked[j].overlap
	})

	if len(ranked) > 0 && ranked[0].overlap > 0 {
		top := ranked
		if len(top) > 3 {
			top = top[:3]
		}
		parts := make([]string, len(top))
		for i, s := range top {
			parts[i] = s.sentence
		}
		return strings.Join(parts, ". ") + "."
	}

	if len(text) > 500 {
		return text[:500] + "..."
	}
	return text
}
