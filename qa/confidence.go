package qa

import (
	"math"
	"regexp"
	"strings"
)

// Composite confidence weights. They always sum to 1.
const (
	weightRetrieval = 0.40
	weightCoverage  = 0.35
	weightAgreement = 0.25
)

// sigWordPattern selects the words that carry meaning for grounding checks:
// lowercase alphabetic, at least four characters.
var sigWordPattern = regexp.MustCompile(`\b[a-z]{4,}\b`)

// coverageStopwords are common words excluded from the coverage measurement,
// including RAG-framing words ("document", "according") that an answer
// contains regardless of grounding.
var coverageStopwords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "are": {}, "but": {}, "not": {},
	"you": {}, "all": {}, "can": {}, "had": {}, "her": {}, "was": {},
	"one": {}, "our": {}, "out": {}, "has": {}, "have": {}, "been": {},
	"from": {}, "they": {}, "this": {}, "that": {}, "with": {}, "will": {},
	"would": {}, "there": {}, "their": {}, "what": {}, "about": {},
	"which": {}, "when": {}, "make": {}, "than": {}, "them": {}, "some": {},
	"time": {}, "very": {}, "your": {}, "just": {}, "know": {}, "take": {},
	"come": {}, "could": {}, "into": {}, "year": {}, "also": {}, "back": {},
	"after": {}, "only": {}, "most": {}, "other": {}, "over": {}, "such": {},
	"does": {}, "should": {}, "being": {}, "found": {}, "based": {},
	"document": {}, "information": {}, "please": {}, "note": {},
	"mentioned": {}, "according": {},
}

// RetrievalConfidence scores the retrieval itself from three signals: the
// top-1 similarity, the gap between top-1 and top-2 (a focused retrieval has
// a clear winner), and the mean similarity across all retrieved chunks.
func RetrievalConfidence(similarityScores []float64) float64 {
	if len(similarityScores) == 0 {
		return 0.0
	}

	topScore := similarityScores[0]
	var sum float64
	for _, s := range similarityScores {
		sum += s
	}
	meanScore := sum / float64(len(similarityScores))

	topSignal := clamp01(topScore)

	gapSignal := 0.5
	if len(similarityScores) > 1 {
		gap := similarityScores[0] - similarityScores[1]
		gapSignal = math.Min(1.0, gap*5)
	}

	meanSignal := clamp01(meanScore)

	confidence := 0.5*topSignal + 0.2*gapSignal + 0.3*meanSignal
	return round4(clamp01(confidence))
}

// AnswerCoverage measures grounding as the fraction of significant answer
// words that appear somewhere in the source texts. With no measurable words
// it returns a neutral 0.5.
func AnswerCoverage(answer string, sourceTexts []string) float64 {
	if answer == "" || len(sourceTexts) == 0 {
		return 0.0
	}

	answerLower := strings.ToLower(answer)
	combinedSources := strings.ToLower(strings.Join(sourceTexts, " "))

	var sigWords []string
	for _, word := range sigWordPattern.FindAllString(answerLower, -1) {
		if _, stop := coverageStopwords[word]; !stop {
			sigWords = append(sigWords, word)
		}
	}
	if len(sigWords) == 0 {
		return 0.5
	}

	covered := 0
	for _, word := range sigWords {
		if strings.Contains(combinedSources, word) {
			covered++
		}
	}

	return round4(float64(covered) / float64(len(sigWords)))
}

// ChunkAgreement measures how many retrieved chunks corroborate the answer:
// for each distinct key term, the fraction of chunks containing it, averaged
// over all terms.
func ChunkAgreement(chunks []SourceChunk, answer string) float64 {
	if len(chunks) == 0 || answer == "" {
		return 0.0
	}

	answerLower := strings.ToLower(answer)
	keyTerms := map[string]struct{}{}
	for _, word := range sigWordPattern.FindAllString(answerLower, -1) {
		keyTerms[word] = struct{}{}
	}
	if len(keyTerms) == 0 {
		return 0.5
	}

	chunkTexts := make([]string, len(chunks))
	for i, c := range chunks {
		chunkTexts[i] = strings.ToLower(c.Text)
	}

	var total float64
	for term := range keyTerms {
		count := 0
		for _, ct := range chunkTexts {
			if strings.Contains(ct, term) {
				count++
			}
		}
		total += float64(count) / float64(len(chunkTexts))
	}

	return round4(total / float64(len(keyTerms)))
}

// CompositeConfidence blends retrieval (40%), coverage (35%), and agreement
// (25%) into the single score reported to callers.
func CompositeConfidence(similarityScores []float64, answer string, sourceTexts []string, chunks []SourceChunk) float64 {
	retrieval := RetrievalConfidence(similarityScores)
	coverage := AnswerCoverage(answer, sourceTexts)
	agreement := ChunkAgreement(chunks, answer)

	composite := weightRetrieval*retrieval + weightCoverage*coverage + weightAgreement*agreement
	return round4(clamp01(composite))
}

func clamp01(v float64) float64 {
	return math.Min(1.0, math.Max(0.0, v))
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
