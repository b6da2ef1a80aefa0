package qa

import (
	"fmt"
	"strings"
)

// minTopSimilarity is the floor below which the best retrieved chunk is
// considered unrelated to the question.
const minTopSimilarity = 0.25

// minAnswerLength catches empty and non-answers from the generator.
const minAnswerLength = 10

// hallucinationPhrases are telltale signs that a generated answer drew on
// model knowledge instead of the document. Matched case-insensitively as
// substrings.
var hallucinationPhrases = []string{
	"as an ai",
	"i don't have access",
	"i cannot determine",
	"based on my training",
	"as a language model",
	"i'm not sure",
	"general knowledge",
	"typically in logistics",
	"usually",
	"in my experience",
	"commonly",
}

// Decision is the guardrail verdict. FinalAnswer is what the caller should
// return: the original answer when nothing fired, a refusal or cautioned
// answer otherwise.
type Decision struct {
	Triggered   bool
	Message     string
	FinalAnswer string
}

// EvaluateGuardrails applies the guardrail rules in a fixed order and stops
// at the first that fires:
//
//  1. composite confidence below the threshold
//  2. top retrieval similarity too low
//  3. hallucination phrase in the answer (answer kept, caution prefixed)
//  4. answer too short to be meaningful
func EvaluateGuardrails(answer string, confidence float64, similarityScores []float64, threshold float64) Decision {
	if confidence < threshold {
		return Decision{
			Triggered: true,
			Message: fmt.Sprintf(
				"Confidence score (%.2f) is below the threshold (%.2f). The answer may not be reliably grounded in the document.",
				confidence, threshold),
			FinalAnswer: "⚠️ Not found in document — The system could not find a confident answer " +
				"to this question in the uploaded document. The information may not be present, " +
				"or the question may need to be rephrased.",
		}
	}

	if len(similarityScores) > 0 && similarityScores[0] < minTopSimilarity {
		return Decision{
			Triggered: true,
			Message: fmt.Sprintf(
				"Top retrieval similarity (%.2f) is very low. No relevant content was found in the document.",
				similarityScores[0]),
			FinalAnswer: "⚠️ Not found in document — No relevant content was found that matches " +
				"your question. The information may not be present in this document.",
		}
	}

	answerLower := strings.ToLower(answer)
	for _, phrase := range hallucinationPhrases {
		if strings.Contains(answerLower, phrase) {
			return Decision{
				Triggered: true,
				Message: fmt.Sprintf(
					"Potential hallucination detected: answer contains phrase '%s'. The response may not be grounded in the document.",
					phrase),
				FinalAnswer: "⚠️ The answer may not be fully grounded in the document. Please verify: " + answer,
			}
		}
	}

	if len(strings.TrimSpace(answer)) < minAnswerLength {
		return Decision{
			Triggered:   true,
			Message:     "Answer is too short or empty — likely no relevant information found.",
			FinalAnswer: "⚠️ Not found in document — Could not generate a meaningful answer.",
		}
	}

	return Decision{FinalAnswer: answer}
}
