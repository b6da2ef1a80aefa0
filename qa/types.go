// Package qa answers questions about an ingested document using retrieved
// chunk context, scores each answer with a composite confidence, and applies
// grounding guardrails before anything reaches the caller.
package qa

// SourceChunk is a retrieved chunk with its similarity to the question.
type SourceChunk struct {
	Text            string  `json:"text"`
	ChunkIndex      int     `json:"chunk_index"`
	SimilarityScore float64 `json:"similarity_score"`
}

// Answer is the full question-answering response. FinalAnswer substitution
// has already happened: when a guardrail fires, Answer holds the refusal or
// caution text and GuardrailMessage explains why.
type Answer struct {
	Answer             string        `json:"answer"`
	ConfidenceScore    float64       `json:"confidence_score"`
	Sources            []SourceChunk `json:"sources"`
	GuardrailTriggered bool          `json:"guardrail_triggered"`
	GuardrailMessage   string        `json:"guardrail_message,omitempty"`
}
