package qa

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/haulstack/freight-assistant/embeddings"
	"github.com/haulstack/freight-assistant/llm"
)

const answerSystemPrompt = `You are a logistics document assistant. Your role is to answer questions ONLY based on the provided document context.

STRICT RULES:
1. Answer ONLY from the provided context. Do not use any external knowledge.
2. If the information is not in the context, say "This information is not found in the document."
3. Be precise and concise. Quote relevant parts of the document when possible.
4. Do not speculate, infer, or make assumptions beyond what the document explicitly states.
5. For numerical values (rates, weights, dates), provide the exact values from the document.
6. If asked about something ambiguous, mention all relevant pieces of information from the context.`

// Service runs the ask pipeline: embed the question, retrieve document
// chunks, generate (or extract) an answer, score it, and apply guardrails.
type Service struct {
	store     VectorStore
	embedder  embeddings.Embedder
	llm       llm.Client
	logger    *log.Logger
	topK      int
	threshold float64
}

// NewService wires the pipeline. The LLM client may be nil; answers then
// come from the extractive fallback, which still flows through the same
// scoring and guardrails.
func NewService(store VectorStore, embedder embeddings.Embedder, client llm.Client, topK int, threshold float64, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Default()
	}
	if topK <= 0 {
		topK = 5
	}
	return &Service{
		store:     store,
		embedder:  embedder,
		llm:       client,
		logger:    logger,
		topK:      topK,
		threshold: threshold,
	}
}

// Ask answers a question against one document. An error is returned only for
// infrastructure failures; weak or ungrounded answers come back as guardrail
// refusals, not errors.
func (s *Service) Ask(ctx context.Context, documentID uuid.UUID, question string) (Answer, error) {
	vectors, err := s.embedder.Embed(ctx, []string{question})
	if err != nil {
		return Answer{}, fmt.Errorf("embed question: %w", err)
	}
	if len(vectors) == 0 {
		return Answer{}, fmt.Errorf("embedder returned no vector for question")
	}

	chunks, err := s.store.SimilarChunks(ctx, documentID, vectors[0], s.topK)
	if err != nil {
		return Answer{}, fmt.Errorf("retrieve chunks: %w", err)
	}

	if len(chunks) == 0 {
		return Answer{
			Answer:             "⚠️ No relevant content found in the document for this question.",
			ConfidenceScore:    0.0,
			Sources:            []SourceChunk{},
			GuardrailTriggered: true,
			GuardrailMessage:   "No chunks were retrieved from the vector store.",
		}, nil
	}

	similarityScores := make([]float64, len(chunks))
	sourceTexts := make([]string, len(chunks))
	for i, c := range chunks {
		similarityScores[i] = c.SimilarityScore
		sourceTexts[i] = c.Text
	}

	answer := s.generateAnswer(ctx, question, chunks)

	confidence := CompositeConfidence(similarityScores, answer, sourceTexts, chunks)
	decision := EvaluateGuardrails(answer, confidence, similarityScores, s.threshold)

	return Answer{
		Answer:             decision.FinalAnswer,
		ConfidenceScore:    confidence,
		Sources:            chunks,
		GuardrailTriggered: decision.Triggered,
		GuardrailMessage:   decision.Message,
	}, nil
}

func (s *Service) generateAnswer(ctx context.Context, question string, chunks []SourceChunk) string {
	if s.llm == nil {
		return ExtractiveAnswer(question, chunks)
	}

	raw, err := s.llm.Generate(ctx, llm.Request{
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: answerSystemPrompt},
			{Role: llm.RoleUser, Content: buildContextPrompt(question, chunks)},
		},
		Temperature: 0.1,
		MaxTokens:   500,
	})
	if err != nil {
		s.logger.Printf("llm answer generation failed, using extractive fallback: %v", err)
		return ExtractiveAnswer(question, chunks)
	}

	return strings.TrimSpace(raw)
}

func buildContextPrompt(question string, chunks []SourceChunk) string {
	parts := make([]string, len(chunks))
	for i, chunk := range chunks {
		parts[i] = fmt.Sprintf("[Source %d] (Relevance: %.2f)\n%s", i+1, chunk.SimilarityScore, chunk.Text)
	}

	return fmt.Sprintf(`Document Context:
%s

Question: %s

Based ONLY on the document context above, provide a clear and accurate answer. If the information is not present in the context, explicitly state that it is not found in the document.`,
		strings.Join(parts, "\n\n---\n\n"), question)
}
