package qa

import (
	"strings"
	"testing"
)

func TestGuardrailLowConfidence(t *testing.T) {
	d := EvaluateGuardrails("The rate is 2500.00 USD.", 0.2, []float64{0.8}, 0.45)

	if !d.Triggered {
		t.Fatal("expected low-confidence guardrail to trigger")
	}
	if !strings.Contains(d.Message, "below the threshold") {
		t.Errorf("message = %q", d.Message)
	}
	if !strings.HasPrefix(d.FinalAnswer, "⚠️ Not found in document") {
		t.Errorf("final answer = %q", d.FinalAnswer)
	}
}

func TestGuardrailLowSimilarity(t *testing.T) {
	d := EvaluateGuardrails("The rate is 2500.00 USD.", 0.6, []float64{0.1, 0.05}, 0.45)

	if !d.Triggered {
		t.Fatal("expected low-similarity guardrail to trigger")
	}
	if !strings.Contains(d.Message, "retrieval similarity") {
		t.Errorf("message = %q", d.Message)
	}
}

func TestGuardrailHallucinationKeepsAnswer(t *testing.T) {
	answer := "As an AI, I cannot determine the exact pickup time."
	d := EvaluateGuardrails(answer, 0.7, []float64{0.8}, 0.45)

	if !d.Triggered {
		t.Fatal("expected hallucination guardrail to trigger")
	}
	if !strings.Contains(d.Message, "as an ai") {
		t.Errorf("message = %q, want first matching phrase reported", d.Message)
	}
	if !strings.Contains(d.FinalAnswer, answer) {
		t.Errorf("final answer should keep the original text, got %q", d.FinalAnswer)
	}
	if !strings.HasPrefix(d.FinalAnswer, "⚠️") {
		t.Errorf("final answer missing caution prefix: %q", d.FinalAnswer)
	}
}

func TestGuardrailShortAnswer(t *testing.T) {
	d := EvaluateGuardrails("No.", 0.7, []float64{0.8}, 0.45)

	if !d.Triggered {
		t.Fatal("expected short-answer guardrail to trigger")
	}
	if !strings.Contains(d.Message, "too short") {
		t.Errorf("message = %q", d.Message)
	}
}

func TestGuardrailPassThrough(t *testing.T) {
	answer := "The rate is 2500.00 USD per the confirmation."
	d := EvaluateGuardrails(answer, 0.9, []float64{0.9, 0.7}, 0.45)

	if d.Triggered {
		t.Fatalf("no guardrail should trigger, got message %q", d.Message)
	}
	if d.FinalAnswer != answer {
		t.Errorf("final answer = %q, want original", d.FinalAnswer)
	}
	if d.Message != "" {
		t.Errorf("message = %q, want empty", d.Message)
	}
}

func TestGuardrailOrderConfidenceFirst(t *testing.T) {
	// Both low confidence and a hallucination phrase: the confidence rule
	// wins because it runs first.
	d := EvaluateGuardrails("As an AI, I cannot say.", 0.1, []float64{0.1}, 0.45)

	if !strings.Contains(d.Message, "below the threshold") {
		t.Errorf("message = %q, want confidence rule first", d.Message)
	}
}
