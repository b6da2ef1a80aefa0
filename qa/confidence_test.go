package qa

import "testing"

func TestRetrievalConfidenceEmpty(t *testing.T) {
	if got := RetrievalConfidence(nil); got != 0.0 {
		t.Fatalf("RetrievalConfidence(nil) = %v, want 0", got)
	}
}

func TestRetrievalConfidenceSingleScore(t *testing.T) {
	// One score: gap signal defaults to neutral 0.5.
	// 0.5*0.8 + 0.2*0.5 + 0.3*0.8 = 0.74
	if got := RetrievalConfidence([]float64{0.8}); got != 0.74 {
		t.Fatalf("RetrievalConfidence([0.8]) = %v, want 0.74", got)
	}
}

func TestRetrievalConfidenceGapSaturates(t *testing.T) {
	// Gap 0.4 scales to 2.0 and is capped at 1.
	// 0.5*0.9 + 0.2*1.0 + 0.3*0.6 = 0.83
	if got := RetrievalConfidence([]float64{0.9, 0.5, 0.4}); got != 0.83 {
		t.Fatalf("RetrievalConfidence = %v, want 0.83", got)
	}
}

func TestAnswerCoverage(t *testing.T) {
	got := AnswerCoverage("The carrier is FastFreight", []string{"FastFreight hauls the load"})
	// Significant words: "carrier" (not covered), "fastfreight" (covered).
	if got != 0.5 {
		t.Fatalf("AnswerCoverage = %v, want 0.5", got)
	}
}

func TestAnswerCoverageEdgeCases(t *testing.T) {
	if got := AnswerCoverage("", []string{"text"}); got != 0.0 {
		t.Errorf("empty answer coverage = %v, want 0", got)
	}
	if got := AnswerCoverage("answer", nil); got != 0.0 {
		t.Errorf("no sources coverage = %v, want 0", got)
	}
	// Only stopwords and short words: nothing to measure, neutral 0.5.
	if got := AnswerCoverage("the and for it", []string{"text"}); got != 0.5 {
		t.Errorf("stopword-only coverage = %v, want 0.5", got)
	}
}

func TestChunkAgreement(t *testing.T) {
	chunks := []SourceChunk{
		{Text: "The rate is confirmed at 2500"},
		{Text: "Total rate 2500 USD"},
	}
	// Key terms: "rate" (2/2), "confirmed" (1/2). Average 0.75.
	if got := ChunkAgreement(chunks, "rate confirmed"); got != 0.75 {
		t.Fatalf("ChunkAgreement = %v, want 0.75", got)
	}
}

func TestCompositeConfidenceBounds(t *testing.T) {
	if got := CompositeConfidence(nil, "", nil, nil); got != 0.0 {
		t.Errorf("all-empty composite = %v, want 0", got)
	}

	chunks := []SourceChunk{{Text: "carrier fastfreight hauls freight"}}
	got := CompositeConfidence([]float64{0.95}, "carrier fastfreight hauls freight", []string{chunks[0].Text}, chunks)
	if got < 0.0 || got > 1.0 {
		t.Errorf("composite %v out of [0,1]", got)
	}
	if got < 0.8 {
		t.Errorf("fully grounded answer scored %v, expected high confidence", got)
	}
}
