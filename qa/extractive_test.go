package qa

import (
	"strings"
	"testing"
)

func TestExtractiveAnswerNoChunks(t *testing.T) {
	if got := ExtractiveAnswer("anything", nil); got != "No relevant information found." {
		t.Fatalf("ExtractiveAnswer = %q", got)
	}
}

func TestExtractiveAnswerPicksOverlappingSentences(t *testing.T) {
	chunks := []SourceChunk{{
		Text: "The rate is 2500 dollars. Pickup happens Monday morning. Nothing else matters much.",
	}}

	got := ExtractiveAnswer("what is the rate", chunks)
	if !strings.HasPrefix(got, "The rate is 2500 dollars") {
		t.Errorf("answer = %q, want best-overlap sentence first", got)
	}
	if !strings.HasSuffix(got, ".") {
		t.Errorf("answer = %q, want terminating period", got)
	}
}

func TestExtractiveAnswerFallsBackToChunkPrefix(t *testing.T) {
	chunks := []SourceChunk{{Text: "Dates and weights listed on page two"}}

	got := ExtractiveAnswer("zzz qqq", chunks)
	if got != chunks[0].Text {
		t.Errorf("answer = %q, want whole short chunk", got)
	}
}

func TestExtractiveAnswerTruncatesLongChunk(t *testing.T) {
	chunks := []SourceChunk{{Text: strings.Repeat("y", 600)}}

	got := ExtractiveAnswer("zzz", chunks)
	if len(got) != 503 || !strings.HasSuffix(got, "...") {
		t.Errorf("answer length = %d, want 500-char prefix plus ellipsis", len(got))
	}
}
