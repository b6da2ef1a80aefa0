package ingestion

import (
	"strings"
	"testing"
)

func TestSegmentBlankInput(t *testing.T) {
	for _, input := range []string{"", "   ", "\n\n\t\n"} {
		if chunks := Segment(input, DefaultChunkSize, DefaultChunkOverlap); len(chunks) != 0 {
			t.Fatalf("Segment(%q) returned %d chunks, want 0", input, len(chunks))
		}
	}
}

func TestSegmentSmallSectionVerbatim(t *testing.T) {
	text := "Shipment LD-100 moves from Chicago to Dallas next week."

	chunks := Segment(text, DefaultChunkSize, DefaultChunkOverlap)
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Text != text {
		t.Errorf("chunk text = %q, want %q", chunks[0].Text, text)
	}
	if chunks[0].Index != 0 {
		t.Errorf("chunk index = %d, want 0", chunks[0].Index)
	}
}

func TestSegmentSentencePacking(t *testing.T) {
	text := "First sentence here. Second sentence here. Third sentence goes here."

	chunks := Segment(text, 45, 10)
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d: %#v", len(chunks), chunks)
	}
	if chunks[0].Text != "First sentence here. Second sentence here." {
		t.Errorf("first chunk = %q", chunks[0].Text)
	}
	if chunks[1].Text != "Third sentence goes here." {
		t.Errorf("second chunk = %q", chunks[1].Text)
	}
}

func TestSegmentHardSliceWindows(t *testing.T) {
	// One unbroken 120-char run forces the windowed slicing path.
	text := strings.Repeat("x", 120)

	chunks := Segment(text, 50, 10)
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}

	wantLens := []int{50, 50, 40}
	for i, chunk := range chunks {
		if len(chunk.Text) != wantLens[i] {
			t.Errorf("chunk %d length = %d, want %d", i, len(chunk.Text), wantLens[i])
		}
		if chunk.Index != i {
			t.Errorf("chunk %d index = %d, want %d", i, chunk.Index, i)
		}
	}
}

func TestSegmentDropsShortFragments(t *testing.T) {
	text := "SHIPMENT DETAILS\nLoad LD-4821 is assigned to a dry van out of Chicago.\nRATE CONFIRMATION\nok"

	chunks := Segment(text, DefaultChunkSize, DefaultChunkOverlap)
	for i, chunk := range chunks {
		if len(strings.TrimSpace(chunk.Text)) < 20 {
			t.Errorf("chunk %d is shorter than the minimum: %q", i, chunk.Text)
		}
		if chunk.Index != i {
			t.Errorf("chunk %d carries index %d, indices must be contiguous", i, chunk.Index)
		}
	}
}

func TestIsSectionBoundary(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{"Shipment Details", true},
		{"CARRIER INFORMATION", true},
		{"Rate Confirmation", true},
		{"Bill of Lading", true},
		{"## Notes", true},
		{"TOTAL DUE", true},
		{"The driver will call one hour before arrival.", false},
		{"", false},
		{"ABC", false},
		{strings.Repeat("A", 90), false},
	}

	for _, tt := range tests {
		if got := IsSectionBoundary(tt.line); got != tt.want {
			t.Errorf("IsSectionBoundary(%q) = %v, want %v", tt.line, got, tt.want)
		}
	}
}
