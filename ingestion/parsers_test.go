package ingestion

import "testing"

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		path string
		want DocumentFormat
	}{
		{"rate_conf.pdf", FormatPDF},
		{"BOL.PDF", FormatPDF},
		{"notes.txt", FormatText},
		{"readme.md", FormatMarkdown},
		{"readme.markdown", FormatMarkdown},
		{"invoice.docx", FormatUnknown},
		{"noextension", FormatUnknown},
	}

	for _, tt := range tests {
		if got := DetectFormat(tt.path); got != tt.want {
			t.Errorf("DetectFormat(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestExtractTextPlain(t *testing.T) {
	got, err := ExtractText("doc.txt", []byte("line one  \r\nline two\t\r\n"))
	if err != nil {
		t.Fatalf("ExtractText: %v", err)
	}
	if got != "line one\nline two\n" {
		t.Errorf("ExtractText = %q", got)
	}
}

func TestExtractTextUnsupported(t *testing.T) {
	if _, err := ExtractText("sheet.xlsx", []byte("data")); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}
