package ingestion

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	pdf "github.com/ledongthuc/pdf"
)

// ExtractText decodes the raw payload of a document into plain text. The
// returned text is newline-normalized; trailing whitespace is stripped per
// line so downstream heuristics see consistent input.
func ExtractText(filename string, data []byte) (string, error) {
	switch DetectFormat(filename) {
	case FormatPDF:
		return extractPDFText(data)
	case FormatText, FormatMarkdown:
		return normalizePlainText(string(data)), nil
	default:
		return "", fmt.Errorf("unsupported file type: %s", filename)
	}
}

func extractPDFText(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract pdf text: %w", err)
	}

	buf := &bytes.Buffer{}
	if _, err := io.Copy(buf, plain); err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}

	return normalizePlainText(buf.String()), nil
}

func normalizePlainText(content string) string {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.Join(lines, "\n")
}
