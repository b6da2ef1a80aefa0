// Package ingestion handles document parsing, segmentation, and persistence to
// the vector index.
package ingestion

import (
	"path/filepath"
	"strings"
)

// DocumentFormat enumerates supported document payload formats.
type DocumentFormat string

const (
	// FormatUnknown represents an unsupported or undetected format.
	FormatUnknown DocumentFormat = ""
	// FormatPDF represents PDF documents.
	FormatPDF DocumentFormat = "pdf"
	// FormatText represents plain text documents.
	FormatText DocumentFormat = "text"
	// FormatMarkdown represents Markdown documents, parsed as plain text.
	FormatMarkdown DocumentFormat = "markdown"
)

// DetectFormat infers a document format from the provided path's extension.
func DetectFormat(path string) DocumentFormat {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".pdf":
		return FormatPDF
	case ".txt":
		return FormatText
	case ".md", ".markdown":
		return FormatMarkdown
	default:
		return FormatUnknown
	}
}
