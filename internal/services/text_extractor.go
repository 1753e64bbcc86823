package services

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/fumiama/go-docx"
	"github.com/ledongthuc/pdf"
	"golang.org/x/text/encoding/charmap"
)

var ErrUnsupportedFileType = errors.New("unsupported file type for extraction")

type TextExtractor interface {
	ExtractText(filePath string) (string, error)
}

type textExtractor struct{}

func NewTextExtractor() TextExtractor {
	return &textExtractor{}
}

// ExtractText dispatches on the file extension and returns trimmed plain text.
func (e *textExtractor) ExtractText(filePath string) (string, error) {
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return "", fmt.Errorf("file does not exist: %s", filePath)
	}

	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filePath)), ".")
	switch ext {
	case "pdf":
		return extractPDF(filePath)
	case "docx":
		return extractDOCX(filePath)
	case "txt":
		return extractTXT(filePath)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFileType, ext)
	}
}

func extractPDF(filePath string) (string, error) {
	f, r, err := pdf.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("invalid or corrupted PDF file: %w", err)
	}
	defer f.Close()

	var textBuilder strings.Builder
	totalPage := r.NumPage()

	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		page := r.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			// Skip unreadable pages
			continue
		}

		textBuilder.WriteString(text)
		textBuilder.WriteString("\n")
	}

	return strings.TrimSpace(textBuilder.String()), nil
}

// extractDOCX returns the body paragraphs and tables, one per line.
func extractDOCX(filePath string) (string, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("could not open DOCX: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("could not open DOCX: %w", err)
	}

	doc, err := docx.Parse(f, info.Size())
	if err != nil {
		return "", fmt.Errorf("could not extract text from DOCX: %w", err)
	}

	lines := make([]string, 0, len(doc.Document.Body.Items))
	for _, item := range doc.Document.Body.Items {
		switch it := item.(type) {
		case *docx.Paragraph:
			lines = append(lines, it.String())
		case *docx.Table:
			lines = append(lines, it.String())
		}
	}

	return strings.TrimSpace(strings.Join(lines, "\n")), nil
}

// extractTXT decodes UTF-8 and falls back to Windows-1252 for legacy files.
func extractTXT(filePath string) (string, error) {
	raw, err := os.ReadFile(filePath)
	if err != nil {
		return "", fmt.Errorf("could not read TXT: %w", err)
	}

	raw = bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))
	if utf8.Valid(raw) {
		return strings.TrimSpace(string(raw)), nil
	}

	decoded, err := charmap.Windows1252.NewDecoder().Bytes(raw)
	if err != nil {
		return "", fmt.Errorf("could not determine text encoding for TXT file: %w", err)
	}
	return strings.TrimSpace(string(decoded)), nil
}
