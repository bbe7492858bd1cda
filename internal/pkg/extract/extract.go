// Package extract pulls plain text out of the document formats the ingestor
// accepts.
package extract

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/docqa/docqa-backend/internal/entity"
	"github.com/dslipak/pdf"
	"github.com/unidoc/unioffice/document"
)

// DefaultExtensions are the formats indexed when the caller does not narrow
// the set.
var DefaultExtensions = []string{".txt", ".md", ".pdf", ".docx"}

// Supported reports whether the file extension has an extractor.
func Supported(ext string) bool {
	switch strings.ToLower(ext) {
	case ".txt", ".md", ".pdf", ".docx":
		return true
	default:
		return false
	}
}

// Text reads the file and returns its plain-text content.
func Text(path string) (string, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".txt", ".md":
		return plainText(path)
	case ".docx":
		return docxText(path)
	case ".pdf":
		return pdfText(path)
	default:
		return "", fmt.Errorf("%w: %q", entity.ErrUnsupportedFileType, ext)
	}
}

func plainText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}
	return string(data), nil
}

func docxText(path string) (string, error) {
	doc, err := document.Open(path)
	if err != nil {
		return "", fmt.Errorf("open docx: %w", err)
	}
	defer doc.Close()

	var b strings.Builder
	for _, para := range doc.Paragraphs() {
		for _, run := range para.Runs() {
			b.WriteString(run.Text())
		}
		b.WriteString("\n")
	}
	return b.String(), nil
}

func pdfText(path string) (string, error) {
	reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract pdf text: %w", err)
	}

	data, err := io.ReadAll(plain)
	if err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}
	return string(data), nil
}
