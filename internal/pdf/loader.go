// Package pdf extracts plain text from PDF files.
package pdf

import (
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ExtractFile opens the PDF at path and returns the text of all its pages.
func ExtractFile(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf %s: %w", path, err)
	}
	defer f.Close()
	return pages(r), nil
}

// Extract reads a PDF from r and returns the text of all its pages.
func Extract(r io.ReaderAt, size int64) (string, error) {
	rdr, err := pdf.NewReader(r, size)
	if err != nil {
		return "", fmt.Errorf("read pdf: %w", err)
	}
	return pages(rdr), nil
}

// pages concatenates page text in page order. A page that fails to extract
// contributes nothing.
func pages(r *pdf.Reader) string {
	var b strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			log.Printf("pdf: skipping page %d: %v", i, err)
			continue
		}
		b.WriteString(text)
	}
	return b.String()
}
