// Package ingest turns PDF papers into embedded chunks in the vector store.
package ingest

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Page is the extracted text of one PDF page.
type Page struct {
	Number int
	Text   string
}

// ExtractPages reads a PDF and returns its pages' plain text. Pages that
// yield no text (scanned images, extraction failures) are skipped.
func ExtractPages(path string) (source string, pages []Page, err error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", nil, fmt.Errorf("opening pdf %s: %w", path, err)
	}
	defer f.Close()

	source = filepath.Base(path)
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		pages = append(pages, Page{Number: i, Text: text})
	}
	if len(pages) == 0 {
		return "", nil, fmt.Errorf("no extractable text in %s", path)
	}
	return source, pages, nil
}
