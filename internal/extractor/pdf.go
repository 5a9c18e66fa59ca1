// Package extractor pulls plain text out of PDF transaction-table exports.
package extractor

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"
)

// ExtractText reads a PDF file and returns the text content of each page.
// Row-based extraction is tried first since it preserves table layout;
// plain-text extraction is the fallback for exports without row metadata.
func ExtractText(filePath string) (pages []string, err error) {
	// The pdf library panics on some malformed files.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("PDF library crashed: %v", r)
		}
	}()

	f, r, err := pdf.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	numPages := r.NumPage()
	if numPages == 0 {
		return nil, fmt.Errorf("PDF has no pages")
	}

	pages = extractByRow(r, numPages)
	if isReadableText(pages) {
		return pages, nil
	}

	pages = extractPlainText(r, numPages)
	if isReadableText(pages) {
		return pages, nil
	}

	return nil, fmt.Errorf("no readable transaction text could be extracted; the PDF may be image-based or use custom font encodings")
}

// extractByRow uses GetTextByRow, joining each row's words with a space so
// table columns stay on one line.
func extractByRow(r *pdf.Reader, numPages int) []string {
	var pages []string
	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			continue
		}
		var lines []string
		for _, row := range rows {
			var parts []string
			for _, word := range row.Content {
				parts = append(parts, word.S)
			}
			if line := strings.TrimSpace(strings.Join(parts, " ")); line != "" {
				lines = append(lines, line)
			}
		}
		if len(lines) > 0 {
			pages = append(pages, strings.Join(lines, "\n"))
		}
	}
	return pages
}

func extractPlainText(r *pdf.Reader, numPages int) []string {
	var pages []string
	fonts := make(map[string]*pdf.Font)
	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(fonts)
		if err != nil {
			continue
		}
		if text = strings.TrimSpace(text); text != "" {
			pages = append(pages, text)
		}
	}
	return pages
}

// recordWords are tokens expected in any transaction-table export. Text
// containing none of them is treated as extraction garbage.
var recordWords = []string{
	"deposit", "withdrawal", "dispute", "resolve", "chargeback",
	"type", "client", "tx", "amount",
}

// isReadableText checks that the pages hold enough mostly-ASCII text and
// at least one recognizable transaction word. Identity-encoded fonts
// decode into high-codepoint garbage that would otherwise pass through.
func isReadableText(pages []string) bool {
	total, readable := 0, 0
	for _, page := range pages {
		for _, r := range page {
			total++
			if r < 128 && (unicode.IsLetter(r) || unicode.IsDigit(r) ||
				unicode.IsSpace(r) || strings.ContainsRune(".,-/:", r)) {
				readable++
			}
		}
	}
	if total <= 20 || float64(readable)/float64(total) <= 0.6 {
		return false
	}

	combined := strings.ToLower(strings.Join(pages, " "))
	for _, word := range recordWords {
		if strings.Contains(combined, word) {
			return true
		}
	}
	return false
}
