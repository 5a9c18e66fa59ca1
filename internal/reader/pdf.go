package reader

import (
	"fmt"
	"io"
	"strings"

	"github.com/insightdelivered/payments-engine/internal/extractor"
	"github.com/insightdelivered/payments-engine/internal/models"
)

// PDFReader is a record source over a PDF export of a transaction table.
// Page text is pulled up front; records are still yielded lazily so the
// caller's halt-on-first-error loop behaves the same as with CSV input.
type PDFReader struct {
	lines []string
	pos   int
}

// OpenPDF extracts the text of the PDF at path and prepares a record
// stream over its transaction lines.
func OpenPDF(path string) (*PDFReader, error) {
	pages, err := extractor.ExtractText(path)
	if err != nil {
		return nil, err
	}
	var lines []string
	for _, page := range pages {
		lines = append(lines, strings.Split(page, "\n")...)
	}
	return NewPDFReader(lines), nil
}

// NewPDFReader creates a PDF record source from already-extracted lines.
func NewPDFReader(lines []string) *PDFReader {
	return &PDFReader{lines: lines}
}

// Next scans forward to the next transaction line and decodes it. Lines
// that do not start with a transaction type (titles, page numbers, the
// header row) are skipped; a line that does start with one must decode
// fully or the stream fails with ErrFormat.
func (r *PDFReader) Next() (*models.Transaction, error) {
	for r.pos < len(r.lines) {
		line := strings.TrimSpace(r.lines[r.pos])
		r.pos++

		if line == "" {
			continue
		}
		fields := splitRecordLine(line)
		if len(fields) == 0 {
			continue
		}
		if _, err := models.ParseKind(fields[0]); err != nil {
			// Not a transaction line.
			continue
		}
		if len(fields) < 3 {
			return nil, fmt.Errorf("short transaction line %q: %w", line, ErrFormat)
		}

		amount := ""
		if len(fields) > 3 {
			amount = fields[3]
		}
		return decodeRecord(fields[0], fields[1], fields[2], amount)
	}
	return nil, io.EOF
}

// splitRecordLine splits a table line on commas when present, otherwise
// on runs of whitespace. PDF extraction preserves whichever the export
// used.
func splitRecordLine(line string) []string {
	if strings.Contains(line, ",") {
		parts := strings.Split(line, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return strings.Fields(line)
}
