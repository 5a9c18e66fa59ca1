package reader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/insightdelivered/payments-engine/internal/models"
)

// csvColumns maps the expected header names to their column positions.
type csvColumns struct {
	kind   int
	client int
	tx     int
	amount int
}

// CSVReader is a lazy record source over delimited tabular text.
// The first row must be a header naming type, client, tx and amount
// columns (any case or spacing).
type CSVReader struct {
	rdr     *csv.Reader
	cols    csvColumns
	closer  io.Closer
	started bool
}

// Open creates a CSVReader over the file at path.
func Open(path string) (*CSVReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	r := NewCSVReader(f)
	r.closer = f
	return r, nil
}

// NewCSVReader creates a CSVReader over arbitrary delimited input.
func NewCSVReader(in io.Reader) *CSVReader {
	rdr := csv.NewReader(in)
	rdr.TrimLeadingSpace = true
	// Dispute rows are often written without the trailing amount field.
	rdr.FieldsPerRecord = -1
	return &CSVReader{rdr: rdr}
}

// Close releases the underlying file, if the reader owns one.
func (r *CSVReader) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer.Close()
}

// Next returns the next transaction record, io.EOF at end of input, or an
// error wrapping ErrFormat for a malformed row. The stream is not
// recoverable after a format error.
func (r *CSVReader) Next() (*models.Transaction, error) {
	if !r.started {
		if err := r.readHeader(); err != nil {
			return nil, err
		}
		r.started = true
	}

	row, err := r.rdr.Read()
	if err != nil {
		return nil, classifyCSVError(err)
	}

	field := func(i int) string {
		if i < 0 || i >= len(row) {
			return ""
		}
		return row[i]
	}

	if field(r.cols.kind) == "" && field(r.cols.client) == "" {
		return nil, fmt.Errorf("empty record row: %w", ErrFormat)
	}

	return decodeRecord(field(r.cols.kind), field(r.cols.client), field(r.cols.tx), field(r.cols.amount))
}

func (r *CSVReader) readHeader() error {
	header, err := r.rdr.Read()
	if err != nil {
		if err == io.EOF {
			return fmt.Errorf("missing header row: %w", ErrFormat)
		}
		return classifyCSVError(err)
	}

	cols := csvColumns{kind: -1, client: -1, tx: -1, amount: -1}
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "type":
			cols.kind = i
		case "client":
			cols.client = i
		case "tx":
			cols.tx = i
		case "amount":
			cols.amount = i
		}
	}
	if cols.kind < 0 || cols.client < 0 || cols.tx < 0 {
		return fmt.Errorf("header %v lacks type/client/tx columns: %w", header, ErrFormat)
	}

	r.cols = cols
	return nil
}

// classifyCSVError keeps io.EOF and I/O errors as-is and folds csv parse
// errors into ErrFormat so callers can map them to the right exit path.
func classifyCSVError(err error) error {
	var parseErr *csv.ParseError
	if errors.As(err, &parseErr) {
		return fmt.Errorf("%v: %w", err, ErrFormat)
	}
	return err
}
