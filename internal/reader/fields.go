// Package reader provides lazy, forward-only transaction record sources.
//
// Two sources share one field decoder: delimited text (CSV) and PDF table
// exports. Both yield records strictly in input order and surface the
// first malformed record as an error wrapping ErrFormat.
package reader

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/insightdelivered/payments-engine/internal/models"
)

// ErrFormat marks malformed input records. Wrapped errors carry the
// offending line or field; classify with errors.Is.
var ErrFormat = errors.New("bad record format")

// Source yields transaction records one at a time, in input order.
// Next returns io.EOF when the stream is exhausted.
type Source interface {
	Next() (*models.Transaction, error)
}

// decodeRecord turns the four raw field values into a transaction record.
// Incidental whitespace is trimmed from every field.
func decodeRecord(typeField, clientField, txField, amountField string) (*models.Transaction, error) {
	kind, err := models.ParseKind(typeField)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, ErrFormat)
	}

	client, err := strconv.ParseUint(strings.TrimSpace(clientField), 10, 16)
	if err != nil {
		return nil, fmt.Errorf("client id %q: %w", clientField, ErrFormat)
	}

	tx, err := strconv.ParseUint(strings.TrimSpace(txField), 10, 32)
	if err != nil {
		return nil, fmt.Errorf("tx id %q: %w", txField, ErrFormat)
	}

	return &models.Transaction{
		Kind:   kind,
		Client: uint16(client),
		Tx:     uint32(tx),
		Amount: parseAmount(amountField),
	}, nil
}

// parseAmount reads an optional decimal amount. Empty and unparseable
// values both mean "no amount": the ledger decides per transaction kind
// whether a missing amount is acceptable.
func parseAmount(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}
