package models

import (
	"fmt"
	"strings"
)

// Kind identifies the transaction types the engine can replay.
type Kind string

const (
	KindDeposit    Kind = "deposit"
	KindWithdrawal Kind = "withdrawal"
	KindDispute    Kind = "dispute"
	KindResolve    Kind = "resolve"
	KindChargeback Kind = "chargeback"
)

// ParseKind maps an input type field to a Kind, case-insensitively.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindDeposit:
		return KindDeposit, nil
	case KindWithdrawal:
		return KindWithdrawal, nil
	case KindDispute:
		return KindDispute, nil
	case KindResolve:
		return KindResolve, nil
	case KindChargeback:
		return KindChargeback, nil
	default:
		return "", fmt.Errorf("unknown transaction type %q", s)
	}
}

// Transaction is one input event from a record source.
//
// Amount is present only for deposits and withdrawals; dispute, resolve and
// chargeback records carry none and any value they do carry is ignored.
type Transaction struct {
	Kind   Kind     `json:"type"`
	Client uint16   `json:"client"`
	Tx     uint32   `json:"tx"`
	Amount *float64 `json:"amount,omitempty"`
}

// AccountSnapshot is one row of the final export, as seen by the writer
// and the API response.
type AccountSnapshot struct {
	Client    uint16  `json:"client"`
	Available float64 `json:"available"`
	Held      float64 `json:"held"`
	Total     float64 `json:"total"`
	Locked    bool    `json:"locked"`
}
