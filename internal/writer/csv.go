// Package writer serializes final account snapshots to CSV.
package writer

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/insightdelivered/payments-engine/internal/models"
)

// AccountWriter writes account snapshots in CSV format with the
// client,available,held,total,locked header.
type AccountWriter struct{}

// WriteToFile writes the snapshot rows to a CSV file at the given path.
func (w *AccountWriter) WriteToFile(path string, accounts []models.AccountSnapshot) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file %q: %w", path, err)
	}
	defer f.Close()

	return w.Write(f, accounts)
}

// Write writes the snapshot rows in CSV format to the given writer.
func (w *AccountWriter) Write(out io.Writer, accounts []models.AccountSnapshot) error {
	writer := csv.NewWriter(out)
	defer writer.Flush()

	header := []string{"client", "available", "held", "total", "locked"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, acct := range accounts {
		row := []string{
			strconv.FormatUint(uint64(acct.Client), 10),
			formatAmount(acct.Available),
			formatAmount(acct.Held),
			formatAmount(acct.Total),
			strconv.FormatBool(acct.Locked),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// formatAmount renders a balance as the shortest plain decimal that
// round-trips, so input amounts come back with their own precision.
func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
