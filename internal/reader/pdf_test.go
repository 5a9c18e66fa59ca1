package reader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insightdelivered/payments-engine/internal/models"
)

func TestPDFReaderSkipsNonRecordLines(t *testing.T) {
	lines := []string{
		"Transaction Log Export",
		"Period: 01/01/2026 to 31/01/2026",
		"",
		"type client tx amount",
		"deposit 1 1 25.11",
		"withdrawal 1 2 5.0",
		"dispute 1 1",
		"Page 1 of 1",
	}

	records, err := drain(NewPDFReader(lines))
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, models.KindDeposit, records[0].Kind)
	assert.Equal(t, uint16(1), records[0].Client)
	require.NotNil(t, records[0].Amount)
	assert.Equal(t, 25.11, *records[0].Amount)
	assert.Equal(t, models.KindDispute, records[2].Kind)
	assert.Nil(t, records[2].Amount)
}

func TestPDFReaderCommaSeparatedLines(t *testing.T) {
	lines := []string{
		"type, client, tx, amount",
		"deposit, 2, 10, 100.5",
		"chargeback, 2, 10,",
	}

	records, err := drain(NewPDFReader(lines))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, uint32(10), records[0].Tx)
	assert.Equal(t, models.KindChargeback, records[1].Kind)
}

func TestPDFReaderShortRecordLine(t *testing.T) {
	lines := []string{"deposit 1"}

	_, err := drain(NewPDFReader(lines))
	require.ErrorIs(t, err, ErrFormat)
}

func TestPDFReaderBadFieldInRecordLine(t *testing.T) {
	// A line that names a transaction type must decode fully.
	lines := []string{"deposit one 1 25.11"}

	_, err := drain(NewPDFReader(lines))
	require.ErrorIs(t, err, ErrFormat)
}

func TestPDFReaderEmptyInput(t *testing.T) {
	records, err := drain(NewPDFReader(nil))
	require.NoError(t, err)
	assert.Empty(t, records)
}
