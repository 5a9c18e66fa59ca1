package reader

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insightdelivered/payments-engine/internal/models"
)

// drain collects every record until EOF or the first error.
func drain(src Source) ([]*models.Transaction, error) {
	var records []*models.Transaction
	for {
		record, err := src.Next()
		if err == io.EOF {
			return records, nil
		}
		if err != nil {
			return records, err
		}
		records = append(records, record)
	}
}

func TestCSVReaderValidSample(t *testing.T) {
	src, err := Open("testdata/sample_1.csv")
	require.NoError(t, err)
	defer src.Close()

	records, err := drain(src)
	require.NoError(t, err)
	require.Len(t, records, 5)

	first := records[0]
	assert.Equal(t, models.KindDeposit, first.Kind)
	assert.Equal(t, uint16(1), first.Client)
	assert.Equal(t, uint32(1), first.Tx)
	require.NotNil(t, first.Amount)
	assert.Equal(t, 25.11, *first.Amount)

	// Dispute rows carry no amount.
	assert.Equal(t, models.KindDispute, records[3].Kind)
	assert.Nil(t, records[3].Amount)
}

func TestCSVReaderTrimsWhitespace(t *testing.T) {
	src, err := Open("testdata/sample_2.csv")
	require.NoError(t, err)
	defer src.Close()

	records, err := drain(src)
	require.NoError(t, err)
	require.Len(t, records, 5)

	assert.Equal(t, models.KindDeposit, records[0].Kind)
	assert.Equal(t, uint16(1), records[0].Client)
	require.NotNil(t, records[0].Amount)
	assert.Equal(t, 25.11, *records[0].Amount)
	assert.Equal(t, models.KindChargeback, records[4].Kind)
}

func TestCSVReaderBadClientID(t *testing.T) {
	src, err := Open("testdata/sample_bad.csv")
	require.NoError(t, err)
	defer src.Close()

	records, err := drain(src)
	require.ErrorIs(t, err, ErrFormat)
	// The valid first row was yielded before the failure.
	assert.Len(t, records, 1)
}

func TestCSVReaderOpenMissingFile(t *testing.T) {
	_, err := Open("testdata/does_not_exist.csv")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrFormat)
}

func TestCSVReaderHeaderVariants(t *testing.T) {
	input := "TYPE, Client ,TX,Amount\ndeposit,1,1,2.5\n"
	records, err := drain(NewCSVReader(strings.NewReader(input)))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, uint16(1), records[0].Client)
}

func TestCSVReaderMissingHeader(t *testing.T) {
	_, err := NewCSVReader(strings.NewReader("")).Next()
	require.ErrorIs(t, err, ErrFormat)
}

func TestCSVReaderWrongHeader(t *testing.T) {
	input := "foo,bar,baz\n1,2,3\n"
	_, err := NewCSVReader(strings.NewReader(input)).Next()
	require.ErrorIs(t, err, ErrFormat)
}

func TestCSVReaderUnknownKind(t *testing.T) {
	input := "type,client,tx,amount\ntransfer,1,1,2.5\n"
	_, err := NewCSVReader(strings.NewReader(input)).Next()
	require.ErrorIs(t, err, ErrFormat)
}

func TestCSVReaderRangeChecks(t *testing.T) {
	tests := []struct {
		name string
		row  string
	}{
		{"client above uint16", "deposit,70000,1,2.5"},
		{"tx above uint32", "deposit,1,4294967296,2.5"},
		{"negative client", "deposit,-1,1,2.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := "type,client,tx,amount\n" + tt.row + "\n"
			_, err := NewCSVReader(strings.NewReader(input)).Next()
			require.ErrorIs(t, err, ErrFormat)
		})
	}
}

func TestCSVReaderAmountHandling(t *testing.T) {
	// Empty and unparseable amounts both decode as absent; the ledger
	// rules on them per transaction kind.
	input := "type,client,tx,amount\ndeposit,1,1,\ndeposit,1,2,abc\ndeposit,1,3,0.0001\n"
	records, err := drain(NewCSVReader(strings.NewReader(input)))
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Nil(t, records[0].Amount)
	assert.Nil(t, records[1].Amount)
	require.NotNil(t, records[2].Amount)
	assert.Equal(t, 0.0001, *records[2].Amount)
}

func TestCSVReaderRowWithoutAmountField(t *testing.T) {
	// Dispute rows are commonly written with only three fields.
	input := "type,client,tx,amount\ndeposit,1,1,5.0\ndispute,1,1\n"
	records, err := drain(NewCSVReader(strings.NewReader(input)))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, models.KindDispute, records[1].Kind)
	assert.Nil(t, records[1].Amount)
}
