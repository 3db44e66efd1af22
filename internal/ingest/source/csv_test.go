package source

import (
	"os"
	"path/filepath"
	"testing"

	ingestdomain "github.com/smallbiznis/orbload/internal/ingest/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "transactions.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestRead_ParsesRows(t *testing.T) {
	path := writeCSV(t, "account_id,month,transaction_id,account_type,bank_id,standard,sameday\n"+
		"acct-1,01-2024,txn-1,checking,bnk-9,\"1,234.50\",12\n"+
		"acct-2,02-2024,txn-2,savings,bnk-9,,\n")

	table, err := NewCSVSource().Read(path)
	require.NoError(t, err)

	assert.Len(t, table.Columns, 7)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, 0, table.Rows[0].Index)
	assert.Equal(t, "acct-1", table.Rows[0].AccountID)
	assert.Equal(t, "1,234.50", table.Rows[0].Standard)
	assert.Equal(t, 1, table.Rows[1].Index)
	assert.Equal(t, "", table.Rows[1].Sameday)
}

func TestRead_MissingColumnIsFatal(t *testing.T) {
	path := writeCSV(t, "account_id,month,transaction_id,account_type,bank_id,standard\n"+
		"acct-1,01-2024,txn-1,checking,bnk-9,10\n")

	_, err := NewCSVSource().Read(path)
	assert.ErrorIs(t, err, ingestdomain.ErrMissingColumn)
	assert.Contains(t, err.Error(), "sameday")
}

func TestRead_MissingFile(t *testing.T) {
	_, err := NewCSVSource().Read(filepath.Join(t.TempDir(), "absent.csv"))
	assert.ErrorIs(t, err, ingestdomain.ErrFileUnreadable)
}

func TestRead_EmptyPath(t *testing.T) {
	_, err := NewCSVSource().Read("  ")
	assert.ErrorIs(t, err, ingestdomain.ErrNoFile)
}

func TestRead_RaggedRowIsFatal(t *testing.T) {
	path := writeCSV(t, "account_id,month,transaction_id,account_type,bank_id,standard,sameday\n"+
		"acct-1,01-2024\n")

	_, err := NewCSVSource().Read(path)
	assert.ErrorIs(t, err, ingestdomain.ErrFileUnreadable)
}

func TestRead_HeaderCaseInsensitive(t *testing.T) {
	path := writeCSV(t, "Account_ID,Month,Transaction_ID,Account_Type,Bank_ID,Standard,Sameday\n"+
		"acct-1,03-2023,txn-1,checking,bnk-1,5,6\n")

	table, err := NewCSVSource().Read(path)
	require.NoError(t, err)
	assert.Equal(t, "acct-1", table.Rows[0].AccountID)
}
