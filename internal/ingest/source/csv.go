package source

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	ingestdomain "github.com/smallbiznis/orbload/internal/ingest/domain"
	"go.uber.org/fx"
)

// Module provides the CSV row source.
var Module = fx.Provide(NewCSVSource)

var requiredColumns = []string{
	"account_id",
	"month",
	"transaction_id",
	"account_type",
	"bank_id",
	"standard",
	"sameday",
}

type csvSource struct{}

// NewCSVSource returns a RowSource backed by a local CSV file.
func NewCSVSource() ingestdomain.RowSource {
	return csvSource{}
}

func (csvSource) Read(path string) (ingestdomain.Table, error) {
	if strings.TrimSpace(path) == "" {
		return ingestdomain.Table{}, ingestdomain.ErrNoFile
	}

	f, err := os.Open(path)
	if err != nil {
		return ingestdomain.Table{}, fmt.Errorf("%w: %v", ingestdomain.ErrFileUnreadable, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	records, err := reader.ReadAll()
	if err != nil {
		return ingestdomain.Table{}, fmt.Errorf("%w: %v", ingestdomain.ErrFileUnreadable, err)
	}
	if len(records) == 0 {
		return ingestdomain.Table{}, fmt.Errorf("%w: empty file", ingestdomain.ErrFileUnreadable)
	}

	header := records[0]
	index := make(map[string]int, len(header))
	columns := make([]string, 0, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(name))
		columns = append(columns, name)
		index[name] = i
	}

	for _, required := range requiredColumns {
		if _, ok := index[required]; !ok {
			return ingestdomain.Table{}, fmt.Errorf("%w: %s", ingestdomain.ErrMissingColumn, required)
		}
	}

	rows := make([]ingestdomain.Row, 0, len(records)-1)
	for i, record := range records[1:] {
		rows = append(rows, ingestdomain.Row{
			Index:         i,
			AccountID:     field(record, index, "account_id"),
			Month:         field(record, index, "month"),
			TransactionID: field(record, index, "transaction_id"),
			AccountType:   field(record, index, "account_type"),
			BankID:        field(record, index, "bank_id"),
			Standard:      field(record, index, "standard"),
			Sameday:       field(record, index, "sameday"),
		})
	}

	return ingestdomain.Table{Columns: columns, Rows: rows}, nil
}

func field(record []string, index map[string]int, name string) string {
	i, ok := index[name]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}
