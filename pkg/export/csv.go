// Package export renders tabular data for download endpoints.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// ContentTypeCSV is the response content type for CSV downloads.
const ContentTypeCSV = "text/csv; charset=utf-8"

// Table is an ordered set of columns with positional records.
type Table struct {
	Columns []string
	Records [][]string
}

// AddRecord appends a record, padding or truncating to the column count so a
// short row can never shift later columns.
func (t *Table) AddRecord(values ...string) {
	record := make([]string, len(t.Columns))
	copy(record, values)
	t.Records = append(t.Records, record)
}

// CSV renders the table as CSV bytes.
func (t *Table) CSV() ([]byte, error) {
	if len(t.Columns) == 0 {
		return nil, fmt.Errorf("csv requires at least one column")
	}
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)
	if err := writer.Write(t.Columns); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for _, record := range t.Records {
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("write csv record: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
