package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// CSVExporter writes the dataset as CSV with a header line of column labels.
type CSVExporter struct {
	Comma rune
}

// NewCSVExporter uses ';' so spreadsheets in pt-BR locales split columns correctly.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{Comma: ';'}
}

// Render produces CSV encoded bytes for the dataset.
func (e *CSVExporter) Render(data Dataset) ([]byte, error) {
	if len(data.Columns) == 0 {
		return nil, fmt.Errorf("csv requires at least one column")
	}

	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)
	if e.Comma != 0 {
		writer.Comma = e.Comma
	}

	header := make([]string, len(data.Columns))
	for i, col := range data.Columns {
		header[i] = col.Label
	}
	if err := writer.Write(header); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}

	record := make([]string, len(data.Columns))
	for _, row := range data.Rows {
		for i, col := range data.Columns {
			record[i] = row[col.Key]
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
