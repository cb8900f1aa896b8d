package exporter

import (
	"encoding/csv"
	"fmt"
	"io"

	"chunkdash/pkg/contracts/domain"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// WriteOptions configures delimited output
type WriteOptions struct {
	Headers   []string
	Comma     rune
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// WriteCSV writes rows as comma-separated values with a BOM
func WriteCSV(w io.Writer, rows []domain.Row) error {
	return WriteDelimited(w, rows, WriteOptions{Comma: ',', BOMPrefix: true})
}

// WriteTSV writes rows as tab-separated values, the clipboard format of
// spreadsheet tools
func WriteTSV(w io.Writer, rows []domain.Row) error {
	return WriteDelimited(w, rows, WriteOptions{Comma: '\t'})
}

// WriteDelimited writes a header line and one line per row
func WriteDelimited(w io.Writer, rows []domain.Row, opts WriteOptions) error {
	if opts.BOMPrefix {
		if _, err := w.Write(utf8BOM); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	headers := opts.Headers
	if len(headers) == 0 {
		headers = Headers(rows)
	}
	if len(headers) == 0 {
		return nil
	}

	writer := csv.NewWriter(w)
	if opts.Comma != 0 {
		writer.Comma = opts.Comma
	}

	if err := writer.Write(headers); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}

	record := make([]string, len(headers))
	for i, row := range rows {
		for j, h := range headers {
			v, _ := row.Get(h)
			record[j] = formatCell(v)
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// Headers returns the columns of the first row
func Headers(rows []domain.Row) []string {
	if len(rows) == 0 {
		return nil
	}
	return rows[0].Columns()
}
