package exporter

import (
	"encoding/json"
	"fmt"
	"io"

	"chunkdash/pkg/contracts/domain"
)

// Options configures Write
type Options struct {
	Headers   []string
	SheetName string
}

// Write encodes rows in the given format
func Write(w io.Writer, format domain.ExportFormat, rows []domain.Row, opts Options) error {
	switch format {
	case domain.ExportFormatCSV:
		return WriteDelimited(w, rows, WriteOptions{Headers: opts.Headers, Comma: ',', BOMPrefix: true})
	case domain.ExportFormatTSV:
		return WriteDelimited(w, rows, WriteOptions{Headers: opts.Headers, Comma: '\t'})
	case domain.ExportFormatExcel:
		return WriteExcel(w, Sheet{Name: opts.SheetName, Headers: opts.Headers, Rows: rows})
	case domain.ExportFormatJSON:
		if rows == nil {
			rows = []domain.Row{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}

// ParseFormat maps a format name to an ExportFormat. "xlsx" is accepted for Excel.
func ParseFormat(s string) (domain.ExportFormat, error) {
	switch s {
	case "csv", "":
		return domain.ExportFormatCSV, nil
	case "tsv":
		return domain.ExportFormatTSV, nil
	case "excel", "xlsx":
		return domain.ExportFormatExcel, nil
	case "json":
		return domain.ExportFormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", s)
	}
}
