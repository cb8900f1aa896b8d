package domain

import (
	"time"
)

// ReportResult is one executed report: its columns in emission order and the rows.
type ReportResult struct {
	Report      string           `json:"report"`
	Title       string           `json:"title"`
	Granularity string           `json:"granularity"`
	Columns     []string         `json:"columns"`
	Rows        []Row            `json:"rows"`
	Count       int              `json:"count"`
	Parameters  ReportParameters `json:"parameters"`
	GeneratedAt time.Time        `json:"generated_at"`
}

// ReportParameters echoes the resolved chunking parameters of a run.
type ReportParameters struct {
	Anchor string `json:"anchor"`
	Width  int    `json:"width"`
	Count  int    `json:"count"`
}

// ReportInfo describes a catalog entry.
type ReportInfo struct {
	Name        string   `json:"name"`
	Title       string   `json:"title"`
	Granularity string   `json:"granularity"`
	Dataset     string   `json:"dataset"`
	Columns     []string `json:"columns"`
	Parameters  []string `json:"parameters"`
}

// ExportFormat is a supported download format.
type ExportFormat string

const (
	ExportFormatCSV   ExportFormat = "csv"
	ExportFormatTSV   ExportFormat = "tsv"
	ExportFormatExcel ExportFormat = "excel"
	ExportFormatJSON  ExportFormat = "json"
)

// Extension returns the file extension for the format.
func (f ExportFormat) Extension() string {
	switch f {
	case ExportFormatExcel:
		return ".xlsx"
	case ExportFormatTSV:
		return ".tsv"
	case ExportFormatJSON:
		return ".json"
	default:
		return ".csv"
	}
}

// ContentType returns the MIME type for the format.
func (f ExportFormat) ContentType() string {
	switch f {
	case ExportFormatExcel:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case ExportFormatTSV:
		return "text/tab-separated-values; charset=utf-8"
	case ExportFormatJSON:
		return "application/json"
	default:
		return "text/csv; charset=utf-8"
	}
}
