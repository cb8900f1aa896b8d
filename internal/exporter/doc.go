// Package exporter writes report rows as CSV, TSV, Excel or JSON.
//
// Headers are taken from the first row's columns unless given explicitly;
// every later row is written in that column order and a column it lacks is
// left blank. CSV output starts with a UTF-8 BOM so spreadsheet tools detect
// the encoding.
//
// Example usage:
//
//	var buf bytes.Buffer
//	err := exporter.Write(&buf, domain.ExportFormatExcel, rows, exporter.Options{SheetName: "Sheet1"})
package exporter
