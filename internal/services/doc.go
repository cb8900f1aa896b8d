// Package services implements the business logic layer of chunkdash. It sits
// between the HTTP handlers or the CLI and the report catalog, data source and
// exporters.
//
// # Services
//
//   - ReportService resolves a report, generates its chunks, fetches the
//     covering records, aggregates and tabulates them
//   - ExportService decodes client-supplied rows and writes them as CSV, TSV,
//     Excel or JSON
//   - HealthService answers liveness, readiness and version probes
//
// # Error handling
//
// Services return sentinel errors wrapped with %w. Callers match them with
// errors.Is:
//
//   - reports.ErrUnknownReport for names not in the catalog
//   - chunking.ErrInvalidParameter for bad anchors, widths or counts
//   - datasource.ErrUnavailable when records cannot be fetched
//   - ErrRowsNotArray and ErrTooManyRows for export input
//
// No partial result is ever returned with an error.
package services
