// Package shared holds helpers used by more than one chunkdash package.
//
// The testutil subpackage provides:
//
//   - a capturing slog handler for asserting on log output
//   - SQLite fact-table fixtures matching the report catalog
//
// Nothing here contains report logic; production code must not import testutil.
package shared
