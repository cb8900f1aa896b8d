// Package reports defines the report catalog and turns aggregated chunk
// summaries into tables.
//
// A Definition binds a dataset to a chunk granularity, an optional grouping and
// an ordered list of output columns. The built-in catalog is embedded from
// catalog.yaml and can be replaced with a file of the same format.
package reports
