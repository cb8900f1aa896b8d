// Package chunking partitions a timeline into fixed-width chunks counted backward
// from an anchor and aggregates metric records per chunk.
//
// Chunks are either calendar days or whole months. Chunk 1 always ends on the
// anchor; every following chunk ends exactly one width before the previous one,
// so the chunks are contiguous and never overlap.
//
// Aggregation runs in two phases. Records are first bucketed into the chunk that
// contains their date (or month key), optionally split further by one or more
// dimension fields. Each bucket is then folded into a Summary holding exact
// decimal sums, the number of distinct periods present and the averaged metrics
// rounded to two decimals. Chunks without records still produce a row so callers
// always receive one row per requested chunk.
//
// Example usage:
//
//	chunks, err := chunking.GenerateChunks("2025-01-31", 7, 3, chunking.Day)
//	if err != nil {
//		return err
//	}
//	rows, err := chunking.Aggregate(chunks, records, chunking.Options{
//		Metrics: []chunking.Metric{{Field: "REVENUE"}, {Field: "UNIQUE_VSUBS", Averaged: true}},
//	})
//
// Everything in this package is pure and safe for concurrent use.
package chunking
