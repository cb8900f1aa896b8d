package services

import "errors"

// Service errors
var (
	// Report errors
	ErrTooManyChunks = errors.New("too many chunks requested")

	// Export errors
	ErrRowsNotArray = errors.New("rows must be array")
	ErrTooManyRows  = errors.New("too many rows to export")
)
