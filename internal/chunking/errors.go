package chunking

import "errors"

// ErrInvalidParameter is returned for a bad width, count, anchor or metric list.
// Callers should not retry a request that failed with it.
var ErrInvalidParameter = errors.New("invalid parameter")
