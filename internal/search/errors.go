package search

import "errors"

// ErrInvalidQuery marks caller-input problems (empty or whitespace-only
// queries). A query matching nothing is not an error: it yields an empty
// result list.
var ErrInvalidQuery = errors.New("invalid query")
