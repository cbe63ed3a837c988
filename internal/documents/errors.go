package documents

import "errors"

// ErrNotFound is returned when a document does not exist for the caller.
var ErrNotFound = errors.New("document not found")
