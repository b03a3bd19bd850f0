package ingestion

import "errors"

// ErrNotFound is returned when a run does not exist.
var ErrNotFound = errors.New("ingestion run not found")
