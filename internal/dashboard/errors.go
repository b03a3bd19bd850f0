package dashboard

import "errors"

// ErrNoRecords means the sheet parsed but held no usable rows.
var ErrNoRecords = errors.New("no records after normalization")

// IngestError is an ingestion-fatal failure. Message is safe to show to
// the user; the cause is kept for logs.
type IngestError struct {
	Message string
	Err     error
}

func (e *IngestError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *IngestError) Unwrap() error { return e.Err }

// UserMessage extracts the user-facing message from err, if it is an
// IngestError.
func UserMessage(err error) (string, bool) {
	var ie *IngestError
	if errors.As(err, &ie) {
		return ie.Message, true
	}
	return "", false
}
