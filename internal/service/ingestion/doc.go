// Package ingestion records the history of sheet ingestions.
//
// The service holds the bookkeeping rules (IDs, timing, status) and depends
// only on the Repository interface in repository.go; storage lives in
// internal/repository.
package ingestion
