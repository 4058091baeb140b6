// File path: internal/term/errors.go
package term

import "errors"

var (
	// ErrInvalidTermType rejects add_terminology calls with a status outside
	// the enumerated set. The store is left unchanged.
	ErrInvalidTermType = errors.New("invalid term type")

	// ErrInvalidPattern rejects rules whose pattern does not compile or can
	// produce a zero-length match. The rule is never stored.
	ErrInvalidPattern = errors.New("invalid rule pattern")

	// ErrDuplicateEntry signals that an entry with the same identifier
	// already exists. Importers count it as a skip rather than a failure.
	ErrDuplicateEntry = errors.New("duplicate entry")
)
