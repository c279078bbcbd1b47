package analysis

import "errors"

var (
	// ErrInvalidInput is returned when the text is outside the accepted
	// length bounds. No cache or external work is done.
	ErrInvalidInput = errors.New("invalid input")

	// ErrPersistence is returned when the analysis record could not be
	// saved. The account's usage is not incremented in that case.
	ErrPersistence = errors.New("failed to persist analysis")
)
