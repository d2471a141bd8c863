package pricing

import "errors"

var (
	// ErrInvalidInput marks a malformed or missing decision input.
	ErrInvalidInput = errors.New("pricing: invalid input")

	// ErrInsufficientHistory means the feature table has no rows, so no
	// lag/rolling baseline exists for today.
	ErrInsufficientHistory = errors.New("pricing: history has no rows")

	// ErrNoCandidates means the grid produced zero candidates. The grid
	// builder guarantees a non-empty grid, so hitting this is an
	// invariant violation.
	ErrNoCandidates = errors.New("pricing: no candidate prices generated")

	// ErrModelInference means the demand model predict call failed; the
	// whole recommendation fails, no partial results.
	ErrModelInference = errors.New("pricing: demand model inference failed")
)
