package shared

import "errors"

// Sentinel errors classifying failures at the per-symbol processing boundary.
// Wrap with fmt.Errorf("...: %w", ...) and match with errors.Is.
var (
	// ErrDataUnavailable indicates required market data could not be sourced.
	ErrDataUnavailable = errors.New("data unavailable")
	// ErrInsufficientData indicates sourced data is too short to act on.
	ErrInsufficientData = errors.New("insufficient data")
	// ErrExternalService indicates a broker, store or network failure.
	ErrExternalService = errors.New("external service failure")
	// ErrInvalidInput indicates malformed input within a symbol's scope.
	ErrInvalidInput = errors.New("invalid input")
)
