package ledger

import "errors"

var (
	// ErrMissingUserID indicates a required user id was absent.
	ErrMissingUserID = errors.New("user id is required")
	// ErrInvalidInput wraps validation failures on recorded transactions.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict indicates a transaction with the same id was already recorded.
	ErrConflict = errors.New("transaction already recorded")
	// ErrInvalidFilter indicates an unsupported achievement filter.
	ErrInvalidFilter = errors.New("invalid achievement filter")
)
