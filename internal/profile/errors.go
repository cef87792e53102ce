package profile

import "errors"

var (
	// ErrInvalidInput is returned when input text is empty after trimming
	ErrInvalidInput = errors.New("input text is required")

	// ErrBatchTooLarge is returned when a batch exceeds MaxBatchSize inputs
	ErrBatchTooLarge = errors.New("batch exceeds maximum size")
)
