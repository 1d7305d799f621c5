package store

import "errors"

var (
	// ErrNotInitialized signals use of the store before Connect.
	ErrNotInitialized = errors.New("store not connected")

	// ErrStoreUnavailable marks connection-level store failures.
	// Retryable at the orchestration level.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrConstraintViolation marks integrity-constraint rejections
	// (SQLSTATE class 23). The whole batch is considered not persisted.
	ErrConstraintViolation = errors.New("constraint violation")
)
