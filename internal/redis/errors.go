package redis

import "errors"

var (
	// ErrNotInitialized signals use of the consumer before Initialize.
	// This is a programmer error and is never retried.
	ErrNotInitialized = errors.New("stream consumer not initialized")

	// ErrBrokerUnavailable marks transient broker connectivity failures.
	// Callers decide whether and how to retry.
	ErrBrokerUnavailable = errors.New("broker unavailable")
)
