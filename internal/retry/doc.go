// Package retry runs a request-performing operation under an exponential
// backoff policy.
//
// Transient failures (connection errors, 429 and retryable 5xx responses, as
// classified on *types.Error) are retried; anything else is returned at once.
// When every attempt fails the last observed error is returned as-is so that
// callers can branch on the real cause.
package retry
