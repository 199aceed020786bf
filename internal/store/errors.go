package store

import "github.com/agilira/go-errors"

// Error codes for store operations. Transports map these to wire status
// codes instead of string matching error messages.
const (
	ErrCodeNotFound        errors.ErrorCode = "KVSTORE_NOT_FOUND"
	ErrCodeInvalidKey      errors.ErrorCode = "KVSTORE_INVALID_KEY"
	ErrCodeWALAppendFailed errors.ErrorCode = "KVSTORE_WAL_APPEND_FAILED"
	ErrCodeWALMalformed    errors.ErrorCode = "KVSTORE_WAL_MALFORMED_RECORD"
	ErrCodeCompaction      errors.ErrorCode = "KVSTORE_COMPACTION_FAILED"
	ErrCodeRecovery        errors.ErrorCode = "KVSTORE_RECOVERY_FAILED"
)

const (
	msgNotFound        = "key not found"
	msgInvalidKey      = "key must not be empty"
	msgWALAppendFailed = "failed to append WAL record"
	msgCompaction      = "failed to compact WAL"
	msgRecovery        = "failed to recover from WAL"
)

// NewErrNotFound builds the not-found error for a missing or expired key.
func NewErrNotFound(namespace, key string) error {
	return errors.NewWithContext(ErrCodeNotFound, msgNotFound, map[string]interface{}{
		"namespace": namespaceLabel(namespace),
		"key":       key,
	})
}

// NewErrInvalidKey builds the error for an empty caller-supplied key.
func NewErrInvalidKey(operation string) error {
	return errors.NewWithField(ErrCodeInvalidKey, msgInvalidKey, "operation", operation)
}

// NewErrWALAppendFailed wraps a WAL append I/O failure.
func NewErrWALAppendFailed(cause error, action, key string) error {
	return errors.Wrap(cause, ErrCodeWALAppendFailed, msgWALAppendFailed).
		WithContext("action", action).
		WithContext("key", key).
		AsRetryable()
}

// NewErrCompactionFailed wraps a compaction I/O failure.
func NewErrCompactionFailed(cause error) error {
	return errors.Wrap(cause, ErrCodeCompaction, msgCompaction).AsRetryable()
}

// NewErrRecoveryFailed wraps a fatal (non-skippable) recovery failure, such
// as being unable to open the WAL at all.
func NewErrRecoveryFailed(cause error) error {
	return errors.Wrap(cause, ErrCodeRecovery, msgRecovery)
}
