package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Session errors. A rejected request only learns which of these applied,
// never which individual check failed.
const (
	// ErrCodeNoToken indicates that no bearer token was presented.
	ErrCodeNoToken ErrorCode = "NO_TOKEN"
	// ErrCodeInvalidToken covers malformed, badly signed and expired tokens.
	ErrCodeInvalidToken ErrorCode = "INVALID_TOKEN"
	// ErrCodeTokenRevoked indicates the token was invalidated by logout.
	ErrCodeTokenRevoked ErrorCode = "TOKEN_REVOKED"
)

// Credential errors
const (
	// ErrCodeInvalidCredentials indicates the password did not match.
	ErrCodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	// ErrCodeUserNotFound indicates no account exists for the given email.
	ErrCodeUserNotFound ErrorCode = "USER_NOT_FOUND"
	// ErrCodeDuplicateEmail indicates the email is already registered.
	ErrCodeDuplicateEmail ErrorCode = "DUPLICATE_EMAIL"
)

// Resource errors
const (
	// ErrCodeNotFound indicates the requested resource was not found.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodeConflict indicates a conflict with the current state of the resource.
	ErrCodeConflict ErrorCode = "CONFLICT"
)

// Validation errors
const (
	// ErrCodeInvalidInput indicates the input is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeValidation indicates one or more fields failed validation.
	ErrCodeValidation ErrorCode = "VALIDATION"
)

// Availability and internal errors
const (
	// ErrCodeStoreUnavailable indicates a persistence-layer failure.
	ErrCodeStoreUnavailable ErrorCode = "STORE_UNAVAILABLE"
	// ErrCodeTimeout indicates the request timed out.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
	// ErrCodeInternal indicates an internal server error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeStoreUnavailable: true,
	ErrCodeTimeout:          true,
	ErrCodeInternal:         false,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
