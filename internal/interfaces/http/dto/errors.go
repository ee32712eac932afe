package dto

import "net/http"

// Error codes carried in the "code" field of error bodies. Domain errors keep
// their own code; these cover failures raised by the HTTP layer itself.
const (
	ErrCodeInternal        = "INTERNAL_ERROR"
	ErrCodeValidation      = "VALIDATION_ERROR"
	ErrCodeInvalidJSON     = "INVALID_JSON"
	ErrCodeNotFound        = "NOT_FOUND"
	ErrCodeUnauthorized    = "UNAUTHORIZED"
	ErrCodeTokenInvalid    = "TOKEN_INVALID"
	ErrCodeTokenExpired    = "TOKEN_EXPIRED"
	ErrCodeForbidden       = "FORBIDDEN"
	ErrCodeRateLimited     = "RATE_LIMITED"
	ErrCodeRequestTooLarge = "REQUEST_TOO_LARGE"
)

// Canonical messages
const (
	MsgNotFound        = "Not found."
	MsgInternal        = "Internal server error."
	MsgUnauthenticated = "Authentication credentials were not provided."
	MsgTokenInvalid    = "Given token not valid for any token type"
	MsgRateLimited     = "Request was throttled."
	MsgTooLarge        = "Request body exceeds maximum allowed size."
)

// errorCodeHTTPStatus maps HTTP-layer error codes to status codes
var errorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:        http.StatusInternalServerError,
	ErrCodeValidation:      http.StatusBadRequest,
	ErrCodeInvalidJSON:     http.StatusBadRequest,
	ErrCodeNotFound:        http.StatusNotFound,
	ErrCodeUnauthorized:    http.StatusUnauthorized,
	ErrCodeTokenInvalid:    http.StatusUnauthorized,
	ErrCodeTokenExpired:    http.StatusUnauthorized,
	ErrCodeForbidden:       http.StatusForbidden,
	ErrCodeRateLimited:     http.StatusTooManyRequests,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,
}

// GetHTTPStatus returns the status for an HTTP-layer code, 500 when unknown
func GetHTTPStatus(code string) int {
	if status, ok := errorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
