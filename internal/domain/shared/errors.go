package shared

import "errors"

// ErrorKind classifies an error for the caller: who is at fault and whether a
// retry can help.
type ErrorKind int

const (
	// KindUnknown is used for errors that carry no classification.
	KindUnknown ErrorKind = iota
	// KindValidation means malformed or missing input. Retrying is pointless
	// until the input is fixed.
	KindValidation
	// KindNotFound means a referenced entity is absent.
	KindNotFound
	// KindConflict means the request lost against a concurrent state change.
	// Retrying after a refresh may succeed.
	KindConflict
	// KindPersistence means the storage backend failed.
	KindPersistence
	// KindUnauthenticated means the caller's credentials are missing or wrong.
	KindUnauthenticated
)

// String returns the kind name
func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindPersistence:
		return "persistence"
	case KindUnauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}

// Classified is implemented by errors that know their ErrorKind.
type Classified interface {
	error
	Kind() ErrorKind
}

// DomainError represents a domain-level error
type DomainError struct {
	Code    string    `json:"code"`
	Message string    `json:"message"`
	kind    ErrorKind `json:"-"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Kind returns the error classification
func (e *DomainError) Kind() ErrorKind {
	return e.kind
}

// Is matches domain errors by code so wrapped copies of the sentinels below
// still satisfy errors.Is.
func (e *DomainError) Is(target error) bool {
	var other *DomainError
	if !errors.As(target, &other) {
		return false
	}
	return e.Code == other.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		kind:    kindForCode(code),
	}
}

// NewClassifiedError creates a domain error with an explicit kind
func NewClassifiedError(kind ErrorKind, code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		kind:    kind,
	}
}

// NewPersistenceError wraps a storage failure.
func NewPersistenceError(message string, cause error) error {
	return &PersistenceError{Message: message, Cause: cause}
}

// PersistenceError wraps a storage backend failure. It is surfaced as a 5xx.
type PersistenceError struct {
	Message string
	Cause   error
}

func (e *PersistenceError) Error() string {
	if e.Cause == nil {
		return e.Message
	}
	return e.Message + ": " + e.Cause.Error()
}

func (e *PersistenceError) Unwrap() error { return e.Cause }

// Kind returns KindPersistence
func (e *PersistenceError) Kind() ErrorKind { return KindPersistence }

// KindOf returns the classification of err, walking the wrap chain.
func KindOf(err error) ErrorKind {
	if err == nil {
		return KindUnknown
	}
	var c Classified
	if errors.As(err, &c) {
		return c.Kind()
	}
	return KindUnknown
}

func kindForCode(code string) ErrorKind {
	switch code {
	case "NOT_FOUND":
		return KindNotFound
	case "ALREADY_EXISTS", "CONCURRENCY_CONFLICT", "INSUFFICIENT_STOCK", "INVALID_STATE":
		return KindConflict
	default:
		return KindValidation
	}
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput        = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrConcurrencyConflict = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrUnauthorized        = NewClassifiedError(KindUnauthenticated, "UNAUTHORIZED", "Authentication credentials were not provided.")
	ErrInvalidState        = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
	ErrInsufficientStock   = NewDomainError("INSUFFICIENT_STOCK", "Insufficient stock available")
)
