package usecase

import "errors"

// Error codes carried by DomainError. The HTTP layer maps them to status codes.
const (
	CodeValidation  = "VALIDATION_ERROR"
	CodeNotFound    = "NOT_FOUND"
	CodeForbidden   = "FORBIDDEN"
	CodeNotEligible = "UPGRADE_REQUIRED"
	CodeConflict    = "LEAD_UNAVAILABLE"
	CodeTransition  = "INVALID_TRANSITION"
	CodeStorage     = "DATABASE_ERROR"
)

// DomainError is a user-facing failure: the request was understood but cannot proceed.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func IsDomainError(err error) bool {
	var de *DomainError
	return errors.As(err, &de)
}

// DomainCode returns the code of a wrapped DomainError, or "".
func DomainCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// TechnicalError is a storage or infrastructure failure. It aborts the request.
type TechnicalError struct {
	Code    string
	Message string
	Err     error
}

func (e *TechnicalError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *TechnicalError) Unwrap() error {
	return e.Err
}

func IsTechnicalError(err error) bool {
	var te *TechnicalError
	return errors.As(err, &te)
}

func validationError(msg string) error {
	return &DomainError{Code: CodeValidation, Message: msg}
}

func notFound(msg string) error {
	return &DomainError{Code: CodeNotFound, Message: msg}
}

func forbidden(msg string) error {
	return &DomainError{Code: CodeForbidden, Message: msg}
}

func invalidTransition(msg string) error {
	return &DomainError{Code: CodeTransition, Message: msg}
}

func storageError(msg string, err error) error {
	return &TechnicalError{Code: CodeStorage, Message: msg, Err: err}
}

var (
	ErrUpgradeRequired = &DomainError{Code: CodeNotEligible, Message: "an active lead plan is required to accept leads, upgrade to continue"}
	ErrLeadUnavailable = &DomainError{Code: CodeConflict, Message: "this lead is no longer available"}
)
