package httperr

import "errors"

// Error codes for the engine's result taxonomy. Handlers translate
// these into HTTP statuses; usecases never return raw gorm errors to
// callers.
const (
	CodeValidation        = "validation_failed"
	CodeResourceConflict  = "resource_conflict"
	CodeCapacityExhausted = "capacity_exhausted"
	CodePersistence       = "persistence_failed"
)

type BusinessError struct {
	Code   string
	Detail string
}

func (e BusinessError) Error() string {
	if e.Detail == "" {
		return e.Code
	}
	return e.Code + ": " + e.Detail
}

func ErrBusiness(code string) error {
	return BusinessError{Code: code}
}

func ErrBusinessDetail(code, detail string) error {
	return BusinessError{Code: code, Detail: detail}
}

// ErrValidation reports a missing or malformed required field.
func ErrValidation(field string) error {
	return BusinessError{Code: CodeValidation, Detail: field}
}

// ErrPersistence wraps a failed store write. The original error is
// kept in the detail for logs only.
func ErrPersistence(err error) error {
	detail := ""
	if err != nil {
		detail = err.Error()
	}
	return BusinessError{Code: CodePersistence, Detail: detail}
}

func IsBusiness(err error, code string) bool {
	var be BusinessError
	if errors.As(err, &be) {
		return be.Code == code
	}
	return false
}

// Code extracts the business code from err, or "" when err is not a
// BusinessError.
func Code(err error) string {
	var be BusinessError
	if errors.As(err, &be) {
		return be.Code
	}
	return ""
}
