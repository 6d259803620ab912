package apperr

import (
	"errors"
	"fmt"
	"net/http"

	mysql "github.com/go-sql-driver/mysql"
)

// ===== Error model =====
type Code string

const (
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
	CodeInvalidUser     Code = "INVALID_USER"
	CodeForbidden       Code = "FORBIDDEN"
	CodeNotFound        Code = "NOT_FOUND"
	CodeConflict        Code = "CONFLICT"
	CodeSerialization   Code = "SERIALIZATION"
	CodeInternal        Code = "INTERNAL"
)

type APIError struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	cause   error
}

func (e *APIError) Error() string { return fmt.Sprintf("%s: %s", e.Code, e.Message) }
func (e *APIError) Unwrap() error { return e.cause }

func ErrInvalid(msg string) *APIError     { return &APIError{Code: CodeInvalidArgument, Message: msg} }
func ErrInvalidUser(msg string) *APIError { return &APIError{Code: CodeInvalidUser, Message: msg} }
func ErrForbidden(msg string) *APIError   { return &APIError{Code: CodeForbidden, Message: msg} }
func ErrNotFound(msg string) *APIError    { return &APIError{Code: CodeNotFound, Message: msg} }
func ErrConflict(msg string) *APIError    { return &APIError{Code: CodeConflict, Message: msg} }
func ErrInternal(msg string) *APIError    { return &APIError{Code: CodeInternal, Message: msg} }

// ErrSerialization wraps a JSON encode/decode failure of a persisted column.
func ErrSerialization(msg string, cause error) *APIError {
	return &APIError{Code: CodeSerialization, Message: msg, cause: cause}
}

// Is reports whether err carries an *APIError with the given code.
func Is(err error, code Code) bool {
	var api *APIError
	return errors.As(err, &api) && api.Code == code
}

// From converts any error into an *APIError; unknown errors become INTERNAL.
func From(err error) *APIError {
	var api *APIError
	if errors.As(err, &api) {
		return api
	}
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		switch me.Number {
		case 1062: // duplicate key
			return &APIError{Code: CodeConflict, Message: "duplicate entry", cause: err}
		case 1451, 1452: // foreign key constraint fails
			return &APIError{Code: CodeConflict, Message: "foreign key constraint fails", cause: err}
		}
	}
	return &APIError{Code: CodeInternal, Message: err.Error(), cause: err}
}

func ToHTTPStatus(err error) int {
	var api *APIError
	if errors.As(err, &api) {
		switch api.Code {
		case CodeInvalidArgument:
			return http.StatusBadRequest
		case CodeInvalidUser:
			return http.StatusUnauthorized
		case CodeForbidden:
			return http.StatusForbidden
		case CodeNotFound:
			return http.StatusNotFound
		case CodeConflict:
			return http.StatusConflict
		default:
			return http.StatusInternalServerError
		}
	}
	return ToHTTPStatus(From(err))
}
