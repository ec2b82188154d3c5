package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

// Mapping pairs a domain sentinel error with its HTTP status and code
type Mapping struct {
	Target error
	Status int
	Code   string
}

// From converts err into an *Error using the first mapping whose target matches.
// Unmapped errors become 500 internal_error.
func From(err error, mappings ...Mapping) *Error {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	for _, m := range mappings {
		if errors.Is(err, m.Target) {
			return New(m.Status, m.Code, err)
		}
	}
	return New(http.StatusInternalServerError, "internal_error", err)
}
