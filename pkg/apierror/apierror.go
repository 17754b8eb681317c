package apierror

import (
	"fmt"
	"net/http"
)

const (
	CodeValidation = "VALIDATION_ERROR"
	CodeBadRequest = "BAD_REQUEST"
)

// APIError is an error that already knows how it is presented to clients.
type APIError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Details    string `json:"details,omitempty"`
	HTTPStatus int    `json:"-"`
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}

	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}

	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func New(code string, message string, details string, status int) *APIError {
	return &APIError{Code: code, Message: message, Details: details, HTTPStatus: status}
}

// Validation reports a request field that failed its constraints. Details
// carries the field name.
func Validation(field string, message string) *APIError {
	return New(CodeValidation, message, field, http.StatusBadRequest)
}

func BadRequest(message string) *APIError {
	return New(CodeBadRequest, message, "", http.StatusBadRequest)
}
