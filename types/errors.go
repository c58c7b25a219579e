package types

import "net/http"

// APIError pairs an underlying error with the status and message a client sees.
type APIError struct {
	Status  int
	Message string
	Err     error
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *APIError) Unwrap() error { return e.Err }

func NewAPIError(status int, message string, err error) *APIError {
	return &APIError{Status: status, Message: message, Err: err}
}

func BadRequest(message string) *APIError {
	return &APIError{Status: http.StatusBadRequest, Message: message}
}
