package api

import (
	"fmt"
	"net/http"
)

// Error is the body of every failed response from the archive API.
type Error struct {
	Status  int           `json:"-"`
	Reason  string        `json:"reason"`
	Message string        `json:"message"`
	Details []ErrorDetail `json:"details,omitempty"`
}

type ErrorDetail struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

func (e Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Reason, e.Message)
}

func NotFound(msg string) Error {
	return Error{Status: http.StatusNotFound, Reason: "not_found", Message: msg}
}

func BadRequest(msg string, details ...ErrorDetail) Error {
	return Error{Status: http.StatusBadRequest, Reason: "bad_request", Message: msg, Details: details}
}

func Internal() Error {
	return Error{Status: http.StatusInternalServerError, Reason: "internal", Message: "internal server error"}
}
