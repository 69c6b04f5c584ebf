package server

import (
	"fmt"
	"net/http"
)

// ErrNotFound indicates a requested resource does not exist
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrBadRequest indicates a malformed request body or query
type ErrBadRequest struct {
	Message string
}

func (e *ErrBadRequest) Error() string {
	return e.Message
}

// ErrBatchTooLarge indicates a batch with more postings than allowed
type ErrBatchTooLarge struct {
	Size int
	Max  int
}

func (e *ErrBatchTooLarge) Error() string {
	return fmt.Sprintf("batch of %d postings exceeds limit of %d", e.Size, e.Max)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	switch err.(type) {
	case *ErrNotFound:
		return http.StatusNotFound
	case *ErrValidation, *ErrBadRequest:
		return http.StatusBadRequest
	case *ErrBatchTooLarge:
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}
