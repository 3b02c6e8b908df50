package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound            = errors.New("resource not found")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrUserBlocked         = errors.New("user account is blocked")
	ErrEmailTaken          = errors.New("email already registered")
	ErrNumberNotAllowed    = errors.New("lottery number not allowed")
	ErrServiceUnavailable  = errors.New("service unavailable")
	ErrOperationNotAllowed = errors.New("operation not allowed on this folder")
)

// UnexpectedStatusError is returned when a microservice answers with a status
// the called operation does not document.
type UnexpectedStatusError struct {
	Service    string
	Method     string
	Path       string
	StatusCode int
}

func (e *UnexpectedStatusError) Error() string {
	return fmt.Sprintf("%s service: %s %s: unexpected status %d", e.Service, e.Method, e.Path, e.StatusCode)
}
