package errorutil

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for callers that need to react to it.
type Kind string

const (
	KindNotFound     Kind = "NOT_FOUND"
	KindConflict     Kind = "CONFLICT"
	KindForbidden    Kind = "FORBIDDEN"
	KindInvalidInput Kind = "VALIDATION_FAILED"
	KindUnauthorized Kind = "UNAUTHORIZED"
	KindUnavailable  Kind = "SERVICE_UNAVAILABLE"
	KindUnexpected   Kind = "INTERNAL_ERROR"
)

// DomainError standardizes application errors.
type DomainError struct {
	Kind       Kind
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// Code returns the wire code used in HTTP error bodies.
func (e *DomainError) Code() string {
	return string(e.Kind)
}

// NewDomainError constructs a DomainError.
func NewDomainError(kind Kind, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Kind: kind, Message: message, HTTPStatus: status, Details: details}
}

// NewNotFound reports a missing entity of the given kind.
func NewNotFound(entity string, id any) error {
	return NewDomainError(KindNotFound, fmt.Sprintf("%s %v not found", entity, id), http.StatusNotFound,
		map[string]any{"entity": entity, "id": id})
}

func NewConflict(reason string, details map[string]any) error {
	return NewDomainError(KindConflict, reason, http.StatusConflict, details)
}

func NewForbidden(reason string) error {
	return NewDomainError(KindForbidden, reason, http.StatusForbidden, nil)
}

// NewInvalidInput reports a malformed or out-of-range field.
func NewInvalidInput(field string) error {
	return NewDomainError(KindInvalidInput, fmt.Sprintf("invalid %s", field), http.StatusBadRequest,
		map[string]any{"field": field})
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError(KindInvalidInput, message, http.StatusBadRequest, details)
}

func NewUnauthorized(message string) error {
	return NewDomainError(KindUnauthorized, message, http.StatusUnauthorized, nil)
}

// NewUnavailable reports a temporarily overloaded or unreachable dependency.
func NewUnavailable(reason string) error {
	return NewDomainError(KindUnavailable, reason, http.StatusServiceUnavailable, nil)
}

func NewInternalError(err error) error {
	return &DomainError{
		Kind:       KindUnexpected,
		Message:    "internal error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return &DomainError{
		Kind:       KindUnexpected,
		Message:    "internal error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// KindOf returns the taxonomy kind of err, KindUnexpected for foreign errors.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	return ToDomainError(err).Kind
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
