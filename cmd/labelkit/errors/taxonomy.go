package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Sentinels of each class of error.
//
// Use errors.Is to classify errors; use errors.As to get details.
var (
	ErrNetwork    = errors.New("network error")
	ErrHttp       = errors.New("http error")
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("not found")
)

// NetworkError is a failure of a request which did not get any response.
type NetworkError struct {
	Method string
	URL    string
	Cause  error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: no response: %s", e.Method, e.URL, e.Cause)
}

func (e *NetworkError) Unwrap() []error {
	return []error{ErrNetwork, e.Cause}
}

// HttpError is a non-2xx response which does not carry
// a structured validation failure.
type HttpError struct {
	Status int
	Body   string
}

func (e *HttpError) Error() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return fmt.Sprintf("server responded with status %d", e.Status)
	}
	return fmt.Sprintf("server responded with status %d: %s", e.Status, body)
}

func (e *HttpError) Unwrap() error {
	return ErrHttp
}

// ValidationError is a rejection of a payload.
//
// Status is the status code of the response, or 0 when the payload is
// rejected before sending.
type ValidationError struct {
	Status      int
	Message     string
	FieldErrors map[string][]string
}

func (e *ValidationError) Error() string {
	lines := []string{}
	if e.Message != "" {
		lines = append(lines, e.Message)
	}
	for _, field := range e.Fields() {
		lines = append(lines, fmt.Sprintf("%s: %s", field, strings.Join(e.FieldErrors[field], " ")))
	}
	if len(lines) == 0 {
		lines = append(lines, "invalid payload")
	}
	if e.Status != 0 {
		return fmt.Sprintf("validation error (status %d): %s", e.Status, strings.Join(lines, "; "))
	}
	return "validation error: " + strings.Join(lines, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// Fields returns names of fields having errors, sorted.
func (e *ValidationError) Fields() []string {
	fields := make([]string, 0, len(e.FieldErrors))
	for k := range e.FieldErrors {
		fields = append(fields, k)
	}
	sort.Strings(fields)
	return fields
}

// NotFoundError is a missing entity.
//
// Local is true when the entity is missed in a local aggregate,
// without asking to the server.
type NotFoundError struct {
	Resource string
	Id       string
	Local    bool
}

func (e *NotFoundError) Error() string {
	where := "on server"
	if e.Local {
		where = "in loaded dataset"
	}
	if e.Id == "" {
		return fmt.Sprintf("%s is not found %s", e.Resource, where)
	}
	return fmt.Sprintf("%s %s is not found %s", e.Resource, e.Id, where)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// Missing is a NotFoundError for a local lookup miss.
func Missing(resource string, id int) *NotFoundError {
	return &NotFoundError{Resource: resource, Id: fmt.Sprint(id), Local: true}
}

// Invalid is a ValidationError detected before sending a request.
func Invalid(field string, messages ...string) *ValidationError {
	return &ValidationError{FieldErrors: map[string][]string{field: messages}}
}
