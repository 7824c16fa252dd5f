package errors

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/labstack/echo/v4"
)

const (
	// key of the general message
	DetailKey = "detail"

	// key of errors not bound to any field
	NonFieldErrorsKey = "non_field_errors"
)

// ErrorBody is the error response of the api.
//
// On the wire, it is a json object like
//
//	{"detail": "not found."}
//
// or, for validation failure,
//
//	{"class_label": ["This field is required."], "non_field_errors": ["..."]}
type ErrorBody struct {
	Detail string
	Fields map[string][]string
	Cause  error
}

func (e ErrorBody) MarshalJSON() ([]byte, error) {
	m := map[string]any{}
	for k, v := range e.Fields {
		m[k] = v
	}
	if e.Detail != "" {
		m[DetailKey] = e.Detail
	}
	return json.Marshal(m)
}

// UnmarshalJSON accepts a json object whose values are string,
// array of strings or nested object of them.
//
// Nested objects are flattened with "." joined keys.
func (e *ErrorBody) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || b[0] != '{' {
		return fmt.Errorf("error body should be json object")
	}
	m := map[string]json.RawMessage{}
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}

	body := ErrorBody{Fields: map[string][]string{}}
	for k, v := range m {
		if k == DetailKey {
			var s string
			if err := json.Unmarshal(v, &s); err == nil {
				body.Detail = s
				continue
			}
		}
		flatten(body.Fields, k, v)
	}
	if len(body.Fields) == 0 {
		body.Fields = nil
	}
	*e = body
	return nil
}

func flatten(dest map[string][]string, key string, raw json.RawMessage) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		dest[key] = append(dest[key], s)
		return
	}

	var arr []json.RawMessage
	if err := json.Unmarshal(raw, &arr); err == nil {
		for _, item := range arr {
			flatten(dest, key, item)
		}
		return
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err == nil {
		for k, v := range obj {
			flatten(dest, key+"."+k, v)
		}
		return
	}

	dest[key] = append(dest[key], string(raw))
}

func (e ErrorBody) Error() string {
	lines := []string{}
	if e.Detail != "" {
		lines = append(lines, e.Detail)
	}

	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		lines = append(lines, fmt.Sprintf("%s: %s", k, strings.Join(e.Fields[k], " ")))
	}
	if e.Cause != nil {
		lines = append(lines, fmt.Sprint("caused by: ", e.Cause.Error()))
	}
	return strings.Join(lines, "\n")
}

func (e ErrorBody) Unwrap() error {
	return e.Cause
}

func NewError(code int, detail string, cause error) *echo.HTTPError {
	body := ErrorBody{Detail: detail, Cause: cause}
	return echo.NewHTTPError(code, body).SetInternal(body)
}

func NotFound() *echo.HTTPError {
	return NewError(http.StatusNotFound, "Not found.", nil)
}

func Unauthorized(cause error) *echo.HTTPError {
	return NewError(http.StatusUnauthorized, "Invalid token.", cause)
}

func BadRequest(detail string, cause error) *echo.HTTPError {
	return NewError(http.StatusBadRequest, detail, cause)
}

// Invalid answers 400 with field errors.
func Invalid(fields map[string][]string) *echo.HTTPError {
	body := ErrorBody{Fields: fields}
	return echo.NewHTTPError(http.StatusBadRequest, body).SetInternal(body)
}

func InternalServerError(err error) *echo.HTTPError {
	return NewError(http.StatusInternalServerError, "unexpected error", err)
}
