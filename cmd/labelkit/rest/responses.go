package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	kerr "github.com/opst/labelkit/cmd/labelkit/errors"
	apierr "github.com/opst/labelkit/pkg/api/types/errors"
)

// ErrUnexpectedResponse is returned when a successful response is not shaped as expected.
var ErrUnexpectedResponse = errors.New("unexpected response")

// isValidationStatus tells whether a json body of the status is taken as validation failure.
//
// They are 400..422, except for authentication and authorization failures.
func isValidationStatus(code int) bool {
	switch code {
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
		return false
	}
	return http.StatusBadRequest <= code && code <= http.StatusUnprocessableEntity
}

// checkStatus converts non-2xx response into an error.
//
// return:
//
//	nil for 2xx. Otherwise...
//	- *NotFoundError for 404
//	- *ValidationError for 400..422 (but 401 and 403) with json object body
//	- *HttpError for others
func checkStatus(resp *http.Response, resource string, id string) error {
	code := resp.StatusCode
	if 200 <= code && code < 300 {
		return nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &kerr.HttpError{Status: code, Body: fmt.Sprintf("(cannot read server message: %s)", err)}
	}

	if code == http.StatusNotFound {
		return &kerr.NotFoundError{Resource: resource, Id: id}
	}

	if isValidationStatus(code) {
		eb := apierr.ErrorBody{}
		if err := json.Unmarshal(body, &eb); err == nil {
			return &kerr.ValidationError{Status: code, Message: eb.Detail, FieldErrors: eb.Fields}
		}
	}

	return &kerr.HttpError{Status: code, Body: string(body)}
}

// unmarshal http response which has json content.
//
// args:
//   - resp: http response to be processed.
//   - v: pointer to value which response should be.
//   - resource, id: what is requested. used for NotFoundError.
func unmarshalJsonResponse(resp *http.Response, v any, resource string, id string) error {
	if err := checkStatus(resp, resource, id); err != nil {
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: %w (status code = %d)", ErrUnexpectedResponse, err, resp.StatusCode)
	}
	return nil
}

func unmarshalResponseDiscardingPayload(resp *http.Response, resource string, id string) error {
	if err := checkStatus(resp, resource, id); err != nil {
		return err
	}
	_, err := io.Copy(io.Discard, resp.Body)
	return err
}
