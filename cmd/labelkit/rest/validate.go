package rest

import (
	"errors"

	kerr "github.com/opst/labelkit/cmd/labelkit/errors"
	"github.com/opst/labelkit/pkg/api/types/classification"
)

// Validate checks a payload before sending.
//
// It returns *ValidationError (with Status 0) when the payload is rejected.
func Validate(payload any) error {
	err := classification.Validate(payload)
	if err == nil {
		return nil
	}
	fields := classification.FieldErrors{}
	if errors.As(err, &fields) {
		return &kerr.ValidationError{FieldErrors: fields}
	}
	return err
}
