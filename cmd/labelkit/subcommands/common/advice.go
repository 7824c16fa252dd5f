package common

import (
	"errors"
	"net/http"

	kerr "github.com/opst/labelkit/cmd/labelkit/errors"
)

// Advise wraps err with a hint what users can do next, when there is one.
//
// Errors without hints are returned as they are.
func Advise(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := err.(kerr.CUIError); ok {
		return err
	}

	if herr := new(kerr.HttpError); errors.As(err, &herr) {
		switch herr.Status {
		case http.StatusUnauthorized, http.StatusForbidden:
			return kerr.Explain(
				"the server refused your credential.",
				kerr.WithHint("Try `labelkit login` again."),
				kerr.Because(err),
			)
		}
	}
	if errors.Is(err, kerr.ErrNetwork) {
		return kerr.Explain(
			"the server is not reachable.",
			kerr.WithHint("Check api_root of your profile, or the server is running."),
			kerr.Because(err),
		)
	}
	return err
}
