package handlers

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/opst/labelkit/cmd/labelkitd/memory"
	"github.com/opst/labelkit/pkg/api/types/classification"
	apierr "github.com/opst/labelkit/pkg/api/types/errors"
)

// translate converts errors from repositories into *echo.HTTPError.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, memory.ErrNotFound) {
		return apierr.NotFound()
	}
	fields := classification.FieldErrors{}
	if errors.As(err, &fields) {
		return apierr.Invalid(fields)
	}
	return apierr.InternalServerError(err)
}

// pathId reads a path parameter as id.
//
// Non-numeric ids are not found.
func pathId(c echo.Context, name string) (int, error) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		return 0, apierr.NotFound()
	}
	return id, nil
}

// queryId reads a query parameter as id. Missing parameter is 0.
func queryId(c echo.Context, name string) (int, error) {
	v := c.QueryParam(name)
	if v == "" {
		return 0, nil
	}
	id, err := strconv.Atoi(v)
	if err != nil || id < 0 {
		return 0, apierr.Invalid(map[string][]string{name: {"Select a valid choice."}})
	}
	return id, nil
}

func isJSON(c echo.Context) bool {
	mediatype, _, err := mime.ParseMediaType(c.Request().Header.Get(echo.HeaderContentType))
	return err == nil && mediatype == echo.MIMEApplicationJSON
}

// bindJSON decodes the json request body into v.
func bindJSON(c echo.Context, v any) error {
	if !isJSON(c) {
		return apierr.NewError(
			http.StatusUnsupportedMediaType, "unexpected content type. it should be application/json", nil,
		)
	}
	if err := json.NewDecoder(c.Request().Body).Decode(v); err != nil {
		return apierr.BadRequest("can not understand the requested json", err)
	}
	return nil
}
