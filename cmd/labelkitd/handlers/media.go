package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/opst/labelkit/cmd/labelkitd/memory"
)

type MediaRepository interface {
	Media(name string) (memory.Media, error)
}

// MediaHandler serves uploaded files.
func MediaHandler(repo MediaRepository, param string) echo.HandlerFunc {
	return func(c echo.Context) error {
		m, err := repo.Media(c.Param(param))
		if err != nil {
			return translate(err)
		}
		c.Response().Header().Set(echo.HeaderContentLength, strconv.Itoa(len(m.Content)))
		return c.Blob(http.StatusOK, m.ContentType, m.Content)
	}
}
