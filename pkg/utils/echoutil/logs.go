package echoutil

import (
	"fmt"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
)

// LogHandlerFunc logs each request and its response, with X-Request-Id if any.
func LogHandlerFunc(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()
		reqid := req.Header.Get(echo.HeaderXRequestID)
		begin := time.Now()
		c.Logger().Infof("< request [%s] %s %s", reqid, req.Method, req.URL)

		err := next(c)

		c.Logger().Infof(
			"> response [%s] status = %d (for %s %s) in %v / error = %v",
			reqid, c.Response().Status, req.Method, req.URL, time.Since(begin), err,
		)
		return err
	}
}

// ParseLevel converts level name into log level of echo.
//
// Known names are "debug", "info", "warn", "error" and "off". Empty means "warn".
func ParseLevel(loglevel string) (log.Lvl, error) {
	switch strings.ToLower(loglevel) {
	case "debug":
		return log.DEBUG, nil
	case "info":
		return log.INFO, nil
	case "warn", "":
		return log.WARN, nil
	case "error":
		return log.ERROR, nil
	case "off":
		return log.OFF, nil
	default:
		return log.WARN, fmt.Errorf("unknown loglevel: %s", loglevel)
	}
}

func SetLevel(e *echo.Echo, loglevel string) {
	lv, err := ParseLevel(loglevel)
	e.Logger.SetLevel(lv)
	if err != nil {
		e.Logger.Warnf("%s . fall-backed to warn", err)
	}
}
