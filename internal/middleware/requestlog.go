package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/xid"
	"github.com/rs/zerolog/log"
)

// HeaderCorrelationID carries the request id in both directions.
const HeaderCorrelationID = "X-Correlation-Id"

const ctxCorrelationID = "correlation_id"

// CorrelationID reuses the inbound X-Correlation-Id or mints an xid.
func CorrelationID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cid := c.Request().Header.Get(HeaderCorrelationID)
			if cid == "" {
				cid = xid.New().String()
			}
			c.Request().Header.Set(HeaderCorrelationID, cid)
			c.Response().Header().Set(HeaderCorrelationID, cid)
			c.Set(ctxCorrelationID, cid)
			return next(c)
		}
	}
}

// RequestID returns the correlation id of the current request.
func RequestID(c echo.Context) string {
	s, _ := c.Get(ctxCorrelationID).(string)
	return s
}

// AccessLog writes one zerolog line per request.
func AccessLog() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			req := c.Request()
			ev := log.Info()
			if status := c.Response().Status; status >= 500 {
				ev = log.Error().Err(err)
			}
			ev.
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Str("correlation_id", RequestID(c)).
				Str("remote_ip", c.RealIP()).
				Str("user_id", UserID(c)).
				Int("status", c.Response().Status).
				Int64("size", c.Response().Size).
				Dur("duration", time.Since(start)).
				Msg("http_request")
			return nil
		}
	}
}
