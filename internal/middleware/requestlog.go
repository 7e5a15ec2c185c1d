package middleware

import (
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/wedding-guests/internal/logger"
)

// RequestLog writes one structured line per request.  Handler errors are
// passed to Echo's error handler first so the logged status is the one the
// client saw.
func RequestLog() echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            start := time.Now()
            err := next(c)
            if err != nil {
                c.Error(err)
            }
            req, res := c.Request(), c.Response()
            id := req.Header.Get(echo.HeaderXRequestID)
            if id == "" {
                id = res.Header().Get(echo.HeaderXRequestID)
            }
            fields := []interface{}{
                "method", req.Method,
                "path", req.URL.Path,
                "route", c.Path(),
                "status", res.Status,
                "bytes", res.Size,
                "latency_ms", time.Since(start).Milliseconds(),
                "ip", c.RealIP(),
                "caller", callerID(c),
                "request_id", id,
            }
            switch {
            case res.Status >= 500:
                logger.L().Errorw("request", fields...)
            case res.Status >= 400:
                logger.L().Warnw("request", fields...)
            default:
                logger.L().Infow("request", fields...)
            }
            return nil
        }
    }
}
