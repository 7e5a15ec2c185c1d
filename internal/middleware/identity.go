package middleware

// identity.go defines helpers shared across middleware files.  callerID
// pulls the subject AdminAuth stored in the Echo context; anonymous
// readers of the gallery are reported as "anon".

import (
    "github.com/labstack/echo/v4"
)

// callerID returns the authenticated subject or "anon".
func callerID(c echo.Context) string {
    if v, ok := c.Get("user_id").(string); ok && v != "" {
        return v
    }
    return "anon"
}
