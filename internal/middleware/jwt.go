package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
    "net/http" // HTTP status codes for responses
    "strings"  // string utilities for prefix checking and trimming

    "github.com/labstack/echo/v4" // Echo framework used for defining middleware and handlers

    "github.com/iliyamo/wedding-guests/internal/logger"
    "github.com/iliyamo/wedding-guests/internal/utils"
)

// AdminSecretHeader carries the shared admin secret.
const AdminSecretHeader = "x-admin-secret"

// AdminAuthConfig holds what AdminAuth checks requests against.
type AdminAuthConfig struct {
    Secret       string // plain shared secret
    SecretBcrypt string // optional bcrypt hash, wins over Secret
    JWTSecret    string // signs admin session tokens
}

// AdminAuth returns an Echo middleware that admits a request carrying either
// the shared secret in the x-admin-secret header or a Bearer session token
// issued by POST /admin/session.  On success the subject and role are
// stored in the context under "user_id" and "role", the same keys the
// rate limiter and RequireRole read.  Anything else is answered with 401
// before the handler runs.
func AdminAuth(cfg AdminAuthConfig) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            // The header wins when both are present; this is what the admin
            // page sends.
            if got := c.Request().Header.Get(AdminSecretHeader); got != "" {
                if !utils.VerifyAdminSecret(cfg.Secret, cfg.SecretBcrypt, got) {
                    logger.L().Infow("admin secret rejected", "ip", c.RealIP(), "path", c.Path())
                    return unauthorized(c)
                }
                c.Set("user_id", "admin")
                c.Set("role", utils.RoleAdmin)
                return next(c)
            }

            auth := c.Request().Header.Get("Authorization")
            if !strings.HasPrefix(auth, "Bearer ") || cfg.JWTSecret == "" {
                return unauthorized(c)
            }
            // Remove the "Bearer " prefix to obtain the raw token string.
            claims, err := utils.ParseToken(cfg.JWTSecret, strings.TrimPrefix(auth, "Bearer "))
            if err != nil {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Unauthorized: invalid session"})
            }
            c.Set("user_id", claims["sub"])
            c.Set("role", claims["role"])
            return next(c)
        }
    }
}

func unauthorized(c echo.Context) error {
    return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Unauthorized: bad x-admin-secret"})
}
