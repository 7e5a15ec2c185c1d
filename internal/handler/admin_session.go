package handler

import (
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/wedding-guests/internal/utils"
)

// SessionHandler exchanges the admin secret for a short-lived bearer token
// so the admin page does not have to keep the secret around.
type SessionHandler struct {
    Secret       string
    SecretBcrypt string
    JWTSecret    string
    TTL          time.Duration
}

type sessionRequest struct {
    Secret string `json:"secret" form:"secret"`
}

// Create handles POST /admin/session.  The secret may arrive in the
// x-admin-secret header or in the body.
func (h *SessionHandler) Create(c echo.Context) error {
    got := c.Request().Header.Get("x-admin-secret")
    if got == "" {
        var req sessionRequest
        if err := c.Bind(&req); err != nil {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
        }
        got = req.Secret
    }
    if !utils.VerifyAdminSecret(h.Secret, h.SecretBcrypt, got) {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Unauthorized: bad x-admin-secret"})
    }
    tok, err := utils.NewAdminToken(h.JWTSecret, h.TTL)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not issue token"})
    }
    return c.JSON(http.StatusOK, tok)
}
