// Package handler exposes HTTP handlers for the guest directory.  This file
// defines the public read endpoints used by the gallery: the guest list and
// the media manifest clients precache from.

package handler

import (
    "context"
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/wedding-guests/internal/logger"
    "github.com/iliyamo/wedding-guests/internal/service"
)

// GuestReader is the read side of the guest service.
type GuestReader interface {
    List(ctx context.Context) ([]service.GuestView, error)
    Manifest(ctx context.Context) ([]string, error)
}

// PublicHandler serves unauthenticated reads.
type PublicHandler struct {
    Guests GuestReader
}

// NewPublicHandler constructs a PublicHandler and panics if guests is nil.
func NewPublicHandler(guests GuestReader) *PublicHandler {
    if guests == nil {
        panic("nil reader passed to NewPublicHandler")
    }
    return &PublicHandler{Guests: guests}
}

// ListGuests handles GET /guests.  Every guest ordered by number is returned
// under "items"; a backend failure is a 500 carrying the backend message.
func (h *PublicHandler) ListGuests(c echo.Context) error {
    items, err := h.Guests.List(c.Request().Context())
    if err != nil {
        logger.L().Errorw("list guests failed", "error", err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
    }
    return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Manifest handles GET /manifest/all: the public URL of every stored photo
// and clip.
func (h *PublicHandler) Manifest(c echo.Context) error {
    urls, err := h.Guests.Manifest(c.Request().Context())
    if err != nil {
        logger.L().Errorw("build manifest failed", "error", err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
    }
    return c.JSON(http.StatusOK, echo.Map{"urls": urls})
}
