package handler

import (
    "context"
    "errors"
    "net/http"
    "net/url"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/wedding-guests/internal/logger"
    "github.com/iliyamo/wedding-guests/internal/mediacache"
    "github.com/iliyamo/wedding-guests/internal/model"
    "github.com/iliyamo/wedding-guests/internal/storage"
)

// ObjectReader reads stored media.
type ObjectReader interface {
    Get(ctx context.Context, bucket, key string) ([]byte, string, error)
}

// MediaHandler proxies bucket objects through the media cache.
type MediaHandler struct {
    Cache   *mediacache.Cache
    Objects ObjectReader
}

// NewMediaHandler constructs a MediaHandler.  cache may be nil, in which
// case every request reads storage.
func NewMediaHandler(objects ObjectReader, cache *mediacache.Cache) *MediaHandler {
    if objects == nil {
        panic("nil object reader passed to NewMediaHandler")
    }
    return &MediaHandler{Cache: cache, Objects: objects}
}

var mediaBuckets = map[string]bool{
    model.BucketPhotos:        true,
    model.BucketAudioOfficial: true,
    model.BucketAudioFunny:    true,
}

// Serve handles GET /media/:bucket/*.  X-Cache tells whether the body came
// from the cache.
func (h *MediaHandler) Serve(c echo.Context) error {
    bucket := c.Param("bucket")
    key, err := url.PathUnescape(c.Param("*"))
    if err != nil || key == "" || !mediaBuckets[bucket] {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
    }

    network := func(ctx context.Context, _ string) (*mediacache.Entry, error) {
        data, ct, err := h.Objects.Get(ctx, bucket, key)
        if errors.Is(err, storage.ErrObjectNotFound) {
            return &mediacache.Entry{Status: http.StatusNotFound}, nil
        }
        if err != nil {
            return nil, err
        }
        if ct == "" {
            ct = http.DetectContentType(data)
        }
        return &mediacache.Entry{Status: http.StatusOK, ContentType: ct, Body: data}, nil
    }

    var (
        e   *mediacache.Entry
        hit bool
    )
    if h.Cache != nil {
        e, hit, err = h.Cache.Fetch(c.Request().Context(), c.Request(), network)
    } else {
        e, err = network(c.Request().Context(), "")
    }
    if err != nil {
        logger.L().Warnw("media fetch failed", "bucket", bucket, "key", key, "error", err)
        return c.JSON(http.StatusBadGateway, echo.Map{"error": err.Error()})
    }
    if e.Status == http.StatusNotFound {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
    }
    if hit {
        c.Response().Header().Set("X-Cache", "HIT")
    } else {
        c.Response().Header().Set("X-Cache", "MISS")
    }
    c.Response().Header().Set("Cache-Control", "public, max-age=86400")
    return c.Blob(e.Status, e.ContentType, e.Body)
}
