package handler

import (
    "context"
    "errors"
    "io"
    "mime/multipart"
    "net/http"
    "strconv"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/wedding-guests/internal/logger"
    "github.com/iliyamo/wedding-guests/internal/model"
    "github.com/iliyamo/wedding-guests/internal/service"
)

// multipartMemory is how much of a submission is kept in memory before
// parts spill to temp files.
const multipartMemory = 8 << 20

var errInvalidID = errors.New("Invalid id")

// GuestWriter is the write side of the guest service.
type GuestWriter interface {
    Save(ctx context.Context, form service.GuestForm, uploads []service.Upload) (service.SaveResult, error)
}

// AdminHandler serves the admin submission.  Authentication happens in the
// AdminAuth middleware before any of its methods run.
type AdminHandler struct {
    Guests         GuestWriter
    UploadMaxBytes int64
}

// NewAdminHandler constructs an AdminHandler and panics if guests is nil.
// A non-positive maxBytes disables the body limit.
func NewAdminHandler(guests GuestWriter, maxBytes int64) *AdminHandler {
    if guests == nil {
        panic("nil writer passed to NewAdminHandler")
    }
    return &AdminHandler{Guests: guests, UploadMaxBytes: maxBytes}
}

// SaveGuest handles POST /admin/guest.  It reads the multipart form, creates
// or updates the guest and stores the attached media.
//
// Responses:
//   200 {ok:true, id}
//   400 {error:"Missing required fields", fields, got} or {error:"Invalid id"}
//   404 {error} when id names no guest
//   413 {error} when the body exceeds the upload limit
//   500 {step, error, id?} when the database or storage failed
func (h *AdminHandler) SaveGuest(c echo.Context) error {
    req := c.Request()
    if h.UploadMaxBytes > 0 {
        req.Body = http.MaxBytesReader(c.Response(), req.Body, h.UploadMaxBytes)
    }
    if err := req.ParseMultipartForm(multipartMemory); err != nil {
        var tooLarge *http.MaxBytesError
        if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
            return c.JSON(http.StatusRequestEntityTooLarge, echo.Map{"error": "Upload too large"})
        }
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid multipart body"})
    }
    defer func() { _ = req.MultipartForm.RemoveAll() }()

    form, err := readForm(req.MultipartForm)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
    }
    uploads, err := readUploads(req.MultipartForm)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
    }

    res, err := h.Guests.Save(req.Context(), form, uploads)
    if err != nil {
        return saveError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"ok": true, "id": res.ID})
}

func saveError(c echo.Context, err error) error {
    var ve *service.ValidationError
    if errors.As(err, &ve) {
        return c.JSON(http.StatusBadRequest, echo.Map{
            "error":  "Missing required fields",
            "fields": ve.Fields,
            "got":    ve.Got,
        })
    }
    var be *service.BackendError
    if errors.As(err, &be) {
        if be.Step == service.StepUpdate && service.IsNotFound(err) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "Guest not found", "id": be.GuestID})
        }
        body := echo.Map{"step": be.Step, "error": be.Err.Error()}
        if be.GuestID != 0 {
            body["id"] = be.GuestID
        }
        logger.L().Errorw("admin save failed", "step", be.Step, "guest_id", be.GuestID, "error", be.Err)
        return c.JSON(http.StatusInternalServerError, body)
    }
    logger.L().Errorw("admin save failed", "error", err)
    return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
}

// readForm maps the text fields.  An unparsable number is left at zero so
// validation reports it as missing.
func readForm(mf *multipart.Form) (service.GuestForm, error) {
    get := func(k string) string {
        if v := mf.Value[k]; len(v) > 0 {
            return v[0]
        }
        return ""
    }
    f := service.GuestForm{
        Name:       get("name"),
        RelationCS: get("relation_cs"),
        RelationEN: get("relation_en"),
        AboutCS:    get("about_cs"),
        AboutEN:    get("about_en"),
    }
    if raw := strings.TrimSpace(get("id")); raw != "" {
        id, err := strconv.ParseUint(raw, 10, 64)
        if err != nil || id == 0 {
            return f, errInvalidID
        }
        f.ID = &id
    }
    if n, err := strconv.Atoi(strings.TrimSpace(get("number"))); err == nil {
        f.Number = n
    }
    return f, nil
}

func readUploads(mf *multipart.Form) ([]service.Upload, error) {
    var out []service.Upload
    for _, slot := range model.Slots {
        files := mf.File[string(slot)]
        if len(files) == 0 || files[0].Size == 0 {
            continue
        }
        fh := files[0]
        f, err := fh.Open()
        if err != nil {
            return nil, err
        }
        data, err := io.ReadAll(f)
        _ = f.Close()
        if err != nil {
            return nil, err
        }
        out = append(out, service.Upload{
            Slot:        slot,
            ContentType: fh.Header.Get("Content-Type"),
            Data:        data,
        })
    }
    return out, nil
}
