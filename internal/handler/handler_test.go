package handler

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/wedding-guests/internal/audio"
	"github.com/iliyamo/wedding-guests/internal/repository"
	"github.com/iliyamo/wedding-guests/internal/service"
)

type fakeReader struct {
	items []service.GuestView
	urls  []string
	err   error
}

func (f *fakeReader) List(ctx context.Context) ([]service.GuestView, error) { return f.items, f.err }
func (f *fakeReader) Manifest(ctx context.Context) ([]string, error)        { return f.urls, f.err }

type fakeWriter struct {
	form    service.GuestForm
	uploads []service.Upload
	res     service.SaveResult
	err     error
	calls   int
}

func (f *fakeWriter) Save(ctx context.Context, form service.GuestForm, uploads []service.Upload) (service.SaveResult, error) {
	f.calls++
	f.form, f.uploads = form, uploads
	return f.res, f.err
}

func str(s string) *string { return &s }

func TestListGuests(t *testing.T) {
	r := &fakeReader{items: []service.GuestView{{
		ID: 1, Number: 1, Name: "Jana",
		Relation:      service.Bilingual{CS: "sestra", EN: "sister"},
		PhotoURL:      str("https://x/photos/1.jpg"),
		AudioOfficial: audio.Pair{CS: str("https://x/audio-official/1_cs.mp3")},
	}}}
	e := echo.New()
	e.GET("/guests", NewPublicHandler(r).ListGuests)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/guests", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"items":[{
		"id":1,"number":1,"name":"Jana",
		"relation":{"cs":"sestra","en":"sister"},
		"about":{},
		"photoUrl":"https://x/photos/1.jpg",
		"audioOfficial":{"cs":"https://x/audio-official/1_cs.mp3","en":null},
		"audioFunny":{"cs":null,"en":null}
	}]}`, rec.Body.String())
}

func TestListGuestsBackendError(t *testing.T) {
	e := echo.New()
	e.GET("/guests", NewPublicHandler(&fakeReader{err: errors.New("permission denied for table guests")}).ListGuests)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/guests", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"permission denied for table guests"}`, rec.Body.String())
}

func TestManifest(t *testing.T) {
	e := echo.New()
	e.GET("/manifest/all", NewPublicHandler(&fakeReader{urls: []string{}}).Manifest)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/manifest/all", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"urls":[]}`, rec.Body.String())
}

type part struct {
	field, filename, contentType string
	data                         []byte
}

func multipartRequest(t *testing.T, fields map[string]string, files ...part) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for _, p := range files {
		h := textproto.MIMEHeader{}
		h.Set("Content-Disposition", `form-data; name="`+p.field+`"; filename="`+p.filename+`"`)
		if p.contentType != "" {
			h.Set("Content-Type", p.contentType)
		}
		pw, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = pw.Write(p.data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	req := httptest.NewRequest(http.MethodPost, "/admin/guest", &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	return req
}

func serveAdmin(h *AdminHandler, req *http.Request) *httptest.ResponseRecorder {
	e := echo.New()
	e.POST("/admin/guest", h.SaveGuest)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

var textFields = map[string]string{
	"number":      "5",
	"name":        "Tomáš",
	"relation_cs": "svědek",
	"relation_en": "best man",
	"about_cs":    "Hraje na kytaru.",
}

func TestSaveGuestCreates(t *testing.T) {
	w := &fakeWriter{res: service.SaveResult{ID: 17, Created: true}}
	req := multipartRequest(t, textFields,
		part{"photo", "me.png", "image/png", []byte("png")},
		part{"audio_funny_en", "joke.mp3", "audio/mpeg", []byte("ID3")},
		part{"audio_official_cs", "empty.mp3", "audio/mpeg", nil},
	)
	rec := serveAdmin(NewAdminHandler(w, 1<<20), req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true,"id":17}`, rec.Body.String())
	assert.Nil(t, w.form.ID)
	assert.Equal(t, 5, w.form.Number)
	assert.Equal(t, "Tomáš", w.form.Name)
	assert.Equal(t, "Hraje na kytaru.", w.form.AboutCS)
	require.Len(t, w.uploads, 2, "empty file parts are skipped")
	assert.Equal(t, "photo", string(w.uploads[0].Slot))
	assert.Equal(t, "image/png", w.uploads[0].ContentType)
	assert.Equal(t, "audio_funny_en", string(w.uploads[1].Slot))
	assert.Equal(t, []byte("ID3"), w.uploads[1].Data)
}

func TestSaveGuestParsesID(t *testing.T) {
	w := &fakeWriter{res: service.SaveResult{ID: 9}}
	fields := map[string]string{"id": "9"}
	for k, v := range textFields {
		fields[k] = v
	}
	rec := serveAdmin(NewAdminHandler(w, 0), multipartRequest(t, fields))
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, w.form.ID)
	assert.Equal(t, uint64(9), *w.form.ID)
}

func TestSaveGuestInvalidID(t *testing.T) {
	w := &fakeWriter{}
	rec := serveAdmin(NewAdminHandler(w, 0), multipartRequest(t, map[string]string{"id": "abc"}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Invalid id"}`, rec.Body.String())
	assert.Zero(t, w.calls)
}

func TestSaveGuestValidationError(t *testing.T) {
	w := &fakeWriter{err: &service.ValidationError{
		Fields: []string{"relation_en"},
		Got:    map[string]interface{}{"number": 5, "name": "Tomáš", "relation_cs": "svědek", "relation_en": ""},
	}}
	rec := serveAdmin(NewAdminHandler(w, 0), multipartRequest(t, textFields))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{
		"error":"Missing required fields",
		"fields":["relation_en"],
		"got":{"number":5,"name":"Tomáš","relation_cs":"svědek","relation_en":""}
	}`, rec.Body.String())
}

func TestSaveGuestBackendErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
		body string
	}{
		{"insert", &service.BackendError{Step: "insert", Err: errors.New("duplicate key")},
			http.StatusInternalServerError, `{"step":"insert","error":"duplicate key"}`},
		{"upload", &service.BackendError{Step: "upload", GuestID: 4, Err: errors.New("[storage photos] timeout")},
			http.StatusInternalServerError, `{"step":"upload","error":"[storage photos] timeout","id":4}`},
		{"not found", &service.BackendError{Step: "update", GuestID: 99, Err: repository.ErrGuestNotFound},
			http.StatusNotFound, `{"error":"Guest not found","id":99}`},
		{"row gone before paths", &service.BackendError{Step: "update-paths", GuestID: 7, Err: repository.ErrGuestNotFound},
			http.StatusInternalServerError, `{"step":"update-paths","error":"guest not found","id":7}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := serveAdmin(NewAdminHandler(&fakeWriter{err: tc.err}, 0), multipartRequest(t, textFields))
			assert.Equal(t, tc.code, rec.Code)
			assert.JSONEq(t, tc.body, rec.Body.String())
		})
	}
}

func TestSaveGuestTooLarge(t *testing.T) {
	w := &fakeWriter{}
	req := multipartRequest(t, textFields, part{"photo", "big.jpg", "image/jpeg", bytes.Repeat([]byte("x"), 4096)})
	rec := serveAdmin(NewAdminHandler(w, 1024), req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Zero(t, w.calls)
}

func TestSaveGuestNotMultipart(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/admin/guest", bytes.NewBufferString(`{"name":"x"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := serveAdmin(NewAdminHandler(&fakeWriter{}, 0), req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealth(t *testing.T) {
	e := echo.New()
	e.GET("/healthz", Health)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, "ok", rec.Body.String())
}
