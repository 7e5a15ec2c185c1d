// Package client is the HTTP client of the guest directory API.  The gallery
// loader and the upload command use it.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"
	"strings"
	"time"

	"github.com/gojektech/heimdall/v6/httpclient"

	"github.com/iliyamo/wedding-guests/internal/audio"
	"github.com/iliyamo/wedding-guests/internal/model"
)

// Options tune the HTTP client.  Nothing is retried: a failed guest list
// settles the gallery and a submission is not idempotent for new guests.
type Options struct {
	Timeout     time.Duration
	AdminSecret string
}

// GuestAPI talks to one deployment of the directory.
type GuestAPI struct {
	base   string
	http   *httpclient.Client
	secret string
}

// New builds a client for the API rooted at base.
func New(base string, opts Options) *GuestAPI {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	return &GuestAPI{
		base: strings.TrimRight(base, "/"),
		http: httpclient.NewClient(
			httpclient.WithHTTPTimeout(opts.Timeout),
			httpclient.WithRetryCount(0),
		),
		secret: opts.AdminSecret,
	}
}

// do sends req once.  The heimdall client reports a 5xx answer as an error
// next to the response; the response wins so callers see the status.
func (a *GuestAPI) do(req *http.Request) (*http.Response, error) {
	res, err := a.http.Do(req)
	if res != nil {
		return res, nil
	}
	return nil, err
}

// Relation is the bilingual relation text of a guest.
type Relation struct {
	CS string `json:"cs"`
	EN string `json:"en"`
}

// About is the optional bilingual biography.
type About struct {
	CS *string `json:"cs"`
	EN *string `json:"en"`
}

// Guest is a guest as the gallery sees it.  Audio fields keep the shape the
// server sent so older deployments serving a single URL still work.
type Guest struct {
	ID            uint64      `json:"id"`
	Number        int         `json:"number"`
	Name          string      `json:"name"`
	Relation      Relation    `json:"relation"`
	About         About       `json:"about"`
	PhotoURL      *string     `json:"photoUrl"`
	AudioOfficial audio.Track `json:"audioOfficial"`
	AudioFunny    audio.Track `json:"audioFunny"`
}

// StatusError is a non-2xx answer of the API.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("guest api: status %d: %s", e.Status, e.Body)
}

// Guests fetches the guest list.
func (a *GuestAPI) Guests(ctx context.Context) ([]Guest, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.base+"/guests", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-store")

	res, err := a.do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}
	if res.StatusCode >= http.StatusBadRequest {
		return nil, &StatusError{Status: res.StatusCode, Body: string(body)}
	}

	var payload struct {
		Items []Guest `json:"items"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode guests: %w", err)
	}
	if payload.Items == nil {
		payload.Items = []Guest{}
	}
	return payload.Items, nil
}

// File is one media attachment of a submission.
type File struct {
	Slot        model.Slot
	Filename    string
	ContentType string
	Data        []byte
}

// Submission mirrors the admin form.  ID zero creates a guest.
type Submission struct {
	ID         uint64
	Number     int
	Name       string
	RelationCS string
	RelationEN string
	AboutCS    string
	AboutEN    string
	Files      []File
}

// SubmitResult is the decoded answer of POST /admin/guest.
type SubmitResult struct {
	Status int
	OK     bool
	ID     uint64
	Error  string
	Step   string
	Raw    string

	RetryAfter int // seconds, set when the admin rate limit was hit
}

// StatusText renders the result the way the admin page shows it.
func (r SubmitResult) StatusText() string {
	if r.OK {
		return fmt.Sprintf("Saved (id: %d)", r.ID)
	}
	msg := r.Error
	if msg == "" {
		msg = r.Raw
	}
	s := fmt.Sprintf("Error %d: %s", r.Status, msg)
	if r.Step != "" {
		s += fmt.Sprintf(" (step: %s)", r.Step)
	}
	if r.RetryAfter > 0 {
		s += fmt.Sprintf(" (retry in %ds)", r.RetryAfter)
	}
	return s
}

// Submit posts a submission.  Empty text fields are left out of the form
// like the admin page does.  A non-2xx answer is not an error; inspect the
// result.
func (a *GuestAPI) Submit(ctx context.Context, s Submission) (SubmitResult, error) {
	body, contentType, err := encodeSubmission(s)
	if err != nil {
		return SubmitResult{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.base+"/admin/guest", body)
	if err != nil {
		return SubmitResult{}, err
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("x-admin-secret", a.secret)

	res, err := a.do(req)
	if err != nil {
		return SubmitResult{}, err
	}
	defer res.Body.Close()
	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return SubmitResult{}, err
	}

	out := SubmitResult{Status: res.StatusCode, Raw: strings.TrimSpace(string(raw))}
	var payload struct {
		OK    bool   `json:"ok"`
		ID    uint64 `json:"id"`
		Error string `json:"error"`
		Step  string `json:"step"`

		RetryAfter int `json:"retry_after"`
	}
	if json.Unmarshal(raw, &payload) == nil {
		out.ID, out.Error, out.Step = payload.ID, payload.Error, payload.Step
		out.RetryAfter = payload.RetryAfter
		out.OK = res.StatusCode < http.StatusMultipleChoices && res.StatusCode >= http.StatusOK
	}
	return out, nil
}

func encodeSubmission(s Submission) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	number := ""
	if s.Number != 0 {
		number = strconv.Itoa(s.Number)
	}
	fields := []struct{ k, v string }{
		{"number", number},
		{"name", s.Name},
		{"relation_cs", s.RelationCS},
		{"relation_en", s.RelationEN},
		{"about_cs", s.AboutCS},
		{"about_en", s.AboutEN},
	}
	if s.ID != 0 {
		fields = append([]struct{ k, v string }{{"id", strconv.FormatUint(s.ID, 10)}}, fields...)
	}
	for _, f := range fields {
		if f.v == "" {
			continue
		}
		if err := w.WriteField(f.k, f.v); err != nil {
			return nil, "", err
		}
	}
	for _, f := range s.Files {
		if len(f.Data) == 0 {
			continue
		}
		h := textproto.MIMEHeader{}
		name := f.Filename
		if name == "" {
			name = string(f.Slot)
		}
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, string(f.Slot), name))
		if f.ContentType != "" {
			h.Set("Content-Type", f.ContentType)
		}
		pw, err := w.CreatePart(h)
		if err != nil {
			return nil, "", err
		}
		if _, err := pw.Write(f.Data); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}
