// Package gallery is the view model of the guest gallery: the card grid,
// the loading indicator and the detail overlay of one guest.
package gallery

import (
	"context"
	"errors"
	"sync"

	"github.com/iliyamo/wedding-guests/internal/audio"
	"github.com/iliyamo/wedding-guests/internal/client"
	"github.com/iliyamo/wedding-guests/internal/logger"
	"github.com/iliyamo/wedding-guests/internal/model"
)

// Loader fetches the guest list.
type Loader interface {
	Guests(ctx context.Context) ([]client.Guest, error)
}

// NetworkError reports a failed load.  The gallery shows an empty list.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string { return "load guests: " + e.Err.Error() }

func (e *NetworkError) Unwrap() error { return e.Err }

// Overlay is the detail overlay state: closed, or open on one guest.
type Overlay struct {
	open    bool
	guestID uint64
}

// Closed is the overlay with nothing shown.
func Closed() Overlay { return Overlay{} }

// Open is the overlay showing guestID.
func Open(guestID uint64) Overlay { return Overlay{open: true, guestID: guestID} }

// IsOpen reports whether a guest is shown.
func (o Overlay) IsOpen() bool { return o.open }

// GuestID returns the shown guest.
func (o Overlay) GuestID() (uint64, bool) { return o.guestID, o.open }

// Model holds the gallery state.  It is safe for concurrent use.
type Model struct {
	mu      sync.RWMutex
	lang    model.Lang
	loading bool
	guests  []client.Guest
	overlay Overlay
}

// New returns a model that is loading and shows lang.
func New(lang model.Lang) *Model {
	if !lang.Valid() {
		lang = model.LangCS
	}
	return &Model{lang: lang, loading: true, guests: []client.Guest{}}
}

// Load fetches the guests once.  A failure leaves an empty list and is
// returned as *NetworkError; it is not retried.  Loading is false afterwards
// either way.
func (m *Model) Load(ctx context.Context, l Loader) error {
	guests, err := l.Guests(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.loading = false
	if err != nil {
		m.guests = []client.Guest{}
		logger.L().Warnw("gallery load failed", "error", err)
		return &NetworkError{Err: err}
	}
	if guests == nil {
		guests = []client.Guest{}
	}
	m.guests = guests
	return nil
}

// Loading reports whether the first load is still running.
func (m *Model) Loading() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loading
}

// Guests returns the loaded guests in server order.
func (m *Model) Guests() []client.Guest {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]client.Guest, len(m.guests))
	copy(out, m.guests)
	return out
}

// Lang returns the active UI language.
func (m *Model) Lang() model.Lang {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lang
}

// SetLang switches the UI language.  Unknown languages are ignored.
func (m *Model) SetLang(l model.Lang) {
	if !l.Valid() {
		return
	}
	m.mu.Lock()
	m.lang = l
	m.mu.Unlock()
}

// ErrUnknownGuest is returned by OpenGuest for an id not in the list.
var ErrUnknownGuest = errors.New("guest not in gallery")

// OpenGuest shows the detail of guestID.
func (m *Model) OpenGuest(guestID uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.find(guestID); !ok {
		return ErrUnknownGuest
	}
	m.overlay = Open(guestID)
	return nil
}

// Close hides the detail.
func (m *Model) Close() {
	m.mu.Lock()
	m.overlay = Closed()
	m.mu.Unlock()
}

// Overlay returns the overlay state.
func (m *Model) Overlay() Overlay {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.overlay
}

func (m *Model) find(id uint64) (client.Guest, bool) {
	for _, g := range m.guests {
		if g.ID == id {
			return g, true
		}
	}
	return client.Guest{}, false
}

// Card is one cell of the grid.
type Card struct {
	ID       uint64
	Number   int
	Name     string
	Relation string
	PhotoURL *string
}

// Cards renders the grid in the active language.
func (m *Model) Cards() []Card {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Card, 0, len(m.guests))
	for _, g := range m.guests {
		out = append(out, Card{
			ID:       g.ID,
			Number:   g.Number,
			Name:     g.Name,
			Relation: relation(g, m.lang),
			PhotoURL: g.PhotoURL,
		})
	}
	return out
}

// EmptyText is shown instead of the grid when no guest exists.
func (m *Model) EmptyText() string {
	if m.Lang() == model.LangEN {
		return "No guests yet."
	}
	return "Zatím žádní hosté."
}

// Clip is one labelled audio player of the detail.  URL is empty when no
// clip exists in either language; Notice then holds the text shown instead.
type Clip struct {
	Label  string
	URL    string
	Notice string
}

// Detail is the overlay content.
type Detail struct {
	Title      string
	Name       string
	Relation   string
	About      string
	PhotoURL   *string
	Official   Clip
	Funny      Clip
	CloseLabel string
}

// Detail renders the open guest.  ok is false while the overlay is closed.
func (m *Model) Detail() (Detail, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, open := m.overlay.GuestID()
	if !open {
		return Detail{}, false
	}
	g, found := m.find(id)
	if !found {
		return Detail{}, false
	}
	return detailOf(g, m.lang), true
}

func detailOf(g client.Guest, lang model.Lang) Detail {
	d := Detail{
		Title:      pick(lang, "Profil hosta", "Guest detail"),
		Name:       g.Name,
		Relation:   relation(g, lang),
		PhotoURL:   g.PhotoURL,
		Official:   clip(g.AudioOfficial, lang, pick(lang, "Oficiální intro", "Official Intro")),
		Funny:      clip(g.AudioFunny, lang, pick(lang, "Vtipné intro", "Funny Intro")),
		CloseLabel: pick(lang, "Zavřít", "Close"),
	}
	about := g.About.CS
	if lang == model.LangEN {
		about = g.About.EN
	}
	if about != nil {
		d.About = *about
	}
	return d
}

func clip(t audio.Track, lang model.Lang, label string) Clip {
	u, err := t.Normalize().Pick(lang)
	if err != nil {
		return Clip{Label: label, Notice: audio.NoAudioText(lang)}
	}
	return Clip{Label: label, URL: u}
}

func relation(g client.Guest, lang model.Lang) string {
	if lang == model.LangEN {
		return g.Relation.EN
	}
	return g.Relation.CS
}

func pick(lang model.Lang, cs, en string) string {
	if lang == model.LangEN {
		return en
	}
	return cs
}
