// Package audio resolves the bilingual audio clips of a guest for playback.
//
// A clip field arrives in one of three shapes: absent, a single URL shared
// by both languages (the legacy form) or a cs/en pair.  Track keeps the
// shape explicit; Pair is the normalised form used for playback.
package audio

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/iliyamo/wedding-guests/internal/model"
)

// ErrNoAudio is returned by Pick when neither language has a clip.
var ErrNoAudio = errors.New("no audio for this language")

// Kind tags the shape of a Track.
type Kind int

const (
	KindNone Kind = iota
	KindSingle
	KindPair
)

// Track is a clip field in its original shape.
type Track struct {
	kind Kind
	url  string
	cs   *string
	en   *string
}

// SingleURL builds a legacy single-language track.  An empty URL is absent.
func SingleURL(u string) Track {
	if u == "" {
		return Track{}
	}
	return Track{kind: KindSingle, url: u}
}

// BilingualPair builds a track from per-language URLs; either may be nil.
func BilingualPair(cs, en *string) Track {
	cs, en = clean(cs), clean(en)
	if cs == nil && en == nil {
		return Track{}
	}
	return Track{kind: KindPair, cs: cs, en: en}
}

// Kind reports the shape of the track.
func (t Track) Kind() Kind { return t.kind }

// Normalize returns the pair form.  A missing language borrows the other
// one; a single URL serves both.
func (t Track) Normalize() Pair {
	switch t.kind {
	case KindSingle:
		u := t.url
		return Pair{CS: &u, EN: &u}
	case KindPair:
		p := Pair{CS: t.cs, EN: t.en}
		if p.CS == nil {
			p.CS = p.EN
		}
		if p.EN == nil {
			p.EN = p.CS
		}
		return p
	}
	return Pair{}
}

// UnmarshalJSON accepts null, a string or an object with cs (or cz) and en
// keys.  Anything else decodes as an absent track.
func (t *Track) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*t = Track{}
		return nil
	}
	switch b[0] {
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return fmt.Errorf("audio track: %w", err)
		}
		*t = SingleURL(s)
		return nil
	case '{':
		var raw map[string]json.RawMessage
		if err := json.Unmarshal(b, &raw); err != nil {
			return fmt.Errorf("audio track: %w", err)
		}
		cs := stringField(raw, "cs")
		if cs == nil {
			cs = stringField(raw, "cz")
		}
		*t = BilingualPair(cs, stringField(raw, "en"))
		return nil
	}
	*t = Track{}
	return nil
}

// MarshalJSON writes the normalised pair.
func (t Track) MarshalJSON() ([]byte, error) {
	if t.kind == KindNone {
		return []byte("null"), nil
	}
	return json.Marshal(t.Normalize())
}

// Pair is a normalised clip: nil means no clip in that language.
type Pair struct {
	CS *string `json:"cs"`
	EN *string `json:"en"`
}

// Get returns the clip of exactly one language.
func (p Pair) Get(lang model.Lang) *string {
	if lang == model.LangEN {
		return p.EN
	}
	return p.CS
}

// Pick selects the clip for the active UI language, falling back to the
// other language.  ErrNoAudio is returned when both are missing.
func (p Pair) Pick(lang model.Lang) (string, error) {
	if u := p.Get(lang); u != nil {
		return *u, nil
	}
	if u := p.Get(lang.Other()); u != nil {
		return *u, nil
	}
	return "", ErrNoAudio
}

// NoAudioText is the notice shown instead of a player.
func NoAudioText(lang model.Lang) string {
	if lang == model.LangEN {
		return "No audio uploaded for this language yet."
	}
	return "Pro tento jazyk zatím není audio nahrané."
}

func stringField(raw map[string]json.RawMessage, key string) *string {
	v, ok := raw[key]
	if !ok {
		return nil
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return nil
	}
	return clean(&s)
}

func clean(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
