// Package media derives object keys for guest uploads and prepares photos
// before they are stored.
package media

import (
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/iliyamo/wedding-guests/internal/model"
)

// Fallback extensions when the declared MIME type says nothing useful.
const (
	FallbackPhotoExt = "jpg"
	FallbackAudioExt = "mp3"
)

// Extension infers a file extension (without dot) from the declared MIME
// type of an upload.  The common wedding formats are matched first; any
// other registered type is resolved through mimetype; the fallback is used
// when neither knows the type.
func Extension(contentType, fallback string) string {
	t := strings.ToLower(strings.TrimSpace(contentType))
	switch {
	case t == "":
		return fallback
	case strings.Contains(t, "png"):
		return "png"
	case strings.Contains(t, "webp"):
		return "webp"
	case strings.Contains(t, "jpeg"), strings.Contains(t, "jpg"):
		return "jpg"
	case strings.Contains(t, "mpeg"), strings.Contains(t, "mp3"):
		return "mp3"
	case strings.Contains(t, "wav"):
		return "wav"
	}

	if i := strings.IndexByte(t, ';'); i >= 0 {
		t = strings.TrimSpace(t[:i])
	}
	if m := mimetype.Lookup(t); m != nil {
		if ext := strings.TrimPrefix(m.Extension(), "."); ext != "" {
			return ext
		}
	}
	return fallback
}

// Key returns the deterministic object key of a slot upload: `{id}.{ext}`
// for the photo and `{id}_{lang}.{ext}` for audio.  Re-uploading the same
// slot with the same type lands on the same key.
func Key(guestID uint64, slot model.Slot, contentType string) string {
	if slot.IsAudio() {
		return fmt.Sprintf("%d_%s.%s", guestID, slot.Lang(), Extension(contentType, FallbackAudioExt))
	}
	return fmt.Sprintf("%d.%s", guestID, Extension(contentType, FallbackPhotoExt))
}
