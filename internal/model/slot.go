package model

// Lang is a UI language of the directory.
type Lang string

const (
    LangCS Lang = "cs"
    LangEN Lang = "en"
)

// Other returns the fallback language.
func (l Lang) Other() Lang {
    if l == LangCS {
        return LangEN
    }
    return LangCS
}

// Valid reports whether l is one of the supported languages.
func (l Lang) Valid() bool { return l == LangCS || l == LangEN }

// Object storage buckets.
const (
    BucketPhotos        = "photos"
    BucketAudioOfficial = "audio-official"
    BucketAudioFunny    = "audio-funny"
)

// Slot names one media attachment of a guest.  The value doubles as the
// multipart field name of the admin submission.
type Slot string

const (
    SlotPhoto      Slot = "photo"
    SlotOfficialCS Slot = "audio_official_cs"
    SlotOfficialEN Slot = "audio_official_en"
    SlotFunnyCS    Slot = "audio_funny_cs"
    SlotFunnyEN    Slot = "audio_funny_en"
)

// Slots lists every media slot in upload order.
var Slots = []Slot{SlotPhoto, SlotOfficialCS, SlotOfficialEN, SlotFunnyCS, SlotFunnyEN}

// IsAudio reports whether the slot holds an audio clip.
func (s Slot) IsAudio() bool { return s != SlotPhoto }

// Bucket returns the bucket objects of this slot live in.
func (s Slot) Bucket() string {
    switch s {
    case SlotOfficialCS, SlotOfficialEN:
        return BucketAudioOfficial
    case SlotFunnyCS, SlotFunnyEN:
        return BucketAudioFunny
    }
    return BucketPhotos
}

// Lang returns the language of an audio slot; the photo has none.
func (s Slot) Lang() Lang {
    switch s {
    case SlotOfficialCS, SlotFunnyCS:
        return LangCS
    case SlotOfficialEN, SlotFunnyEN:
        return LangEN
    }
    return ""
}

// Column returns the guests column storing the object key.
func (s Slot) Column() string {
    if s == SlotPhoto {
        return "photo_path"
    }
    return string(s) + "_path"
}
