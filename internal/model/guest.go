package model

import "time"

// Guest represents one wedding attendee as stored in the `guests` table.
// Number, Name, RelationCS and RelationEN are always populated; every other
// column may be NULL.  The five *Path fields hold object keys inside the
// bucket of their slot (see Slot.Bucket).
//
// Fields:
//  ID         – primary key, assigned by the backend.
//  Number     – display ordering key.
//  Name       – guest name, not translated.
//  RelationCS – relation to the couple, Czech.
//  RelationEN – relation to the couple, English.
//  AboutCS    – optional short biography, Czech.
//  AboutEN    – optional short biography, English.
//  UpdatedAt  – set on every mutating write.
type Guest struct {
    ID                  uint64    // guests.id
    Number              int       // guests.number
    Name                string    // guests.name
    RelationCS          string    // guests.relation_cs
    RelationEN          string    // guests.relation_en
    AboutCS             *string   // guests.about_cs
    AboutEN             *string   // guests.about_en
    PhotoPath           *string   // guests.photo_path
    AudioOfficialCSPath *string   // guests.audio_official_cs_path
    AudioOfficialENPath *string   // guests.audio_official_en_path
    AudioFunnyCSPath    *string   // guests.audio_funny_cs_path
    AudioFunnyENPath    *string   // guests.audio_funny_en_path
    UpdatedAt           time.Time // guests.updated_at
}

// Path returns the stored object key of a media slot, or nil.
func (g *Guest) Path(s Slot) *string {
    switch s {
    case SlotPhoto:
        return g.PhotoPath
    case SlotOfficialCS:
        return g.AudioOfficialCSPath
    case SlotOfficialEN:
        return g.AudioOfficialENPath
    case SlotFunnyCS:
        return g.AudioFunnyCSPath
    case SlotFunnyEN:
        return g.AudioFunnyENPath
    }
    return nil
}

// SetPath stores an object key for a media slot.  Unknown slots are ignored.
func (g *Guest) SetPath(s Slot, key string) {
    k := key
    switch s {
    case SlotPhoto:
        g.PhotoPath = &k
    case SlotOfficialCS:
        g.AudioOfficialCSPath = &k
    case SlotOfficialEN:
        g.AudioOfficialENPath = &k
    case SlotFunnyCS:
        g.AudioFunnyCSPath = &k
    case SlotFunnyEN:
        g.AudioFunnyENPath = &k
    }
}
