package model

import (
    "testing"

    "github.com/stretchr/testify/assert"
)

func TestSlotMapping(t *testing.T) {
    cases := []struct {
        slot   Slot
        bucket string
        column string
        lang   Lang
    }{
        {SlotPhoto, BucketPhotos, "photo_path", ""},
        {SlotOfficialCS, BucketAudioOfficial, "audio_official_cs_path", LangCS},
        {SlotOfficialEN, BucketAudioOfficial, "audio_official_en_path", LangEN},
        {SlotFunnyCS, BucketAudioFunny, "audio_funny_cs_path", LangCS},
        {SlotFunnyEN, BucketAudioFunny, "audio_funny_en_path", LangEN},
    }
    for _, tc := range cases {
        assert.Equal(t, tc.bucket, tc.slot.Bucket(), tc.slot)
        assert.Equal(t, tc.column, tc.slot.Column(), tc.slot)
        assert.Equal(t, tc.lang, tc.slot.Lang(), tc.slot)
    }
}

func TestGuestPathsAreIndependent(t *testing.T) {
    g := &Guest{ID: 3}
    g.SetPath(SlotFunnyEN, "3_en.mp3")

    assert.Equal(t, "3_en.mp3", *g.Path(SlotFunnyEN))
    for _, s := range []Slot{SlotPhoto, SlotOfficialCS, SlotOfficialEN, SlotFunnyCS} {
        assert.Nil(t, g.Path(s), s)
    }
}

func TestLangOther(t *testing.T) {
    assert.Equal(t, LangEN, LangCS.Other())
    assert.Equal(t, LangCS, LangEN.Other())
    assert.False(t, Lang("de").Valid())
}
