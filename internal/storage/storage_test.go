package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPublicURL(t *testing.T) {
	base := "https://wedding.example.co/storage/v1/object/public/"
	key := "12_cs.mp3"
	u := PublicURL(base, "audio-official", &key)
	if assert.NotNil(t, u) {
		assert.Equal(t, "https://wedding.example.co/storage/v1/object/public/audio-official/12_cs.mp3", *u)
	}

	odd := "family/Jana Nováková.jpg"
	u = PublicURL(base, "photos", &odd)
	if assert.NotNil(t, u) {
		assert.Equal(t, "https://wedding.example.co/storage/v1/object/public/photos/family%2FJana%20Nov%C3%A1kov%C3%A1.jpg", *u)
	}

	empty := ""
	assert.Nil(t, PublicURL(base, "photos", &empty))
	assert.Nil(t, PublicURL(base, "photos", nil))
}

func TestPublicURLEscapesReservedMarks(t *testing.T) {
	cases := map[string]string{
		"a+b&c=d.jpg":     "a%2Bb%26c%3Dd.jpg",
		"x:y@z$1,2;3.mp3": "x%3Ay%40z%241%2C2%3B3.mp3",
		"it's (1)*!~.wav": "it's%20(1)*!~.wav",
	}
	for key, want := range cases {
		k := key
		u := PublicURL("https://wedding.example.co/storage/v1/object/public", "audio-funny", &k)
		if assert.NotNil(t, u, key) {
			assert.Equal(t, "https://wedding.example.co/storage/v1/object/public/audio-funny/"+want, *u, key)
		}
	}
}
