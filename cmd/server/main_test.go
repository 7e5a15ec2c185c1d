package main

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/wedding-guests/internal/config"
	"github.com/iliyamo/wedding-guests/internal/model"
	"github.com/iliyamo/wedding-guests/internal/queue"
	"github.com/iliyamo/wedding-guests/internal/service"
)

func TestFlagNamesAreDistinct(t *testing.T) {
	seen := map[string]bool{}
	for _, s := range model.Slots {
		name := flagName(s)
		assert.False(t, seen[name], name)
		seen[name] = true
	}
	assert.Len(t, seen, len(model.Slots))
}

func TestReadFileDetectsContentType(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))))
	path := filepath.Join(t.TempDir(), "guest.bin")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	f, err := readFile(model.SlotPhoto, path)
	require.NoError(t, err)
	assert.Equal(t, "image/png", f.ContentType)
	assert.Equal(t, "guest.bin", f.Filename)

	_, err = readFile(model.SlotPhoto, filepath.Join(t.TempDir(), "missing.jpg"))
	assert.Error(t, err)
}

func TestChangePublisherAlwaysPurges(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()
	cacheCfg := config.CacheConfig{Prefix: "guests-cache"}

	inline, ok := changePublisher(rdb, cacheCfg, false).(*queue.Handler)
	require.True(t, ok)
	inline.LogPath = filepath.Join(t.TempDir(), "guests.log")
	require.NoError(t, mr.Set("guests-cache:abc", "x"))
	require.NoError(t, inline.PublishGuestChanged(context.Background(), queue.GuestChangedEvent{GuestID: 1}))
	assert.False(t, mr.Exists("guests-cache:abc"))

	brokered, ok := changePublisher(rdb, cacheCfg, true).(service.Publishers)
	require.True(t, ok)
	require.Len(t, brokered, 2)
	assert.IsType(t, &service.RabbitPublisher{}, brokered[1])

	require.NoError(t, mr.Set("guests-cache:def", "x"))
	require.NoError(t, brokered[0].PublishGuestChanged(context.Background(), queue.GuestChangedEvent{GuestID: 1}))
	assert.False(t, mr.Exists("guests-cache:def"), "purged without waiting for the consumer")
}
