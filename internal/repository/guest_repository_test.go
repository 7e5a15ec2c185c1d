package repository

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRebind(t *testing.T) {
	pg := &GuestRepo{driver: "postgres"}
	assert.Equal(t, "UPDATE guests SET a = $1, b = $2 WHERE id = $3", pg.rebind("UPDATE guests SET a = ?, b = ? WHERE id = ?"))

	my := &GuestRepo{driver: "mysql"}
	assert.Equal(t, "SELECT 1 FROM guests WHERE id = ?", my.rebind("SELECT 1 FROM guests WHERE id = ?"))
}

type fakeRow struct {
	vals []interface{}
}

func (f fakeRow) Scan(dest ...interface{}) error {
	for i, d := range dest {
		switch p := d.(type) {
		case *uint64:
			*p = f.vals[i].(uint64)
		case *int:
			*p = f.vals[i].(int)
		case *string:
			*p = f.vals[i].(string)
		case *sql.NullString:
			if f.vals[i] == nil {
				*p = sql.NullString{}
			} else {
				*p = sql.NullString{String: f.vals[i].(string), Valid: true}
			}
		case *time.Time:
			*p = f.vals[i].(time.Time)
		}
	}
	return nil
}

func TestScanGuestMapsNullColumns(t *testing.T) {
	at := time.Date(2026, 6, 20, 14, 0, 0, 0, time.UTC)
	row := fakeRow{vals: []interface{}{
		uint64(4), 12, "Babička Jana", "babička nevěsty", "bride's grandmother",
		"Miluje zahradu.", nil,
		"4.jpg", "4_cs.mp3", nil, "", nil,
		at,
	}}

	g, err := scanGuest(row)
	require.NoError(t, err)
	assert.Equal(t, uint64(4), g.ID)
	assert.Equal(t, 12, g.Number)
	assert.Equal(t, "Miluje zahradu.", *g.AboutCS)
	assert.Nil(t, g.AboutEN)
	assert.Equal(t, "4.jpg", *g.PhotoPath)
	assert.Equal(t, "4_cs.mp3", *g.AudioOfficialCSPath)
	assert.Nil(t, g.AudioOfficialENPath)
	assert.Nil(t, g.AudioFunnyCSPath, "empty strings read as absent")
	assert.Nil(t, g.AudioFunnyENPath)
	assert.Equal(t, at, g.UpdatedAt)
}

func TestNullString(t *testing.T) {
	empty := ""
	txt := "hello"
	assert.False(t, nullString(nil).Valid)
	assert.False(t, nullString(&empty).Valid)
	assert.Equal(t, sql.NullString{String: "hello", Valid: true}, nullString(&txt))
}
