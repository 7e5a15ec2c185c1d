// Package repository contains data access logic separated from HTTP handlers.
// This file defines the guest repository.  Queries are written with `?`
// placeholders and rebound to `$n` when the backend is PostgreSQL.
package repository

import (
	"context"      // context allows passing deadlines and cancellation signals to DB operations
	"database/sql" // sql provides generic database operations and drivers
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/iliyamo/wedding-guests/internal/model"
)

const guestColumns = `id, number, name, relation_cs, relation_en, about_cs, about_en,
	photo_path, audio_official_cs_path, audio_official_en_path,
	audio_funny_cs_path, audio_funny_en_path, updated_at`

// GuestRepo encapsulates all database queries related to guests.
type GuestRepo struct {
	db     *sql.DB
	driver string
}

// NewGuestRepo constructs a GuestRepo for the given driver name
// ("mysql" or "postgres").
func NewGuestRepo(db *sql.DB, driver string) *GuestRepo {
	return &GuestRepo{db: db, driver: driver}
}

// ListOrdered returns every guest ordered by ascending number.  Ties are
// broken by id so the order is stable.
func (r *GuestRepo) ListOrdered(ctx context.Context) ([]*model.Guest, error) {
	q := "SELECT " + guestColumns + " FROM guests ORDER BY number ASC, id ASC"
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Guest
	for rows.Next() {
		g, err := scanGuest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Create inserts the text columns of g and stores the generated id in g.ID.
func (r *GuestRepo) Create(ctx context.Context, g *model.Guest) error {
	args := []interface{}{g.Number, g.Name, g.RelationCS, g.RelationEN, nullString(g.AboutCS), nullString(g.AboutEN)}
	const qInsert = "INSERT INTO guests (number, name, relation_cs, relation_en, about_cs, about_en) VALUES (?, ?, ?, ?, ?, ?)"

	if r.driver == "postgres" {
		var id int64
		if err := r.db.QueryRowContext(ctx, r.rebind(qInsert+" RETURNING id"), args...).Scan(&id); err != nil {
			return err
		}
		g.ID = uint64(id)
		return nil
	}

	res, err := r.db.ExecContext(ctx, qInsert, args...)
	if err != nil {
		return err // propagate DB errors to the caller
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	g.ID = uint64(id)
	return nil
}

// UpdateText overwrites the text columns of an existing guest and sets
// updated_at.  Media path columns are left untouched.
func (r *GuestRepo) UpdateText(ctx context.Context, g *model.Guest, at time.Time) error {
	const q = `UPDATE guests
	           SET number = ?, name = ?, relation_cs = ?, relation_en = ?, about_cs = ?, about_en = ?, updated_at = ?
	           WHERE id = ?`
	res, err := r.db.ExecContext(ctx, r.rebind(q),
		g.Number, g.Name, g.RelationCS, g.RelationEN, nullString(g.AboutCS), nullString(g.AboutEN), at, g.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrGuestNotFound
	}
	return nil
}

// UpdatePaths patches the given media path columns and updated_at.  Columns
// of slots missing from paths keep their value.
func (r *GuestRepo) UpdatePaths(ctx context.Context, id uint64, paths map[model.Slot]string, at time.Time) error {
	if len(paths) == 0 {
		return nil
	}
	slots := make([]model.Slot, 0, len(paths))
	for s := range paths {
		slots = append(slots, s)
	}
	sort.Slice(slots, func(i, j int) bool { return slots[i] < slots[j] })

	sets := make([]string, 0, len(slots)+1)
	args := make([]interface{}, 0, len(slots)+2)
	for _, s := range slots {
		sets = append(sets, s.Column()+" = ?")
		args = append(args, paths[s])
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, at, id)

	q := "UPDATE guests SET " + strings.Join(sets, ", ") + " WHERE id = ?"
	res, err := r.db.ExecContext(ctx, r.rebind(q), args...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrGuestNotFound
	}
	return nil
}

// rebind rewrites `?` placeholders to `$1..$n` for PostgreSQL.
func (r *GuestRepo) rebind(q string) string {
	if r.driver != "postgres" {
		return q
	}
	var b strings.Builder
	n := 0
	for i := 0; i < len(q); i++ {
		if q[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(q[i])
	}
	return b.String()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanGuest(s rowScanner) (*model.Guest, error) {
	var (
		g                              model.Guest
		aboutCS, aboutEN, photo        sql.NullString
		offCS, offEN, funnyCS, funnyEN sql.NullString
	)
	if err := s.Scan(&g.ID, &g.Number, &g.Name, &g.RelationCS, &g.RelationEN, &aboutCS, &aboutEN,
		&photo, &offCS, &offEN, &funnyCS, &funnyEN, &g.UpdatedAt); err != nil {
		return nil, err
	}
	g.AboutCS = stringPtr(aboutCS)
	g.AboutEN = stringPtr(aboutEN)
	g.PhotoPath = stringPtr(photo)
	g.AudioOfficialCSPath = stringPtr(offCS)
	g.AudioOfficialENPath = stringPtr(offEN)
	g.AudioFunnyCSPath = stringPtr(funnyCS)
	g.AudioFunnyENPath = stringPtr(funnyEN)
	return &g, nil
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	s := ns.String
	return &s
}

func nullString(s *string) sql.NullString {
	if s == nil || *s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
