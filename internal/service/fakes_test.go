package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/iliyamo/wedding-guests/internal/model"
	"github.com/iliyamo/wedding-guests/internal/queue"
	"github.com/iliyamo/wedding-guests/internal/repository"
)

type memStore struct {
	mu      sync.Mutex
	rows    map[uint64]*model.Guest
	nextID  uint64
	listErr error
	failOn  string
}

func newMemStore() *memStore {
	return &memStore{rows: map[uint64]*model.Guest{}, nextID: 1}
}

func (m *memStore) ListOrdered(ctx context.Context) ([]*model.Guest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]*model.Guest, 0, len(m.rows))
	for _, g := range m.rows {
		cp := *g
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Number == out[j].Number {
			return out[i].ID < out[j].ID
		}
		return out[i].Number < out[j].Number
	})
	return out, nil
}

func (m *memStore) Create(ctx context.Context, g *model.Guest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failOn == "create" {
		return errors.New("duplicate key value violates unique constraint")
	}
	g.ID = m.nextID
	m.nextID++
	cp := *g
	m.rows[g.ID] = &cp
	return nil
}

func (m *memStore) UpdateText(ctx context.Context, g *model.Guest, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[g.ID]
	if !ok {
		return repository.ErrGuestNotFound
	}
	row.Number, row.Name = g.Number, g.Name
	row.RelationCS, row.RelationEN = g.RelationCS, g.RelationEN
	row.AboutCS, row.AboutEN = g.AboutCS, g.AboutEN
	row.UpdatedAt = at
	return nil
}

func (m *memStore) UpdatePaths(ctx context.Context, id uint64, paths map[model.Slot]string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failOn == "paths" {
		return errors.New("connection reset by peer")
	}
	row, ok := m.rows[id]
	if !ok {
		return repository.ErrGuestNotFound
	}
	for s, k := range paths {
		row.SetPath(s, k)
	}
	row.UpdatedAt = at
	return nil
}

func (m *memStore) get(id uint64) *model.Guest {
	m.mu.Lock()
	defer m.mu.Unlock()
	if g, ok := m.rows[id]; ok {
		cp := *g
		return &cp
	}
	return nil
}

type putCall struct {
	bucket, key, contentType string
	size                     int
}

type memObjects struct {
	mu   sync.Mutex
	puts []putCall
	err  error
	objs map[string][]byte
}

func (o *memObjects) Put(ctx context.Context, bucket, key, contentType string, body []byte) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.err != nil {
		return o.err
	}
	if o.objs == nil {
		o.objs = map[string][]byte{}
	}
	o.objs[bucket+"/"+key] = body
	o.puts = append(o.puts, putCall{bucket, key, contentType, len(body)})
	return nil
}

type memPublisher struct {
	events []queue.GuestChangedEvent
	err    error
}

func (p *memPublisher) PublishGuestChanged(ctx context.Context, ev queue.GuestChangedEvent) error {
	p.events = append(p.events, ev)
	return p.err
}
