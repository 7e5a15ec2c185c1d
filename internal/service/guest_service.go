// Package service holds the guest directory use cases: mapping stored rows
// to the bilingual view served to the gallery, and the admin write that
// stores text fields and media.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/iliyamo/wedding-guests/internal/logger"
	"github.com/iliyamo/wedding-guests/internal/media"
	"github.com/iliyamo/wedding-guests/internal/model"
	"github.com/iliyamo/wedding-guests/internal/queue"
	"github.com/iliyamo/wedding-guests/internal/repository"
)

// GuestStore is the relational side of the backend.
type GuestStore interface {
	ListOrdered(ctx context.Context) ([]*model.Guest, error)
	Create(ctx context.Context, g *model.Guest) error
	UpdateText(ctx context.Context, g *model.Guest, at time.Time) error
	UpdatePaths(ctx context.Context, id uint64, paths map[model.Slot]string, at time.Time) error
}

// ObjectStore is the bucket side of the backend.  Put replaces any object
// already stored under the key.
type ObjectStore interface {
	Put(ctx context.Context, bucket, key, contentType string, body []byte) error
}

// EventPublisher announces stored changes.
type EventPublisher interface {
	PublishGuestChanged(ctx context.Context, ev queue.GuestChangedEvent) error
}

// Options tune the admin write.
type Options struct {
	PublicBase     string        // public object URL base, see storage.PublicURL
	PhotoMaxDim    int           // downscale photos above this size; 0 disables
	PublishTimeout time.Duration // bound on announcing a change; default 2s
}

// Publishers fans one event out to several publishers.  Every publisher is
// called; the errors are joined.
type Publishers []EventPublisher

// PublishGuestChanged implements EventPublisher.
func (ps Publishers) PublishGuestChanged(ctx context.Context, ev queue.GuestChangedEvent) error {
	var errs []error
	for _, p := range ps {
		if err := p.PublishGuestChanged(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// GuestService implements the read and write operations of the directory.
type GuestService struct {
	store     GuestStore
	objects   ObjectStore
	publisher EventPublisher
	opts      Options
	now       func() time.Time
}

// NewGuestService wires the service.  publisher may be nil.
func NewGuestService(store GuestStore, objects ObjectStore, publisher EventPublisher, opts Options) *GuestService {
	if store == nil || objects == nil {
		panic("nil dependency passed to NewGuestService")
	}
	if opts.PublishTimeout <= 0 {
		opts.PublishTimeout = 2 * time.Second
	}
	return &GuestService{
		store:     store,
		objects:   objects,
		publisher: publisher,
		opts:      opts,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// SaveResult describes a stored submission.
type SaveResult struct {
	ID       uint64
	Created  bool
	Uploaded []model.Slot
}

// Save runs the admin write: validate, insert or update the row, upload every
// non-empty file to its bucket and patch the path columns.  The two writes
// are not atomic: a failed upload leaves the text change in place.
func (s *GuestService) Save(ctx context.Context, form GuestForm, uploads []Upload) (SaveResult, error) {
	if err := form.Validate(); err != nil {
		return SaveResult{}, err
	}

	g := form.guest()
	res := SaveResult{}
	if form.ID == nil {
		if err := s.store.Create(ctx, g); err != nil {
			return res, &BackendError{Step: StepInsert, Err: err}
		}
		res.Created = true
	} else {
		if err := s.store.UpdateText(ctx, g, s.now()); err != nil {
			return res, &BackendError{Step: StepUpdate, GuestID: g.ID, Err: err}
		}
	}
	res.ID = g.ID
	log := logger.With("guest_id", g.ID)

	bySlot := make(map[model.Slot]Upload, len(uploads))
	for _, u := range uploads {
		if len(u.Data) > 0 {
			bySlot[u.Slot] = u
		}
	}

	paths := map[model.Slot]string{}
	for _, slot := range model.Slots {
		u, ok := bySlot[slot]
		if !ok {
			continue
		}
		data := u.Data
		if slot == model.SlotPhoto && s.opts.PhotoMaxDim > 0 {
			fitted, resized, err := media.FitPhoto(data, u.ContentType, s.opts.PhotoMaxDim)
			if err != nil {
				log.Warnw("photo resize skipped", "error", err)
			} else if resized {
				data = fitted
			}
		}
		key := media.Key(g.ID, slot, u.ContentType)
		if err := s.objects.Put(ctx, slot.Bucket(), key, u.ContentType, data); err != nil {
			return res, &BackendError{Step: StepUpload, GuestID: g.ID, Err: err}
		}
		paths[slot] = key
		res.Uploaded = append(res.Uploaded, slot)
		log.Debugw("media stored", "bucket", slot.Bucket(), "key", key, "bytes", len(data))
	}

	if len(paths) > 0 {
		if err := s.store.UpdatePaths(ctx, g.ID, paths, s.now()); err != nil {
			return res, &BackendError{Step: StepUpdatePaths, GuestID: g.ID, Err: err}
		}
	}

	s.announce(ctx, g, res)
	log.Infow("guest saved", "created", res.Created, "uploaded", len(res.Uploaded))
	return res, nil
}

// announce publishes the change; failures only get logged.  The write is
// already stored, so publishing gets its own deadline and ignores the
// request's cancellation.
func (s *GuestService) announce(ctx context.Context, g *model.Guest, res SaveResult) {
	if s.publisher == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.opts.PublishTimeout)
	defer cancel()
	slots := make([]string, 0, len(res.Uploaded))
	for _, sl := range res.Uploaded {
		slots = append(slots, string(sl))
	}
	ev := queue.GuestChangedEvent{
		GuestID:   g.ID,
		Number:    g.Number,
		Name:      g.Name,
		Created:   res.Created,
		Slots:     slots,
		ChangedAt: s.now().Format(time.RFC3339),
	}
	if err := s.publisher.PublishGuestChanged(ctx, ev); err != nil {
		logger.L().Warnw("guest change event not published", "guest_id", g.ID, "error", err)
	}
}

// IsNotFound reports whether err means the targeted guest does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, repository.ErrGuestNotFound)
}
