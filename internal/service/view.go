package service

import (
	"context"

	"github.com/iliyamo/wedding-guests/internal/audio"
	"github.com/iliyamo/wedding-guests/internal/model"
	"github.com/iliyamo/wedding-guests/internal/storage"
)

// Bilingual is a required cs/en text pair.
type Bilingual struct {
	CS string `json:"cs"`
	EN string `json:"en"`
}

// OptionalBilingual is a cs/en text pair where either half may be absent.
type OptionalBilingual struct {
	CS *string `json:"cs,omitempty"`
	EN *string `json:"en,omitempty"`
}

// GuestView is a guest as served by GET /guests.  Media fields hold public
// URLs or null; audio pairs are not filled across languages here.
type GuestView struct {
	ID            uint64            `json:"id"`
	Number        int               `json:"number"`
	Name          string            `json:"name"`
	Relation      Bilingual         `json:"relation"`
	About         OptionalBilingual `json:"about"`
	PhotoURL      *string           `json:"photoUrl"`
	AudioOfficial audio.Pair        `json:"audioOfficial"`
	AudioFunny    audio.Pair        `json:"audioFunny"`
}

// List returns every guest ordered by number, mapped to views.
func (s *GuestService) List(ctx context.Context) ([]GuestView, error) {
	rows, err := s.store.ListOrdered(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]GuestView, 0, len(rows))
	for _, g := range rows {
		out = append(out, s.view(g))
	}
	return out, nil
}

// Manifest lists the public URL of every stored media object.
func (s *GuestService) Manifest(ctx context.Context) ([]string, error) {
	rows, err := s.store.ListOrdered(ctx)
	if err != nil {
		return nil, err
	}
	urls := []string{}
	for _, g := range rows {
		for _, slot := range model.Slots {
			if u := s.url(slot, g.Path(slot)); u != nil {
				urls = append(urls, *u)
			}
		}
	}
	return urls, nil
}

func (s *GuestService) view(g *model.Guest) GuestView {
	return GuestView{
		ID:       g.ID,
		Number:   g.Number,
		Name:     g.Name,
		Relation: Bilingual{CS: g.RelationCS, EN: g.RelationEN},
		About:    OptionalBilingual{CS: g.AboutCS, EN: g.AboutEN},
		PhotoURL: s.url(model.SlotPhoto, g.PhotoPath),
		AudioOfficial: audio.Pair{
			CS: s.url(model.SlotOfficialCS, g.AudioOfficialCSPath),
			EN: s.url(model.SlotOfficialEN, g.AudioOfficialENPath),
		},
		AudioFunny: audio.Pair{
			CS: s.url(model.SlotFunnyCS, g.AudioFunnyCSPath),
			EN: s.url(model.SlotFunnyEN, g.AudioFunnyENPath),
		},
	}
}

func (s *GuestService) url(slot model.Slot, key *string) *string {
	return storage.PublicURL(s.opts.PublicBase, slot.Bucket(), key)
}
