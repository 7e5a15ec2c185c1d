package service

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/iliyamo/wedding-guests/internal/model"
)

// GuestForm is the text part of an admin submission.  A nil ID creates a
// new guest.
type GuestForm struct {
	ID         *uint64 `form:"id"`
	Number     int     `form:"number" validate:"required,gt=0"`
	Name       string  `form:"name" validate:"required"`
	RelationCS string  `form:"relation_cs" validate:"required"`
	RelationEN string  `form:"relation_en" validate:"required"`
	AboutCS    string  `form:"about_cs"`
	AboutEN    string  `form:"about_en"`
}

// Upload is one media file of a submission.
type Upload struct {
	Slot        model.Slot
	ContentType string
	Data        []byte
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate trims the text fields and checks the required ones.
func (f *GuestForm) Validate() error {
	f.Name = strings.TrimSpace(f.Name)
	f.RelationCS = strings.TrimSpace(f.RelationCS)
	f.RelationEN = strings.TrimSpace(f.RelationEN)
	f.AboutCS = strings.TrimSpace(f.AboutCS)
	f.AboutEN = strings.TrimSpace(f.AboutEN)

	err := validate.Struct(f)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	ve := &ValidationError{Got: map[string]interface{}{
		"number":      f.Number,
		"name":        f.Name,
		"relation_cs": f.RelationCS,
		"relation_en": f.RelationEN,
	}}
	for _, fe := range verrs {
		ve.Fields = append(ve.Fields, fe.Field())
	}
	return ve
}

func (f *GuestForm) guest() *model.Guest {
	g := &model.Guest{
		Number:     f.Number,
		Name:       f.Name,
		RelationCS: f.RelationCS,
		RelationEN: f.RelationEN,
		AboutCS:    optional(f.AboutCS),
		AboutEN:    optional(f.AboutEN),
	}
	if f.ID != nil {
		g.ID = *f.ID
	}
	return g
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
