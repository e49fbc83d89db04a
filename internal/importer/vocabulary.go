package importer

import (
	"context"

	"github.com/bartek5186/csvcatalog/internal/db"
	"github.com/bartek5186/csvcatalog/internal/mapper"
	"github.com/rs/zerolog"
)

// term – znajdź-albo-utwórz po (tytuł, locale) dla jednego rodzaju słownika.
type term[T any] struct {
	kind   string
	find   func(ctx context.Context, title, locale string) (*T, error)
	create func(ctx context.Context, title, locale string) (*T, error)
}

func (t term[T]) findOrCreate(ctx context.Context, log zerolog.Logger, title, locale string) (*T, error) {
	row, err := t.find(ctx, title, locale)
	if err != nil {
		return nil, err
	}
	if row != nil {
		return row, nil
	}
	if row, err = t.create(ctx, title, locale); err != nil {
		return nil, err
	}
	log.Info().Str("kind", t.kind).Str("title", title).Msg("created")
	return row, nil
}

func (i *Importer) attribute(ctx context.Context, r *run, title string) (*db.Attribute, error) {
	return term[db.Attribute]{
		kind:   "attribute",
		find:   i.catalog.FindAttribute,
		create: i.catalog.CreateAttribute,
	}.findOrCreate(ctx, r.log, title, i.opts.Locale)
}

func (i *Importer) attributeValue(ctx context.Context, r *run, attributeID uint, title string) (*db.AttributeAv, error) {
	return term[db.AttributeAv]{
		kind: "attribute value",
		find: func(ctx context.Context, title, locale string) (*db.AttributeAv, error) {
			return i.catalog.FindAttributeAv(ctx, attributeID, title, locale)
		},
		create: func(ctx context.Context, title, locale string) (*db.AttributeAv, error) {
			return i.catalog.CreateAttributeAv(ctx, attributeID, title, locale)
		},
	}.findOrCreate(ctx, r.log, title, i.opts.Locale)
}

func (i *Importer) feature(ctx context.Context, r *run, title string) (*db.Feature, error) {
	return term[db.Feature]{
		kind:   "feature",
		find:   i.catalog.FindFeature,
		create: i.catalog.CreateFeature,
	}.findOrCreate(ctx, r.log, title, i.opts.Locale)
}

func (i *Importer) featureValue(ctx context.Context, r *run, featureID uint, title string) (*db.FeatureAv, error) {
	return term[db.FeatureAv]{
		kind: "feature value",
		find: func(ctx context.Context, title, locale string) (*db.FeatureAv, error) {
			return i.catalog.FindFeatureAv(ctx, featureID, title, locale)
		},
		create: func(ctx context.Context, title, locale string) (*db.FeatureAv, error) {
			return i.catalog.CreateFeatureAv(ctx, featureID, title, locale)
		},
	}.findOrCreate(ctx, r.log, title, i.opts.Locale)
}

func (i *Importer) template(ctx context.Context, r *run, name string) (*db.Template, error) {
	return term[db.Template]{
		kind:   "template",
		find:   i.catalog.FindTemplate,
		create: i.catalog.CreateTemplate,
	}.findOrCreate(ctx, r.log, name, i.opts.Locale)
}

// brand zwraca nil (bez błędu) dla pustej marki.
func (i *Importer) brand(ctx context.Context, r *run, rec *mapper.Record) (*db.Brand, error) {
	if rec.Brand == "" {
		r.log.Warn().Str("ref", rec.Ref).Msg("brand without title for product reference")
		return nil, nil
	}
	return term[db.Brand]{
		kind:   "brand",
		find:   i.catalog.FindBrand,
		create: i.catalog.CreateBrand,
	}.findOrCreate(ctx, r.log, rec.Brand, i.opts.Locale)
}

// linkAttribute / linkFeature – powiązanie słownika z szablonem, tylko gdy go brak.
func (i *Importer) linkAttribute(ctx context.Context, attributeID uint, templateID *uint) error {
	if templateID == nil {
		return nil
	}
	_, err := i.catalog.EnsureAttributeTemplate(ctx, attributeID, *templateID)
	return err
}

func (i *Importer) linkFeature(ctx context.Context, featureID uint, templateID *uint) error {
	if templateID == nil {
		return nil
	}
	_, err := i.catalog.EnsureFeatureTemplate(ctx, featureID, *templateID)
	return err
}
