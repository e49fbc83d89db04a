package importer

import (
	"context"

	"github.com/bartek5186/csvcatalog/internal/catalog"
	"github.com/bartek5186/csvcatalog/internal/db"
	"github.com/bartek5186/csvcatalog/internal/mapper"
)

// findOrCreateProduct szuka produktu po (tytuł, locale). Nowy produkt powstaje w dwóch
// krokach: create z polami minimalnymi, potem update z opisami, marką i szablonem.
// Istniejący produkt zwracany jest bez zmian.
func (i *Importer) findOrCreateProduct(ctx context.Context, r *run, rec *mapper.Record, categoryID, taxRuleID uint, price, weight float64) (*db.Product, error) {
	p, err := i.catalog.FindProduct(ctx, rec.Title, i.opts.Locale)
	if err != nil || p != nil {
		return p, err
	}

	m := catalog.ProductMutation{
		Kind:              catalog.MutationCreate,
		Ref:               rec.Ref,
		Locale:            i.opts.Locale,
		Title:             rec.Title,
		DefaultCategoryID: categoryID,
		BasePrice:         price,
		BaseWeight:        weight,
		TaxRuleID:         taxRuleID,
		Visible:           true,
		CurrencyID:        i.opts.CurrencyID,
	}
	p, err = i.catalog.DispatchProduct(ctx, m)
	if err != nil {
		return nil, err
	}
	r.log.Info().Uint("product_id", p.ID).Str("title", rec.Title).Msg("created product")

	m.Kind = catalog.MutationUpdate
	m.ProductID = p.ID
	m.Chapo = rec.ShortDescription
	m.Description = rec.LongDescription

	b, err := i.brand(ctx, r, rec)
	if err != nil {
		return nil, err
	}
	if b != nil {
		m.BrandID = &b.ID
	}
	tpl, err := i.template(ctx, r, rec.Levels[0])
	if err != nil {
		return nil, err
	}
	m.TemplateID = &tpl.ID

	return i.catalog.DispatchProduct(ctx, m)
}

type attributePair struct {
	attributeID   uint
	attributeAvID uint
}

// upsertVariant – wariant (product, ref) z kombinacją atrybutów, potem odświeżenie
// ceny, wagi i EAN z bieżącego wiersza.
func (i *Importer) upsertVariant(ctx context.Context, r *run, p *db.Product, rec *mapper.Record, price, weight float64) (*db.ProductSaleElements, error) {
	v, err := i.catalog.FindVariant(ctx, p.ID, rec.Ref)
	if err != nil {
		return nil, err
	}

	var pairs []attributePair
	var avIDs []uint
	for _, a := range rec.Attributes {
		if a.Value == "" {
			continue
		}
		attr, err := i.attribute(ctx, r, a.Name)
		if err != nil {
			return nil, err
		}
		av, err := i.attributeValue(ctx, r, attr.ID, a.Value)
		if err != nil {
			return nil, err
		}
		if err := i.linkAttribute(ctx, attr.ID, p.TemplateID); err != nil {
			return nil, err
		}
		pairs = append(pairs, attributePair{attributeID: attr.ID, attributeAvID: av.ID})
		avIDs = append(avIDs, av.ID)
	}

	if v == nil {
		n, err := i.catalog.CountVariants(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		v, err = i.catalog.DispatchVariant(ctx, catalog.VariantMutation{
			Kind:           catalog.MutationCreate,
			ProductID:      p.ID,
			Ref:            rec.Ref,
			AttributeAvIDs: avIDs,
			IsDefault:      n == 0,
			CurrencyID:     i.opts.CurrencyID,
			TaxRuleID:      p.TaxRuleID,
		})
		if err != nil {
			return nil, err
		}
		r.log.Info().Uint("variant_id", v.ID).Str("ref", rec.Ref).Msg("created variant")
	}

	for _, pr := range pairs {
		if _, err := i.catalog.EnsureAttributeCombination(ctx, v.ID, pr.attributeID, pr.attributeAvID); err != nil {
			return nil, err
		}
	}

	return i.catalog.DispatchVariant(ctx, catalog.VariantMutation{
		Kind:       catalog.MutationUpdate,
		VariantID:  v.ID,
		ProductID:  p.ID,
		Ref:        rec.Ref,
		Weight:     weight,
		Price:      price,
		EanCode:    rec.EAN,
		CurrencyID: i.opts.CurrencyID,
		TaxRuleID:  p.TaxRuleID,
	})
}

// addFeatures – każda niepusta kolumna "C:" jako cecha produktu.
func (i *Importer) addFeatures(ctx context.Context, r *run, p *db.Product, rec *mapper.Record) error {
	for _, f := range rec.Features {
		if f.Value == "" {
			continue
		}
		feat, err := i.feature(ctx, r, f.Name)
		if err != nil {
			return err
		}
		av, err := i.featureValue(ctx, r, feat.ID, f.Value)
		if err != nil {
			return err
		}
		if err := i.linkFeature(ctx, feat.ID, p.TemplateID); err != nil {
			return err
		}
		if _, err := i.catalog.EnsureFeatureProduct(ctx, p.ID, feat.ID, av.ID); err != nil {
			return err
		}
	}
	return nil
}
