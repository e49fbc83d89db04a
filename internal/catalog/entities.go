package catalog

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/bartek5186/csvcatalog/internal/db"
	"gorm.io/gorm"
)

// --- kategorie ---

func (s *Store) FindCategory(ctx context.Context, parentID uint, locale, title string) (*db.Category, error) {
	return findOne[db.Category](ctx, s.db, "parent_id = ? AND locale = ? AND title = ?", parentID, locale, title)
}

func (s *Store) CreateCategory(ctx context.Context, parentID uint, locale, title string, visible bool) (*db.Category, error) {
	return create(ctx, s.db, &db.Category{ParentID: parentID, Locale: locale, Title: title, Visible: visible})
}

// --- podatki ---

// PricePercentTaxType to typ podatku procentowego od ceny.
const PricePercentTaxType = "PricePercentTaxType"

// FindTaxRule szuka reguły po tytule podatku w danym kraju.
func (s *Store) FindTaxRule(ctx context.Context, taxTitle string, countryID uint) (*db.TaxRule, error) {
	var rule db.TaxRule
	res := s.db.WithContext(ctx).
		Model(&db.TaxRule{}).
		Select("tax_rules.*").
		Joins("JOIN tax_rule_countries ON tax_rule_countries.tax_rule_id = tax_rules.id").
		Joins("JOIN taxes ON taxes.id = tax_rule_countries.tax_id").
		Where("taxes.title = ? AND tax_rule_countries.country_id = ?", taxTitle, countryID).
		Limit(1).
		Find(&rule)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return &rule, nil
}

// FindTax szuka podatku po (locale, tytuł); jeden podatek może mieć reguły w wielu krajach.
func (s *Store) FindTax(ctx context.Context, locale, title string) (*db.Tax, error) {
	return findOne[db.Tax](ctx, s.db, "locale = ? AND title = ?", locale, title)
}

func (s *Store) CreateTax(ctx context.Context, locale, title string, percentage float64) (*db.Tax, error) {
	req, err := json.Marshal(map[string]float64{"percent": percentage})
	if err != nil {
		return nil, err
	}
	return create(ctx, s.db, &db.Tax{
		Locale:       locale,
		Title:        title,
		Type:         PricePercentTaxType,
		Requirements: string(req),
		Percentage:   percentage,
	})
}

// CreateTaxRule tworzy regułę i wiąże ją z krajem i podatkiem.
func (s *Store) CreateTaxRule(ctx context.Context, locale, title string, countryID, taxID uint) (*db.TaxRule, error) {
	rule := &db.TaxRule{Locale: locale, Title: title}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(rule).Error; err != nil {
			return err
		}
		return tx.Create(&db.TaxRuleCountry{TaxRuleID: rule.ID, CountryID: countryID, TaxID: taxID}).Error
	})
	if err != nil {
		return nil, fmt.Errorf("create tax rule %q: %w", title, err)
	}
	return rule, nil
}

// --- słowniki: atrybuty, cechy, marki, szablony ---

func (s *Store) FindAttribute(ctx context.Context, title, locale string) (*db.Attribute, error) {
	return findOne[db.Attribute](ctx, s.db, "locale = ? AND title = ?", locale, title)
}

func (s *Store) CreateAttribute(ctx context.Context, title, locale string) (*db.Attribute, error) {
	return create(ctx, s.db, &db.Attribute{Locale: locale, Title: title})
}

func (s *Store) FindAttributeAv(ctx context.Context, attributeID uint, title, locale string) (*db.AttributeAv, error) {
	return findOne[db.AttributeAv](ctx, s.db, "attribute_id = ? AND locale = ? AND title = ?", attributeID, locale, title)
}

func (s *Store) CreateAttributeAv(ctx context.Context, attributeID uint, title, locale string) (*db.AttributeAv, error) {
	return create(ctx, s.db, &db.AttributeAv{AttributeID: attributeID, Locale: locale, Title: title})
}

func (s *Store) FindFeature(ctx context.Context, title, locale string) (*db.Feature, error) {
	return findOne[db.Feature](ctx, s.db, "locale = ? AND title = ?", locale, title)
}

func (s *Store) CreateFeature(ctx context.Context, title, locale string) (*db.Feature, error) {
	return create(ctx, s.db, &db.Feature{Locale: locale, Title: title})
}

func (s *Store) FindFeatureAv(ctx context.Context, featureID uint, title, locale string) (*db.FeatureAv, error) {
	return findOne[db.FeatureAv](ctx, s.db, "feature_id = ? AND locale = ? AND title = ?", featureID, locale, title)
}

func (s *Store) CreateFeatureAv(ctx context.Context, featureID uint, title, locale string) (*db.FeatureAv, error) {
	return create(ctx, s.db, &db.FeatureAv{FeatureID: featureID, Locale: locale, Title: title})
}

func (s *Store) FindBrand(ctx context.Context, title, locale string) (*db.Brand, error) {
	return findOne[db.Brand](ctx, s.db, "locale = ? AND title = ?", locale, title)
}

func (s *Store) CreateBrand(ctx context.Context, title, locale string) (*db.Brand, error) {
	return create(ctx, s.db, &db.Brand{Locale: locale, Title: title, Visible: true})
}

func (s *Store) FindTemplate(ctx context.Context, name, locale string) (*db.Template, error) {
	return findOne[db.Template](ctx, s.db, "locale = ? AND name = ?", locale, name)
}

func (s *Store) CreateTemplate(ctx context.Context, name, locale string) (*db.Template, error) {
	return create(ctx, s.db, &db.Template{Locale: locale, Name: name})
}

func (s *Store) EnsureAttributeTemplate(ctx context.Context, attributeID, templateID uint) (bool, error) {
	row := db.AttributeTemplate{AttributeID: attributeID, TemplateID: templateID}
	return ensure(ctx, s.db, &row, "attribute_id = ? AND template_id = ?", attributeID, templateID)
}

func (s *Store) EnsureFeatureTemplate(ctx context.Context, featureID, templateID uint) (bool, error) {
	row := db.FeatureTemplate{FeatureID: featureID, TemplateID: templateID}
	return ensure(ctx, s.db, &row, "feature_id = ? AND template_id = ?", featureID, templateID)
}

// --- powiązania produktu i wariantu ---

func (s *Store) FindProduct(ctx context.Context, title, locale string) (*db.Product, error) {
	return findOne[db.Product](ctx, s.db, "locale = ? AND title = ?", locale, title)
}

func (s *Store) FindVariant(ctx context.Context, productID uint, ref string) (*db.ProductSaleElements, error) {
	return findOne[db.ProductSaleElements](ctx, s.db, "product_id = ? AND ref = ?", productID, ref)
}

func (s *Store) EnsureAttributeCombination(ctx context.Context, variantID, attributeID, attributeAvID uint) (bool, error) {
	row := db.AttributeCombination{ProductSaleElementsID: variantID, AttributeID: attributeID, AttributeAvID: attributeAvID}
	return ensure(ctx, s.db, &row,
		"product_sale_elements_id = ? AND attribute_id = ? AND attribute_av_id = ?",
		variantID, attributeID, attributeAvID)
}

func (s *Store) EnsureFeatureProduct(ctx context.Context, productID, featureID, featureAvID uint) (bool, error) {
	row := db.FeatureProduct{ProductID: productID, FeatureID: featureID, FeatureAvID: featureAvID}
	return ensure(ctx, s.db, &row,
		"product_id = ? AND feature_id = ? AND feature_av_id = ?",
		productID, featureID, featureAvID)
}

// --- zdjęcia ---

func (s *Store) FindImage(ctx context.Context, productID uint, file string) (*db.ProductImage, error) {
	return findOne[db.ProductImage](ctx, s.db, "product_id = ? AND file = ?", productID, file)
}

func (s *Store) CreateImage(ctx context.Context, productID uint, file string) (*db.ProductImage, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&db.ProductImage{}).Where("product_id = ?", productID).Count(&count).Error; err != nil {
		return nil, err
	}
	return create(ctx, s.db, &db.ProductImage{ProductID: productID, File: file, Visible: true, Position: int(count) + 1})
}

// TouchImage odświeża updated_at po podmianie pliku.
func (s *Store) TouchImage(ctx context.Context, img *db.ProductImage) error {
	return s.db.WithContext(ctx).Save(img).Error
}

func (s *Store) EnsureVariantImage(ctx context.Context, variantID, imageID uint) (bool, error) {
	row := db.ProductSaleElementsProductImage{ProductSaleElementsID: variantID, ProductImageID: imageID}
	return ensure(ctx, s.db, &row, "product_sale_elements_id = ? AND product_image_id = ?", variantID, imageID)
}
