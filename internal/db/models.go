// internal/db/models.go
package db

import "time"

// categories – drzewo kategorii, klucz naturalny (parent_id, locale, title)
type Category struct {
	ID        uint      `gorm:"primaryKey"`
	ParentID  uint      `gorm:"uniqueIndex:uniq_category_title,priority:1"` // 0 = korzeń
	Locale    string    `gorm:"size:10;uniqueIndex:uniq_category_title,priority:2"`
	Title     string    `gorm:"size:255;uniqueIndex:uniq_category_title,priority:3"`
	Visible   bool      `gorm:"default:true"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// taxes
type Tax struct {
	ID           uint   `gorm:"primaryKey"`
	Locale       string `gorm:"size:10;uniqueIndex:uniq_tax_title,priority:1"`
	Title        string `gorm:"size:255;uniqueIndex:uniq_tax_title,priority:2"`
	Type         string `gorm:"size:64"`
	Requirements string `gorm:"type:text"` // JSON
	Percentage   float64
}

// tax_rules
type TaxRule struct {
	ID        uint      `gorm:"primaryKey"`
	Locale    string    `gorm:"size:10"`
	Title     string    `gorm:"size:255;index"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// tax_rule_countries – reguła stosuje podatek w danym kraju
type TaxRuleCountry struct {
	ID        uint `gorm:"primaryKey"`
	TaxRuleID uint `gorm:"uniqueIndex:uniq_rule_country_tax,priority:1"`
	CountryID uint `gorm:"uniqueIndex:uniq_rule_country_tax,priority:2;index"`
	TaxID     uint `gorm:"uniqueIndex:uniq_rule_country_tax,priority:3"`
}

type Brand struct {
	ID      uint   `gorm:"primaryKey"`
	Locale  string `gorm:"size:10;uniqueIndex:uniq_brand_title,priority:1"`
	Title   string `gorm:"size:255;uniqueIndex:uniq_brand_title,priority:2"`
	Visible bool   `gorm:"default:true"`
}

// templates – grupa produktów z listą atrybutów/cech
type Template struct {
	ID     uint   `gorm:"primaryKey"`
	Locale string `gorm:"size:10;uniqueIndex:uniq_template_name,priority:1"`
	Name   string `gorm:"size:255;uniqueIndex:uniq_template_name,priority:2"`
}

type Attribute struct {
	ID     uint   `gorm:"primaryKey"`
	Locale string `gorm:"size:10;uniqueIndex:uniq_attribute_title,priority:1"`
	Title  string `gorm:"size:255;uniqueIndex:uniq_attribute_title,priority:2"`
}

// attribute_avs – dozwolone wartości atrybutu
type AttributeAv struct {
	ID          uint   `gorm:"primaryKey"`
	AttributeID uint   `gorm:"uniqueIndex:uniq_attribute_av_title,priority:1"`
	Locale      string `gorm:"size:10;uniqueIndex:uniq_attribute_av_title,priority:2"`
	Title       string `gorm:"size:255;uniqueIndex:uniq_attribute_av_title,priority:3"`
}

type AttributeTemplate struct {
	ID          uint `gorm:"primaryKey"`
	AttributeID uint `gorm:"uniqueIndex:uniq_attribute_template,priority:1"`
	TemplateID  uint `gorm:"uniqueIndex:uniq_attribute_template,priority:2"`
}

type Feature struct {
	ID     uint   `gorm:"primaryKey"`
	Locale string `gorm:"size:10;uniqueIndex:uniq_feature_title,priority:1"`
	Title  string `gorm:"size:255;uniqueIndex:uniq_feature_title,priority:2"`
}

type FeatureAv struct {
	ID        uint   `gorm:"primaryKey"`
	FeatureID uint   `gorm:"uniqueIndex:uniq_feature_av_title,priority:1"`
	Locale    string `gorm:"size:10;uniqueIndex:uniq_feature_av_title,priority:2"`
	Title     string `gorm:"size:255;uniqueIndex:uniq_feature_av_title,priority:3"`
}

type FeatureTemplate struct {
	ID         uint `gorm:"primaryKey"`
	FeatureID  uint `gorm:"uniqueIndex:uniq_feature_template,priority:1"`
	TemplateID uint `gorm:"uniqueIndex:uniq_feature_template,priority:2"`
}

// products – wyszukiwane po (locale, title), ref to kod biznesowy
type Product struct {
	ID                uint   `gorm:"primaryKey"`
	Ref               string `gorm:"size:255;index"`
	Locale            string `gorm:"size:10;uniqueIndex:uniq_product_title,priority:1"`
	Title             string `gorm:"size:255;uniqueIndex:uniq_product_title,priority:2"`
	DefaultCategoryID uint   `gorm:"index"`
	BrandID           *uint
	TemplateID        *uint
	TaxRuleID         uint
	BasePrice         float64
	BaseWeight        float64
	CurrencyID        uint
	Visible           bool
	Chapo             string    `gorm:"type:text"`
	Description       string    `gorm:"type:text"`
	CreatedAt         time.Time `gorm:"autoCreateTime"`
	UpdatedAt         time.Time `gorm:"autoUpdateTime"`
}

type FeatureProduct struct {
	ID          uint `gorm:"primaryKey"`
	ProductID   uint `gorm:"uniqueIndex:uniq_feature_product,priority:1"`
	FeatureID   uint `gorm:"uniqueIndex:uniq_feature_product,priority:2"`
	FeatureAvID uint `gorm:"uniqueIndex:uniq_feature_product,priority:3"`
}

// product_sale_elements – wariant (SKU), klucz (product_id, ref)
type ProductSaleElements struct {
	ID         uint   `gorm:"primaryKey"`
	ProductID  uint   `gorm:"uniqueIndex:uniq_pse_ref,priority:1"`
	Ref        string `gorm:"size:255;uniqueIndex:uniq_pse_ref,priority:2"`
	Weight     float64
	Price      float64
	EanCode    string `gorm:"size:64;index"`
	CurrencyID uint
	TaxRuleID  uint
	IsDefault  bool
	UpdatedAt  time.Time `gorm:"autoUpdateTime"`
}

type AttributeCombination struct {
	ID                    uint `gorm:"primaryKey"`
	ProductSaleElementsID uint `gorm:"uniqueIndex:uniq_attribute_combination,priority:1"`
	AttributeID           uint `gorm:"uniqueIndex:uniq_attribute_combination,priority:2"`
	AttributeAvID         uint `gorm:"uniqueIndex:uniq_attribute_combination,priority:3"`
}

// product_images – plik, klucz (product_id, file)
type ProductImage struct {
	ID        uint   `gorm:"primaryKey"`
	ProductID uint   `gorm:"uniqueIndex:uniq_product_image,priority:1"`
	File      string `gorm:"size:255;uniqueIndex:uniq_product_image,priority:2"`
	Visible   bool   `gorm:"default:true"`
	Position  int
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

type ProductSaleElementsProductImage struct {
	ID                    uint `gorm:"primaryKey"`
	ProductSaleElementsID uint `gorm:"uniqueIndex:uniq_pse_image,priority:1"`
	ProductImageID        uint `gorm:"uniqueIndex:uniq_pse_image,priority:2"`
}

// Statusy ImportFile.Status
const (
	FileStatusPending = 0
	FileStatusDone    = 1
	FileStatusError   = 2
)

// import_files – przetworzone pliki CSV
type ImportFile struct {
	ImportID    uint   `gorm:"primaryKey;column:import_id"`
	RunID       string `gorm:"size:36;index"`
	Filename    string `gorm:"index"`
	SHA256      string `gorm:"uniqueIndex"`
	SizeBytes   int64
	Status      int `gorm:"index"` // 0=pending, 1=done, 2=error
	Rows        int
	Imported    int
	Skipped     int
	RowErrors   int
	LastError   string    `gorm:"type:text"`
	ReceivedAt  time.Time `gorm:"autoCreateTime"`
	ProcessedAt *time.Time
}

// kvs – np. podsumowanie ostatniego przebiegu (klucz "last_run")
type KV struct {
	K string `gorm:"primaryKey"`
	V string `gorm:"type:text"`
}
