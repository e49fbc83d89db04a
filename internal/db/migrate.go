package db

import (
	"fmt"
)

// Migrate tworzy/aktualizuje schemat bazy katalogu i tabel importu.
// Unikalne indeksy złożone pochodzą z tagów modeli (klucze naturalne).
func (h *Handle) Migrate() error {
	if err := h.DB.AutoMigrate(
		&Category{},
		&Tax{},
		&TaxRule{},
		&TaxRuleCountry{},
		&Brand{},
		&Template{},
		&Attribute{},
		&AttributeAv{},
		&AttributeTemplate{},
		&Feature{},
		&FeatureAv{},
		&FeatureTemplate{},
		&Product{},
		&FeatureProduct{},
		&ProductSaleElements{},
		&AttributeCombination{},
		&ProductImage{},
		&ProductSaleElementsProductImage{},
		&ImportFile{},
		&KV{},
	); err != nil {
		return fmt.Errorf("AutoMigrate error: %w", err)
	}
	return nil
}
