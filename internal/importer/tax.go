package importer

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/bartek5186/csvcatalog/internal/db"
	"github.com/rs/zerolog"
)

const taxTitlePrefix = "TVA "

var digitsRe = regexp.MustCompile(`\d+`)

type taxCatalog interface {
	FindTaxRule(ctx context.Context, taxTitle string, countryID uint) (*db.TaxRule, error)
	FindTax(ctx context.Context, locale, title string) (*db.Tax, error)
	CreateTax(ctx context.Context, locale, title string, percentage float64) (*db.Tax, error)
	CreateTaxRule(ctx context.Context, locale, title string, countryID, taxID uint) (*db.TaxRule, error)
}

// TaxResolver zamienia etykietę stawki na regułę podatkową kraju.
// Pamięta ostatnią rozwiązaną etykietę i używa jej dla wierszy bez stawki.
type TaxResolver struct {
	catalog   taxCatalog
	log       zerolog.Logger
	countryID uint
	locale    string
	last      string
}

func NewTaxResolver(cat taxCatalog, log zerolog.Logger, countryID uint, locale string) *TaxResolver {
	return &TaxResolver{catalog: cat, log: log, countryID: countryID, locale: locale}
}

// Resolve zwraca istniejącą regułę o tytule "TVA <etykieta>" albo tworzy regułę
// (i podatek, jeśli go jeszcze nie ma).
// Istniejąca reguła nie jest aktualizowana.
func (t *TaxResolver) Resolve(ctx context.Context, label string) (*db.TaxRule, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		label = t.last
	}
	if label == "" {
		return nil, &MissingTaxLabelError{}
	}
	pct, err := ExtractPercentage(label)
	if err != nil {
		return nil, err
	}
	title := TaxTitle(label)

	rule, err := t.catalog.FindTaxRule(ctx, title, t.countryID)
	if err != nil {
		return nil, err
	}
	if rule != nil {
		t.last = label
		return rule, nil
	}

	// podatek mógł powstać dla innego kraju; nowy kraj dostaje tylko regułę
	tax, err := t.catalog.FindTax(ctx, t.locale, title)
	if err != nil {
		return nil, err
	}
	if tax == nil {
		if tax, err = t.catalog.CreateTax(ctx, t.locale, title, pct); err != nil {
			return nil, err
		}
		t.log.Info().Uint("tax_id", tax.ID).Str("title", title).Float64("percentage", pct).Msg("created tax")
	}

	rule, err = t.catalog.CreateTaxRule(ctx, t.locale, title, t.countryID, tax.ID)
	if err != nil {
		return nil, err
	}
	t.log.Info().Uint("tax_rule_id", rule.ID).Str("title", title).Msg("created tax rule")

	t.last = label
	return rule, nil
}

// Last – ostatnia rozwiązana etykieta.
func (t *TaxResolver) Last() string { return t.last }

// ExtractPercentage bierze pierwszy ciąg cyfr z etykiety ("TVA 5.5" -> 5).
func ExtractPercentage(label string) (float64, error) {
	m := digitsRe.FindString(label)
	if m == "" {
		return 0, &InvalidTaxLabelError{Label: label}
	}
	return strconv.ParseFloat(m, 64)
}

// TaxTitle dokleja prefiks "TVA ", chyba że etykieta już go ma.
func TaxTitle(label string) string {
	if len(label) >= len(taxTitlePrefix) && strings.EqualFold(label[:len(taxTitlePrefix)], taxTitlePrefix) {
		return label
	}
	return taxTitlePrefix + label
}
