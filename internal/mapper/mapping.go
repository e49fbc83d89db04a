package mapper

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/goccy/go-yaml"
)

// Pola stałe rekordu (klucze w pliku mapowania).
const (
	FieldRef              = "product_reference"
	FieldTitle            = "product_title"
	FieldLevel1           = "level_1"
	FieldLevel2           = "level_2"
	FieldLevel3           = "level_3"
	FieldLevel4           = "level_4"
	FieldBrand            = "brand"
	FieldTaxRule          = "tax_rule"
	FieldPriceExclTax     = "price_excl_tax"
	FieldPriceInclTax     = "price_incl_tax"
	FieldWeight           = "weight"
	FieldEAN              = "ean"
	FieldShortDescription = "short_description"
	FieldLongDescription  = "long_description"
	FieldImage            = "image"
)

// Fields – kolejność pól przy mapowaniu i w ostrzeżeniach.
var Fields = []string{
	FieldRef,
	FieldTitle,
	FieldLevel1,
	FieldLevel2,
	FieldLevel3,
	FieldLevel4,
	FieldBrand,
	FieldTaxRule,
	FieldPriceExclTax,
	FieldPriceInclTax,
	FieldWeight,
	FieldEAN,
	FieldShortDescription,
	FieldLongDescription,
	FieldImage,
}

// Mapping: pole rekordu -> nagłówek kolumny CSV.
type Mapping map[string]string

// DefaultMapping zakłada nagłówki o nazwach pól.
func DefaultMapping() Mapping {
	m := make(Mapping, len(Fields))
	for _, f := range Fields {
		m[f] = f
	}
	return m
}

type mappingFile struct {
	Mappings map[string]string `yaml:"mappings"`
}

// LoadMapping czyta plik YAML postaci:
//
//	mappings:
//	  product_reference: "Référence"
//	  product_title: "Nom"
//
// Pola nieobecne w pliku zachowują nagłówek domyślny.
func LoadMapping(path string) (Mapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read mapping %s: %w", path, err)
	}
	return ParseMapping(data)
}

func ParseMapping(data []byte) (Mapping, error) {
	var mf mappingFile
	if err := yaml.Unmarshal(data, &mf); err != nil {
		return nil, fmt.Errorf("parse mapping: %w", err)
	}
	if len(mf.Mappings) == 0 {
		return nil, fmt.Errorf("parse mapping: no \"mappings\" section")
	}

	known := make(map[string]bool, len(Fields))
	for _, f := range Fields {
		known[f] = true
	}

	m := DefaultMapping()
	var unknown []string
	for field, header := range mf.Mappings {
		if !known[field] {
			unknown = append(unknown, field)
			continue
		}
		header = strings.TrimSpace(header)
		if header == "" {
			return nil, fmt.Errorf("parse mapping: empty header for field %q", field)
		}
		m[field] = header
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, fmt.Errorf("parse mapping: unknown fields: %s", strings.Join(unknown, ", "))
	}
	return m, nil
}
