// Package mapper zamienia wiersz CSV (nagłówek + wartości) na rekord produktu.
//
// Kolumny z prefiksem "C:" to cechy (features), z prefiksem "D:" atrybuty.
// Pola stałe pochodzą z Mapping. Puste pole stałe dostaje ostatnią niepustą
// wartość tego pola widzianą przez ten sam Mapper, więc jeden Mapper = jeden przebieg importu.
package mapper

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

const (
	FeaturePrefix   = "C:"
	AttributePrefix = "D:"
)

// Pair to kolumna dynamiczna: etykieta bez prefiksu i wartość.
type Pair struct {
	Name  string
	Value string
}

type Record struct {
	Ref              string
	Title            string
	Levels           [4]string
	Brand            string
	TaxRule          string
	PriceExclTax     string
	PriceInclTax     string
	Weight           string
	EAN              string
	ShortDescription string
	LongDescription  string
	Image            string

	// w kolejności kolumn, puste wartości zostają
	Features   []Pair
	Attributes []Pair
}

// MalformedRowError – liczba wartości różna od liczby nagłówków.
type MalformedRowError struct {
	Headers int
	Values  int
}

func (e *MalformedRowError) Error() string {
	return fmt.Sprintf("malformed row: %d values for %d headers", e.Values, e.Headers)
}

type Mapper struct {
	mapping Mapping
	log     zerolog.Logger
	last    map[string]string
}

func New(mapping Mapping, log zerolog.Logger) *Mapper {
	if mapping == nil {
		mapping = DefaultMapping()
	}
	return &Mapper{
		mapping: mapping,
		log:     log.With().Str("component", "mapper").Logger(),
		last:    make(map[string]string, len(Fields)),
	}
}

// NormalizeHeader przycina nazwy kolumn i usuwa BOM z pierwszej.
func NormalizeHeader(header []string) []string {
	out := make([]string, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		out[i] = strings.TrimSpace(h)
	}
	return out
}

// Map łączy wiersz z nagłówkiem. Przy niezgodnej liczbie kolumn zwraca *MalformedRowError.
func (m *Mapper) Map(header, row []string) (*Record, error) {
	if len(header) != len(row) {
		return nil, &MalformedRowError{Headers: len(header), Values: len(row)}
	}

	// przy powtórzonym nagłówku wygrywa ostatnia kolumna
	byHeader := make(map[string]string, len(header))
	for i, h := range header {
		byHeader[h] = strings.TrimSpace(row[i])
	}

	rec := &Record{}
	seen := make(map[string]bool)
	for _, h := range header {
		if seen[h] {
			continue
		}
		seen[h] = true
		switch {
		case strings.HasPrefix(h, FeaturePrefix):
			rec.Features = append(rec.Features, Pair{Name: h[len(FeaturePrefix):], Value: byHeader[h]})
		case strings.HasPrefix(h, AttributePrefix):
			rec.Attributes = append(rec.Attributes, Pair{Name: h[len(AttributePrefix):], Value: byHeader[h]})
		}
	}

	for _, field := range Fields {
		col, ok := m.mapping[field]
		if !ok {
			continue
		}
		v := byHeader[col]
		if v == "" {
			v = m.last[field]
		} else {
			m.last[field] = v
		}
		rec.set(field, v)
	}
	return rec, nil
}

func (r *Record) set(field, v string) {
	switch field {
	case FieldRef:
		r.Ref = v
	case FieldTitle:
		r.Title = v
	case FieldLevel1:
		r.Levels[0] = v
	case FieldLevel2:
		r.Levels[1] = v
	case FieldLevel3:
		r.Levels[2] = v
	case FieldLevel4:
		r.Levels[3] = v
	case FieldBrand:
		r.Brand = v
	case FieldTaxRule:
		r.TaxRule = v
	case FieldPriceExclTax:
		r.PriceExclTax = v
	case FieldPriceInclTax:
		r.PriceInclTax = v
	case FieldWeight:
		r.Weight = v
	case FieldEAN:
		r.EAN = v
	case FieldShortDescription:
		r.ShortDescription = v
	case FieldLongDescription:
		r.LongDescription = v
	case FieldImage:
		r.Image = v
	}
}

// HeaderReport – wynik CheckHeaders.
type HeaderReport struct {
	Missing []string // pola bez kolumny w pliku
	Ignored []string // kolumny, których importer nie użyje
}

// CheckHeaders loguje ostrzeżenie dla brakujących pól i ignorowanych kolumn.
// Nie przerywa importu.
func (m *Mapper) CheckHeaders(header []string) HeaderReport {
	var rep HeaderReport

	present := make(map[string]bool, len(header))
	for _, h := range header {
		present[h] = true
	}
	declared := make(map[string]bool, len(m.mapping))
	for _, field := range Fields {
		h, ok := m.mapping[field]
		if !ok {
			continue
		}
		declared[h] = true
		if !present[h] {
			rep.Missing = append(rep.Missing, field)
			m.log.Warn().Str("field", field).Str("header", h).Msg("missing column")
		}
	}
	for _, h := range header {
		if declared[h] || strings.HasPrefix(h, FeaturePrefix) || strings.HasPrefix(h, AttributePrefix) {
			continue
		}
		rep.Ignored = append(rep.Ignored, h)
		m.log.Warn().Str("header", h).Msg("ignored column")
	}
	return rep
}
