package mapper

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var header = []string{"product_reference", "product_title", "level_1", "level_2", "tax_rule", "price_excl_tax", "C:Material", "D:Color", "D:Size", "notes"}

func TestMap_FixedAndDynamicColumns(t *testing.T) {
	m := New(DefaultMapping(), zerolog.Nop())

	rec, err := m.Map(header, []string{"R1", " Shoe ", "Footwear", "", "TVA 20", "49.90", "Leather", "Red", "", "x"})
	require.NoError(t, err)

	assert.Equal(t, "R1", rec.Ref)
	assert.Equal(t, "Shoe", rec.Title)
	assert.Equal(t, [4]string{"Footwear", "", "", ""}, rec.Levels)
	assert.Equal(t, "TVA 20", rec.TaxRule)
	assert.Equal(t, "49.90", rec.PriceExclTax)
	assert.Equal(t, []Pair{{Name: "Material", Value: "Leather"}}, rec.Features)
	assert.Equal(t, []Pair{{Name: "Color", Value: "Red"}, {Name: "Size", Value: ""}}, rec.Attributes)
}

func TestMap_CarryForward(t *testing.T) {
	m := New(DefaultMapping(), zerolog.Nop())

	_, err := m.Map(header, []string{"R1", "Shoe", "Footwear", "Men", "TVA 20", "49.90", "", "Red", "42", ""})
	require.NoError(t, err)

	rec, err := m.Map(header, []string{"R2", "", "", "", "", "39.90", "", "", "", ""})
	require.NoError(t, err)
	assert.Equal(t, "R2", rec.Ref)
	assert.Equal(t, "Shoe", rec.Title)
	assert.Equal(t, "Footwear", rec.Levels[0])
	assert.Equal(t, "Men", rec.Levels[1])
	assert.Equal(t, "TVA 20", rec.TaxRule)
	assert.Equal(t, "39.90", rec.PriceExclTax)
	// kolumny dynamiczne nie są przenoszone
	assert.Equal(t, []Pair{{Name: "Color", Value: ""}, {Name: "Size", Value: ""}}, rec.Attributes)

	rec, err = m.Map(header, []string{"", "Boot", "", "", "TVA 5.5", "", "", "", "", ""})
	require.NoError(t, err)
	assert.Equal(t, "R2", rec.Ref)
	assert.Equal(t, "Boot", rec.Title)
	assert.Equal(t, "TVA 5.5", rec.TaxRule)
	assert.Equal(t, "39.90", rec.PriceExclTax)
}

func TestMap_NoPriorValue(t *testing.T) {
	m := New(DefaultMapping(), zerolog.Nop())
	rec, err := m.Map(header, []string{"R1", "Shoe", "", "", "", "", "", "", "", ""})
	require.NoError(t, err)
	assert.Empty(t, rec.Levels[0])
	assert.Empty(t, rec.TaxRule)
	assert.Empty(t, rec.Brand, "kolumny brak w pliku")
}

func TestMap_StateIsPerMapper(t *testing.T) {
	first := New(DefaultMapping(), zerolog.Nop())
	_, err := first.Map(header, []string{"R1", "Shoe", "Footwear", "", "TVA 20", "1", "", "", "", ""})
	require.NoError(t, err)

	second := New(DefaultMapping(), zerolog.Nop())
	rec, err := second.Map(header, []string{"R2", "", "", "", "", "", "", "", "", ""})
	require.NoError(t, err)
	assert.Empty(t, rec.Title)
	assert.Empty(t, rec.Levels[0])
}

func TestMap_Malformed(t *testing.T) {
	m := New(DefaultMapping(), zerolog.Nop())
	_, err := m.Map(header, []string{"R1", "Shoe"})
	require.Error(t, err)

	var mre *MalformedRowError
	require.True(t, errors.As(err, &mre))
	assert.Equal(t, len(header), mre.Headers)
	assert.Equal(t, 2, mre.Values)
}

func TestNormalizeHeader(t *testing.T) {
	got := NormalizeHeader([]string{"\ufeffproduct_reference", " product_title ", "D:Color"})
	assert.Equal(t, []string{"product_reference", "product_title", "D:Color"}, got)
}

func TestCheckHeaders(t *testing.T) {
	m := New(DefaultMapping(), zerolog.Nop())
	rep := m.CheckHeaders(header)

	assert.Equal(t, []string{"notes"}, rep.Ignored)
	assert.Contains(t, rep.Missing, FieldBrand)
	assert.Contains(t, rep.Missing, FieldImage)
	assert.NotContains(t, rep.Missing, FieldRef)
	assert.NotContains(t, rep.Missing, FieldLevel2)
}

func TestParseMapping(t *testing.T) {
	m, err := ParseMapping([]byte(`
mappings:
  product_reference: "Référence"
  product_title: Nom
`))
	require.NoError(t, err)
	assert.Equal(t, "Référence", m[FieldRef])
	assert.Equal(t, "Nom", m[FieldTitle])
	assert.Equal(t, FieldLevel1, m[FieldLevel1])

	mp := New(m, zerolog.Nop())
	rec, err := mp.Map([]string{"Référence", "Nom"}, []string{"A1", "Chaise"})
	require.NoError(t, err)
	assert.Equal(t, "A1", rec.Ref)
	assert.Equal(t, "Chaise", rec.Title)
}

func TestParseMapping_Errors(t *testing.T) {
	_, err := ParseMapping([]byte(`mappings: {colour: Couleur}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "colour")

	_, err = ParseMapping([]byte(`other: 1`))
	require.Error(t, err)

	_, err = ParseMapping([]byte(`mappings: {product_title: ""}`))
	require.Error(t, err)
}

func TestLoadMapping(t *testing.T) {
	path := filepath.Join(t.TempDir(), "csv_mapping.yaml")
	require.NoError(t, os.WriteFile(path, []byte("mappings:\n  ean: EAN13\n"), 0o644))

	m, err := LoadMapping(path)
	require.NoError(t, err)
	assert.Equal(t, "EAN13", m[FieldEAN])

	_, err = LoadMapping(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
