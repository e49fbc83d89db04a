package catalog

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/bartek5186/csvcatalog/internal/db"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	h, err := db.Open("sqlite", filepath.Join(t.TempDir(), "catalog.db"), false)
	require.NoError(t, err)
	require.NoError(t, h.Migrate())
	t.Cleanup(func() { _ = h.Close() })
	return NewStore(h.DB, zerolog.Nop())
}

func count[T any](t *testing.T, s *Store) int64 {
	t.Helper()
	var n int64
	require.NoError(t, s.DB().Model(new(T)).Count(&n).Error)
	return n
}

func TestFindCategory_ScopedByParent(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	root, err := s.CreateCategory(ctx, 0, "fr_FR", "Footwear", true)
	require.NoError(t, err)
	child, err := s.CreateCategory(ctx, root.ID, "fr_FR", "Shoes", true)
	require.NoError(t, err)

	got, err := s.FindCategory(ctx, root.ID, "fr_FR", "Shoes")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, child.ID, got.ID)

	got, err = s.FindCategory(ctx, 0, "fr_FR", "Shoes")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = s.FindCategory(ctx, 0, "en_US", "Footwear")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestTaxRule_CreateAndFindByCountry(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	tax, err := s.CreateTax(ctx, "fr_FR", "TVA 20", 20)
	require.NoError(t, err)
	assert.Equal(t, PricePercentTaxType, tax.Type)
	assert.JSONEq(t, `{"percent":20}`, tax.Requirements)

	rule, err := s.CreateTaxRule(ctx, "fr_FR", "TVA 20", 64, tax.ID)
	require.NoError(t, err)

	got, err := s.FindTaxRule(ctx, "TVA 20", 64)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, rule.ID, got.ID)

	got, err = s.FindTaxRule(ctx, "TVA 20", 1)
	require.NoError(t, err)
	assert.Nil(t, got, "inny kraj")

	got, err = s.FindTaxRule(ctx, "TVA 5", 64)
	require.NoError(t, err)
	assert.Nil(t, got)

	found, err := s.FindTax(ctx, "fr_FR", "TVA 20")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, tax.ID, found.ID)
	found, err = s.FindTax(ctx, "en_US", "TVA 20")
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestEnsure_Idempotent(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	attr, err := s.CreateAttribute(ctx, "Color", "fr_FR")
	require.NoError(t, err)
	tpl, err := s.CreateTemplate(ctx, "Footwear", "fr_FR")
	require.NoError(t, err)

	created, err := s.EnsureAttributeTemplate(ctx, attr.ID, tpl.ID)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = s.EnsureAttributeTemplate(ctx, attr.ID, tpl.ID)
	require.NoError(t, err)
	assert.False(t, created)
	assert.EqualValues(t, 1, count[db.AttributeTemplate](t, s))
}

func TestAttributeAv_ScopedByAttribute(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	color, err := s.CreateAttribute(ctx, "Color", "fr_FR")
	require.NoError(t, err)
	finish, err := s.CreateAttribute(ctx, "Finish", "fr_FR")
	require.NoError(t, err)

	_, err = s.CreateAttributeAv(ctx, color.ID, "Red", "fr_FR")
	require.NoError(t, err)

	got, err := s.FindAttributeAv(ctx, finish.ID, "Red", "fr_FR")
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = s.CreateAttributeAv(ctx, finish.ID, "Red", "fr_FR")
	require.NoError(t, err)
	assert.EqualValues(t, 2, count[db.AttributeAv](t, s))
}

func TestDispatchProduct_CreateThenUpdate(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	p, err := s.DispatchProduct(ctx, ProductMutation{
		Kind:              MutationCreate,
		Ref:               "R1",
		Locale:            "fr_FR",
		Title:             "Shoe",
		DefaultCategoryID: 3,
		BasePrice:         49.9,
		TaxRuleID:         1,
		Visible:           true,
		CurrencyID:        1,
	})
	require.NoError(t, err)
	require.NotZero(t, p.ID)
	assert.Nil(t, p.BrandID)

	brandID, templateID := uint(7), uint(8)
	up, err := s.DispatchProduct(ctx, ProductMutation{
		Kind:              MutationUpdate,
		ProductID:         p.ID,
		Ref:               p.Ref,
		Locale:            p.Locale,
		Title:             p.Title,
		DefaultCategoryID: p.DefaultCategoryID,
		BasePrice:         p.BasePrice,
		TaxRuleID:         p.TaxRuleID,
		Visible:           p.Visible,
		CurrencyID:        p.CurrencyID,
		Chapo:             "short",
		Description:       "long",
		BrandID:           &brandID,
		TemplateID:        &templateID,
	})
	require.NoError(t, err)
	assert.Equal(t, p.ID, up.ID)

	got, err := s.FindProduct(ctx, "Shoe", "fr_FR")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "short", got.Chapo)
	assert.Equal(t, "long", got.Description)
	require.NotNil(t, got.BrandID)
	assert.Equal(t, brandID, *got.BrandID)
	require.NotNil(t, got.TemplateID)
	assert.Equal(t, templateID, *got.TemplateID)
	assert.EqualValues(t, 1, count[db.Product](t, s))
}

func TestDispatchProduct_UpdateMissing(t *testing.T) {
	s := newTestStore(t)
	_, err := s.DispatchProduct(context.Background(), ProductMutation{Kind: MutationUpdate, ProductID: 42})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestDispatch_UnknownKind(t *testing.T) {
	s := newTestStore(t)
	_, err := s.DispatchProduct(context.Background(), ProductMutation{})
	require.Error(t, err)
	_, err = s.DispatchVariant(context.Background(), VariantMutation{})
	require.Error(t, err)
}

func TestDispatchVariant_CreateWithCombinations(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	color, err := s.CreateAttribute(ctx, "Color", "fr_FR")
	require.NoError(t, err)
	red, err := s.CreateAttributeAv(ctx, color.ID, "Red", "fr_FR")
	require.NoError(t, err)
	size, err := s.CreateAttribute(ctx, "Size", "fr_FR")
	require.NoError(t, err)
	big, err := s.CreateAttributeAv(ctx, size.ID, "42", "fr_FR")
	require.NoError(t, err)

	v, err := s.DispatchVariant(ctx, VariantMutation{
		Kind:           MutationCreate,
		ProductID:      1,
		Ref:            "R1",
		AttributeAvIDs: []uint{red.ID, big.ID},
		IsDefault:      true,
	})
	require.NoError(t, err)
	require.NotZero(t, v.ID)
	assert.EqualValues(t, 2, count[db.AttributeCombination](t, s))

	created, err := s.EnsureAttributeCombination(ctx, v.ID, color.ID, red.ID)
	require.NoError(t, err)
	assert.False(t, created)
	assert.EqualValues(t, 2, count[db.AttributeCombination](t, s))

	up, err := s.DispatchVariant(ctx, VariantMutation{
		Kind:      MutationUpdate,
		VariantID: v.ID,
		ProductID: 1,
		Ref:       "R1",
		Price:     10.5,
		Weight:    0.3,
		EanCode:   "3700000000001",
	})
	require.NoError(t, err)
	assert.Equal(t, 10.5, up.Price)

	got, err := s.FindVariant(ctx, 1, "R1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "3700000000001", got.EanCode)
	assert.True(t, got.IsDefault)

	n, err := s.CountVariants(ctx, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestCreateImage_Positions(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	a, err := s.CreateImage(ctx, 1, "a.jpg")
	require.NoError(t, err)
	b, err := s.CreateImage(ctx, 1, "b.jpg")
	require.NoError(t, err)
	c, err := s.CreateImage(ctx, 2, "a.jpg")
	require.NoError(t, err)

	assert.Equal(t, 1, a.Position)
	assert.Equal(t, 2, b.Position)
	assert.Equal(t, 1, c.Position)

	got, err := s.FindImage(ctx, 1, "b.jpg")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, b.ID, got.ID)

	created, err := s.EnsureVariantImage(ctx, 5, a.ID)
	require.NoError(t, err)
	assert.True(t, created)
	created, err = s.EnsureVariantImage(ctx, 5, a.ID)
	require.NoError(t, err)
	assert.False(t, created)
}
