package catalog

import (
	"context"
	"fmt"

	"github.com/bartek5186/csvcatalog/internal/db"
	"gorm.io/gorm"
)

type MutationKind int

const (
	MutationCreate MutationKind = iota + 1
	MutationUpdate
)

func (k MutationKind) String() string {
	switch k {
	case MutationCreate:
		return "create"
	case MutationUpdate:
		return "update"
	default:
		return fmt.Sprintf("MutationKind(%d)", int(k))
	}
}

// ProductMutation niesie wspólne pola create/update produktu.
// Pola opisów, marki i szablonu są brane pod uwagę tylko przy MutationUpdate.
type ProductMutation struct {
	Kind      MutationKind
	ProductID uint // update

	Ref               string
	Locale            string
	Title             string
	DefaultCategoryID uint
	BasePrice         float64
	BaseWeight        float64
	TaxRuleID         uint
	Visible           bool
	CurrencyID        uint

	// tylko update
	Chapo       string
	Description string
	BrandID     *uint
	TemplateID  *uint
}

// DispatchProduct wykonuje mutację i zwraca zapisany produkt z ID.
func (s *Store) DispatchProduct(ctx context.Context, m ProductMutation) (*db.Product, error) {
	switch m.Kind {
	case MutationCreate:
		p := &db.Product{
			Ref:               m.Ref,
			Locale:            m.Locale,
			Title:             m.Title,
			DefaultCategoryID: m.DefaultCategoryID,
			BasePrice:         m.BasePrice,
			BaseWeight:        m.BaseWeight,
			TaxRuleID:         m.TaxRuleID,
			Visible:           m.Visible,
			CurrencyID:        m.CurrencyID,
		}
		if err := s.db.WithContext(ctx).Create(p).Error; err != nil {
			return nil, fmt.Errorf("create product %q: %w", m.Title, err)
		}
		return p, nil

	case MutationUpdate:
		p, err := findOne[db.Product](ctx, s.db, "id = ?", m.ProductID)
		if err != nil {
			return nil, err
		}
		if p == nil {
			return nil, fmt.Errorf("update product id=%d: %w", m.ProductID, ErrNotFound)
		}
		p.Ref = m.Ref
		p.Locale = m.Locale
		p.Title = m.Title
		p.DefaultCategoryID = m.DefaultCategoryID
		p.BasePrice = m.BasePrice
		p.BaseWeight = m.BaseWeight
		p.TaxRuleID = m.TaxRuleID
		p.Visible = m.Visible
		p.CurrencyID = m.CurrencyID
		p.Chapo = m.Chapo
		p.Description = m.Description
		if m.BrandID != nil {
			p.BrandID = m.BrandID
		}
		if m.TemplateID != nil {
			p.TemplateID = m.TemplateID
		}
		// Save zapisuje też wartości zerowe
		if err := s.db.WithContext(ctx).Save(p).Error; err != nil {
			return nil, fmt.Errorf("update product %q: %w", m.Title, err)
		}
		return p, nil

	default:
		return nil, fmt.Errorf("product mutation: unsupported kind %v", m.Kind)
	}
}

// VariantMutation – wariant (product sale elements).
// AttributeAvIDs obowiązuje tylko przy MutationCreate.
type VariantMutation struct {
	Kind      MutationKind
	VariantID uint // update
	ProductID uint

	AttributeAvIDs []uint
	IsDefault      bool

	Ref        string
	Weight     float64
	Price      float64
	EanCode    string
	CurrencyID uint
	TaxRuleID  uint
}

// DispatchVariant wykonuje mutację wariantu i zwraca zapisany wiersz.
// Przy tworzeniu kombinacje atrybutów powstają w tej samej transakcji.
func (s *Store) DispatchVariant(ctx context.Context, m VariantMutation) (*db.ProductSaleElements, error) {
	switch m.Kind {
	case MutationCreate:
		v := &db.ProductSaleElements{
			ProductID:  m.ProductID,
			Ref:        m.Ref,
			Weight:     m.Weight,
			Price:      m.Price,
			EanCode:    m.EanCode,
			CurrencyID: m.CurrencyID,
			TaxRuleID:  m.TaxRuleID,
			IsDefault:  m.IsDefault,
		}
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(v).Error; err != nil {
				return err
			}
			if len(m.AttributeAvIDs) == 0 {
				return nil
			}
			var avs []db.AttributeAv
			if err := tx.Where("id IN ?", m.AttributeAvIDs).Find(&avs).Error; err != nil {
				return err
			}
			for _, av := range avs {
				combo := db.AttributeCombination{
					ProductSaleElementsID: v.ID,
					AttributeID:           av.AttributeID,
					AttributeAvID:         av.ID,
				}
				if _, err := ensure(ctx, tx, &combo,
					"product_sale_elements_id = ? AND attribute_id = ? AND attribute_av_id = ?",
					v.ID, av.AttributeID, av.ID); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("create variant %q: %w", m.Ref, err)
		}
		return v, nil

	case MutationUpdate:
		v, err := findOne[db.ProductSaleElements](ctx, s.db, "id = ?", m.VariantID)
		if err != nil {
			return nil, err
		}
		if v == nil {
			return nil, fmt.Errorf("update variant id=%d: %w", m.VariantID, ErrNotFound)
		}
		v.ProductID = m.ProductID
		v.Ref = m.Ref
		v.Weight = m.Weight
		v.Price = m.Price
		v.EanCode = m.EanCode
		v.CurrencyID = m.CurrencyID
		v.TaxRuleID = m.TaxRuleID
		if err := s.db.WithContext(ctx).Save(v).Error; err != nil {
			return nil, fmt.Errorf("update variant %q: %w", m.Ref, err)
		}
		return v, nil

	default:
		return nil, fmt.Errorf("variant mutation: unsupported kind %v", m.Kind)
	}
}

// CountVariants zwraca liczbę wariantów produktu.
func (s *Store) CountVariants(ctx context.Context, productID uint) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&db.ProductSaleElements{}).Where("product_id = ?", productID).Count(&n).Error
	return n, err
}
