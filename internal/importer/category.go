package importer

import (
	"context"

	"github.com/bartek5186/csvcatalog/internal/db"
)

// resolveCategory schodzi po poziomach 1..4 aż do pierwszego pustego.
// Każdy poziom jest szukany (albo tworzony) pod kategorią z poprzedniego poziomu.
func (i *Importer) resolveCategory(ctx context.Context, r *run, levels [4]string) (*db.Category, error) {
	var parent *db.Category
	for _, title := range levels {
		if title == "" {
			break
		}
		var parentID uint
		if parent != nil {
			parentID = parent.ID
		}

		c, err := i.catalog.FindCategory(ctx, parentID, i.opts.Locale, title)
		if err != nil {
			return nil, err
		}
		if c == nil {
			if c, err = i.catalog.CreateCategory(ctx, parentID, i.opts.Locale, title, true); err != nil {
				return nil, err
			}
			r.log.Info().Uint("category_id", c.ID).Uint("parent_id", parentID).Str("title", title).Msg("created category")
		}
		parent = c
	}
	if parent == nil {
		return nil, &MissingCategoryError{}
	}
	return parent, nil
}
