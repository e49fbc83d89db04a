package importer

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/bartek5186/csvcatalog/internal/db"
)

// addImage dołącza lokalne zdjęcie z <baseDir>/Images do produktu i wariantu.
// Adresy http(s) nie są pobierane. Błędy zdjęcia nie przerywają wiersza.
func (i *Importer) addImage(ctx context.Context, r *run, p *db.Product, v *db.ProductSaleElements, name, baseDir string) {
	if len(name) >= 4 && strings.EqualFold(name[:4], "http") {
		r.log.Warn().Str("ref", p.Ref).Str("image", name).
			Msg("remote images are not supported, please use a local copy")
		return
	}

	// tylko pliki wewnątrz Images/ (bez "../" i ścieżek absolutnych)
	if !filepath.IsLocal(name) {
		r.log.Warn().Str("ref", p.Ref).Str("image", name).
			Msg("image path outside the Images directory, skipping")
		return
	}

	src := filepath.Join(baseDir, "Images", name)
	if fi, err := os.Stat(src); err != nil || !fi.Mode().IsRegular() {
		r.log.Warn().Str("path", src).Msg("image not found")
		return
	}

	if err := i.stageImage(ctx, p, v, src); err != nil {
		r.log.Error().Err(err).Str("path", src).Msg("adding image failed")
	}
}

func (i *Importer) stageImage(ctx context.Context, p *db.Product, v *db.ProductSaleElements, src string) error {
	file := filepath.Base(src)

	img, err := i.catalog.FindImage(ctx, p.ID, file)
	if err != nil {
		return err
	}
	// ponowny import: stary plik znika przed skopiowaniem nowego
	if img != nil && i.media.Exists(p.ID, file) {
		if err := i.media.Remove(p.ID, file); err != nil {
			return err
		}
	}
	if _, err := i.media.Put(p.ID, src); err != nil {
		return err
	}

	if img == nil {
		if img, err = i.catalog.CreateImage(ctx, p.ID, file); err != nil {
			return err
		}
	} else if err := i.catalog.TouchImage(ctx, img); err != nil {
		return err
	}

	_, err = i.catalog.EnsureVariantImage(ctx, v.ID, img.ID)
	return err
}
