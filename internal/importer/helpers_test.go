package importer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bartek5186/csvcatalog/internal/catalog"
	"github.com/bartek5186/csvcatalog/internal/db"
	"github.com/bartek5186/csvcatalog/internal/mapper"
	"github.com/bartek5186/csvcatalog/internal/media"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testCountry = 64

type fixture struct {
	imp   *Importer
	store *catalog.Store
	gdb   *gorm.DB
	dir   string // katalog z plikami CSV
	media string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWith(t, Options{Locale: "fr_FR", CountryID: testCountry, CurrencyID: 1})
}

func newFixtureWith(t *testing.T, opts Options) *fixture {
	t.Helper()
	root := t.TempDir()

	h, err := db.Open("sqlite", filepath.Join(root, "catalog.db"), false)
	require.NoError(t, err)
	require.NoError(t, h.Migrate())
	t.Cleanup(func() { _ = h.Close() })

	dir := filepath.Join(root, "Catalogue")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "Images"), 0o755))
	mediaDir := filepath.Join(root, "media")

	store := catalog.NewStore(h.DB, zerolog.Nop())
	imp := New(zerolog.Nop(), h.DB, store, media.New(mediaDir), mapper.DefaultMapping(), opts)
	return &fixture{imp: imp, store: store, gdb: h.DB, dir: dir, media: mediaDir}
}

func (f *fixture) write(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(f.dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func count[T any](t *testing.T, gdb *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, gdb.Model(new(T)).Count(&n).Error)
	return n
}
