// Package importer uzgadnia pliki CSV z katalogiem sklepu.
//
// Przebieg (run) obejmuje katalog albo pojedynczy plik. Pliki są przetwarzane po kolei,
// wiersze w kolejności z pliku. Mapper (przenoszenie wartości) i TaxResolver (ostatnia
// stawka) żyją tylko w obrębie jednego przebiegu.
package importer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bartek5186/csvcatalog/internal/catalog"
	conf "github.com/bartek5186/csvcatalog/internal/config"
	"github.com/bartek5186/csvcatalog/internal/db"
	"github.com/bartek5186/csvcatalog/internal/mapper"
	"github.com/bartek5186/csvcatalog/internal/media"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Catalog to operacje magazynu katalogu, z których korzysta importer
// (spełnia je *catalog.Store).
type Catalog interface {
	FindCategory(ctx context.Context, parentID uint, locale, title string) (*db.Category, error)
	CreateCategory(ctx context.Context, parentID uint, locale, title string, visible bool) (*db.Category, error)

	FindTaxRule(ctx context.Context, taxTitle string, countryID uint) (*db.TaxRule, error)
	FindTax(ctx context.Context, locale, title string) (*db.Tax, error)
	CreateTax(ctx context.Context, locale, title string, percentage float64) (*db.Tax, error)
	CreateTaxRule(ctx context.Context, locale, title string, countryID, taxID uint) (*db.TaxRule, error)

	FindAttribute(ctx context.Context, title, locale string) (*db.Attribute, error)
	CreateAttribute(ctx context.Context, title, locale string) (*db.Attribute, error)
	FindAttributeAv(ctx context.Context, attributeID uint, title, locale string) (*db.AttributeAv, error)
	CreateAttributeAv(ctx context.Context, attributeID uint, title, locale string) (*db.AttributeAv, error)
	FindFeature(ctx context.Context, title, locale string) (*db.Feature, error)
	CreateFeature(ctx context.Context, title, locale string) (*db.Feature, error)
	FindFeatureAv(ctx context.Context, featureID uint, title, locale string) (*db.FeatureAv, error)
	CreateFeatureAv(ctx context.Context, featureID uint, title, locale string) (*db.FeatureAv, error)
	FindBrand(ctx context.Context, title, locale string) (*db.Brand, error)
	CreateBrand(ctx context.Context, title, locale string) (*db.Brand, error)
	FindTemplate(ctx context.Context, name, locale string) (*db.Template, error)
	CreateTemplate(ctx context.Context, name, locale string) (*db.Template, error)
	EnsureAttributeTemplate(ctx context.Context, attributeID, templateID uint) (bool, error)
	EnsureFeatureTemplate(ctx context.Context, featureID, templateID uint) (bool, error)

	FindProduct(ctx context.Context, title, locale string) (*db.Product, error)
	DispatchProduct(ctx context.Context, m catalog.ProductMutation) (*db.Product, error)
	FindVariant(ctx context.Context, productID uint, ref string) (*db.ProductSaleElements, error)
	DispatchVariant(ctx context.Context, m catalog.VariantMutation) (*db.ProductSaleElements, error)
	CountVariants(ctx context.Context, productID uint) (int64, error)
	EnsureAttributeCombination(ctx context.Context, variantID, attributeID, attributeAvID uint) (bool, error)
	EnsureFeatureProduct(ctx context.Context, productID, featureID, featureAvID uint) (bool, error)

	FindImage(ctx context.Context, productID uint, file string) (*db.ProductImage, error)
	CreateImage(ctx context.Context, productID uint, file string) (*db.ProductImage, error)
	TouchImage(ctx context.Context, img *db.ProductImage) error
	EnsureVariantImage(ctx context.Context, variantID, imageID uint) (bool, error)
}

// Options – parametry sklepu, do którego trafia import.
type Options struct {
	Locale     string
	CountryID  uint
	CurrencyID uint
	Encoding   string
	Comma      rune
}

func OptionsFromConfig(c conf.ImportConfig) Options {
	return Options{
		Locale:     c.Locale,
		CountryID:  c.CountryID,
		CurrencyID: c.CurrencyID,
		Encoding:   c.Encoding,
		Comma:      c.Comma(),
	}
}

type Importer struct {
	log     zerolog.Logger
	db      *gorm.DB // import_files, kvs
	catalog Catalog
	media   *media.Store
	mapping mapper.Mapping
	opts    Options

	mu sync.Mutex // jeden przebieg naraz
}

func New(log zerolog.Logger, gdb *gorm.DB, cat Catalog, med *media.Store, mapping mapper.Mapping, opts Options) *Importer {
	if opts.Comma == 0 {
		opts.Comma = ','
	}
	if mapping == nil {
		mapping = mapper.DefaultMapping()
	}
	return &Importer{
		log:     log.With().Str("component", "importer").Logger(),
		db:      gdb,
		catalog: cat,
		media:   med,
		mapping: mapping,
		opts:    opts,
	}
}

// run – stan jednego przebiegu.
type run struct {
	id     string
	mapper *mapper.Mapper
	tax    *TaxResolver
	log    zerolog.Logger
}

func (i *Importer) newRun() *run {
	id := uuid.NewString()
	log := i.log.With().Str("run_id", id).Logger()
	return &run{
		id:     id,
		mapper: mapper.New(i.mapping, log),
		tax:    NewTaxResolver(i.catalog, log, i.opts.CountryID, i.opts.Locale),
		log:    log,
	}
}

type FileResult struct {
	Name      string `json:"name"`
	Rows      int    `json:"rows"`
	Imported  int    `json:"imported"`
	Skipped   int    `json:"skipped"`
	RowErrors int    `json:"row_errors"`
	Error     string `json:"error,omitempty"`
}

type Report struct {
	RunID       string       `json:"run_id"`
	Path        string       `json:"path"`
	Files       []FileResult `json:"files"`
	FailedFiles int          `json:"failed_files"`
	Rows        int          `json:"rows"`
	Imported    int          `json:"imported"`
	Skipped     int          `json:"skipped"`
	RowErrors   int          `json:"row_errors"`
	StartedAt   time.Time    `json:"started_at"`
	FinishedAt  time.Time    `json:"finished_at"`
}

// Success – żaden plik nie zakończył się błędem.
func (r *Report) Success() bool { return r.FailedFiles == 0 }

func (r *Report) add(res FileResult) {
	r.Files = append(r.Files, res)
	r.Rows += res.Rows
	r.Imported += res.Imported
	r.Skipped += res.Skipped
	r.RowErrors += res.RowErrors
	if res.Error != "" {
		r.FailedFiles++
	}
}

// ImportDirectory importuje pliki *.csv z katalogu path (bez rekursji) albo pojedynczy plik.
// Zdjęcia są szukane w <katalog>/Images. Błąd zwracany jest tylko gdy ścieżki nie da się
// odczytać; błędy plików trafiają do raportu.
func (i *Importer) ImportDirectory(ctx context.Context, path string) (*Report, error) {
	if !i.mu.TryLock() {
		return nil, ErrRunInProgress
	}
	defer i.mu.Unlock()

	path = expandHome(path)
	fi, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("import %s: %w", path, err)
	}

	var files []string
	baseDir := path
	if fi.IsDir() {
		if files, err = listCSV(path); err != nil {
			return nil, fmt.Errorf("import %s: %w", path, err)
		}
	} else {
		files = []string{path}
		baseDir = filepath.Dir(path)
	}

	r := i.newRun()
	rep := &Report{RunID: r.id, Path: path, StartedAt: time.Now()}
	r.log.Info().Str("path", path).Int("files", len(files)).Msg("import started")

	for _, f := range files {
		if err := ctx.Err(); err != nil {
			r.log.Warn().Err(err).Msg("import cancelled")
			break
		}
		r.log.Info().Str("file", filepath.Base(f)).Msg("importing file")
		res, err := i.importFile(ctx, r, f, baseDir)
		if err != nil {
			res.Error = err.Error()
			r.log.Error().Err(err).Str("file", res.Name).Msg("file import failed")
		} else {
			r.log.Info().Str("file", res.Name).Int("imported", res.Imported).Int("skipped", res.Skipped).Msg("file imported")
		}
		rep.add(res)
	}
	rep.FinishedAt = time.Now()

	r.log.Info().Int("files", len(rep.Files)).Int("errors", rep.FailedFiles).
		Msgf("%d file(s) processed, %d error(s)", len(rep.Files), rep.FailedFiles)

	if err := i.saveReport(rep); err != nil {
		r.log.Error().Err(err).Msg("saving run summary failed")
	}
	return rep, ctx.Err()
}

// importFile – rejestracja w import_files, przetworzenie, zapis statusu.
func (i *Importer) importFile(ctx context.Context, r *run, path, baseDir string) (FileResult, error) {
	res := FileResult{Name: filepath.Base(path)}
	importID, err := i.registerFile(r.id, path)
	if err != nil {
		return res, fmt.Errorf("register %s: %w", res.Name, err)
	}
	err = i.processFile(ctx, r, path, baseDir, &res)
	i.finishFile(importID, res, err)
	return res, err
}

const lastRunKey = "last_run"

func (i *Importer) saveReport(rep *Report) error {
	raw, err := json.Marshal(rep)
	if err != nil {
		return err
	}
	return i.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "k"}},
		DoUpdates: clause.AssignmentColumns([]string{"v"}),
	}).Create(&db.KV{K: lastRunKey, V: string(raw)}).Error
}

// LastReport zwraca podsumowanie ostatniego przebiegu albo nil, jeśli jeszcze go nie było.
func LastReport(gdb *gorm.DB) (*Report, error) {
	var kv db.KV
	err := gdb.Where("k = ?", lastRunKey).Take(&kv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var rep Report
	if err := json.Unmarshal([]byte(kv.V), &rep); err != nil {
		return nil, fmt.Errorf("decode %s: %w", lastRunKey, err)
	}
	return &rep, nil
}
