package importer

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/bartek5186/csvcatalog/internal/mapper"
)

// processFile czyta nagłówek i wiersze pliku. Wiersz o złej liczbie kolumn przerywa plik,
// wiersz nieprzechodzący walidacji jest pomijany, błąd uzgadniania wiersza jest liczony
// i plik leci dalej (plik kończy się wtedy błędem).
func (i *Importer) processFile(ctx context.Context, r *run, path, baseDir string, res *FileResult) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("cannot open file: %w", err)
	}
	defer f.Close()

	in, err := decodeReader(bufio.NewReader(f), i.opts.Encoding)
	if err != nil {
		return err
	}
	cr := csv.NewReader(in)
	cr.Comma = i.opts.Comma
	cr.FieldsPerRecord = -1 // liczbę kolumn sprawdza mapper

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		r.log.Warn().Str("file", res.Name).Msg("empty file")
		return nil
	}
	if err != nil {
		return fmt.Errorf("read header: %w", err)
	}
	header = mapper.NormalizeHeader(header)
	r.mapper.CheckHeaders(header)

	line := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		res.Rows++

		rec, err := r.mapper.Map(header, row)
		if err != nil {
			return fmt.Errorf("line %d: problem while combining headers and data: %w", line, err)
		}

		err = i.importRow(ctx, r, rec, baseDir)
		switch {
		case err == nil:
			res.Imported++
		case errors.Is(err, ErrValidation):
			res.Skipped++
			r.log.Warn().Str("file", res.Name).Int("line", line).Msg(err.Error())
		default:
			res.RowErrors++
			r.log.Error().Err(err).Str("file", res.Name).Int("line", line).Str("ref", rec.Ref).Msg("row import failed")
		}
	}

	if res.RowErrors > 0 {
		return fmt.Errorf("%d row(s) failed", res.RowErrors)
	}
	return nil
}

// validate – bramka pól wymaganych, w tej kolejności.
func validate(rec *mapper.Record) error {
	switch {
	case rec.Ref == "":
		return validationErr("missing product reference")
	case rec.Title == "":
		return validationErr("missing product title")
	case rec.Levels[0] == "":
		return validationErr("missing product category")
	case rec.TaxRule == "":
		return validationErr("missing product tax rule")
	case rec.PriceExclTax == "":
		return validationErr("missing product price for: %s", rec.Ref)
	}
	return nil
}

// importRow uzgadnia jeden rekord: kategoria, podatek, produkt, wariant, cechy, zdjęcie.
func (i *Importer) importRow(ctx context.Context, r *run, rec *mapper.Record, baseDir string) error {
	if err := validate(rec); err != nil {
		return err
	}
	price, err := decimal(rec.PriceExclTax)
	if err != nil {
		return validationErr("invalid product price %q for: %s", rec.PriceExclTax, rec.Ref)
	}
	weight, err := decimal(rec.Weight)
	if err != nil {
		r.log.Warn().Str("ref", rec.Ref).Str("weight", rec.Weight).Msg("invalid weight, using 0")
		weight = 0
	}

	category, err := i.resolveCategory(ctx, r, rec.Levels)
	if err != nil {
		return fmt.Errorf("category: %w", err)
	}
	rule, err := r.tax.Resolve(ctx, rec.TaxRule)
	if err != nil {
		return fmt.Errorf("tax: %w", err)
	}

	product, err := i.findOrCreateProduct(ctx, r, rec, category.ID, rule.ID, price, weight)
	if err != nil {
		return fmt.Errorf("product %q: %w", rec.Title, err)
	}
	variant, err := i.upsertVariant(ctx, r, product, rec, price, weight)
	if err != nil {
		return fmt.Errorf("variant %q: %w", rec.Ref, err)
	}
	if err := i.addFeatures(ctx, r, product, rec); err != nil {
		return fmt.Errorf("features of %q: %w", rec.Title, err)
	}
	if rec.Image != "" {
		i.addImage(ctx, r, product, variant, rec.Image, baseDir)
	}
	return nil
}
