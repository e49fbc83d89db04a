package importer

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/bartek5186/csvcatalog/internal/db"
	"golang.org/x/net/html/charset"
	"gorm.io/gorm"
)

// listCSV zwraca pliki *.csv leżące bezpośrednio w dir (bez podkatalogów i plików ukrytych).
func listCSV(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasPrefix(name, ".") || !strings.EqualFold(filepath.Ext(name), ".csv") {
			continue
		}
		out = append(out, filepath.Join(dir, name))
	}
	sort.Strings(out)
	return out, nil
}

// registerFile zapisuje plik w import_files. Ten sam plik (sha256) wraca do statusu pending
// i jest przetwarzany ponownie, import jest idempotentny.
func (i *Importer) registerFile(runID, fullPath string) (uint, error) {
	fi, err := os.Stat(fullPath)
	if err != nil {
		return 0, err
	}
	h, err := fileSHA256(fullPath)
	if err != nil {
		return 0, err
	}
	name := filepath.Base(fullPath)

	var existing db.ImportFile
	err = i.db.Where("sha256 = ?", h).Take(&existing).Error
	switch {
	case err == nil:
		err = i.db.Model(&db.ImportFile{}).Where("import_id = ?", existing.ImportID).
			Updates(map[string]any{"run_id": runID, "filename": name, "status": db.FileStatusPending, "last_error": ""}).Error
		return existing.ImportID, err
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return 0, err
	}

	rec := db.ImportFile{
		RunID:     runID,
		Filename:  name,
		SHA256:    h,
		SizeBytes: fi.Size(),
		Status:    db.FileStatusPending,
	}
	if err := i.db.Create(&rec).Error; err != nil {
		return 0, err
	}
	return rec.ImportID, nil
}

func (i *Importer) finishFile(importID uint, res FileResult, procErr error) {
	now := time.Now()
	upd := map[string]any{
		"status":       db.FileStatusDone,
		"rows":         res.Rows,
		"imported":     res.Imported,
		"skipped":      res.Skipped,
		"row_errors":   res.RowErrors,
		"last_error":   "",
		"processed_at": now,
	}
	if procErr != nil {
		upd["status"] = db.FileStatusError
		upd["last_error"] = procErr.Error()
	}
	if err := i.db.Model(&db.ImportFile{}).Where("import_id = ?", importID).Updates(upd).Error; err != nil {
		i.log.Error().Err(err).Uint("import_id", importID).Msg("import_files update failed")
	}
}

func fileSHA256(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// decodeReader dekoduje wejście z podanego kodowania do UTF-8.
func decodeReader(in io.Reader, encoding string) (io.Reader, error) {
	if encoding == "" {
		encoding = "utf-8"
	}
	r, err := charset.NewReaderLabel(normalizeCharset(encoding), in)
	if err != nil {
		return nil, fmt.Errorf("encoding %q: %w", encoding, err)
	}
	return r, nil
}

// normalizeCharset mapuje nietypowe etykiety na nazwy rozpoznawane przez charset.NewReaderLabel
func normalizeCharset(cs string) string {
	c := strings.TrimSpace(strings.ToLower(cs))
	switch c {
	case "latin ii", "latin-2", "latin2", "iso8859-2", "iso_8859-2":
		return "iso-8859-2"
	case "latin1", "latin-1", "iso8859-1", "iso_8859-1":
		return "iso-8859-1"
	case "cp1250", "windows1250", "win-1250":
		return "windows-1250"
	case "cp1252", "windows1252", "win-1252":
		return "windows-1252"
	default:
		return c
	}
}

// decimal parsuje liczbę z CSV. Symbol waluty na początku/końcu jest odcinany,
// spacje (też twarde) to separatory tysięcy. Gdy są i przecinek, i kropka,
// separatorem dziesiętnym jest ten ostatni ("1,234.56", "1.234,56").
func decimal(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	raw := s
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	s = strings.TrimFunc(s, func(r rune) bool {
		return !unicode.IsDigit(r) && r != '-' && r != '+' && r != '.' && r != ','
	})
	if s == "" {
		return 0, fmt.Errorf("not a number: %q", raw)
	}

	dot, comma := strings.LastIndexByte(s, '.'), strings.LastIndexByte(s, ',')
	switch {
	case dot >= 0 && comma >= 0 && comma > dot:
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case dot >= 0 && comma >= 0:
		s = strings.ReplaceAll(s, ",", "")
	case comma >= 0:
		s = strings.Replace(s, ",", ".", 1)
	}
	return strconv.ParseFloat(s, 64)
}

func expandHome(p string) string {
	if strings.HasPrefix(p, "~") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}
