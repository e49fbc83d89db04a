package admin

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bartek5186/csvcatalog/internal/catalog"
	conf "github.com/bartek5186/csvcatalog/internal/config"
	"github.com/bartek5186/csvcatalog/internal/db"
	"github.com/bartek5186/csvcatalog/internal/importer"
	"github.com/bartek5186/csvcatalog/internal/mapper"
	"github.com/bartek5186/csvcatalog/internal/media"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*Server, conf.ImportConfig) {
	t.Helper()
	cfg := conf.Default(t.TempDir())

	h, err := db.Open(cfg.Database.Driver, cfg.Database.DSN, false)
	require.NoError(t, err)
	require.NoError(t, h.Migrate())
	t.Cleanup(func() { _ = h.Close() })

	store := catalog.NewStore(h.DB, zerolog.Nop())
	imp := importer.New(zerolog.Nop(), h.DB, store, media.New(cfg.Import.MediaDir),
		mapper.DefaultMapping(), importer.OptionsFromConfig(cfg.Import))
	return NewServer(zerolog.Nop(), imp, h.DB, cfg.Import), cfg.Import
}

func TestImport_MissingDirectory(t *testing.T) {
	s, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/admin/catalog/import", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "does not exist")
}

func TestImport_RunsCatalogDirAndResetsLog(t *testing.T) {
	s, cfg := newTestServer(t)
	require.NoError(t, os.MkdirAll(cfg.CatalogDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(cfg.CatalogDir, "shoes.csv"), []byte(
		"product_reference,product_title,level_1,tax_rule,price_excl_tax\nR1,Shoe,Footwear,TVA 20,49.90\n"), 0o644))
	require.NoError(t, os.WriteFile(cfg.LogFile, []byte("old run\n"), 0o644))

	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/admin/catalog/import", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Success bool            `json:"success"`
		Report  importer.Report `json:"report"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, 1, body.Report.Imported)
	require.Len(t, body.Report.Files, 1)

	data, err := os.ReadFile(cfg.LogFile)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "old run")

	rec = httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/catalog/status", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var status struct {
		LastRun *importer.Report `json:"last_run"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	require.NotNil(t, status.LastRun)
	assert.Equal(t, body.Report.RunID, status.LastRun.RunID)
}

func TestStatus_NoRunYet(t *testing.T) {
	s, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/catalog/status", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"last_run":null}`, rec.Body.String())
}

func TestLog_DownloadsTail(t *testing.T) {
	s, cfg := newTestServer(t)
	content := strings.Repeat("x", 100) + "\n" + strings.Repeat("line\n", 10000)
	require.NoError(t, os.WriteFile(cfg.LogFile, []byte(content), 0o644))

	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/catalog/log", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="csv-import-log.txt"`, rec.Header().Get("Content-Disposition"))
	assert.LessOrEqual(t, rec.Body.Len(), 40000)
	assert.True(t, strings.HasPrefix(rec.Body.String(), "line\n"))
}

func TestLog_MissingFileIsEmpty(t *testing.T) {
	s, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/catalog/log", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestUnknownMethod(t *testing.T) {
	s, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/catalog/import", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
