package conf

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadOrCreate_FirstRun(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	cfg, firstRun, err := LoadOrCreate(path)
	require.NoError(t, err)
	assert.True(t, firstRun)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, filepath.Join(dir, "Catalogue"), cfg.Import.CatalogDir)
	assert.Equal(t, "fr_FR", cfg.Import.Locale)
	assert.FileExists(t, path)

	again, firstRun, err := LoadOrCreate(path)
	require.NoError(t, err)
	assert.False(t, firstRun)
	assert.Equal(t, cfg, again)
}

func TestLoadOrCreate_PartialFileKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"import":{"locale":"en_US","country_id":1,"currency_id":2,"delimiter":";"}}`), 0o644))

	cfg, _, err := LoadOrCreate(path)
	require.NoError(t, err)
	assert.Equal(t, "en_US", cfg.Import.Locale)
	assert.Equal(t, ';', cfg.Import.Comma())
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, filepath.Join(dir, "csvcatalog.db"), cfg.Database.DSN)
}

func TestLoadOrCreate_BrokenJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{`), 0o644))

	_, _, err := LoadOrCreate(path)
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Default(t.TempDir())
	cfg.Database.Driver = "oracle"
	cfg.Import.Delimiter = ";;"
	cfg.Import.CountryID = 0

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database.driver")
	assert.Contains(t, err.Error(), "import.delimiter")
	assert.Contains(t, err.Error(), "import.country_id")
}

func TestApplyEnv(t *testing.T) {
	t.Setenv(EnvDSN, "postgres://localhost/catalog")
	cfg := Default(t.TempDir())
	cfg.ApplyEnv()
	assert.Equal(t, "postgres://localhost/catalog", cfg.Database.DSN)
}
