// internal/config/config.go
package conf

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Główny config aplikacji
type Config struct {
	AutoStart           bool           `json:"auto_start"`
	SyncIntervalSeconds int            `json:"sync_interval_seconds"`
	Database            DatabaseConfig `json:"database"`
	Import              ImportConfig   `json:"import"`
	Admin               AdminConfig    `json:"admin"`
}

type DatabaseConfig struct {
	Driver string `json:"driver"` // sqlite | sqlite3 | mysql | postgres
	DSN    string `json:"dsn"`
	LogSQL bool   `json:"log_sql,omitempty"`
}

type ImportConfig struct {
	CatalogDir  string `json:"catalog_dir"` // katalog z plikami *.csv i podkatalogiem Images/
	Locale      string `json:"locale"`
	CountryID   uint   `json:"country_id"`
	CurrencyID  uint   `json:"currency_id"`
	Encoding    string `json:"encoding"`  // np. utf-8, windows-1252
	Delimiter   string `json:"delimiter"` // jeden znak
	MappingFile string `json:"mapping_file,omitempty"`
	MediaDir    string `json:"media_dir"`
	LogFile     string `json:"log_file"`
}

type AdminConfig struct {
	Addr string `json:"addr"`
}

// EnvDSN nadpisuje database.dsn (np. z pliku .env)
const EnvDSN = "CSVCATALOG_DB_DSN"

// Default buduje domyślny config dla katalogu aplikacji.
func Default(appDir string) *Config {
	return &Config{
		AutoStart:           false,
		SyncIntervalSeconds: 3600,
		Database: DatabaseConfig{
			Driver: "sqlite",
			DSN:    filepath.Join(appDir, "csvcatalog.db"),
		},
		Import: ImportConfig{
			CatalogDir: filepath.Join(appDir, "Catalogue"),
			Locale:     "fr_FR",
			CountryID:  64,
			CurrencyID: 1,
			Encoding:   "utf-8",
			Delimiter:  ",",
			MediaDir:   filepath.Join(appDir, "media"),
			LogFile:    filepath.Join(appDir, "catalog-import-log.txt"),
		},
		Admin: AdminConfig{
			Addr: "127.0.0.1:8089",
		},
	}
}

func LoadOrCreate(path string) (*Config, bool, error) {
	// upewnij się, że katalog istnieje
	_ = os.MkdirAll(filepath.Dir(path), 0o755)

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := Default(filepath.Dir(path))
			if err := Save(path, cfg); err != nil {
				return nil, false, fmt.Errorf("błąd zapisu domyślnego configa: %w", err)
			}
			return cfg, true, nil
		}
		return nil, false, fmt.Errorf("błąd otwierania configa: %w", err)
	}
	defer f.Close()

	// brakujące pola biorą wartości domyślne
	cfg := Default(filepath.Dir(path))
	if err := json.NewDecoder(f).Decode(cfg); err != nil {
		return nil, false, fmt.Errorf("błąd parsowania configa: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, false, err
	}
	return cfg, false, nil
}

func Save(path string, cfg *Config) error {
	_ = os.MkdirAll(filepath.Dir(path), 0o755)
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(cfg)
}

// ApplyEnv nadpisuje wybrane pola zmiennymi środowiskowymi.
func (c *Config) ApplyEnv() {
	if dsn := strings.TrimSpace(os.Getenv(EnvDSN)); dsn != "" {
		c.Database.DSN = dsn
	}
}

// Validate zwraca wszystkie błędy naraz.
func (c *Config) Validate() error {
	var errs []string

	switch strings.ToLower(c.Database.Driver) {
	case "sqlite", "sqlite3", "mysql", "postgres", "postgresql":
	default:
		errs = append(errs, fmt.Sprintf("database.driver (%q) must be one of: sqlite, sqlite3, mysql, postgres", c.Database.Driver))
	}
	if c.Database.DSN == "" {
		errs = append(errs, "database.dsn is required")
	}
	if c.SyncIntervalSeconds < 0 {
		errs = append(errs, "sync_interval_seconds must be non-negative")
	}
	if c.Import.Locale == "" {
		errs = append(errs, "import.locale is required")
	}
	if c.Import.CountryID == 0 {
		errs = append(errs, "import.country_id must be positive")
	}
	if c.Import.CurrencyID == 0 {
		errs = append(errs, "import.currency_id must be positive")
	}
	if len([]rune(c.Import.Delimiter)) != 1 {
		errs = append(errs, fmt.Sprintf("import.delimiter (%q) must be a single character", c.Import.Delimiter))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// Comma zwraca separator kolumn CSV.
func (c ImportConfig) Comma() rune {
	r := []rune(c.Delimiter)
	if len(r) != 1 {
		return ','
	}
	return r[0]
}
