package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/bartek5186/csvcatalog/internal/catalog"
	conf "github.com/bartek5186/csvcatalog/internal/config"
	"github.com/bartek5186/csvcatalog/internal/db"
	"github.com/bartek5186/csvcatalog/internal/importer"
	"github.com/bartek5186/csvcatalog/internal/logs"
	"github.com/bartek5186/csvcatalog/internal/mapper"
	"github.com/bartek5186/csvcatalog/internal/media"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// wersję możesz nadpisać przez: -ldflags "-X 'main.ver=1.0.1'"
var ver = "1.0.0"

const appName = "csvcatalog"

// app – wszystko, czego potrzebują CLI i tray.
type app struct {
	dir     string
	cfgPath string
	cfg     *conf.Config
	log     zerolog.Logger
	dbh     *db.Handle
	imp     *importer.Importer
}

func bootstrap(withConsole bool) (*app, error) {
	dir := mustAppDataDir(appName)

	// .env z bieżącego katalogu, potem z katalogu aplikacji; brak pliku to nie błąd
	_ = godotenv.Load()
	_ = godotenv.Load(filepath.Join(dir, ".env"))

	cfgPath := filepath.Join(dir, "config.json")
	cfg, firstRun, err := conf.LoadOrCreate(cfgPath)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	_ = os.MkdirAll(filepath.Dir(cfg.Import.LogFile), 0o755)
	log := logs.New(cfg.Import.LogFile, withConsole)
	if firstRun {
		log.Info().Msgf("Utworzono domyślną konfigurację: %s", cfgPath)
	}

	dbh, err := db.Open(cfg.Database.Driver, cfg.Database.DSN, cfg.Database.LogSQL)
	if err != nil {
		return nil, err
	}
	if err := dbh.Migrate(); err != nil {
		_ = dbh.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	log.Info().Str("driver", dbh.Driver).Msg("DB ready")

	mapping := mapper.DefaultMapping()
	if cfg.Import.MappingFile != "" {
		if mapping, err = mapper.LoadMapping(cfg.Import.MappingFile); err != nil {
			_ = dbh.Close()
			return nil, err
		}
	}

	store := catalog.NewStore(dbh.DB, log)
	imp := importer.New(log, dbh.DB, store, media.New(cfg.Import.MediaDir), mapping, importer.OptionsFromConfig(cfg.Import))

	return &app{dir: dir, cfgPath: cfgPath, cfg: cfg, log: log, dbh: dbh, imp: imp}, nil
}

func (a *app) Close() {
	if err := a.dbh.Close(); err != nil {
		a.log.Warn().Err(err).Msg("DB close")
	}
}

// reloadConfig wczytuje config ponownie; importer zostaje ze starymi parametrami sklepu.
func (a *app) reloadConfig() (*conf.Config, error) {
	cfg, _, err := conf.LoadOrCreate(a.cfgPath)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv()
	a.cfg = cfg
	return cfg, nil
}

func mustAppDataDir(name string) string {
	base, err := os.UserConfigDir()
	if err != nil {
		panic(err)
	}
	p := filepath.Join(base, name)
	_ = os.MkdirAll(p, 0o755)
	return p
}

// przenośne otwieranie plików/katalogów w domyślnej aplikacji
func openInExplorer(path string) {
	switch runtime.GOOS {
	case "windows":
		// "start" musi być uruchomiony przez cmd /C, z pustym tytułem okna ""
		_ = exec.Command("cmd", "/C", "start", "", path).Start()
	case "darwin":
		_ = exec.Command("open", path).Start()
	default:
		_ = exec.Command("xdg-open", path).Start()
	}
}
