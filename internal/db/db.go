package db

import (
	"fmt"
	"path/filepath"
	"strings"

	glebarez "github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Handle struct {
	DB     *gorm.DB
	Driver string
	Path   string
}

// OpenAt otwiera domyślną bazę sqlite (czyste Go) w katalogu aplikacji.
func OpenAt(dir string) (*Handle, error) {
	return Open("sqlite", filepath.Join(dir, "csvcatalog.db"), false)
}

// Open otwiera bazę katalogu dla wskazanego sterownika.
//
//	sqlite   – github.com/glebarez/sqlite (bez cgo)
//	sqlite3  – gorm.io/driver/sqlite (mattn, cgo)
//	mysql    – gorm.io/driver/mysql
//	postgres – gorm.io/driver/postgres
func Open(driver, dsn string, logSQL bool) (*Handle, error) {
	dial, err := dialector(driver, dsn)
	if err != nil {
		return nil, err
	}

	gcfg := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}
	if logSQL {
		gcfg.Logger = logger.Default.LogMode(logger.Info)
	}

	gdb, err := gorm.Open(dial, gcfg)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	return &Handle{DB: gdb, Driver: strings.ToLower(driver), Path: dsn}, nil
}

func dialector(driver, dsn string) (gorm.Dialector, error) {
	switch strings.ToLower(driver) {
	case "", "sqlite":
		return glebarez.Open(dsn), nil
	case "sqlite3":
		return sqlite.Open(dsn), nil
	case "mysql":
		return mysql.Open(dsn), nil
	case "postgres", "postgresql":
		return postgres.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

// Close zamyka pulę połączeń.
func (h *Handle) Close() error {
	sqlDB, err := h.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
