// Package catalog jest warstwą zapisu katalogu sklepu na gorm.
//
// Importer widzi tylko trzy rodzaje operacji: wyszukanie po kluczu naturalnym
// (Find*, zwraca nil gdy brak), utworzenie encji (Create*, zwraca wiersz z nadanym ID)
// oraz idempotentne powiązania (Ensure*, tworzy tylko brakujący wiersz).
// Każda operacja jest zatwierdzana od razu; nie ma transakcji obejmującej wiele wierszy CSV.
package catalog

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

var ErrNotFound = errors.New("catalog: record not found")

type Store struct {
	db  *gorm.DB
	log zerolog.Logger
}

func NewStore(gdb *gorm.DB, log zerolog.Logger) *Store {
	return &Store{db: gdb, log: log.With().Str("component", "catalog").Logger()}
}

// DB zwraca uchwyt gorm (np. dla testów i raportów).
func (s *Store) DB() *gorm.DB { return s.db }

// findOne zwraca pierwszy wiersz spełniający warunek albo nil.
func findOne[T any](ctx context.Context, gdb *gorm.DB, query any, args ...any) (*T, error) {
	var row T
	res := gdb.WithContext(ctx).Where(query, args...).Limit(1).Find(&row)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return &row, nil
}

// ensure tworzy row tylko jeśli nie istnieje wiersz spełniający warunek.
// Zwraca true gdy wiersz został utworzony.
func ensure[T any](ctx context.Context, gdb *gorm.DB, row *T, query any, args ...any) (bool, error) {
	existing, err := findOne[T](ctx, gdb, query, args...)
	if err != nil {
		return false, err
	}
	if existing != nil {
		*row = *existing
		return false, nil
	}
	if err := gdb.WithContext(ctx).Create(row).Error; err != nil {
		return false, err
	}
	return true, nil
}

func create[T any](ctx context.Context, gdb *gorm.DB, row *T) (*T, error) {
	if err := gdb.WithContext(ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}
