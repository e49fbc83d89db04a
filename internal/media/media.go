// Package media trzyma pliki zdjęć produktów w katalogu mediów.
// Układ: <Dir>/products/<productID>/<nazwa pliku>.
package media

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
)

type Store struct {
	Dir string
}

func New(dir string) *Store {
	return &Store{Dir: dir}
}

// Path zwraca logiczną ścieżkę zdjęcia produktu.
func (s *Store) Path(productID uint, name string) string {
	return filepath.Join(s.Dir, "products", strconv.FormatUint(uint64(productID), 10), filepath.Base(name))
}

// Exists – czy pod ścieżką leży zwykły plik.
func (s *Store) Exists(productID uint, name string) bool {
	fi, err := os.Stat(s.Path(productID, name))
	return err == nil && fi.Mode().IsRegular()
}

// Remove usuwa plik; brak pliku nie jest błędem.
func (s *Store) Remove(productID uint, name string) error {
	err := os.Remove(s.Path(productID, name))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Put kopiuje plik źródłowy do katalogu mediów i zwraca ścieżkę docelową.
// Zapis idzie przez plik tymczasowy + rename.
func (s *Store) Put(productID uint, src string) (string, error) {
	dst := s.Path(productID, src)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", err
	}

	in, err := os.Open(src)
	if err != nil {
		return "", err
	}
	defer in.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".upload-*")
	if err != nil {
		return "", err
	}
	tmpName := tmp.Name()

	if _, err := io.Copy(tmp, in); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("copy %s: %w", src, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", err
	}
	if err := os.Rename(tmpName, dst); err != nil {
		os.Remove(tmpName)
		return "", err
	}
	return dst, nil
}
