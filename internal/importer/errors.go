package importer

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation – wiersz bez wymaganego pola; wiersz jest pomijany z ostrzeżeniem.
	ErrValidation = errors.New("row validation failed")

	ErrRunInProgress = errors.New("import already running")
)

type MissingCategoryError struct{}

func (e *MissingCategoryError) Error() string {
	return "a product must have at least one category"
}

type MissingTaxLabelError struct{}

func (e *MissingTaxLabelError) Error() string {
	return "missing tax label and no previous label in this run"
}

type InvalidTaxLabelError struct {
	Label string
}

func (e *InvalidTaxLabelError) Error() string {
	return fmt.Sprintf("tax label %q has no percentage", e.Label)
}

func validationErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
