package service

import (
	"errors"
	"fmt"
)

var (
	// ErrNoData means a date-range aggregate matched no observations.
	ErrNoData = errors.New("no observations in the requested range")
	// ErrInvalidInput wraps malformed or inconsistent request parameters.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidRange is the ErrInvalidInput for a start date after the end date.
	ErrInvalidRange = fmt.Errorf("%w: start is after end", ErrInvalidInput)
	// ErrEmptyStore means the dataset has no observations at all, so no window exists.
	ErrEmptyStore = errors.New("dataset has no observations")
	// ErrStore wraps failures from the data store.
	ErrStore = errors.New("store failure")
)

func storeError(err error) error {
	return fmt.Errorf("%w: %w", ErrStore, err)
}

func invalidInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
