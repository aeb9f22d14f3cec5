package lib

import (
	"errors"

	"github.com/slok/crxsync/internal/model"
)

var (
	// ErrNotFound is returned when a task does not exist.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when an open task with the same title exists.
	ErrAlreadyExists = errors.New("already exists")
	// ErrNotValid is returned on invalid input or operation (e.g. completing a completed task).
	ErrNotValid = errors.New("not valid")
	// ErrSyncOngoing is returned when a sync is requested while another one is running.
	ErrSyncOngoing = errors.New("sync already ongoing")
	// ErrAuthRequired is returned when the CRM rejected the credentials.
	ErrAuthRequired = errors.New("authentication required")
)

func mapError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, model.ErrNotFound):
		return joinErrors(err, ErrNotFound)
	case errors.Is(err, model.ErrAlreadyExists):
		return joinErrors(err, ErrAlreadyExists)
	case errors.Is(err, model.ErrNotValid):
		return joinErrors(err, ErrNotValid)
	case errors.Is(err, model.ErrSyncOngoing):
		return joinErrors(err, ErrSyncOngoing)
	case errors.Is(err, model.ErrAuthRequired):
		return joinErrors(err, ErrAuthRequired)
	default:
		return err
	}
}

func joinErrors(original, sentinel error) error {
	return &mappedError{original: original, sentinel: sentinel}
}

type mappedError struct {
	original error
	sentinel error
}

func (e *mappedError) Error() string { return e.original.Error() }

func (e *mappedError) Is(target error) bool {
	return target == e.sentinel
}

func (e *mappedError) Unwrap() error { return e.original }
