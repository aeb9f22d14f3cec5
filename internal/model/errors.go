package model

import "errors"

var (
	// ErrNotFound is returned when a resource is not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when a resource already exists.
	ErrAlreadyExists = errors.New("already exists")
	// ErrNotValid is returned when a resource is not valid.
	ErrNotValid = errors.New("not valid")
	// ErrAuthRequired is returned when the remote rejected the credentials.
	ErrAuthRequired = errors.New("authentication required")
	// ErrMalformedResponse is returned when the remote returned an unexpected payload.
	ErrMalformedResponse = errors.New("malformed response")
	// ErrShutdown is returned when the application is shutting down in the middle of an operation.
	ErrShutdown = errors.New("shutting down")
	// ErrSyncOngoing is returned when a sync pass is requested while another one is running.
	ErrSyncOngoing = errors.New("sync already ongoing")
)
