package apperr

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("conflict")
	ErrAlreadyExists = errors.New("already exists")
	ErrInvalidRule   = errors.New("invalid rule")
	ErrInvalidMode   = errors.New("invalid view mode")
	ErrInvalidTarget = errors.New("invalid lock target")
)
