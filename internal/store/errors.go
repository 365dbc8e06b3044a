package store

import "errors"

var (
	ErrMalformedState  = errors.New("malformed persisted state")
	ErrEmptyTitle      = errors.New("title is required")
	ErrEmptyName       = errors.New("project name is required")
	ErrInvalidPriority = errors.New("invalid priority")
)
