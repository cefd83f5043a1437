package models

import "errors"

var (
	ErrInvalidRequest     = errors.New("invalid request")
	ErrUpstream           = errors.New("upstream failure")
	ErrMissingCredentials = errors.New("missing provider credentials")
	ErrNotFound           = errors.New("not found")
)
