package hr

import "errors"

var (
	ErrNotFound      = errors.New("hr: not found")
	ErrConflict      = errors.New("hr: already exists")
	ErrInvalidInput  = errors.New("hr: invalid input")
	ErrAlreadyDecided = errors.New("hr: leave request already decided")
	ErrOwnRequest    = errors.New("hr: cannot decide own leave request")
)
