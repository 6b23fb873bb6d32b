package directory

import "errors"

var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("record not found")
)
