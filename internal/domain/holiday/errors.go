package holiday

import "errors"

var (
	ErrNotFound      = errors.New("holiday not found")
	ErrDuplicateDate = errors.New("a holiday already exists on this date")
	ErrMissingName   = errors.New("holiday name is required")
)
