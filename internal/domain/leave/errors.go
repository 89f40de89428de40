package leave

import "errors"

var (
	ErrNotFound            = errors.New("leave request not found")
	ErrInvalidRange        = errors.New("end date must not be before start date")
	ErrInvalidType         = errors.New("unknown leave type")
	ErrInsufficientBalance = errors.New("insufficient leave balance")
	ErrOverlap             = errors.New("an overlapping leave request already exists")
	ErrAlreadyDecided      = errors.New("leave request has already been decided")
	ErrNotAuthorized       = errors.New("not authorized to act on this leave request")
	ErrNotOwner            = errors.New("leave request belongs to another user")
	ErrInvalidTransition   = errors.New("leave request is not pending")
)
