package attendance

import "errors"

var (
	ErrNotFound         = errors.New("attendance record not found")
	ErrAlreadyLoggedIn  = errors.New("already logged in today")
	ErrAlreadyCompleted = errors.New("attendance for today is already completed")
	ErrNoActiveLogin    = errors.New("no active login found for today")
	ErrAlreadyDecided   = errors.New("attendance record has already been decided")
	ErrNotAuthorized    = errors.New("not authorized to act on this attendance record")
	ErrDuplicateDate    = errors.New("an attendance record already exists for this date")
	ErrInvalidTimes     = errors.New("logout time must be after login time")
	ErrInvalidDate      = errors.New("date must be in the past")
	ErrUserInactive     = errors.New("employee is not active")
)
