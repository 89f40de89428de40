package identity

import "errors"

var (
	ErrNotFound           = errors.New("user not found")
	ErrEmailTaken         = errors.New("a user with this email already exists")
	ErrEmployeeNoTaken    = errors.New("a user with this employee id already exists")
	ErrInvalidRole        = errors.New("invalid role")
	ErrInvalidManager     = errors.New("manager must exist and hold the Manager or Administrator role")
	ErrDepartmentNotFound = errors.New("department not found or inactive")
	ErrDepartmentInUse    = errors.New("department still has active employees")
)
