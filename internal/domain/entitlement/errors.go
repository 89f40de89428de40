package entitlement

import "errors"

var (
	ErrNoEntitlement = errors.New("no leave entitlement allocated for this year")
	ErrInvalidYear   = errors.New("invalid entitlement year")
	ErrNegative      = errors.New("balances must not be negative")
)
