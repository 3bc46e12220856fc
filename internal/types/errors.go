package types

import "errors"

var (
	ErrMalformedAccount  = errors.New("malformed account data")
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrConnectionFailure = errors.New("ledger connection failure")
	ErrAlreadyExists     = errors.New("account already exists")
	ErrAccountNotFound   = errors.New("account not found")
	ErrNoSnapshot        = errors.New("no market snapshot")
)
