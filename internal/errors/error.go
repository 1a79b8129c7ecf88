package errors

import "errors"

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrIllegalMove  = errors.New("illegal move")
	ErrDuplicate    = errors.New("user already has an open ticket")
	ErrNoMatch      = errors.New("no ticket with provided uuid was found")
	ErrUnauthorized = errors.New("actor does not own this resource")
	ErrInternal     = errors.New("internal error")
)
