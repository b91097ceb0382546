package service

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrCapExceeded       = errors.New("deposit cap exceeded")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrAlreadySettled    = errors.New("job already settled")
	ErrConflict          = errors.New("conflicting concurrent update")
)
