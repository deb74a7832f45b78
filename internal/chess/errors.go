package chess

import "errors"

var (
	ErrOutOfRange       = errors.New("position out of range")
	ErrEmptySquare      = errors.New("no piece at from square")
	ErrInvalidPlacement = errors.New("invalid piece placement")
	ErrInvalidPosition  = errors.New("invalid square notation")
)
