package model

import "errors"

var (
	ErrGameFull      = errors.New("game is full")
	ErrGameNotActive = errors.New("game is not active")
	ErrNotInGame     = errors.New("player not in game")
	ErrNotYourTurn   = errors.New("not your turn")
	ErrIllegalMove   = errors.New("illegal move")
	ErrAlreadyQueued = errors.New("player already in queue")
	ErrInvalidRecord = errors.New("invalid game record")
)
