package model

import "github.com/benbeisheim/chess-backend/internal/chess"

type Move struct {
	From chess.Position `json:"from"`
	To   chess.Position `json:"to"`
}

// Ply is a move that was played, with the piece that made it and anything it
// captured.
type Ply struct {
	Move
	Piece    chess.Piece  `json:"piece"`
	Captured *chess.Piece `json:"captured,omitempty"`
	Color    chess.Color  `json:"color"`
}
