package chess

import "strings"

type PieceType string

const (
	King   PieceType = "king"
	Queen  PieceType = "queen"
	Rook   PieceType = "rook"
	Bishop PieceType = "bishop"
	Knight PieceType = "knight"
	Pawn   PieceType = "pawn"
)

func (p PieceType) notation() string {
	switch p {
	case King:
		return "K"
	case Queen:
		return "Q"
	case Rook:
		return "R"
	case Bishop:
		return "B"
	case Knight:
		return "N"
	case Pawn:
		return "P"
	}
	return ""
}

func pieceTypeFromNotation(r rune) (PieceType, bool) {
	switch r {
	case 'K':
		return King, true
	case 'Q':
		return Queen, true
	case 'R':
		return Rook, true
	case 'B':
		return Bishop, true
	case 'N':
		return Knight, true
	case 'P':
		return Pawn, true
	}
	return "", false
}

type Color string

const (
	White Color = "white"
	Black Color = "black"
)

func (c Color) Opponent() Color {
	if c == White {
		return Black
	}
	return White
}

func (c Color) Valid() bool {
	return c == White || c == Black
}

// Piece is the occupant of a square. The zero value is an empty square.
type Piece struct {
	Type  PieceType `json:"type"`
	Color Color     `json:"color"`
}

func (p Piece) Empty() bool {
	return p.Type == ""
}

// Label is the single-letter display form: upper case for white, lower case
// for black and "." for an empty square.
func (p Piece) Label() string {
	if p.Empty() {
		return "."
	}
	n := p.Type.notation()
	if p.Color == Black {
		return strings.ToLower(n)
	}
	return n
}
