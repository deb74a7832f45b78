package chess

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// StartPlacement is the piece-placement field of the starting position.
const StartPlacement = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR"

// Placement encodes the board as a FEN piece-placement field, row 0 first.
func (b *Board) Placement() string {
	var sb strings.Builder
	for row := 0; row < Size; row++ {
		if row > 0 {
			sb.WriteByte('/')
		}
		empty := 0
		for col := 0; col < Size; col++ {
			piece := b.squares[row][col]
			if piece.Empty() {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteString(strconv.Itoa(empty))
				empty = 0
			}
			sb.WriteString(piece.Label())
		}
		if empty > 0 {
			sb.WriteString(strconv.Itoa(empty))
		}
	}
	return sb.String()
}

// ParsePlacement builds a board from a FEN piece-placement field. Any further
// FEN fields after the first space are ignored.
func ParsePlacement(s string) (*Board, error) {
	if fields := strings.Fields(s); len(fields) > 0 {
		s = fields[0]
	}
	ranks := strings.Split(s, "/")
	if len(ranks) != Size {
		return nil, fmt.Errorf("%w: need %d ranks, got %d", ErrInvalidPlacement, Size, len(ranks))
	}

	b := NewBoard()
	for row, rank := range ranks {
		col := 0
		for _, r := range rank {
			if r >= '1' && r <= '8' {
				col += int(r - '0')
				if col > Size {
					return nil, fmt.Errorf("%w: rank %d overflows", ErrInvalidPlacement, Size-row)
				}
				continue
			}
			t, ok := pieceTypeFromNotation(unicode.ToUpper(r))
			if !ok {
				return nil, fmt.Errorf("%w: unknown piece %q", ErrInvalidPlacement, r)
			}
			if col >= Size {
				return nil, fmt.Errorf("%w: rank %d overflows", ErrInvalidPlacement, Size-row)
			}
			color := White
			if unicode.IsLower(r) {
				color = Black
			}
			b.squares[row][col] = Piece{Type: t, Color: color}
			col++
		}
		if col != Size {
			return nil, fmt.Errorf("%w: rank %d has %d squares", ErrInvalidPlacement, Size-row, col)
		}
	}
	return b, nil
}
