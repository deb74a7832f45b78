package chess

import (
	"fmt"
	"iter"
	"strings"
)

var backRank = [Size]PieceType{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}

// Board is an 8x8 grid of occupants. It has no locking; callers that share a
// board between goroutines must serialize access themselves.
type Board struct {
	squares [Size][Size]Piece
}

// NewBoard returns an empty board.
func NewBoard() *Board {
	return &Board{}
}

// NewStandardBoard returns a board set up in the starting position.
func NewStandardBoard() *Board {
	b := NewBoard()
	b.Setup()
	return b
}

// Setup resets the board to the starting position: black on rows 0 and 1,
// white on rows 6 and 7.
func (b *Board) Setup() {
	b.squares = [Size][Size]Piece{}
	for col, t := range backRank {
		b.squares[0][col] = Piece{Type: t, Color: Black}
		b.squares[1][col] = Piece{Type: Pawn, Color: Black}
		b.squares[6][col] = Piece{Type: Pawn, Color: White}
		b.squares[7][col] = Piece{Type: t, Color: White}
	}
}

func (b *Board) PieceAt(p Position) (Piece, error) {
	if !p.InBounds() {
		return Piece{}, fmt.Errorf("%w: %s", ErrOutOfRange, p)
	}
	return b.squares[p.Row][p.Col], nil
}

// Place puts piece on p, replacing any occupant.
func (b *Board) Place(p Position, piece Piece) error {
	if !p.InBounds() {
		return fmt.Errorf("%w: %s", ErrOutOfRange, p)
	}
	b.squares[p.Row][p.Col] = piece
	return nil
}

func (b *Board) Clear(p Position) error {
	return b.Place(p, Piece{})
}

// MovePiece relocates the occupant of from to to, overwriting whatever is
// there. It does not check legality.
func (b *Board) MovePiece(from, to Position) error {
	if !from.InBounds() {
		return fmt.Errorf("%w: from %s", ErrOutOfRange, from)
	}
	if !to.InBounds() {
		return fmt.Errorf("%w: to %s", ErrOutOfRange, to)
	}
	piece := b.squares[from.Row][from.Col]
	if piece.Empty() {
		return fmt.Errorf("%w: %s", ErrEmptySquare, from)
	}
	b.squares[from.Row][from.Col] = Piece{}
	b.squares[to.Row][to.Col] = piece
	return nil
}

func (b *Board) Clone() *Board {
	c := *b
	return &c
}

// Rows yields each row index with its cell labels. Every call walks the board
// afresh, so the sequence can be ranged over any number of times.
func (b *Board) Rows() iter.Seq2[int, []string] {
	return func(yield func(int, []string) bool) {
		for row := 0; row < Size; row++ {
			labels := make([]string, Size)
			for col := 0; col < Size; col++ {
				labels[col] = b.squares[row][col].Label()
			}
			if !yield(row, labels) {
				return
			}
		}
	}
}

// Grid collects Rows into a slice.
func (b *Board) Grid() [][]string {
	grid := make([][]string, 0, Size)
	for _, labels := range b.Rows() {
		grid = append(grid, labels)
	}
	return grid
}

func (b *Board) String() string {
	var sb strings.Builder
	for row, labels := range b.Rows() {
		fmt.Fprintf(&sb, "%d %s\n", Size-row, strings.Join(labels, " "))
	}
	sb.WriteString("  a b c d e f g h\n")
	return sb.String()
}
