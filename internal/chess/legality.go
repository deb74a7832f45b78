package chess

import "fmt"

// View is the read-only board access the legality rules need.
type View interface {
	PieceAt(Position) (Piece, error)
}

// move is one candidate move handed to a rule after the shared preconditions
// have passed.
type move struct {
	view     View
	from, to Position
	piece    Piece
	target   Piece
	dRow     int
	dCol     int
}

type rule func(m move) bool

var rules = map[PieceType]rule{
	King:   kingRule,
	Queen:  queenRule,
	Rook:   rookRule,
	Bishop: bishopRule,
	Knight: knightRule,
	Pawn:   pawnRule,
}

// IsLegalMove reports whether mover may move the piece on from to to.
// An illegal move is a false result, not an error. Out-of-range coordinates
// return false together with ErrOutOfRange.
func IsLegalMove(v View, from, to Position, mover Color) (bool, error) {
	if !from.InBounds() {
		return false, fmt.Errorf("%w: from %s", ErrOutOfRange, from)
	}
	if !to.InBounds() {
		return false, fmt.Errorf("%w: to %s", ErrOutOfRange, to)
	}
	if from == to {
		return false, nil
	}

	piece, err := v.PieceAt(from)
	if err != nil {
		return false, err
	}
	if piece.Empty() || piece.Color != mover {
		return false, nil
	}
	target, err := v.PieceAt(to)
	if err != nil {
		return false, err
	}
	if !target.Empty() && target.Color == mover {
		return false, nil
	}

	r, ok := rules[piece.Type]
	if !ok {
		return false, nil
	}
	return r(move{
		view:   v,
		from:   from,
		to:     to,
		piece:  piece,
		target: target,
		dRow:   to.Row - from.Row,
		dCol:   to.Col - from.Col,
	}), nil
}

// LegalDestinations lists every square the piece on from may move to.
func LegalDestinations(v View, from Position) ([]Position, error) {
	piece, err := v.PieceAt(from)
	if err != nil {
		return nil, err
	}
	if piece.Empty() {
		return nil, fmt.Errorf("%w: %s", ErrEmptySquare, from)
	}

	var out []Position
	for row := 0; row < Size; row++ {
		for col := 0; col < Size; col++ {
			to := Position{Row: row, Col: col}
			ok, err := IsLegalMove(v, from, to, piece.Color)
			if err != nil {
				return nil, err
			}
			if ok {
				out = append(out, to)
			}
		}
	}
	return out, nil
}

func kingRule(m move) bool {
	return max(abs(m.dRow), abs(m.dCol)) == 1
}

func knightRule(m move) bool {
	r, c := abs(m.dRow), abs(m.dCol)
	return (r == 1 && c == 2) || (r == 2 && c == 1)
}

func bishopRule(m move) bool {
	if abs(m.dRow) != abs(m.dCol) || m.dRow == 0 {
		return false
	}
	return pathClear(m.view, m.from, m.to)
}

func rookRule(m move) bool {
	if (m.dRow == 0) == (m.dCol == 0) {
		return false
	}
	return pathClear(m.view, m.from, m.to)
}

func queenRule(m move) bool {
	return bishopRule(m) || rookRule(m)
}

func pawnRule(m move) bool {
	dir, home := pawnDirection(m.piece.Color)

	switch {
	case m.dCol == 0 && m.dRow == dir:
		return m.target.Empty()
	case m.dCol == 0 && m.dRow == 2*dir:
		if m.from.Row != home || !m.target.Empty() {
			return false
		}
		mid, err := m.view.PieceAt(Position{Row: m.from.Row + dir, Col: m.from.Col})
		return err == nil && mid.Empty()
	case abs(m.dCol) == 1 && m.dRow == dir:
		return !m.target.Empty() && m.target.Color != m.piece.Color
	}
	return false
}

// pawnDirection returns the row step and home row for pawns of color c.
func pawnDirection(c Color) (dir, home int) {
	if c == White {
		return -1, 6
	}
	return 1, 1
}

// pathClear reports whether every square strictly between from and to is
// empty. from and to must share a row, a column or a diagonal.
func pathClear(v View, from, to Position) bool {
	rowStep := sign(to.Row - from.Row)
	colStep := sign(to.Col - from.Col)

	p := Position{Row: from.Row + rowStep, Col: from.Col + colStep}
	for p != to {
		piece, err := v.PieceAt(p)
		if err != nil || !piece.Empty() {
			return false
		}
		p = Position{Row: p.Row + rowStep, Col: p.Col + colStep}
	}
	return true
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func sign(x int) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}
