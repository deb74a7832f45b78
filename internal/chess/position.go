package chess

import (
	"encoding/json"
	"fmt"
	"strings"
)

const Size = 8

// Position addresses a square by row and column. Row 0 is black's back
// rank and row 7 is white's.
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func InBounds(p Position) bool {
	return p.Row >= 0 && p.Row < Size && p.Col >= 0 && p.Col < Size
}

func (p Position) InBounds() bool {
	return InBounds(p)
}

// String returns the algebraic name of the square, e.g. "e2".
func (p Position) String() string {
	if !p.InBounds() {
		return fmt.Sprintf("(%d,%d)", p.Row, p.Col)
	}
	return fmt.Sprintf("%c%d", 'a'+p.Col, Size-p.Row)
}

func ParsePosition(s string) (Position, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) != 2 {
		return Position{}, fmt.Errorf("%w: %q", ErrInvalidPosition, s)
	}
	file, rank := s[0], s[1]
	if file < 'a' || file > 'h' || rank < '1' || rank > '8' {
		return Position{}, fmt.Errorf("%w: %q", ErrInvalidPosition, s)
	}
	return Position{Row: Size - int(rank-'0'), Col: int(file - 'a')}, nil
}

// UnmarshalJSON accepts either {"row":6,"col":4} or "e2".
func (p *Position) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		pos, err := ParsePosition(name)
		if err != nil {
			return err
		}
		*p = pos
		return nil
	}

	var raw struct {
		Row *int `json:"row"`
		Col *int `json:"col"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Row == nil || raw.Col == nil {
		return fmt.Errorf("%w: row and col are required", ErrInvalidPosition)
	}
	*p = Position{Row: *raw.Row, Col: *raw.Col}
	return nil
}
