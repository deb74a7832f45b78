package model

import (
	"fmt"
	"time"

	"github.com/benbeisheim/chess-backend/internal/chess"
)

// GameRecord is the persisted form of a Game. The board is kept as a FEN
// piece-placement field.
type GameRecord struct {
	ID        string      `json:"id"`
	Placement string      `json:"placement"`
	ToMove    chess.Color `json:"toMove"`
	White     string      `json:"white"`
	Black     string      `json:"black"`
	Status    GameStatus  `json:"status"`
	Resolve   string      `json:"resolve,omitempty"`
	Winner    chess.Color `json:"winner,omitempty"`
	LastMove  *Ply        `json:"lastMove,omitempty"`
	MoveCount int         `json:"moveCount"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

func (g *Game) Record() GameRecord {
	g.mu.Lock()
	defer g.mu.Unlock()

	rec := GameRecord{
		ID:        g.ID,
		Placement: g.board.Placement(),
		ToMove:    g.toMove,
		White:     g.players.White,
		Black:     g.players.Black,
		Status:    g.status,
		Resolve:   g.resolve,
		Winner:    g.winner,
		MoveCount: g.moveCount,
		CreatedAt: g.createdAt,
		UpdatedAt: g.updatedAt,
	}
	if g.lastMove != nil {
		ply := *g.lastMove
		rec.LastMove = &ply
	}
	return rec
}

// FromRecord rebuilds a game, with a board of its own, from a persisted record.
func FromRecord(rec GameRecord) (*Game, error) {
	if rec.ID == "" {
		return nil, fmt.Errorf("%w: missing id", ErrInvalidRecord)
	}
	if !rec.ToMove.Valid() {
		return nil, fmt.Errorf("%w: side to move %q", ErrInvalidRecord, rec.ToMove)
	}
	switch rec.Status {
	case StatusWaiting, StatusActive, StatusFinished:
	default:
		return nil, fmt.Errorf("%w: status %q", ErrInvalidRecord, rec.Status)
	}
	board, err := chess.ParsePlacement(rec.Placement)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRecord, err)
	}

	g := &Game{
		ID:        rec.ID,
		board:     board,
		toMove:    rec.ToMove,
		players:   Players{White: rec.White, Black: rec.Black},
		status:    rec.Status,
		resolve:   rec.Resolve,
		winner:    rec.Winner,
		moveCount: rec.MoveCount,
		createdAt: rec.CreatedAt,
		updatedAt: rec.UpdatedAt,
	}
	if rec.LastMove != nil {
		ply := *rec.LastMove
		g.lastMove = &ply
	}
	return g, nil
}
