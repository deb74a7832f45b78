package model

import (
	"fmt"
	"sync"
	"time"

	"github.com/benbeisheim/chess-backend/internal/chess"
)

type GameStatus string

const (
	StatusWaiting  GameStatus = "waiting"
	StatusActive   GameStatus = "active"
	StatusFinished GameStatus = "finished"
)

const (
	ResolveKingCaptured = "king captured"
	ResolveResignation  = "resignation"
)

// Game is a single game session. It owns its board; all access goes through
// the game's mutex so a legality check and the move that follows it happen
// as one step.
type Game struct {
	ID        string
	mu        sync.Mutex
	board     *chess.Board
	toMove    chess.Color
	players   Players
	status    GameStatus
	resolve   string
	winner    chess.Color
	lastMove  *Ply
	moveCount int
	createdAt time.Time
	updatedAt time.Time
}

type GameState struct {
	ID        string      `json:"id"`
	Board     [][]string  `json:"board"`
	Placement string      `json:"placement"`
	ToMove    chess.Color `json:"toMove"`
	Players   Players     `json:"players"`
	Status    GameStatus  `json:"status"`
	Resolve   *string     `json:"resolve"`
	Winner    chess.Color `json:"winner,omitempty"`
	LastMove  *Ply        `json:"lastMove"`
	MoveCount int         `json:"moveCount"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

func NewGame(id string) *Game {
	now := time.Now().UTC()
	return &Game{
		ID:        id,
		board:     chess.NewStandardBoard(),
		toMove:    chess.White,
		status:    StatusWaiting,
		createdAt: now,
		updatedAt: now,
	}
}

// AddPlayer seats playerID, white first. A player already seated gets their
// existing color back.
func (g *Game) AddPlayer(playerID string) (chess.Color, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if color, ok := g.players.ColorOf(playerID); ok {
		return color, nil
	}

	var color chess.Color
	switch {
	case g.players.White == "":
		g.players.White = playerID
		color = chess.White
	case g.players.Black == "":
		g.players.Black = playerID
		color = chess.Black
	default:
		return "", ErrGameFull
	}

	if g.players.Full() && g.status == StatusWaiting {
		g.status = StatusActive
	}
	g.touch()
	return color, nil
}

func (g *Game) IsPlayerInGame(playerID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	_, ok := g.players.ColorOf(playerID)
	return ok
}

// MakeMove validates and plays a move for playerID.
func (g *Game) MakeMove(playerID string, mv Move) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.status != StatusActive {
		return ErrGameNotActive
	}
	color, ok := g.players.ColorOf(playerID)
	if !ok {
		return ErrNotInGame
	}
	if color != g.toMove {
		return ErrNotYourTurn
	}

	legal, err := chess.IsLegalMove(g.board, mv.From, mv.To, color)
	if err != nil {
		return fmt.Errorf("validate move %s-%s: %w", mv.From, mv.To, err)
	}
	if !legal {
		return fmt.Errorf("%w: %s-%s", ErrIllegalMove, mv.From, mv.To)
	}

	// IsLegalMove has bounds-checked both squares, so these reads cannot fail.
	piece, _ := g.board.PieceAt(mv.From)
	target, _ := g.board.PieceAt(mv.To)
	if err := g.board.MovePiece(mv.From, mv.To); err != nil {
		return fmt.Errorf("execute move %s-%s: %w", mv.From, mv.To, err)
	}

	ply := &Ply{Move: mv, Piece: piece, Color: color}
	if !target.Empty() {
		ply.Captured = &target
	}
	g.lastMove = ply
	g.moveCount++

	if target.Type == chess.King {
		g.finish(ResolveKingCaptured, color)
	}
	g.toMove = color.Opponent()
	g.touch()
	return nil
}

func (g *Game) Resign(playerID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	color, ok := g.players.ColorOf(playerID)
	if !ok {
		return ErrNotInGame
	}
	if g.status != StatusActive {
		return ErrGameNotActive
	}
	g.finish(ResolveResignation, color.Opponent())
	g.touch()
	return nil
}

// LegalMoves lists where the piece on from may move.
func (g *Game) LegalMoves(from chess.Position) ([]chess.Position, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	return chess.LegalDestinations(g.board, from)
}

func (g *Game) Render() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.board.String()
}

func (g *Game) GetState() GameState {
	g.mu.Lock()
	defer g.mu.Unlock()

	state := GameState{
		ID:        g.ID,
		Board:     g.board.Grid(),
		Placement: g.board.Placement(),
		ToMove:    g.toMove,
		Players:   g.players,
		Status:    g.status,
		Winner:    g.winner,
		MoveCount: g.moveCount,
		UpdatedAt: g.updatedAt,
	}
	if g.resolve != "" {
		resolve := g.resolve
		state.Resolve = &resolve
	}
	if g.lastMove != nil {
		ply := *g.lastMove
		state.LastMove = &ply
	}
	return state
}

func (g *Game) finish(resolve string, winner chess.Color) {
	g.status = StatusFinished
	g.resolve = resolve
	g.winner = winner
}

func (g *Game) touch() {
	g.updatedAt = time.Now().UTC()
}
