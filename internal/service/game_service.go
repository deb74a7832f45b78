package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/benbeisheim/chess-backend/internal/chess"
	"github.com/benbeisheim/chess-backend/internal/model"
)

type GameService struct {
	gameManager *GameManager
}

func NewGameService(gameManager *GameManager) *GameService {
	return &GameService{
		gameManager: gameManager,
	}
}

func (gs *GameService) JoinGame(ctx context.Context, gameID string, playerID string) (chess.Color, error) {
	return gs.gameManager.AddPlayerToGame(ctx, gameID, playerID)
}

func (gs *GameService) CreateGame(ctx context.Context) (string, error) {
	gameID := uuid.New().String()

	if err := gs.gameManager.CreateGame(ctx, gameID); err != nil {
		return "", fmt.Errorf("failed to create game: %w", err)
	}

	return gameID, nil
}

// RunMatchmaking pairs queued players until ctx is done.
func (gs *GameService) RunMatchmaking(ctx context.Context, interval time.Duration) {
	gs.gameManager.RunMatchmaking(ctx, interval)
}

func (gs *GameService) JoinMatchmaking(playerID string) error {
	return gs.gameManager.JoinMatchmaking(playerID)
}

func (gs *GameService) LeaveMatchmaking(playerID string) bool {
	return gs.gameManager.LeaveMatchmaking(playerID)
}

func (gs *GameService) MatchStatus(playerID string) (MatchFoundEvent, bool) {
	return gs.gameManager.MatchStatus(playerID)
}

func (gs *GameService) GetGameState(ctx context.Context, gameID string) (model.GameState, error) {
	return gs.gameManager.GetGameState(ctx, gameID)
}

func (gs *GameService) HandleMove(ctx context.Context, gameID string, playerID string, move model.Move) (model.GameState, error) {
	return gs.gameManager.MakeMove(ctx, gameID, playerID, move)
}

func (gs *GameService) Resign(ctx context.Context, gameID string, playerID string) (model.GameState, error) {
	return gs.gameManager.Resign(ctx, gameID, playerID)
}

func (gs *GameService) LegalMoves(ctx context.Context, gameID string, from chess.Position) ([]chess.Position, error) {
	return gs.gameManager.LegalMoves(ctx, gameID, from)
}

func (gs *GameService) RenderBoard(ctx context.Context, gameID string) (string, error) {
	return gs.gameManager.RenderBoard(ctx, gameID)
}

func (gs *GameService) RegisterConnection(ctx context.Context, gameID string, playerID string, conn Conn) error {
	return gs.gameManager.RegisterConnection(ctx, gameID, playerID, conn)
}

func (gs *GameService) UnregisterConnection(gameID string, playerID string, conn Conn) {
	gs.gameManager.UnregisterConnection(gameID, playerID, conn)
}

func (gs *GameService) SendError(gameID string, playerID string, errMsg string) error {
	return gs.gameManager.SendError(gameID, playerID, errMsg)
}

func (gs *GameService) RegisterMatchmakingChannel(playerID string, ch chan MatchFoundEvent) {
	gs.gameManager.RegisterMatchmakingChannel(playerID, ch)
}

func (gs *GameService) UnregisterMatchmakingChannel(playerID string, ch chan MatchFoundEvent) {
	gs.gameManager.UnregisterMatchmakingChannel(playerID, ch)
}

func (gs *GameService) KeepMatch(playerID string, event MatchFoundEvent) {
	gs.gameManager.KeepMatch(playerID, event)
}
