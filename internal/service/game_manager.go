package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/benbeisheim/chess-backend/internal/chess"
	"github.com/benbeisheim/chess-backend/internal/model"
	"github.com/benbeisheim/chess-backend/internal/storage"
	"github.com/benbeisheim/chess-backend/internal/ws"
)

var (
	ErrGameNotFound = errors.New("game not found")
	ErrGameExists   = errors.New("game already exists")
)

type MatchFoundEvent struct {
	GameID string      `json:"gameId"`
	Color  chess.Color `json:"color"`
}

// liveGame pairs a game with the lock that keeps "apply, then persist"
// ordered, so saved records never go back in time.
type liveGame struct {
	game *model.Game
	mu   sync.Mutex
}

// GameManager is the per-game store: every game id maps to its own game and
// board, restored from the repository on first use.
type GameManager struct {
	games            map[string]*liveGame
	repo             storage.Repository
	hub              *Hub
	queue            *model.Queue
	matchingChannels map[string]chan MatchFoundEvent
	pendingMatches   map[string]MatchFoundEvent
	log              zerolog.Logger
	mu               sync.RWMutex
}

func NewGameManager(repo storage.Repository, hub *Hub, log zerolog.Logger) *GameManager {
	return &GameManager{
		games:            make(map[string]*liveGame),
		repo:             repo,
		hub:              hub,
		queue:            model.NewQueue(),
		matchingChannels: make(map[string]chan MatchFoundEvent),
		pendingMatches:   make(map[string]MatchFoundEvent),
		log:              log.With().Str("component", "game_manager").Logger(),
	}
}

// RunMatchmaking pairs queued players every interval until ctx is done.
func (gm *GameManager) RunMatchmaking(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for gm.matchOnce(ctx) {
			}
		}
	}
}

// matchOnce seats the next queued pair in a new game. It returns false when
// no pair was waiting.
func (gm *GameManager) matchOnce(ctx context.Context) bool {
	player1, player2, ok := gm.queue.NextPair()
	if !ok {
		return false
	}

	gameID := uuid.New().String()
	game := model.NewGame(gameID)
	p1Color, err := game.AddPlayer(player1.ID)
	if err != nil {
		gm.log.Error().Err(err).Str("player", player1.ID).Msg("seat matched player")
		return true
	}
	p2Color, err := game.AddPlayer(player2.ID)
	if err != nil {
		gm.log.Error().Err(err).Str("player", player2.ID).Msg("seat matched player")
		return true
	}
	if err := gm.repo.Save(ctx, game.Record()); err != nil {
		gm.log.Error().Err(err).Str("game", gameID).Msg("persist matched game")
		return true
	}

	gm.mu.Lock()
	gm.games[gameID] = &liveGame{game: game}
	gm.mu.Unlock()
	gm.log.Info().Str("game", gameID).Str("white", player1.ID).Str("black", player2.ID).Msg("match found")

	gm.notifyMatch(player1.ID, MatchFoundEvent{GameID: gameID, Color: p1Color})
	gm.notifyMatch(player2.ID, MatchFoundEvent{GameID: gameID, Color: p2Color})
	return true
}

// notifyMatch hands the event to the player's matchmaking channel, then
// closes and forgets the channel. Without a channel the event is kept until
// the player registers one or polls MatchStatus.
func (gm *GameManager) notifyMatch(playerID string, event MatchFoundEvent) {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	ch, ok := gm.matchingChannels[playerID]
	if !ok {
		gm.pendingMatches[playerID] = event
		return
	}
	delete(gm.matchingChannels, playerID)
	deliverMatch(ch, event)
}

func deliverMatch(ch chan MatchFoundEvent, event MatchFoundEvent) {
	defer close(ch)
	select {
	case ch <- event:
	default:
	}
}

// RegisterMatchmakingChannel sets the channel that receives the player's
// match. ch must be buffered; it is closed after the event is delivered.
func (gm *GameManager) RegisterMatchmakingChannel(playerID string, ch chan MatchFoundEvent) {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if event, ok := gm.pendingMatches[playerID]; ok {
		delete(gm.pendingMatches, playerID)
		deliverMatch(ch, event)
		return
	}
	if existing, ok := gm.matchingChannels[playerID]; ok {
		delete(gm.matchingChannels, playerID)
		close(existing)
	}
	gm.matchingChannels[playerID] = ch
}

// MatchStatus returns, and forgets, a match that was found while the player
// had no channel registered.
func (gm *GameManager) MatchStatus(playerID string) (MatchFoundEvent, bool) {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	event, ok := gm.pendingMatches[playerID]
	if ok {
		delete(gm.pendingMatches, playerID)
	}
	return event, ok
}

// UnregisterMatchmakingChannel forgets ch if it is still the player's
// channel. The channel is not closed here.
func (gm *GameManager) UnregisterMatchmakingChannel(playerID string, ch chan MatchFoundEvent) {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if current, ok := gm.matchingChannels[playerID]; ok && current == ch {
		delete(gm.matchingChannels, playerID)
	}
}

// KeepMatch holds event for the player again, for a match that was delivered
// to a channel nobody read.
func (gm *GameManager) KeepMatch(playerID string, event MatchFoundEvent) {
	gm.mu.Lock()
	defer gm.mu.Unlock()
	gm.pendingMatches[playerID] = event
}

func (gm *GameManager) JoinMatchmaking(playerID string) error {
	if err := gm.queue.AddPlayer(model.Player{ID: playerID}); err != nil {
		return err
	}
	gm.log.Debug().Str("player", playerID).Int("queued", gm.queue.Size()).Msg("joined matchmaking")
	return nil
}

func (gm *GameManager) LeaveMatchmaking(playerID string) bool {
	return gm.queue.Remove(playerID)
}

func (gm *GameManager) CreateGame(ctx context.Context, gameID string) error {
	gm.mu.Lock()
	if _, exists := gm.games[gameID]; exists {
		gm.mu.Unlock()
		return ErrGameExists
	}
	entry := &liveGame{game: model.NewGame(gameID)}
	gm.games[gameID] = entry
	gm.mu.Unlock()

	if err := gm.persist(ctx, entry); err != nil {
		gm.mu.Lock()
		delete(gm.games, gameID)
		gm.mu.Unlock()
		return err
	}
	gm.log.Info().Str("game", gameID).Msg("game created")
	return nil
}

func (gm *GameManager) GetGame(ctx context.Context, gameID string) (*model.Game, error) {
	entry, err := gm.entry(ctx, gameID)
	if err != nil {
		return nil, err
	}
	return entry.game, nil
}

// entry returns the live game, loading it from the repository on a miss.
func (gm *GameManager) entry(ctx context.Context, gameID string) (*liveGame, error) {
	gm.mu.RLock()
	entry, ok := gm.games[gameID]
	gm.mu.RUnlock()
	if ok {
		return entry, nil
	}

	rec, err := gm.repo.Load(ctx, gameID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrGameNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load game %s: %w", gameID, err)
	}
	game, err := model.FromRecord(rec)
	if err != nil {
		return nil, fmt.Errorf("restore game %s: %w", gameID, err)
	}

	gm.mu.Lock()
	defer gm.mu.Unlock()
	if existing, ok := gm.games[gameID]; ok {
		return existing, nil
	}
	entry = &liveGame{game: game}
	gm.games[gameID] = entry
	gm.log.Debug().Str("game", gameID).Msg("game restored from storage")
	return entry, nil
}

func (gm *GameManager) AddPlayerToGame(ctx context.Context, gameID, playerID string) (chess.Color, error) {
	entry, err := gm.entry(ctx, gameID)
	if err != nil {
		return "", err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	color, err := entry.game.AddPlayer(playerID)
	if err != nil {
		return "", err
	}
	if err := gm.persistLocked(ctx, entry); err != nil {
		return "", err
	}
	gm.broadcastState(entry.game)
	return color, nil
}

func (gm *GameManager) GetGameState(ctx context.Context, gameID string) (model.GameState, error) {
	game, err := gm.GetGame(ctx, gameID)
	if err != nil {
		return model.GameState{}, err
	}
	return game.GetState(), nil
}

// MakeMove validates, applies and persists a move as one step for the game.
func (gm *GameManager) MakeMove(ctx context.Context, gameID, playerID string, move model.Move) (model.GameState, error) {
	entry, err := gm.entry(ctx, gameID)
	if err != nil {
		return model.GameState{}, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	if err := entry.game.MakeMove(playerID, move); err != nil {
		return model.GameState{}, err
	}
	if err := gm.persistLocked(ctx, entry); err != nil {
		return model.GameState{}, err
	}

	state := entry.game.GetState()
	gm.log.Info().
		Str("game", gameID).
		Str("player", playerID).
		Stringer("from", move.From).
		Stringer("to", move.To).
		Str("status", string(state.Status)).
		Msg("move played")
	gm.broadcast(gameID, state)
	return state, nil
}

func (gm *GameManager) Resign(ctx context.Context, gameID, playerID string) (model.GameState, error) {
	entry, err := gm.entry(ctx, gameID)
	if err != nil {
		return model.GameState{}, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	if err := entry.game.Resign(playerID); err != nil {
		return model.GameState{}, err
	}
	if err := gm.persistLocked(ctx, entry); err != nil {
		return model.GameState{}, err
	}
	state := entry.game.GetState()
	gm.log.Info().Str("game", gameID).Str("player", playerID).Msg("player resigned")
	gm.broadcast(gameID, state)
	return state, nil
}

func (gm *GameManager) LegalMoves(ctx context.Context, gameID string, from chess.Position) ([]chess.Position, error) {
	game, err := gm.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	return game.LegalMoves(from)
}

func (gm *GameManager) RenderBoard(ctx context.Context, gameID string) (string, error) {
	game, err := gm.GetGame(ctx, gameID)
	if err != nil {
		return "", err
	}
	return game.Render(), nil
}

// RegisterConnection subscribes conn to the game's state feed and sends it the
// current state. Anyone may watch; only seated players may move.
func (gm *GameManager) RegisterConnection(ctx context.Context, gameID, playerID string, conn Conn) error {
	game, err := gm.GetGame(ctx, gameID)
	if err != nil {
		return err
	}
	if !gm.hub.Register(gameID, playerID, conn) {
		return fmt.Errorf("player %s already connected to game %s", playerID, gameID)
	}

	msg, err := ws.NewMessage(ws.MessageTypeGameState, game.GetState())
	if err == nil {
		err = gm.hub.Send(gameID, playerID, msg)
	}
	if err != nil {
		gm.hub.Unregister(gameID, playerID, conn)
		return err
	}
	return nil
}

func (gm *GameManager) UnregisterConnection(gameID, playerID string, conn Conn) {
	gm.hub.Unregister(gameID, playerID, conn)
}

// SendError reports a failed request back to the player's own connection.
func (gm *GameManager) SendError(gameID, playerID string, errMsg string) error {
	return gm.hub.Send(gameID, playerID, ws.NewError(errMsg))
}

func (gm *GameManager) persist(ctx context.Context, entry *liveGame) error {
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return gm.persistLocked(ctx, entry)
}

func (gm *GameManager) persistLocked(ctx context.Context, entry *liveGame) error {
	rec := entry.game.Record()
	if err := gm.repo.Save(ctx, rec); err != nil {
		return fmt.Errorf("save game %s: %w", rec.ID, err)
	}
	return nil
}

func (gm *GameManager) broadcastState(game *model.Game) {
	gm.broadcast(game.ID, game.GetState())
}

func (gm *GameManager) broadcast(gameID string, state model.GameState) {
	msg, err := ws.NewMessage(ws.MessageTypeGameState, state)
	if err != nil {
		gm.log.Error().Err(err).Str("game", gameID).Msg("encode game state")
		return
	}
	gm.hub.Broadcast(gameID, msg)
}

