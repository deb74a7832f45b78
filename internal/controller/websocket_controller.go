package controller

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog"

	"github.com/benbeisheim/chess-backend/internal/middleware"
	"github.com/benbeisheim/chess-backend/internal/model"
	"github.com/benbeisheim/chess-backend/internal/service"
	"github.com/benbeisheim/chess-backend/internal/ws"
)

type WebSocketController struct {
	gameService *service.GameService
	log         zerolog.Logger
}

func NewWebSocketController(gameService *service.GameService, log zerolog.Logger) *WebSocketController {
	return &WebSocketController{
		gameService: gameService,
		log:         log.With().Str("component", "ws_controller").Logger(),
	}
}

// HandleConnection serves the live feed of one game. The socket receives the
// current state on connect and every state after it; seated players may send
// move and resign messages.
func (wsc *WebSocketController) HandleConnection(c *websocket.Conn) {
	gameID := c.Params("gameId")
	playerID, _ := c.Locals(middleware.PlayerIDLocal).(string)
	log := wsc.log.With().Str("game", gameID).Str("player", playerID).Logger()
	ctx := context.Background()

	if err := wsc.gameService.RegisterConnection(ctx, gameID, playerID, c); err != nil {
		log.Warn().Err(err).Msg("register connection")
		_ = c.WriteJSON(ws.NewError(err.Error()))
		_ = c.Close()
		return
	}
	defer wsc.gameService.UnregisterConnection(gameID, playerID, c)

	for {
		messageType, message, err := c.ReadMessage()
		if err != nil {
			log.Debug().Err(err).Msg("connection closed")
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}

		var msg ws.Message
		if err := json.Unmarshal(message, &msg); err != nil {
			wsc.reportError(log, gameID, playerID, fmt.Errorf("malformed message: %w", err))
			continue
		}
		if err := wsc.handleMessage(ctx, gameID, playerID, msg); err != nil {
			wsc.reportError(log, gameID, playerID, err)
		}
	}
}

func (wsc *WebSocketController) handleMessage(ctx context.Context, gameID, playerID string, msg ws.Message) error {
	switch msg.Type {
	case ws.MessageTypeMove:
		var move model.Move
		if err := json.Unmarshal(msg.Payload, &move); err != nil {
			return fmt.Errorf("malformed move: %w", err)
		}
		_, err := wsc.gameService.HandleMove(ctx, gameID, playerID, move)
		return err

	case ws.MessageTypeResign:
		_, err := wsc.gameService.Resign(ctx, gameID, playerID)
		return err

	default:
		return fmt.Errorf("unknown message type: %s", msg.Type)
	}
}

func (wsc *WebSocketController) reportError(log zerolog.Logger, gameID, playerID string, err error) {
	log.Debug().Err(err).Msg("rejected message")
	if sendErr := wsc.gameService.SendError(gameID, playerID, err.Error()); sendErr != nil {
		log.Warn().Err(sendErr).Msg("send error message")
	}
}

// HandleMatchmaking waits for the player's match and sends it as a single
// matchFound message. Closing the socket first takes the player out of the
// queue.
func (wsc *WebSocketController) HandleMatchmaking(c *websocket.Conn) {
	playerID, _ := c.Locals(middleware.PlayerIDLocal).(string)
	log := wsc.log.With().Str("player", playerID).Logger()
	defer c.Close()

	matches := make(chan service.MatchFoundEvent, 1)
	wsc.gameService.RegisterMatchmakingChannel(playerID, matches)

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}()

	select {
	case event, ok := <-matches:
		if !ok {
			return
		}
		msg, err := ws.NewMessage(ws.MessageTypeMatchFound, event)
		if err == nil {
			err = c.WriteJSON(msg)
		}
		if err != nil {
			log.Warn().Err(err).Msg("send match")
			wsc.gameService.KeepMatch(playerID, event)
			return
		}
		log.Debug().Str("game", event.GameID).Msg("match delivered")

	case <-closed:
		wsc.abandonMatchmaking(log, playerID, matches)
	}
}

// abandonMatchmaking runs when the socket closes before a match arrives. A
// match that was delivered in the meantime is kept for MatchStatus; otherwise
// the player leaves the queue.
func (wsc *WebSocketController) abandonMatchmaking(log zerolog.Logger, playerID string, matches chan service.MatchFoundEvent) {
	wsc.gameService.UnregisterMatchmakingChannel(playerID, matches)

	select {
	case event, ok := <-matches:
		if ok {
			wsc.gameService.KeepMatch(playerID, event)
			log.Debug().Str("game", event.GameID).Msg("kept match after disconnect")
			return
		}
	default:
	}

	if wsc.gameService.LeaveMatchmaking(playerID) {
		log.Debug().Msg("left matchmaking on disconnect")
	}
}
