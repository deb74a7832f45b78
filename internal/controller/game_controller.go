package controller

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/benbeisheim/chess-backend/internal/chess"
	"github.com/benbeisheim/chess-backend/internal/middleware"
	"github.com/benbeisheim/chess-backend/internal/model"
	"github.com/benbeisheim/chess-backend/internal/service"
)

type GameController struct {
	gameService *service.GameService
	log         zerolog.Logger
}

func NewGameController(gameService *service.GameService, log zerolog.Logger) *GameController {
	return &GameController{
		gameService: gameService,
		log:         log.With().Str("component", "game_controller").Logger(),
	}
}

func (gc *GameController) CreateGame(c *fiber.Ctx) error {
	gameID, err := gc.gameService.CreateGame(c.UserContext())
	if err != nil {
		return gc.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Game created",
		"game_id": gameID,
	})
}

func (gc *GameController) JoinGame(c *fiber.Ctx) error {
	gameID := c.Params("gameId")
	playerID := middleware.PlayerID(c)

	color, err := gc.gameService.JoinGame(c.UserContext(), gameID, playerID)
	if err != nil {
		return gc.fail(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Game joined",
		"color":   color,
	})
}

func (gc *GameController) GetGameState(c *fiber.Ctx) error {
	gameState, err := gc.gameService.GetGameState(c.UserContext(), c.Params("gameId"))
	if err != nil {
		return gc.fail(c, err)
	}
	return c.JSON(gameState)
}

// GetBoard renders the board as text, white at the bottom.
func (gc *GameController) GetBoard(c *fiber.Ctx) error {
	board, err := gc.gameService.RenderBoard(c.UserContext(), c.Params("gameId"))
	if err != nil {
		return gc.fail(c, err)
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	return c.SendString(board)
}

func (gc *GameController) LegalMoves(c *fiber.Ctx) error {
	from, err := chess.ParsePosition(c.Query("from"))
	if err != nil {
		return gc.fail(c, err)
	}

	moves, err := gc.gameService.LegalMoves(c.UserContext(), c.Params("gameId"), from)
	if err != nil {
		return gc.fail(c, err)
	}

	squares := make([]string, 0, len(moves))
	for _, to := range moves {
		squares = append(squares, to.String())
	}
	return c.JSON(fiber.Map{
		"from":    from.String(),
		"moves":   moves,
		"squares": squares,
	})
}

func (gc *GameController) MakeMove(c *fiber.Ctx) error {
	var move model.Move
	if err := c.BodyParser(&move); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid move body: " + err.Error(),
		})
	}

	state, err := gc.gameService.HandleMove(c.UserContext(), c.Params("gameId"), middleware.PlayerID(c), move)
	if err != nil {
		return gc.fail(c, err)
	}
	return c.JSON(state)
}

func (gc *GameController) Resign(c *fiber.Ctx) error {
	state, err := gc.gameService.Resign(c.UserContext(), c.Params("gameId"), middleware.PlayerID(c))
	if err != nil {
		return gc.fail(c, err)
	}
	return c.JSON(state)
}

func (gc *GameController) JoinMatchmaking(c *fiber.Ctx) error {
	if err := gc.gameService.JoinMatchmaking(middleware.PlayerID(c)); err != nil {
		return gc.fail(c, err)
	}
	return c.JSON(fiber.Map{
		"status": "queued",
	})
}

func (gc *GameController) LeaveMatchmaking(c *fiber.Ctx) error {
	if !gc.gameService.LeaveMatchmaking(middleware.PlayerID(c)) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "player not in queue",
		})
	}
	return c.JSON(fiber.Map{
		"status": "left",
	})
}

// MatchStatus lets a client without a matchmaking socket poll for its game.
func (gc *GameController) MatchStatus(c *fiber.Ctx) error {
	event, ok := gc.gameService.MatchStatus(middleware.PlayerID(c))
	if !ok {
		return c.JSON(fiber.Map{
			"status": "waiting",
		})
	}
	return c.JSON(fiber.Map{
		"status": "matched",
		"gameId": event.GameID,
		"color":  event.Color,
	})
}

func (gc *GameController) fail(c *fiber.Ctx, err error) error {
	status := StatusFor(err)
	msg := err.Error()
	if status >= fiber.StatusInternalServerError {
		gc.log.Error().Err(err).Str("path", c.Path()).Msg("request failed")
		msg = "internal server error"
	}
	return c.Status(status).JSON(fiber.Map{
		"error": msg,
	})
}

// StatusFor maps domain errors to HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrGameNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, model.ErrNotInGame):
		return fiber.StatusForbidden
	case errors.Is(err, model.ErrIllegalMove):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, model.ErrNotYourTurn),
		errors.Is(err, model.ErrGameNotActive),
		errors.Is(err, model.ErrGameFull),
		errors.Is(err, model.ErrAlreadyQueued),
		errors.Is(err, service.ErrGameExists):
		return fiber.StatusConflict
	case errors.Is(err, chess.ErrOutOfRange),
		errors.Is(err, chess.ErrInvalidPosition),
		errors.Is(err, chess.ErrEmptySquare):
		return fiber.StatusBadRequest
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return fiber.StatusInternalServerError
}
