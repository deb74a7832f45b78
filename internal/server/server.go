// Package server wires controllers and middleware into the fiber app.
package server

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog"

	"github.com/benbeisheim/chess-backend/internal/controller"
	"github.com/benbeisheim/chess-backend/internal/middleware"
	"github.com/benbeisheim/chess-backend/internal/service"
)

type Options struct {
	// CORSOrigins is a comma separated origin list.
	CORSOrigins string
	Logger      zerolog.Logger
}

func New(gameService *service.GameService, opts Options) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "chess-server",
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     opts.CORSOrigins,
		AllowHeaders:     "Origin, Content-Type, Accept, " + middleware.PlayerIDHeader,
		AllowMethods:     "GET, POST, DELETE, OPTIONS",
		AllowCredentials: opts.CORSOrigins != "" && opts.CORSOrigins != "*",
	}))
	app.Use(middleware.RequestLogger(opts.Logger))

	gameController := controller.NewGameController(gameService, opts.Logger)
	wsController := controller.NewWebSocketController(gameService, opts.Logger)

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	wsOrigins := splitOrigins(opts.CORSOrigins)
	wsRoutes := app.Group("/ws", middleware.EnsurePlayerID(), middleware.WebSocketUpgrade())
	wsRoutes.Get("/game/:gameId", websocket.New(wsController.HandleConnection, websocket.Config{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		Origins:         wsOrigins,
	}))
	wsRoutes.Get("/matchmaking", websocket.New(wsController.HandleMatchmaking, websocket.Config{
		Origins: wsOrigins,
	}))

	api := app.Group("/api", middleware.EnsurePlayerID())
	gameRoutes := api.Group("/game")
	gameRoutes.Post("/matchmaking/join", gameController.JoinMatchmaking)
	gameRoutes.Get("/matchmaking/status", gameController.MatchStatus)
	gameRoutes.Delete("/matchmaking", gameController.LeaveMatchmaking)
	gameRoutes.Post("/create", gameController.CreateGame)
	gameRoutes.Post("/join/:gameId", gameController.JoinGame)
	gameRoutes.Get("/:gameId", gameController.GetGameState)
	gameRoutes.Get("/:gameId/board", gameController.GetBoard)
	gameRoutes.Get("/:gameId/moves", gameController.LegalMoves)
	gameRoutes.Post("/:gameId/move", gameController.MakeMove)
	gameRoutes.Post("/:gameId/resign", gameController.Resign)

	return app
}

func errorHandler(c *fiber.Ctx, err error) error {
	status := controller.StatusFor(err)
	msg := err.Error()
	var fe *fiber.Error
	if status == fiber.StatusInternalServerError && !errors.As(err, &fe) {
		msg = "internal server error"
	}
	return c.Status(status).JSON(fiber.Map{
		"error": msg,
	})
}

func splitOrigins(origins string) []string {
	var out []string
	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" && o != "*" {
			out = append(out, o)
		}
	}
	return out
}
