// handlers/session_routes.go
package handlers

import (
	"space-games-system/middleware"
	"space-games-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupGameSessionRoutes(app *fiber.App, sessionService *services.SessionService, moveService *services.MoveService) {
	// All session routes require user context (userID), enforced via middleware.
	secured := app.Group("/", middleware.UserContextMiddleware())

	secured.Post("/spaces/:space_id/sessions", sessionService.CreateSessionEndpoint)
	secured.Get("/sessions/:id", sessionService.GetSessionEndpoint) // read-only snapshot, poll freely
	secured.Post("/sessions/:id/join", sessionService.JoinSessionEndpoint)
	secured.Post("/sessions/:id/moves", moveService.SubmitMoveEndpoint)
	secured.Post("/sessions/:id/abandon", sessionService.AbandonSessionEndpoint)
}

func SetupScoreRoutes(app *fiber.App, scoreService *services.ScoreService) {
	secured := app.Group("/", middleware.UserContextMiddleware())

	secured.Get("/spaces/:space_id/leaderboard/:game_type", scoreService.LeaderboardEndpoint)
	// Direct-score interface for solo minigames — no session, no turn arbitration.
	secured.Post("/spaces/:space_id/scores/:game_type", scoreService.SubmitSoloScoreEndpoint)
}
