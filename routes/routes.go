package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/peladahub/pelada-system/handlers"
	"github.com/peladahub/pelada-system/middleware"
)

func SetupRoutes(
	router *chi.Mux,
	authenticator *middleware.Authenticator,
	authHandler *handlers.AuthHandler,
	playerHandler *handlers.PlayerHandler,
	roundHandler *handlers.RoundHandler,
	standingsHandler *handlers.StandingsHandler,
	cashHandler *handlers.CashHandler,
	settingsHandler *handlers.SettingsHandler,
	importHandler *handlers.ImportHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/swagger/*", httpSwagger.Handler())

	router.Post("/auth/register", authHandler.Register)
	router.Post("/auth/login", authHandler.Login)

	// Live standings stream, public per league.
	router.Get("/ws/leagues/{leagueID}", webSocketHandler.ServeWs)

	router.Group(func(r chi.Router) {
		r.Use(authenticator.Authenticate)

		r.Route("/players", func(r chi.Router) {
			r.Get("/", playerHandler.List)
			r.Post("/", playerHandler.Create)
			r.Get("/{playerID}", playerHandler.Get)
			r.Put("/{playerID}", playerHandler.Update)
			r.Patch("/{playerID}/active", playerHandler.SetActive)
			r.Delete("/{playerID}", playerHandler.Delete)
		})

		r.Route("/rounds", func(r chi.Router) {
			r.Get("/", roundHandler.List)
			r.Post("/", roundHandler.Open)
			r.Get("/seasons", roundHandler.ListSeasons)
			r.Get("/{roundID}", roundHandler.Get)
			r.Delete("/{roundID}", roundHandler.Delete)
			r.Put("/{roundID}/teams", roundHandler.SetTeams)
			r.Put("/{roundID}/teams/{teamID}/result", roundHandler.SetTeamResult)
			r.Put("/{roundID}/players/{playerID}", roundHandler.AssignPlayer)
			r.Delete("/{roundID}/players/{playerID}", roundHandler.RemovePlayer)
			r.Put("/{roundID}/players/{playerID}/cards", roundHandler.SetCards)
			r.Put("/{roundID}/players/{playerID}/result", roundHandler.SetIndividualResult)
			r.Post("/recalculate-all", roundHandler.RecalculateAll)
			r.Post("/{roundID}/recalculate", roundHandler.Recalculate)
			r.Patch("/{roundID}/closed", roundHandler.Close)
		})

		r.Route("/standings", func(r chi.Router) {
			r.Get("/", standingsHandler.Get)
			r.Get("/export", standingsHandler.ExportPDF)
			r.Post("/share", standingsHandler.Share)
		})

		r.Route("/cash", func(r chi.Router) {
			r.Get("/entries", cashHandler.ListEntries)
			r.Post("/entries", cashHandler.CreateEntry)
			r.Delete("/entries/{entryID}", cashHandler.DeleteEntry)
			r.Get("/monthly-flags", cashHandler.ListMonthlyFlags)
			r.Put("/monthly-flags", cashHandler.SetMonthlyFlag)
			r.Put("/opening-balance", cashHandler.SetOpeningBalance)
			r.Get("/summary/month", cashHandler.MonthSummary)
			r.Get("/summary/season", cashHandler.SeasonSummary)
		})

		r.Route("/settings", func(r chi.Router) {
			r.Get("/", settingsHandler.Get)
			r.Put("/", settingsHandler.Update)
		})

		r.Post("/import/{kind}", importHandler.Upload)
	})
}
