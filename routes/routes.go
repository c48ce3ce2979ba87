package routes

import (
	"github.com/courtclub/tournament-engine/handlers"
	"github.com/courtclub/tournament-engine/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Config struct {
	JWTSecret         []byte
	AdminKeyHash      string
	CORSAllowedOrigin string
}

func SetupRoutes(
	router *chi.Mux,
	cfg Config,
	tournamentHandler *handlers.TournamentHandler,
	matchHandler *handlers.MatchHandler,
	auctionHandler *handlers.AuctionHandler,
	pledgeHandler *handlers.PledgeHandler,
	demoHandler *handlers.DemoHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.CORSAllowedOrigin},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Admin-Key"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/swagger/*", httpSwagger.WrapHandler)

	// Live event subscriptions use the websocket handshake, not a bearer
	// token; clients are read-only listeners.
	router.Get("/ws/tournaments/{tournamentID}", webSocketHandler.ServeTournamentWS)

	// Every engine action is called by the hosting client's backend with a
	// service-role token. End users never reach these routes directly.
	router.Group(func(r chi.Router) {
		r.Use(middleware.ServiceRole(cfg.JWTSecret))

		r.Route("/tournaments", func(r chi.Router) {
			r.Post("/", tournamentHandler.StartTournament)
			r.Get("/{tournamentID}", tournamentHandler.GetTournament)
			r.Post("/{tournamentID}/advance", tournamentHandler.CheckAdvanceRound)
			r.Get("/{tournamentID}/balances/{playerID}", tournamentHandler.PlayerBalance)

			r.Post("/{tournamentID}/auction/start", auctionHandler.StartAuction)
			r.Get("/{tournamentID}/auction/lots", auctionHandler.ListLots)
			r.Post("/{tournamentID}/auction/settle", auctionHandler.SettleAuction)
		})

		r.Post("/rounds/{roundID}/regenerate", tournamentHandler.RegenerateMatches)

		r.Route("/matches", func(r chi.Router) {
			r.Post("/{matchID}/result", matchHandler.ReportResult)
			r.Post("/{matchID}/auto-resolve", matchHandler.AutoResolve)

			// Result corrections additionally require the admin key.
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdminKey(cfg.AdminKeyHash))
				r.Post("/{matchID}/override", matchHandler.OverrideResult)
			})
		})

		r.Post("/lots/{lotID}/bids", auctionHandler.PlaceBid)

		r.Route("/pledges", func(r chi.Router) {
			r.Post("/", pledgeHandler.CreatePledge)
			r.Post("/{pledgeID}/approve", pledgeHandler.ApprovePledge)
			r.Post("/{pledgeID}/hide", pledgeHandler.HidePledge)
			r.Post("/{pledgeID}/photo", pledgeHandler.UploadPhoto)
		})

		r.Post("/demo/seed", demoHandler.SeedDemo)
	})
}
