package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/mokki-app/mokki/handlers"
	"github.com/mokki-app/mokki/middleware"
)

type Handlers struct {
	Auth      *handlers.AuthHandler
	Dashboard *handlers.DashboardHandler
	House     *handlers.HouseHandler
	Invite    *handlers.InviteHandler
	Stay      *handlers.StayHandler
	Expense   *handlers.ExpenseHandler
	Media     *handlers.MediaHandler
	Weather   *handlers.WeatherHandler
	WebSocket *handlers.WebSocketHandler
}

func SetupRoutes(h Handlers, jwtSecret []byte) *chi.Mux {
	router := chi.NewRouter()

	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Post("/auth/signup", h.Auth.Signup)
	router.Post("/auth/login", h.Auth.Login)
	router.Post("/auth/magic-link", h.Auth.MagicLink)
	router.Get("/auth/confirm", h.Auth.Confirm)
	router.Get("/auth/error", h.Auth.AuthError)

	router.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(jwtSecret))

		r.Get("/dashboard", h.Dashboard.Overview)

		r.Get("/me", h.Auth.Me)
		r.Put("/me", h.Auth.UpdateProfile)

		r.Route("/houses", func(r chi.Router) {
			r.Post("/", h.House.CreateHouse)
			r.Get("/", h.House.ListMine)

			r.Route("/{houseID}", func(r chi.Router) {
				r.Get("/", h.House.GetHouse)
				r.Get("/members", h.House.ListMembers)

				r.Post("/invites", h.Invite.CreateInvite)
				r.Get("/invites", h.Invite.ListHouseInvites)
				r.Delete("/invites/{inviteID}", h.Invite.RevokeInvite)

				r.Post("/stays", h.Stay.BookStay)
				r.Get("/stays", h.Stay.ListStays)
				r.Post("/stays/{stayID}/cancel", h.Stay.CancelStay)

				r.Post("/expenses", h.Expense.AddExpense)
				r.Get("/expenses", h.Expense.ListExpenses)
				r.Get("/balances", h.Expense.HouseBalances)

				r.Post("/media", h.Media.Upload)
				r.Get("/media", h.Media.List)
				r.Delete("/media/{mediaID}", h.Media.Delete)

				r.Get("/weather", h.Weather.SnowReport)
			})
		})

		r.Get("/ws/houses/{houseID}", h.WebSocket.HouseActivity)
	})

	return router
}
