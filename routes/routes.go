package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/sketcher2345/hackathon-platform/handlers"
	"github.com/sketcher2345/hackathon-platform/middleware"
)

type Handlers struct {
	Auth         *handlers.AuthHandler
	Hackathon    *handlers.HackathonHandler
	Registration *handlers.RegistrationHandler
	Roster       *handlers.RosterHandler
	WebSocket    *handlers.WebSocketHandler
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

	// Live event feed; the token rides the query string.
	router.Get("/ws/hackathons/{hackathonID}", h.WebSocket.ServeHackathonEvents)

	router.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(jwtSecret))

		r.Route("/hackathons", func(r chi.Router) {
			r.Post("/", h.Hackathon.Create)
			r.Get("/", h.Hackathon.List)

			r.Route("/{hackathonID}", func(r chi.Router) {
				r.Get("/", h.Hackathon.Get)
				r.Put("/", h.Hackathon.Update)
				r.Post("/start", h.Hackathon.Start)
				r.Post("/close-registration", h.Hackathon.CloseRegistration)
				r.Post("/logo", h.Hackathon.UploadLogo)
				r.Post("/banner", h.Hackathon.UploadBanner)
				r.Post("/winners", h.Hackathon.AnnounceWinners)

				r.Get("/registrations", h.Registration.ListPending)

				r.Post("/register-formed-teams", h.Roster.ImportFormedTeams)
				r.Get("/submissions", h.Roster.ExportSubmissionsCSV)
				r.Get("/submissions/json", h.Roster.ListSubmissions)
			})
		})

		r.Put("/registrations/{registrationID}", h.Registration.Decide)
	})

	return router
}
