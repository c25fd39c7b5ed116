package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/hackslate/hackathon-system/handlers"
	"github.com/hackslate/hackathon-system/middleware"
)

type Handlers struct {
	Auth      *handlers.AuthHandler
	Admin     *handlers.AdminHandler
	User      *handlers.UserHandler
	Project   *handlers.ProjectHandler
	Search    *handlers.SearchHandler
	Websocket *handlers.WebsocketHandler
}

func InitRoutes(h Handlers, auth *middleware.AuthMiddleware) *chi.Mux {
	router := chi.NewRouter()

	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Credential endpoints are rate limited per client IP.
	loginLimiter := httprate.LimitByIP(10, time.Minute)

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	router.Route("/user", func(r chi.Router) {
		r.With(loginLimiter).Post("/signup", h.Auth.Signup)
		r.With(loginLimiter).Post("/login", h.Auth.Login)
		r.Post("/logout", h.Auth.Logout)
		r.Get("/verifyEmail/{username}/{code}", h.Auth.VerifyEmail)

		r.With(auth.OptionalAuth).Get("/{username}", h.User.GetProfile)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth)
			r.Put("/{username}", h.User.UpdateProfile)
			r.Post("/{username}/avatar", h.User.UploadAvatar)
		})
	})

	router.Route("/admin", func(r chi.Router) {
		r.With(loginLimiter).Post("/auth", h.Admin.Authenticate)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAdminGate)
			r.With(loginLimiter).Post("/signup", h.Admin.Signup)
			r.With(loginLimiter).Post("/login", h.Admin.Login)
		})

		r.Post("/logout", h.Admin.Logout)

		// Organizer project management stacks all three checks.
		r.Route("/projects", func(r chi.Router) {
			r.Use(auth.RequireAdminGate)
			r.Use(auth.RequireAuth)
			r.Use(auth.RequireOrganizer)

			r.Post("/", h.Project.Create)
			r.Post("/create-project", h.Project.Create)
			r.Put("/{publicID}", h.Project.Update)
			r.Delete("/{publicID}", h.Project.Delete)
			r.Post("/{publicID}/logo", h.Project.UploadLogo)
		})
	})

	router.Route("/projects", func(r chi.Router) {
		r.Get("/", h.Project.List)
		r.Get("/{publicID}", h.Project.Get)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth)
			r.Post("/{publicID}/teams", h.Project.RegisterTeam)
			r.Patch("/{publicID}/teams/{teamID}/members/{username}", h.Project.AcceptTeamMember)
		})
	})

	router.Get("/api/users/search", h.Search.Search)
	router.Get("/api/users/suggestions/search", h.Search.Suggest)

	router.Get("/ws/projects/{publicID}", h.Websocket.Subscribe)

	return router
}
