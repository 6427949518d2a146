package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/msomdec/account-service/internal/service"
)

// RouterConfig holds what NewRouter needs beyond the services.
type RouterConfig struct {
	CORSOrigins  []string
	LoginLimiter *service.TokenBucket
}

// NewRouter builds the HTTP handler for the whole API.
func NewRouter(auth *service.AuthService, userService *service.UserService, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.StripSlashes)
	r.Use(RequestLogger)
	r.Use(chimw.Recoverer)
	r.Use(SecurityHeaders)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/", HandleHome)
	r.Get("/healthz", HandleHealthz)

	users := NewUserHandler(auth, userService)
	gate := func(h http.HandlerFunc) http.Handler { return RequireAuth(auth, h) }

	login := http.Handler(http.HandlerFunc(users.HandleLogin))
	if cfg.LoginLimiter != nil {
		login = RateLimit(cfg.LoginLimiter, login)
	}

	r.Route("/api/users", func(r chi.Router) {
		r.Get("/", users.HandleList)
		r.Post("/", users.HandleCreate)
		r.Get("/search", users.HandleSearch)
		r.Method(http.MethodGet, "/status", gate(users.HandleStatus))
		r.Method(http.MethodPost, "/login", login)
		r.Method(http.MethodPost, "/logout", gate(users.HandleLogout))

		r.Get("/{id}", users.HandleGet)
		r.Method(http.MethodPut, "/{id}", gate(users.HandleUpdate))
		r.Method(http.MethodDelete, "/{id}", gate(users.HandleDelete))
	})

	r.Route("/api/products", RegisterProductRoutes)

	return r
}
