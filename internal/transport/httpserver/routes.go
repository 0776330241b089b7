package httpserver

import (
	"net/http"
	"time"

	"dates-app-go/internal/config"
	"dates-app-go/internal/transport/httpserver/handler"
	authmw "dates-app-go/internal/transport/httpserver/middleware"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

func NewRouter(cfg config.Config, handlers *handler.Handlers, auth *authmw.JWTAuth) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(authmw.NewCORS(cfg.CORSOrigins))

	r.Get("/health", handlers.Health)

	r.Post("/createuser", handlers.CreateUser)
	r.Post("/auth", handlers.Auth)

	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware)

		r.Post("/createrelation", handlers.CreateRelation)
		r.Get("/accept-relationship", handlers.AcceptRelationship)
		r.Delete("/delete-relationship", handlers.DeleteRelationship)
		r.Put("/edit-relationship", handlers.EditRelationship)
		r.Get("/get-relationship", handlers.GetRelationships)
	})

	return r
}
