package handler

import (
	"net/http"

	relationshipdomain "dates-app-go/internal/domain/relationship"
	userdomain "dates-app-go/internal/domain/user"
	"dates-app-go/internal/transport/httpserver/middleware"
	"dates-app-go/pkg/logger"
)

type Handlers struct {
	Users         *userdomain.Service
	Relationships *relationshipdomain.Service
	auth          *middleware.JWTAuth
	log           logger.Logger
}

func New(users *userdomain.Service, relationships *relationshipdomain.Service, auth *middleware.JWTAuth, log logger.Logger) *Handlers {
	return &Handlers{
		Users:         users,
		Relationships: relationships,
		auth:          auth,
		log:           log,
	}
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
