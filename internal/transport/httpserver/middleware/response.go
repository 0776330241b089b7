package middleware

import (
	"net/http"

	"dates-app-go/internal/transport/httpserver/respond"
)

func writeError(w http.ResponseWriter, status int, code, message string) {
	respond.Error(w, status, code, message)
}
