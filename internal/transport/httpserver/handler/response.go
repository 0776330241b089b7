package handler

import (
	"net/http"

	"dates-app-go/internal/transport/httpserver/respond"
)

func writeError(w http.ResponseWriter, status int, code, message string) {
	respond.Error(w, status, code, message)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	respond.JSON(w, status, payload)
}

func decodeJSON(r *http.Request, dst interface{}) error {
	return respond.DecodeJSON(r, dst)
}
