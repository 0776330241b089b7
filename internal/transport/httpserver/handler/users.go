package handler

import (
	"errors"
	"net/http"

	userdomain "dates-app-go/internal/domain/user"
	"dates-app-go/internal/transport/httpserver/middleware"
)

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type createUserResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

type authResponse struct {
	Token    string `json:"token"`
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
}

func (h *Handlers) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid_json", "invalid json body")
		return
	}

	result, err := h.Users.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, userdomain.ErrUsernameRequired),
			errors.Is(err, userdomain.ErrPasswordRequired),
			errors.Is(err, userdomain.ErrPasswordTooLong):
			h.log.BusinessError("users.create: invalid credentials payload", err)
			writeError(w, http.StatusUnprocessableEntity, "invalid_request", err.Error())
		case errors.Is(err, userdomain.ErrUsernameTaken):
			h.log.BusinessError("users.create: username taken", err, "username", req.Username)
			writeError(w, http.StatusUnprocessableEntity, "username_taken", "username already taken")
		default:
			h.log.InternalError("users.create: register failed", err)
			writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		}
		return
	}

	writeJSON(w, http.StatusOK, createUserResponse{ID: result.ID, Username: result.Username})
}

func (h *Handlers) Auth(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials")
		return
	}

	result, err := h.Users.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, userdomain.ErrInvalidCredentials) {
			h.log.BusinessError("users.auth: invalid credentials", err)
			writeError(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials")
			return
		}
		h.log.InternalError("users.auth: authenticate failed", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	token, err := h.auth.Issue(middleware.User{ID: result.ID, Username: result.Username})
	if err != nil {
		h.log.InternalError("users.auth: issue token failed", err, "user_id", result.ID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	writeJSON(w, http.StatusAccepted, authResponse{
		Token:    token,
		UserID:   result.ID,
		Username: result.Username,
	})
}
