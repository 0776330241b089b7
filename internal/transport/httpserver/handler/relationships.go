package handler

import (
	"errors"
	"net/http"

	relationshipdomain "dates-app-go/internal/domain/relationship"
	"dates-app-go/internal/transport/httpserver/middleware"
)

type createRelationshipRequest struct {
	Name          string   `json:"name"`
	Color         *string  `json:"color"`
	Description   *string  `json:"description"`
	UserCreator   int64    `json:"user_creator"`
	ProposedUsers []string `json:"proposed_users"`
}

type editRelationshipRequest struct {
	ID          int64   `json:"id"`
	UserID      int64   `json:"user_id"`
	Name        *string `json:"name"`
	Color       *string `json:"color"`
	Description *string `json:"description"`
}

type relationshipResponse struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Color       *string `json:"color,omitempty"`
	Description *string `json:"description,omitempty"`
	Status      string  `json:"status"`
}

type memberResponse struct {
	UserID    int64  `json:"user_id"`
	Username  string `json:"username"`
	Confirmed bool   `json:"confirmed"`
}

type relationshipViewResponse struct {
	relationshipResponse
	Members []memberResponse `json:"members"`
}

type acceptResponse struct {
	Status       string `json:"status"`
	Transitioned bool   `json:"transitioned"`
}

func toRelationshipResponse(rel *relationshipdomain.Relationship) relationshipResponse {
	return relationshipResponse{
		ID:          rel.ID,
		Name:        rel.Name,
		Color:       rel.Color,
		Description: rel.Description,
		Status:      string(rel.Status),
	}
}

func toRelationshipViewResponse(view relationshipdomain.View) relationshipViewResponse {
	members := make([]memberResponse, 0, len(view.Members))
	for _, member := range view.Members {
		members = append(members, memberResponse{
			UserID:    member.UserID,
			Username:  member.Username,
			Confirmed: member.Confirmed,
		})
	}
	return relationshipViewResponse{
		relationshipResponse: toRelationshipResponse(&view.Relationship),
		Members:              members,
	}
}

// actingUser resolves the authenticated caller and checks it matches the
// user id named in the request, so a valid token cannot act on someone
// else's behalf.
func (h *Handlers) actingUser(w http.ResponseWriter, r *http.Request, claimedID int64) (middleware.User, bool) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return middleware.User{}, false
	}
	if user.ID != claimedID {
		writeError(w, http.StatusForbidden, "forbidden", "cannot act as another user")
		return middleware.User{}, false
	}
	return user, true
}

func (h *Handlers) CreateRelation(w http.ResponseWriter, r *http.Request) {
	var req createRelationshipRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid_json", "invalid json body")
		return
	}

	user, ok := h.actingUser(w, r, req.UserCreator)
	if !ok {
		return
	}

	result, err := h.Relationships.Create(r.Context(), relationshipdomain.CreateInput{
		Name:              req.Name,
		Color:             req.Color,
		Description:       req.Description,
		CreatorID:         user.ID,
		ProposedUsernames: req.ProposedUsers,
	})
	if err != nil {
		switch {
		case relationshipdomain.IsValidation(err):
			h.log.BusinessError("relationships.create: validation failed", err, "user_id", user.ID)
			writeError(w, http.StatusUnprocessableEntity, "invalid_relationship", err.Error())
		case errors.Is(err, relationshipdomain.ErrUserNotFound):
			h.log.BusinessError("relationships.create: proposed user not found", err, "user_id", user.ID)
			writeError(w, http.StatusUnprocessableEntity, "user_not_found", "proposed user not found")
		default:
			h.log.InternalError("relationships.create: create failed", err, "user_id", user.ID)
			writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		}
		return
	}

	writeJSON(w, http.StatusOK, toRelationshipResponse(result))
}

func (h *Handlers) AcceptRelationship(w http.ResponseWriter, r *http.Request) {
	userID, err := parseIDParam(r.URL.Query().Get("user_id"))
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid_request", "invalid user_id")
		return
	}
	relationshipID, err := parseIDParam(r.URL.Query().Get("relationship_id"))
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid_request", "invalid relationship_id")
		return
	}

	user, ok := h.actingUser(w, r, userID)
	if !ok {
		return
	}

	result, err := h.Relationships.Confirm(r.Context(), user.ID, relationshipID)
	if err != nil {
		switch {
		case errors.Is(err, relationshipdomain.ErrRelationshipNotFound),
			errors.Is(err, relationshipdomain.ErrMembershipNotFound):
			h.log.BusinessError("relationships.accept: membership not found", err, "user_id", user.ID, "relationship_id", relationshipID)
			writeError(w, http.StatusUnprocessableEntity, "membership_not_found", "membership not found")
		default:
			h.log.InternalError("relationships.accept: confirm failed", err, "user_id", user.ID, "relationship_id", relationshipID)
			writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		}
		return
	}

	writeJSON(w, http.StatusOK, acceptResponse{
		Status:       string(result.Status),
		Transitioned: result.Transitioned,
	})
}

func (h *Handlers) DeleteRelationship(w http.ResponseWriter, r *http.Request) {
	userID, err := parseIDParam(r.URL.Query().Get("user_id"))
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid_request", "invalid user_id")
		return
	}
	relationshipID, err := parseIDParam(r.URL.Query().Get("relationship_id"))
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid_request", "invalid relationship_id")
		return
	}

	user, ok := h.actingUser(w, r, userID)
	if !ok {
		return
	}

	if err := h.Relationships.Delete(r.Context(), user.ID, relationshipID); err != nil {
		switch {
		// A missing relationship and a non-member requester both answer 403
		// so callers cannot probe which relationship ids exist.
		case errors.Is(err, relationshipdomain.ErrRelationshipNotFound),
			errors.Is(err, relationshipdomain.ErrNotMember):
			h.log.BusinessError("relationships.delete: not permitted", err, "user_id", user.ID, "relationship_id", relationshipID)
			writeError(w, http.StatusForbidden, "forbidden", "not permitted")
		default:
			h.log.InternalError("relationships.delete: delete failed", err, "user_id", user.ID, "relationship_id", relationshipID)
			writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (h *Handlers) EditRelationship(w http.ResponseWriter, r *http.Request) {
	var req editRelationshipRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid_json", "invalid json body")
		return
	}
	if req.ID <= 0 {
		writeError(w, http.StatusUnprocessableEntity, "invalid_request", "invalid id")
		return
	}

	user, ok := h.actingUser(w, r, req.UserID)
	if !ok {
		return
	}

	result, err := h.Relationships.Update(r.Context(), relationshipdomain.UpdateInput{
		RelationshipID: req.ID,
		UserID:         user.ID,
		Name:           req.Name,
		Color:          req.Color,
		Description:    req.Description,
	})
	if err != nil {
		switch {
		case relationshipdomain.IsValidation(err):
			h.log.BusinessError("relationships.edit: validation failed", err, "user_id", user.ID, "relationship_id", req.ID)
			writeError(w, http.StatusUnprocessableEntity, "invalid_relationship", err.Error())
		case errors.Is(err, relationshipdomain.ErrRelationshipNotFound),
			errors.Is(err, relationshipdomain.ErrNotMember):
			h.log.BusinessError("relationships.edit: not permitted", err, "user_id", user.ID, "relationship_id", req.ID)
			writeError(w, http.StatusForbidden, "forbidden", "not permitted")
		default:
			h.log.InternalError("relationships.edit: update failed", err, "user_id", user.ID, "relationship_id", req.ID)
			writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		}
		return
	}

	writeJSON(w, http.StatusOK, toRelationshipResponse(result))
}

func (h *Handlers) GetRelationships(w http.ResponseWriter, r *http.Request) {
	userID, err := parseIDParam(r.URL.Query().Get("user_id"))
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid_request", "invalid user_id")
		return
	}

	user, ok := h.actingUser(w, r, userID)
	if !ok {
		return
	}

	views, err := h.Relationships.ListByUser(r.Context(), user.ID)
	if err != nil {
		h.log.InternalError("relationships.list: list failed", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	response := make([]relationshipViewResponse, 0, len(views))
	for _, view := range views {
		response = append(response, toRelationshipViewResponse(view))
	}

	writeJSON(w, http.StatusOK, response)
}
