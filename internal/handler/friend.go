package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/friendcircle/internal/apperror"
	"github.com/sakif/friendcircle/internal/auth"
	"github.com/sakif/friendcircle/internal/service"
)

// FriendHandler owns the friendship endpoints. Every route here sits behind
// the auth gate; the acting identity comes from the request context, never
// from the request body.
type FriendHandler struct {
	friends *service.FriendService
	logger  *slog.Logger
}

// NewFriendHandler creates a FriendHandler.
func NewFriendHandler(friends *service.FriendService, logger *slog.Logger) *FriendHandler {
	return &FriendHandler{friends: friends, logger: logger}
}

type addFriendRequest struct {
	FriendID string `json:"friendId"`
}

type statusResponse struct {
	Message string `json:"message"`
}

// HandleList returns the acting user's friend profiles.
//
// HTTP: GET /api/friends
func (h *FriendHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID := actingUserID(w, r)
	if userID == "" {
		return
	}

	friends, err := h.friends.ListFriends(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, friends)
}

// HandleSearch returns friendship candidates matching ?query=, excluding the
// acting user and existing friends. An empty query matches everyone
// eligible.
//
// HTTP: GET /api/friends/search?query=text
func (h *FriendHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	userID := actingUserID(w, r)
	if userID == "" {
		return
	}

	users, err := h.friends.SearchCandidates(r.Context(), userID, r.URL.Query().Get("query"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// HandleListStrangers returns every user that is neither the acting user nor
// already a friend.
//
// HTTP: GET /api/users
func (h *FriendHandler) HandleListStrangers(w http.ResponseWriter, r *http.Request) {
	userID := actingUserID(w, r)
	if userID == "" {
		return
	}

	users, err := h.friends.ListStrangers(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// HandleAdd creates a friendship between the acting user and body.friendId.
//
// HTTP: POST /api/friends → 201, 400 on self-reference, 404 on unknown
// target, 409 when already friends.
func (h *FriendHandler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	userID := actingUserID(w, r)
	if userID == "" {
		return
	}

	var req addFriendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}
	if req.FriendID == "" {
		writeError(w, apperror.ValidationFailed("friendId", "friendId is required"))
		return
	}

	if err := h.friends.AddFriend(r.Context(), userID, req.FriendID); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, statusResponse{Message: "friend added successfully"})
}

// HandleRemove removes the friendship with the user in the path.
//
// HTTP: DELETE /api/friends/{friendId} → 200; removing an absent edge still
// succeeds.
func (h *FriendHandler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	userID := actingUserID(w, r)
	if userID == "" {
		return
	}

	friendID := chi.URLParam(r, "friendId")
	if friendID == "" {
		writeError(w, apperror.ValidationFailed("friendId", "friendId is required"))
		return
	}

	if err := h.friends.RemoveFriend(r.Context(), userID, friendID); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, statusResponse{Message: "friend removed successfully"})
}

// actingUserID resolves the gate-bound identity from the request context.
// Routes are registered behind RequireAuth so the ID should always be
// present; an empty result means the route was miswired, and the caller gets
// the same 401 an unauthenticated request would.
func actingUserID(w http.ResponseWriter, r *http.Request) string {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("authentication required"))
		return ""
	}
	return userID
}
