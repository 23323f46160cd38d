package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cipherpoint/cipherpoint-backend/internal/middleware"
)

type AddFriendRequest struct {
	FriendID string `json:"friendId"`
}

// ListFriends handles GET /friends.
func ListFriends(w http.ResponseWriter, r *http.Request) {
	friends, err := friendSvc.List(r.Context(), middleware.UserID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"friends": friends})
}

// SearchUsers handles GET /users?search=.
func SearchUsers(w http.ResponseWriter, r *http.Request) {
	users, err := userSvc.Search(r.Context(), r.URL.Query().Get("search"), middleware.UserID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"users": users})
}

// AddFriend handles POST /friends/add.
func AddFriend(w http.ResponseWriter, r *http.Request) {
	var req AddFriendRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := friendSvc.Add(r.Context(), middleware.UserID(r), req.FriendID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"message": "Friend added successfully"})
}

// RemoveFriend handles DELETE /friends/remove/{friendId}.
func RemoveFriend(w http.ResponseWriter, r *http.Request) {
	friendID := chi.URLParam(r, "friendId")

	if err := friendSvc.Remove(r.Context(), middleware.UserID(r), friendID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"message": "Friend removed successfully"})
}
