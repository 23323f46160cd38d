package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/cipherpoint/cipherpoint-backend/internal/services"
	"github.com/cipherpoint/cipherpoint-backend/pkg/apperrors"
)

// Package-level services, wired once from main.
var (
	userSvc   *services.UserService
	friendSvc *services.FriendService
	gatedSvc  *services.GatedMessageService
	plainSvc  *services.PlainMessageService
	notifyHub *services.NotifyHub
)

// Init wires the handler package to its services.
func Init(users *services.UserService, friends *services.FriendService, gated *services.GatedMessageService, plain *services.PlainMessageService, hub *services.NotifyHub) {
	userSvc = users
	friendSvc = friends
	gatedSvc = gated
	plainSvc = plain
	notifyHub = hub
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps an error to its HTTP status and an {"error": ...} body.
// AppError details (e.g. the proximity distance) are flattened into the body.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		log.Printf("unhandled error: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{"error": "internal server error"})
		return
	}

	body := map[string]interface{}{"error": appErr.Message}
	for k, v := range appErr.Details {
		body[k] = v
	}
	writeJSON(w, appErr.Code.HTTPStatus(), body)
}

func decodeBody(w http.ResponseWriter, r *http.Request, dest interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"error": "invalid request body"})
		return false
	}
	return true
}
