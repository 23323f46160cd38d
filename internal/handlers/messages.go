package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cipherpoint/cipherpoint-backend/internal/middleware"
	"github.com/cipherpoint/cipherpoint-backend/internal/models"
)

// LocationPayload mirrors the wire shape of a geofence center. Coordinates
// are pointers so a missing field is distinguishable from zero.
type LocationPayload struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Name      string   `json:"name"`
}

type SendMessageRequest struct {
	RecipientID string `json:"recipientId"`
	Message     string `json:"message"`
	Password    string `json:"password"`
}

type SendLocationMessageRequest struct {
	RecipientID string           `json:"recipientId"`
	Message     string           `json:"message"`
	Password    string           `json:"password"`
	Location    *LocationPayload `json:"location"`
}

type GetPasswordRequest struct {
	MessageID string   `json:"messageId"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

type DecryptMessageRequest struct {
	MessageID string `json:"messageId"`
	Password  string `json:"password"`
}

// SendMessage handles POST /messages/send (plain, no geofence).
func SendMessage(w http.ResponseWriter, r *http.Request) {
	var req SendMessageRequest
	if !decodeBody(w, r, &req) {
		return
	}

	msg, err := plainSvc.Create(r.Context(), middleware.UserID(r), req.RecipientID, req.Message, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":   "Message sent successfully",
		"messageId": msg.ID,
	})
}

// SendLocationMessage handles POST /messages/send-location.
func SendLocationMessage(w http.ResponseWriter, r *http.Request) {
	var req SendLocationMessageRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Location == nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"error": "recipient ID, message, password, and location are required"})
		return
	}
	if req.Location.Latitude == nil || req.Location.Longitude == nil || req.Location.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"error": "invalid location data"})
		return
	}

	location := models.GeoPoint{
		Latitude:  *req.Location.Latitude,
		Longitude: *req.Location.Longitude,
		Name:      req.Location.Name,
	}
	msg, err := gatedSvc.Create(r.Context(), middleware.UserID(r), req.RecipientID, req.Message, req.Password, location)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":   "Location-based message sent successfully",
		"messageId": msg.ID,
		"location":  location,
	})
}

// GetPassword handles POST /messages/get-password: the proximity-gated
// password release.
func GetPassword(w http.ResponseWriter, r *http.Request) {
	var req GetPasswordRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.MessageID == "" || req.Latitude == nil || req.Longitude == nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"error": "message ID and current location required"})
		return
	}

	grant, err := gatedSvc.RequestPassword(r.Context(), req.MessageID, middleware.UserID(r), *req.Latitude, *req.Longitude)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, grant)
}

// DecryptLocationMessage handles POST /messages/decrypt-location: one-shot
// decrypt-and-consume of a gated message.
func DecryptLocationMessage(w http.ResponseWriter, r *http.Request) {
	var req DecryptMessageRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.MessageID == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"error": "message ID and password required"})
		return
	}

	opened, err := gatedSvc.Decrypt(r.Context(), req.MessageID, middleware.UserID(r), req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, opened)
}

// DecryptMessage handles POST /messages/decrypt (plain, multi-read).
func DecryptMessage(w http.ResponseWriter, r *http.Request) {
	var req DecryptMessageRequest
	if !decodeBody(w, r, &req) {
		return
	}

	plaintext, err := plainSvc.Decrypt(r.Context(), req.MessageID, middleware.UserID(r), req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"message": plaintext})
}

// GetConversation handles GET /messages/conversation/{friendId}.
func GetConversation(w http.ResponseWriter, r *http.Request) {
	friendID := chi.URLParam(r, "friendId")

	items, err := gatedSvc.ListConversation(r.Context(), middleware.UserID(r), friendID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"messages": items})
}
