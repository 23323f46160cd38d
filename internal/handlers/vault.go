package handlers

import (
	"net/http"

	"github.com/cipherpoint/cipherpoint-backend/internal/middleware"
)

type EncryptRequest struct {
	Message  string `json:"message"`
	Password string `json:"password"`
}

type DecryptRequest struct {
	ID       string `json:"id"`
	Password string `json:"password"`
}

// Encrypt handles POST /encrypt: store a standalone password-protected note.
func Encrypt(w http.ResponseWriter, r *http.Request) {
	var req EncryptRequest
	if !decodeBody(w, r, &req) {
		return
	}

	id, err := plainSvc.EncryptPersonal(r.Context(), middleware.UserID(r), req.Message, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"id": id})
}

// Decrypt handles POST /decrypt: open a note by id and password.
func Decrypt(w http.ResponseWriter, r *http.Request) {
	var req DecryptRequest
	if !decodeBody(w, r, &req) {
		return
	}

	plaintext, err := plainSvc.DecryptPersonal(r.Context(), req.ID, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"message": plaintext})
}
