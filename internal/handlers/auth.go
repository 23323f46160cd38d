package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"golang.org/x/oauth2"

	"github.com/cipherpoint/cipherpoint-backend/internal/middleware"
	"github.com/cipherpoint/cipherpoint-backend/internal/models"
	"github.com/cipherpoint/cipherpoint-backend/internal/services"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type GoogleLoginRequest struct {
	AccessToken string `json:"access_token"`
}

type AuthResponse struct {
	Message string               `json:"message"`
	Token   string               `json:"token"`
	User    models.PublicProfile `json:"user"`
}

// Signup handles POST /signup.
func Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if !decodeBody(w, r, &req) {
		return
	}

	user, err := userSvc.Signup(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	token, err := services.CreateSession(user.ID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{"error": "failed to create session"})
		return
	}

	writeJSON(w, http.StatusCreated, AuthResponse{
		Message: "User created successfully",
		Token:   token,
		User:    user.Public(),
	})
}

// Login handles POST /login.
func Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Email == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"error": "email and password are required"})
		return
	}

	user, err := userSvc.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	token, err := services.CreateSession(user.ID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{"error": "failed to create session"})
		return
	}

	writeJSON(w, http.StatusOK, AuthResponse{
		Message: "Login successful",
		Token:   token,
		User:    user.Public(),
	})
}

// GoogleLogin handles POST /google-login. The client sends a Google OAuth
// access token; the profile is fetched server-side so the identity cannot be
// spoofed by the caller.
func GoogleLogin(w http.ResponseWriter, r *http.Request) {
	var req GoogleLoginRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.AccessToken == "" {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"error": "google access token required"})
		return
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: req.AccessToken})
	client := oauth2.NewClient(r.Context(), ts)
	resp, err := client.Get(googleUserInfoURL)
	if err != nil || resp.StatusCode != http.StatusOK {
		if resp != nil {
			resp.Body.Close()
		}
		writeJSON(w, http.StatusUnauthorized, map[string]interface{}{"error": "invalid google token"})
		return
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{"error": "failed to read google user info"})
		return
	}

	var googleUser struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := json.Unmarshal(data, &googleUser); err != nil || googleUser.Email == "" {
		writeJSON(w, http.StatusUnauthorized, map[string]interface{}{"error": "google user info required"})
		return
	}

	user, err := userSvc.GetOrCreateGoogleUser(r.Context(), googleUser.Email, googleUser.Name, googleUser.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	token, err := services.CreateSession(user.ID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{"error": "failed to create session"})
		return
	}

	writeJSON(w, http.StatusOK, AuthResponse{
		Message: "Google login successful",
		Token:   token,
		User:    user.Public(),
	})
}

// Profile handles GET /profile.
func Profile(w http.ResponseWriter, r *http.Request) {
	user, err := userSvc.GetByID(r.Context(), middleware.UserID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"user": user.Public()})
}
