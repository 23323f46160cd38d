package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/cipherpoint/cipherpoint-backend/internal/handlers"
	"github.com/cipherpoint/cipherpoint-backend/internal/middleware"
)

func SetupRoutes(r *chi.Mux) {
	// Public auth routes
	r.Post("/signup", handlers.Signup)
	r.Post("/login", handlers.Login)
	r.Post("/google-login", handlers.GoogleLogin)

	// Everything else requires a valid bearer token
	r.Group(func(pr chi.Router) {
		pr.Use(middleware.RequireAuth)

		pr.Get("/profile", handlers.Profile)

		// Standalone password-protected notes
		pr.Post("/encrypt", handlers.Encrypt)
		pr.Post("/decrypt", handlers.Decrypt)

		// Friendship graph
		pr.Get("/friends", handlers.ListFriends)
		pr.Get("/users", handlers.SearchUsers)
		pr.Post("/friends/add", handlers.AddFriend)
		pr.Delete("/friends/remove/{friendId}", handlers.RemoveFriend)

		// Conversations
		pr.Post("/messages/send", handlers.SendMessage)
		pr.Post("/messages/decrypt", handlers.DecryptMessage)
		pr.Post("/messages/send-location", handlers.SendLocationMessage)
		pr.Post("/messages/get-password", handlers.GetPassword)
		pr.Post("/messages/decrypt-location", handlers.DecryptLocationMessage)
		pr.Get("/messages/conversation/{friendId}", handlers.GetConversation)

		// Realtime notifications
		pr.Get("/ws/notify", handlers.NotifySocket)
	})
}
