package main

import (
	"context"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	"github.com/cipherpoint/cipherpoint-backend/internal/config"
	"github.com/cipherpoint/cipherpoint-backend/internal/database"
	"github.com/cipherpoint/cipherpoint-backend/internal/handlers"
	"github.com/cipherpoint/cipherpoint-backend/internal/middleware"
	"github.com/cipherpoint/cipherpoint-backend/internal/routes"
	"github.com/cipherpoint/cipherpoint-backend/internal/services"
	"github.com/cipherpoint/cipherpoint-backend/internal/store"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	cfg := config.Load()

	log.Printf("Connecting to PostgreSQL...")
	if err := database.ConnectPostgres(cfg.PostgresURI); err != nil {
		log.Fatal("Failed to connect to PostgreSQL:", err)
	}
	defer database.DisconnectPostgres()

	log.Printf("Connecting to Redis...")
	if err := database.ConnectRedis(cfg.RedisURI); err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}
	defer database.DisconnectRedis()

	log.Printf("Connecting to MongoDB...")
	if err := database.ConnectMongo(cfg.MongoURI); err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer database.DisconnectMongo()

	// Storage
	userStore := store.NewPostgresUserStore(database.PostgresDB)
	friendStore := store.NewPostgresFriendStore(database.PostgresDB)
	convStore := store.NewMongoConversationStore(database.DB)
	vaultStore := store.NewMongoVaultStore(database.DB)

	if err := convStore.EnsureIndexes(context.Background()); err != nil {
		log.Printf("WARNING: failed to ensure MongoDB conversation indexes: %v", err)
	}

	// Services
	hub := services.NewNotifyHub()
	hub.Start(context.Background())

	userSvc := services.NewUserService(userStore)
	friendSvc := services.NewFriendService(userStore, friendStore)
	gatedSvc := services.NewGatedMessageService(userStore, friendStore, convStore, hub)
	plainSvc := services.NewPlainMessageService(userStore, friendStore, convStore, vaultStore, hub)

	handlers.Init(userSvc, friendSvc, gatedSvc, plainSvc, hub)

	// Router
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if cfg.IsProduction() {
		for _, mw := range middleware.ProductionSecurity() {
			r.Use(mw)
		}
		log.Println("Production security enabled (security headers, per-IP rate limiting)")
	} else {
		r.Use(middleware.RateLimitMiddleware)
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"OK","message":"CipherPoint API is running"}`))
	})

	routes.SetupRoutes(r)

	log.Printf("CipherPoint server running on :%s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
