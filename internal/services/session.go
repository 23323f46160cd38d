package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/cipherpoint/cipherpoint-backend/internal/database"
)

const (
	// SessionDuration matches the token validity promised to clients.
	SessionDuration = 24 * time.Hour
	// SessionKeyPrefix is the Redis key prefix for sessions
	SessionKeyPrefix = "session:"
	// UserSessionKeyPrefix is the Redis key prefix for user->session mapping
	UserSessionKeyPrefix = "user_session:"
)

// CreateSession issues a fresh opaque bearer token for a user and stores it
// in Redis with a 24h TTL. Any existing session for the user is invalidated
// first so the validity window always starts at the current login.
func CreateSession(userID string) (string, error) {
	InvalidateUserSessions(userID)

	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", err
	}
	sessionToken := base64.URLEncoding.EncodeToString(tokenBytes)

	ctx := context.Background()
	sessionKey := SessionKeyPrefix + sessionToken
	userSessionKey := UserSessionKeyPrefix + userID

	if err := database.RedisClient.Set(ctx, sessionKey, userID, SessionDuration).Err(); err != nil {
		return "", err
	}
	if err := database.RedisClient.Set(ctx, userSessionKey, sessionToken, SessionDuration).Err(); err != nil {
		return "", err
	}

	return sessionToken, nil
}

// ValidateSession checks a bearer token and returns the owning user id.
// This is the sole authorization primitive the protected routes rely on.
func ValidateSession(sessionToken string) (string, bool, error) {
	if sessionToken == "" {
		return "", false, nil
	}

	ctx := context.Background()
	userID, err := database.RedisClient.Get(ctx, SessionKeyPrefix+sessionToken).Result()
	if err != nil {
		return "", false, nil
	}
	return userID, true, nil
}

// InvalidateSession removes a session from Redis.
func InvalidateSession(sessionToken string) error {
	if sessionToken == "" {
		return nil
	}

	ctx := context.Background()
	sessionKey := SessionKeyPrefix + sessionToken

	userID, err := database.RedisClient.Get(ctx, sessionKey).Result()
	if err == nil && userID != "" {
		database.RedisClient.Del(ctx, UserSessionKeyPrefix+userID)
	}
	return database.RedisClient.Del(ctx, sessionKey).Err()
}

// InvalidateUserSessions removes whatever session a user currently holds.
func InvalidateUserSessions(userID string) {
	ctx := context.Background()
	userSessionKey := UserSessionKeyPrefix + userID

	token, err := database.RedisClient.Get(ctx, userSessionKey).Result()
	if err == nil && token != "" {
		database.RedisClient.Del(ctx, SessionKeyPrefix+token)
	}
	database.RedisClient.Del(ctx, userSessionKey)
}
