package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/cipherpoint/cipherpoint-backend/internal/models"
	"github.com/cipherpoint/cipherpoint-backend/internal/store"
	"github.com/cipherpoint/cipherpoint-backend/pkg/apperrors"
	"github.com/cipherpoint/cipherpoint-backend/pkg/utils"
)

// UserService owns account creation and credential checks.
type UserService struct {
	users store.UserStore
}

func NewUserService(users store.UserStore) *UserService {
	return &UserService{users: users}
}

func (s *UserService) Signup(ctx context.Context, name, email, password string) (*models.User, error) {
	if name == "" || email == "" || password == "" {
		return nil, apperrors.InvalidArg("name, email, and password are required")
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "failed to hash password", err)
	}

	u := &models.User{
		ID:           uuid.NewString(),
		CreatedAt:    time.Now().UTC(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, apperrors.AlreadyExists("user already exists")
		}
		return nil, apperrors.Wrap(apperrors.CodeInternal, "failed to create user", err)
	}
	return u, nil
}

func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperrors.Unauthorized("invalid credentials")
		}
		return nil, apperrors.Wrap(apperrors.CodeInternal, "failed to look up user", err)
	}
	if u.PasswordHash == "" {
		// Google-only account, no password to check against.
		return nil, apperrors.Unauthorized("invalid credentials")
	}
	ok, err := utils.VerifyPassword(password, u.PasswordHash)
	if err != nil || !ok {
		return nil, apperrors.Unauthorized("invalid credentials")
	}
	return u, nil
}

// GetOrCreateGoogleUser returns the account for a Google identity, creating
// it on first login keyed by email.
func (s *UserService) GetOrCreateGoogleUser(ctx context.Context, email, name, googleID string) (*models.User, error) {
	if email == "" {
		return nil, apperrors.InvalidArg("google user info required")
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "failed to look up user", err)
	}

	if name == "" {
		name = email
	}
	u = &models.User{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Name:      name,
		Email:     email,
		GoogleID:  googleID,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "failed to create user", err)
	}
	return u, nil
}

func (s *UserService) GetByID(ctx context.Context, id string) (*models.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperrors.NotFound("user not found")
		}
		return nil, apperrors.Wrap(apperrors.CodeInternal, "failed to look up user", err)
	}
	return u, nil
}

// Search returns public profiles matching the query, excluding the caller.
func (s *UserService) Search(ctx context.Context, query, excludeID string) ([]models.PublicProfile, error) {
	if query == "" {
		return nil, apperrors.InvalidArg("search query required")
	}
	users, err := s.users.Search(ctx, query, excludeID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "search failed", err)
	}
	out := make([]models.PublicProfile, 0, len(users))
	for i := range users {
		out = append(out, users[i].Public())
	}
	return out, nil
}
