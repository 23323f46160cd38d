package services

import (
	"context"
	"errors"

	"github.com/cipherpoint/cipherpoint-backend/internal/models"
	"github.com/cipherpoint/cipherpoint-backend/internal/store"
	"github.com/cipherpoint/cipherpoint-backend/pkg/apperrors"
)

// FriendService manages the symmetric friendship graph that gates who may
// message whom.
type FriendService struct {
	users   store.UserStore
	friends store.FriendStore
}

func NewFriendService(users store.UserStore, friends store.FriendStore) *FriendService {
	return &FriendService{users: users, friends: friends}
}

// Add inserts the mirrored edge userID↔friendID. Rejects self-edges, unknown
// users, and existing edges.
func (s *FriendService) Add(ctx context.Context, userID, friendID string) error {
	if friendID == "" {
		return apperrors.InvalidArg("friend ID required")
	}
	if friendID == userID {
		return apperrors.InvalidArg("cannot add yourself as a friend")
	}
	if _, err := s.users.GetByID(ctx, friendID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperrors.NotFound("user not found")
		}
		return apperrors.Wrap(apperrors.CodeInternal, "failed to look up user", err)
	}

	if err := s.friends.Add(ctx, userID, friendID); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return apperrors.AlreadyExists("already friends")
		}
		return apperrors.Wrap(apperrors.CodeInternal, "failed to add friend", err)
	}
	return nil
}

// Remove deletes the mirrored edge. Removing an absent edge is not an error.
func (s *FriendService) Remove(ctx context.Context, userID, friendID string) error {
	if err := s.friends.Remove(ctx, userID, friendID); err != nil {
		return apperrors.Wrap(apperrors.CodeInternal, "failed to remove friend", err)
	}
	return nil
}

func (s *FriendService) AreFriends(ctx context.Context, userA, userB string) (bool, error) {
	ok, err := s.friends.AreFriends(ctx, userA, userB)
	if err != nil {
		return false, apperrors.Wrap(apperrors.CodeInternal, "failed to check friendship", err)
	}
	return ok, nil
}

// List returns the public profiles of the user's friends. Friends whose
// accounts no longer resolve are skipped.
func (s *FriendService) List(ctx context.Context, userID string) ([]models.PublicProfile, error) {
	ids, err := s.friends.ListFriends(ctx, userID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "failed to list friends", err)
	}
	out := make([]models.PublicProfile, 0, len(ids))
	for _, id := range ids {
		u, err := s.users.GetByID(ctx, id)
		if err != nil {
			continue
		}
		out = append(out, u.Public())
	}
	return out, nil
}
