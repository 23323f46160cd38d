// Package store defines the persistence interfaces the services run on,
// with in-memory, PostgreSQL, and MongoDB implementations.
package store

import (
	"context"
	"errors"

	"github.com/cipherpoint/cipherpoint-backend/internal/models"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("already exists")
)

type UserStore interface {
	Create(ctx context.Context, u *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// Search matches name or email case-insensitively, excluding excludeID.
	Search(ctx context.Context, query, excludeID string) ([]models.User, error)
}

// FriendStore holds the symmetric friendship relation. Implementations must
// mutate both directions of an edge as a single atomic unit.
type FriendStore interface {
	Add(ctx context.Context, userA, userB string) error
	Remove(ctx context.Context, userA, userB string) error
	AreFriends(ctx context.Context, userA, userB string) (bool, error)
	ListFriends(ctx context.Context, userID string) ([]string, error)
}

// ConversationStore is the ordered per-pair message log.
type ConversationStore interface {
	Append(ctx context.Context, msg *models.ConversationMessage) error
	Get(ctx context.Context, messageID string) (*models.ConversationMessage, error)
	// List returns the pair's messages in insertion order.
	List(ctx context.Context, pairKey string) ([]models.ConversationMessage, error)
	// Remove deletes the message with the given id. It must be atomic with
	// respect to concurrent Removes of the same id: exactly one caller
	// succeeds, the rest get ErrNotFound.
	Remove(ctx context.Context, messageID string) error
}

type VaultStore interface {
	Put(ctx context.Context, entry *models.VaultEntry) error
	Get(ctx context.Context, id string) (*models.VaultEntry, error)
}
