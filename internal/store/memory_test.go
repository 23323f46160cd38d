package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cipherpoint/cipherpoint-backend/internal/models"
)

func appendMsg(t *testing.T, s *MemoryConversationStore, id, pairKey string) {
	t.Helper()
	err := s.Append(context.Background(), &models.ConversationMessage{
		ID:        id,
		PairKey:   pairKey,
		Kind:      models.KindPlain,
		CreatedAt: time.Now(),
	})
	require.NoError(t, err)
}

func TestMemoryConversationStore_InsertionOrder(t *testing.T) {
	s := NewMemoryConversationStore()
	ctx := context.Background()

	appendMsg(t, s, "m1", "a-b")
	appendMsg(t, s, "m2", "a-b")
	appendMsg(t, s, "m3", "a-b")
	appendMsg(t, s, "other", "a-c")

	msgs, err := s.List(ctx, "a-b")
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, "m1", msgs[0].ID)
	assert.Equal(t, "m2", msgs[1].ID)
	assert.Equal(t, "m3", msgs[2].ID)
}

func TestMemoryConversationStore_RemoveIsOneShot(t *testing.T) {
	s := NewMemoryConversationStore()
	ctx := context.Background()

	appendMsg(t, s, "m1", "a-b")

	require.NoError(t, s.Remove(ctx, "m1"))
	assert.ErrorIs(t, s.Remove(ctx, "m1"), ErrNotFound)

	_, err := s.Get(ctx, "m1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryConversationStore_ConcurrentRemoveSingleWinner(t *testing.T) {
	s := NewMemoryConversationStore()
	ctx := context.Background()

	appendMsg(t, s, "m1", "a-b")

	const workers = 16
	var wg sync.WaitGroup
	wins := make(chan struct{}, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if s.Remove(ctx, "m1") == nil {
				wins <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(wins)

	assert.Len(t, wins, 1)
}

func TestMemoryFriendStore_MirroredEdges(t *testing.T) {
	s := NewMemoryFriendStore()
	ctx := context.Background()

	require.NoError(t, s.Add(ctx, "a", "b"))

	ok, _ := s.AreFriends(ctx, "a", "b")
	assert.True(t, ok)
	ok, _ = s.AreFriends(ctx, "b", "a")
	assert.True(t, ok)

	// Duplicate in either direction is rejected.
	assert.ErrorIs(t, s.Add(ctx, "a", "b"), ErrDuplicate)
	assert.ErrorIs(t, s.Add(ctx, "b", "a"), ErrDuplicate)

	require.NoError(t, s.Remove(ctx, "b", "a"))
	ok, _ = s.AreFriends(ctx, "a", "b")
	assert.False(t, ok)

	// Removing an absent edge is fine.
	require.NoError(t, s.Remove(ctx, "a", "b"))
}

func TestMemoryUserStore_DuplicateEmail(t *testing.T) {
	s := NewMemoryUserStore()
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, &models.User{ID: "u1", Email: "x@y.z"}))
	assert.ErrorIs(t, s.Create(ctx, &models.User{ID: "u2", Email: "X@Y.Z"}), ErrDuplicate)

	u, err := s.GetByEmail(ctx, "X@y.z")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)
}

func TestPairKeyCanonical(t *testing.T) {
	assert.Equal(t, models.PairKey("a", "b"), models.PairKey("b", "a"))
	assert.Equal(t, "a-b", models.PairKey("b", "a"))
}
