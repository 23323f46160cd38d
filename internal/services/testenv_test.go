package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/cipherpoint/cipherpoint-backend/internal/models"
	"github.com/cipherpoint/cipherpoint-backend/internal/store"
	"github.com/cipherpoint/cipherpoint-backend/pkg/apperrors"
)

// testEnv wires the services to in-memory stores.
type testEnv struct {
	users   *store.MemoryUserStore
	friends *store.MemoryFriendStore
	convs   *store.MemoryConversationStore
	vault   *store.MemoryVaultStore

	userSvc   *UserService
	friendSvc *FriendService
	gated     *GatedMessageService
	plain     *PlainMessageService
}

func newTestEnv() *testEnv {
	e := &testEnv{
		users:   store.NewMemoryUserStore(),
		friends: store.NewMemoryFriendStore(),
		convs:   store.NewMemoryConversationStore(),
		vault:   store.NewMemoryVaultStore(),
	}
	e.userSvc = NewUserService(e.users)
	e.friendSvc = NewFriendService(e.users, e.friends)
	e.gated = NewGatedMessageService(e.users, e.friends, e.convs, nil)
	e.plain = NewPlainMessageService(e.users, e.friends, e.convs, e.vault, nil)
	return e
}

func (e *testEnv) addUser(t *testing.T, name string) string {
	t.Helper()
	u := &models.User{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Name:      name,
		Email:     strings.ToLower(name) + "@example.com",
	}
	require.NoError(t, e.users.Create(context.Background(), u))
	return u.ID
}

func (e *testEnv) befriend(t *testing.T, a, b string) {
	t.Helper()
	require.NoError(t, e.friends.Add(context.Background(), a, b))
}

func requireCode(t *testing.T, err error, code apperrors.Code) *apperrors.AppError {
	t.Helper()
	require.Error(t, err)
	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok, "expected *apperrors.AppError, got %T: %v", err, err)
	require.Equal(t, code, appErr.Code, "unexpected error code: %v", err)
	return appErr
}
