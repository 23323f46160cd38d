package store

import (
	"context"
	"strings"
	"sync"

	"github.com/cipherpoint/cipherpoint-backend/internal/models"
)

// In-memory implementations. Used by the service tests and as a fallback when
// no datastore is configured. All maps are guarded by a single mutex per
// store, which also serializes conversation append/remove/list.

type MemoryUserStore struct {
	mu      sync.RWMutex
	byID    map[string]models.User
	byEmail map[string]string
}

func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{
		byID:    make(map[string]models.User),
		byEmail: make(map[string]string),
	}
}

func (s *MemoryUserStore) Create(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := strings.ToLower(u.Email)
	if _, ok := s.byEmail[key]; ok {
		return ErrDuplicate
	}
	s.byID[u.ID] = *u
	s.byEmail[key] = u.ID
	return nil
}

func (s *MemoryUserStore) GetByID(_ context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (s *MemoryUserStore) GetByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, ErrNotFound
	}
	u := s.byID[id]
	return &u, nil
}

func (s *MemoryUserStore) Search(_ context.Context, query, excludeID string) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q := strings.ToLower(query)
	var out []models.User
	for _, u := range s.byID {
		if u.ID == excludeID {
			continue
		}
		if strings.Contains(strings.ToLower(u.Name), q) || strings.Contains(strings.ToLower(u.Email), q) {
			out = append(out, u)
		}
	}
	return out, nil
}

type MemoryFriendStore struct {
	mu    sync.RWMutex
	edges map[string]map[string]struct{}
}

func NewMemoryFriendStore() *MemoryFriendStore {
	return &MemoryFriendStore{edges: make(map[string]map[string]struct{})}
}

func (s *MemoryFriendStore) Add(_ context.Context, userA, userB string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.edges[userA][userB]; ok {
		return ErrDuplicate
	}
	// Both directions under one lock, so the edge is never half-present.
	for _, pair := range [][2]string{{userA, userB}, {userB, userA}} {
		if s.edges[pair[0]] == nil {
			s.edges[pair[0]] = make(map[string]struct{})
		}
		s.edges[pair[0]][pair[1]] = struct{}{}
	}
	return nil
}

func (s *MemoryFriendStore) Remove(_ context.Context, userA, userB string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.edges[userA], userB)
	delete(s.edges[userB], userA)
	return nil
}

func (s *MemoryFriendStore) AreFriends(_ context.Context, userA, userB string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.edges[userA][userB]
	return ok, nil
}

func (s *MemoryFriendStore) ListFriends(_ context.Context, userID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.edges[userID]))
	for id := range s.edges[userID] {
		out = append(out, id)
	}
	return out, nil
}

type MemoryConversationStore struct {
	mu    sync.Mutex
	logs  map[string][]models.ConversationMessage
	index map[string]string // message id -> pair key
}

func NewMemoryConversationStore() *MemoryConversationStore {
	return &MemoryConversationStore{
		logs:  make(map[string][]models.ConversationMessage),
		index: make(map[string]string),
	}
}

func (s *MemoryConversationStore) Append(_ context.Context, msg *models.ConversationMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs[msg.PairKey] = append(s.logs[msg.PairKey], *msg)
	s.index[msg.ID] = msg.PairKey
	return nil
}

func (s *MemoryConversationStore) Get(_ context.Context, messageID string) (*models.ConversationMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pairKey, ok := s.index[messageID]
	if !ok {
		return nil, ErrNotFound
	}
	for i := range s.logs[pairKey] {
		if s.logs[pairKey][i].ID == messageID {
			msg := s.logs[pairKey][i]
			return &msg, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryConversationStore) List(_ context.Context, pairKey string) ([]models.ConversationMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	log := s.logs[pairKey]
	out := make([]models.ConversationMessage, len(log))
	copy(out, log)
	return out, nil
}

// Remove is compare-and-remove: under the lock, the message is either still
// present (removed, nil) or already gone (ErrNotFound). Two concurrent
// removals of the same id cannot both succeed.
func (s *MemoryConversationStore) Remove(_ context.Context, messageID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	pairKey, ok := s.index[messageID]
	if !ok {
		return ErrNotFound
	}
	delete(s.index, messageID)
	log := s.logs[pairKey]
	for i := range log {
		if log[i].ID == messageID {
			s.logs[pairKey] = append(log[:i:i], log[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

type MemoryVaultStore struct {
	mu      sync.RWMutex
	entries map[string]models.VaultEntry
}

func NewMemoryVaultStore() *MemoryVaultStore {
	return &MemoryVaultStore{entries: make(map[string]models.VaultEntry)}
}

func (s *MemoryVaultStore) Put(_ context.Context, entry *models.VaultEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[entry.ID] = *entry
	return nil
}

func (s *MemoryVaultStore) Get(_ context.Context, id string) (*models.VaultEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.entries[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &entry, nil
}
