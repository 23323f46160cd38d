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

// PlainMessageService is the simpler sibling of the gated engine: password-
// protected messages with no geofence. The server never holds these
// passwords; the recipient supplies the password directly at decrypt time,
// and messages survive decryption (multi-read).
type PlainMessageService struct {
	users   store.UserStore
	friends store.FriendStore
	convs   store.ConversationStore
	vault   store.VaultStore
	events  MessagePublisher
}

func NewPlainMessageService(users store.UserStore, friends store.FriendStore, convs store.ConversationStore, vault store.VaultStore, events MessagePublisher) *PlainMessageService {
	return &PlainMessageService{users: users, friends: friends, convs: convs, vault: vault, events: events}
}

// Create appends a plain password-protected message to the sender-recipient
// conversation. Same friendship precondition as the gated engine.
func (s *PlainMessageService) Create(ctx context.Context, senderID, recipientID, plaintext, password string) (*models.ConversationMessage, error) {
	if recipientID == "" || plaintext == "" || password == "" {
		return nil, apperrors.InvalidArg("recipient ID, message, and password required")
	}

	if _, err := s.users.GetByID(ctx, recipientID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperrors.NotFound("recipient not found")
		}
		return nil, apperrors.Wrap(apperrors.CodeInternal, "failed to look up recipient", err)
	}

	ok, err := s.friends.AreFriends(ctx, senderID, recipientID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "failed to check friendship", err)
	}
	if !ok {
		return nil, apperrors.Forbidden("can only send messages to friends")
	}

	ciphertext, err := utils.EncryptWithPassword(plaintext, password)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "encryption failed", err)
	}

	msg := &models.ConversationMessage{
		ID:          uuid.NewString(),
		PairKey:     models.PairKey(senderID, recipientID),
		SenderID:    senderID,
		RecipientID: recipientID,
		Kind:        models.KindPlain,
		Ciphertext:  ciphertext,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.convs.Append(ctx, msg); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "failed to store message", err)
	}

	if s.events != nil {
		s.events.MessageCreated(ctx, msg)
	}
	return msg, nil
}

// Decrypt opens a plain conversation message without consuming it. The
// requester must be a participant who is friends with the other side. This
// check is deliberately looser than the gated engine's recipient-only rule
// and applies to this legacy path only.
func (s *PlainMessageService) Decrypt(ctx context.Context, messageID, requesterID, password string) (string, error) {
	if messageID == "" || password == "" {
		return "", apperrors.InvalidArg("message ID and password required")
	}

	msg, err := s.convs.Get(ctx, messageID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", apperrors.NotFound("message not found")
		}
		return "", apperrors.Wrap(apperrors.CodeInternal, "failed to load message", err)
	}

	isParticipant := msg.SenderID == requesterID || msg.RecipientID == requesterID
	if !isParticipant {
		return "", apperrors.Forbidden("access denied")
	}
	other := msg.SenderID
	if other == requesterID {
		other = msg.RecipientID
	}
	isFriend, err := s.friends.AreFriends(ctx, requesterID, other)
	if err != nil {
		return "", apperrors.Wrap(apperrors.CodeInternal, "failed to check friendship", err)
	}
	if !isFriend {
		return "", apperrors.Forbidden("access denied")
	}

	plaintext, err := utils.DecryptWithPassword(msg.Ciphertext, password)
	if err != nil {
		return "", apperrors.Unauthorized("invalid password")
	}
	return plaintext, nil
}

// EncryptPersonal stores a standalone password-protected note for the caller
// and returns its id. No friendship involved.
func (s *PlainMessageService) EncryptPersonal(ctx context.Context, ownerID, plaintext, password string) (string, error) {
	if plaintext == "" || password == "" {
		return "", apperrors.InvalidArg("message and password are required")
	}

	ciphertext, err := utils.EncryptWithPassword(plaintext, password)
	if err != nil {
		return "", apperrors.Wrap(apperrors.CodeInternal, "encryption failed", err)
	}

	entry := &models.VaultEntry{
		ID:         uuid.NewString(),
		OwnerID:    ownerID,
		Ciphertext: ciphertext,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.vault.Put(ctx, entry); err != nil {
		return "", apperrors.Wrap(apperrors.CodeInternal, "failed to store message", err)
	}
	return entry.ID, nil
}

// DecryptPersonal opens a vault note by id and password. Any authenticated
// holder of both can decrypt; the note is not removed.
func (s *PlainMessageService) DecryptPersonal(ctx context.Context, id, password string) (string, error) {
	if id == "" || password == "" {
		return "", apperrors.InvalidArg("ID and password are required")
	}

	entry, err := s.vault.Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", apperrors.NotFound("message not found")
		}
		return "", apperrors.Wrap(apperrors.CodeInternal, "failed to load message", err)
	}

	plaintext, err := utils.DecryptWithPassword(entry.Ciphertext, password)
	if err != nil {
		return "", apperrors.Unauthorized("invalid password or message")
	}
	return plaintext, nil
}
