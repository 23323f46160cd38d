package services

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/cipherpoint/cipherpoint-backend/internal/geo"
	"github.com/cipherpoint/cipherpoint-backend/internal/models"
	"github.com/cipherpoint/cipherpoint-backend/internal/store"
	"github.com/cipherpoint/cipherpoint-backend/pkg/apperrors"
	"github.com/cipherpoint/cipherpoint-backend/pkg/utils"
)

// GeofenceRadiusMeters is how close the recipient must be to the message's
// location before the password is released. The boundary is inclusive.
const GeofenceRadiusMeters = 50.0

// MessagePublisher receives a notification after a message is appended to a
// conversation. Implementations must not be handed ciphertext or passwords.
type MessagePublisher interface {
	MessageCreated(ctx context.Context, msg *models.ConversationMessage)
}

// GatedMessageService is the location-gated message engine: it creates
// messages with an attached geofence and password, releases the password to
// the recipient after a proximity check, and destroys the message on first
// successful decryption.
type GatedMessageService struct {
	users   store.UserStore
	friends store.FriendStore
	convs   store.ConversationStore
	events  MessagePublisher
}

func NewGatedMessageService(users store.UserStore, friends store.FriendStore, convs store.ConversationStore, events MessagePublisher) *GatedMessageService {
	return &GatedMessageService{users: users, friends: friends, convs: convs, events: events}
}

// PasswordGrant is returned when a proximity check passes.
type PasswordGrant struct {
	Password string          `json:"password"`
	Location models.GeoPoint `json:"location"`
	Distance int             `json:"distance"`
}

// OpenedMessage is the result of a successful decrypt-and-consume.
type OpenedMessage struct {
	Message   string          `json:"message"`
	Location  models.GeoPoint `json:"location"`
	Timestamp time.Time       `json:"timestamp"`
}

// ConversationItem is the minimized listing shape: no ciphertext, no
// password, ever.
type ConversationItem struct {
	ID        string           `json:"id"`
	FromMe    bool             `json:"isFromMe"`
	Timestamp time.Time        `json:"timestamp"`
	Location  *models.GeoPoint `json:"location,omitempty"`
}

// Create encrypts plaintext under the password and appends the gated message
// to the sender-recipient conversation. The password is kept server-side in
// clear until consumption; that custody is what enables the get-password
// flow.
func (s *GatedMessageService) Create(ctx context.Context, senderID, recipientID, plaintext, password string, location models.GeoPoint) (*models.ConversationMessage, error) {
	if recipientID == "" || plaintext == "" || password == "" {
		return nil, apperrors.InvalidArg("recipient ID, message, password, and location are required")
	}
	if location.Name == "" {
		return nil, apperrors.InvalidArg("invalid location data")
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
		Kind:        models.KindGated,
		Ciphertext:  ciphertext,
		CreatedAt:   time.Now().UTC(),
		Gated: &models.GatedDetails{
			Password: password,
			Location: location,
		},
	}
	if err := s.convs.Append(ctx, msg); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "failed to store message", err)
	}

	if s.events != nil {
		s.events.MessageCreated(ctx, msg)
	}
	return msg, nil
}

// RequestPassword releases the message password to the recipient when the
// reported position is within the geofence. A denial reports the computed
// distance so the client can show how far away the recipient is, but never
// the password. The message is not consumed here; only decryption consumes.
func (s *GatedMessageService) RequestPassword(ctx context.Context, messageID, requesterID string, latitude, longitude float64) (*PasswordGrant, error) {
	msg, err := s.getGated(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if msg.RecipientID != requesterID {
		return nil, apperrors.Forbidden("access denied")
	}

	distance := geo.DistanceMeters(latitude, longitude, msg.Gated.Location.Latitude, msg.Gated.Location.Longitude)
	if distance > GeofenceRadiusMeters {
		return nil, apperrors.Forbidden("you must be within 50 meters of the location to receive the password").
			WithDetail("distance", int(math.Round(distance)))
	}

	return &PasswordGrant{
		Password: msg.Gated.Password,
		Location: msg.Gated.Location,
		Distance: int(math.Round(distance)),
	}, nil
}

// Decrypt opens a gated message and consumes it. The supplied password must
// equal the stored one before any cipher work happens, and consumption is a
// compare-and-remove: of two racing calls, exactly one gets the plaintext and
// the other gets not-found.
func (s *GatedMessageService) Decrypt(ctx context.Context, messageID, requesterID, password string) (*OpenedMessage, error) {
	msg, err := s.getGated(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if msg.RecipientID != requesterID {
		return nil, apperrors.Forbidden("access denied")
	}
	if msg.Gated.Password != password {
		return nil, apperrors.Unauthorized("invalid password")
	}

	plaintext, err := utils.DecryptWithPassword(msg.Ciphertext, password)
	if err != nil {
		// Message stays intact; the client may retry.
		return nil, apperrors.Unauthorized("decryption failed")
	}

	if err := s.convs.Remove(ctx, messageID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Lost the consumption race.
			return nil, apperrors.NotFound("message not found")
		}
		return nil, apperrors.Wrap(apperrors.CodeInternal, "failed to consume message", err)
	}

	return &OpenedMessage{
		Message:   plaintext,
		Location:  msg.Gated.Location,
		Timestamp: msg.CreatedAt,
	}, nil
}

// ListConversation returns the pair's messages in insertion order, reduced to
// id, direction, timestamp, and location when present.
func (s *GatedMessageService) ListConversation(ctx context.Context, userID, friendID string) ([]ConversationItem, error) {
	ok, err := s.friends.AreFriends(ctx, userID, friendID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "failed to check friendship", err)
	}
	if !ok {
		return nil, apperrors.Forbidden("can only view conversations with friends")
	}

	msgs, err := s.convs.List(ctx, models.PairKey(userID, friendID))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "failed to load conversation", err)
	}

	out := make([]ConversationItem, 0, len(msgs))
	for i := range msgs {
		item := ConversationItem{
			ID:        msgs[i].ID,
			FromMe:    msgs[i].SenderID == userID,
			Timestamp: msgs[i].CreatedAt,
		}
		if msgs[i].Gated != nil {
			loc := msgs[i].Gated.Location
			item.Location = &loc
		}
		out = append(out, item)
	}
	return out, nil
}

func (s *GatedMessageService) getGated(ctx context.Context, messageID string) (*models.ConversationMessage, error) {
	if messageID == "" {
		return nil, apperrors.InvalidArg("message ID required")
	}
	msg, err := s.convs.Get(ctx, messageID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperrors.NotFound("message not found")
		}
		return nil, apperrors.Wrap(apperrors.CodeInternal, "failed to load message", err)
	}
	if msg.Kind != models.KindGated || msg.Gated == nil {
		return nil, apperrors.NotFound("message not found")
	}
	return msg, nil
}
