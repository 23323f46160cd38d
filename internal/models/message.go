package models

import (
	"sort"
	"strings"
	"time"
)

// GeoPoint is the center of a message's unlock area. Coordinates are degrees.
// Values are taken as-is; there is no range validation beyond presence.
type GeoPoint struct {
	Latitude  float64 `bson:"latitude" json:"latitude"`
	Longitude float64 `bson:"longitude" json:"longitude"`
	Name      string  `bson:"name" json:"name"`
}

// MessageKind tags a conversation message as plain or location-gated.
type MessageKind string

const (
	KindPlain MessageKind = "plain"
	KindGated MessageKind = "gated"
)

// GatedDetails holds the fields only location-gated messages carry.
//
// Password is the message password in clear. Keeping it server-side is what
// makes proximity-gated disclosure possible; it is released only to the
// recipient after a passing radius check.
type GatedDetails struct {
	Password string   `bson:"password" json:"-"`
	Location GeoPoint `bson:"location" json:"location"`
}

// ConversationMessage is one entry in a two-party conversation log.
// Gated is nil for plain messages.
type ConversationMessage struct {
	ID          string      `bson:"_id" json:"id"`
	PairKey     string      `bson:"pair_key" json:"-"`
	SenderID    string      `bson:"sender_id" json:"sender_id"`
	RecipientID string      `bson:"recipient_id" json:"recipient_id"`
	Kind        MessageKind `bson:"kind" json:"kind"`
	Ciphertext  string      `bson:"ciphertext" json:"-"`
	CreatedAt   time.Time   `bson:"created_at" json:"created_at"`

	Gated *GatedDetails `bson:"gated,omitempty" json:"gated,omitempty"`
}

// VaultEntry is a standalone password-protected note, outside any
// conversation. Decryption requires only the id and the password.
type VaultEntry struct {
	ID         string    `bson:"_id" json:"id"`
	OwnerID    string    `bson:"owner_id" json:"owner_id"`
	Ciphertext string    `bson:"ciphertext" json:"-"`
	CreatedAt  time.Time `bson:"created_at" json:"created_at"`
}

// PairKey returns the canonical conversation key for two user ids:
// the ids sorted and joined, so both participants address the same log.
func PairKey(a, b string) string {
	ids := []string{a, b}
	sort.Strings(ids)
	return strings.Join(ids, "-")
}
