package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/cipherpoint/cipherpoint-backend/internal/models"
)

// MongoDB-backed conversation and vault stores.

const (
	conversationsCollection = "conversations"
	vaultCollection         = "vault"
)

type MongoConversationStore struct {
	col *mongo.Collection
}

func NewMongoConversationStore(db *mongo.Database) *MongoConversationStore {
	return &MongoConversationStore{col: db.Collection(conversationsCollection)}
}

// EnsureIndexes configures the (pair_key, created_at) index used by List.
// Called on startup from main after Mongo has connected.
func (s *MongoConversationStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "pair_key", Value: 1},
			{Key: "created_at", Value: 1},
		},
		Options: options.Index().SetName("idx_pair_created"),
	})
	return err
}

func (s *MongoConversationStore) Append(ctx context.Context, msg *models.ConversationMessage) error {
	_, err := s.col.InsertOne(ctx, msg)
	return err
}

func (s *MongoConversationStore) Get(ctx context.Context, messageID string) (*models.ConversationMessage, error) {
	var msg models.ConversationMessage
	err := s.col.FindOne(ctx, bson.M{"_id": messageID}).Decode(&msg)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

func (s *MongoConversationStore) List(ctx context.Context, pairKey string) ([]models.ConversationMessage, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cur, err := s.col.Find(ctx, bson.M{"pair_key": pairKey}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.ConversationMessage
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Remove consumes a message with FindOneAndDelete, which is atomic on the
// server: of two concurrent removals, exactly one sees the document.
func (s *MongoConversationStore) Remove(ctx context.Context, messageID string) error {
	err := s.col.FindOneAndDelete(ctx, bson.M{"_id": messageID}).Err()
	if err == mongo.ErrNoDocuments {
		return ErrNotFound
	}
	return err
}

type MongoVaultStore struct {
	col *mongo.Collection
}

func NewMongoVaultStore(db *mongo.Database) *MongoVaultStore {
	return &MongoVaultStore{col: db.Collection(vaultCollection)}
}

func (s *MongoVaultStore) Put(ctx context.Context, entry *models.VaultEntry) error {
	_, err := s.col.InsertOne(ctx, entry)
	return err
}

func (s *MongoVaultStore) Get(ctx context.Context, id string) (*models.VaultEntry, error) {
	var entry models.VaultEntry
	err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&entry)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}
