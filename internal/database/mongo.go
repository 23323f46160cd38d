package database

import (
	"context"
	"log"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var Client *mongo.Client
var DB *mongo.Database

const defaultMongoDatabase = "cipherpoint"

// ConnectMongo connects to MongoDB and selects the database named in the URI
// (falling back to "cipherpoint").
func ConnectMongo(mongoURI string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	clientOptions := options.Client().ApplyURI(mongoURI)
	clientOptions.SetServerSelectionTimeout(10 * time.Second)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return err
	}

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer pingCancel()

	if err = client.Ping(pingCtx, nil); err != nil {
		client.Disconnect(context.Background())
		return err
	}

	Client = client
	DB = client.Database(databaseNameFromURI(mongoURI))

	log.Println("Connected to MongoDB")
	return nil
}

func databaseNameFromURI(mongoURI string) string {
	parts := strings.Split(mongoURI, "/")
	if len(parts) > 3 {
		name := strings.Split(parts[len(parts)-1], "?")[0]
		if name != "" {
			return name
		}
	}
	return defaultMongoDatabase
}

// DisconnectMongo closes the MongoDB connection.
func DisconnectMongo() error {
	if Client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return Client.Disconnect(ctx)
}
