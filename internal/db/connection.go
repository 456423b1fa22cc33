package db

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const profilesCollection = "profiles"

var Client *mongo.Client
var Database *mongo.Database

// Connect establishes a connection to MongoDB
func Connect(ctx context.Context, mongoURL, database string, logger zerolog.Logger) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	clientOptions := options.Client().ApplyURI(mongoURL)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return err
	}

	// Ping the database to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return err
	}

	Client = client
	Database = client.Database(database)

	logger.Info().Str("database", database).Msg("Connected to MongoDB successfully")

	if err := createIndexes(ctx); err != nil {
		logger.Warn().Err(err).Msg("Failed to create indexes")
	}

	return nil
}

// createIndexes creates the indexes profile lookups and rankings rely on
func createIndexes(ctx context.Context) error {
	_, err := Database.Collection(profilesCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "total_kills", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "updated_at", Value: -1}},
		},
	})
	return err
}

// Disconnect closes the MongoDB connection
func Disconnect() error {
	if Client != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return Client.Disconnect(ctx)
	}
	return nil
}
