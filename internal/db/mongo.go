package db

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/lukinoo0/Blazefield/internal/profile"
)

// MongoProfileRepository stores profiles as documents keyed by profile id
type MongoProfileRepository struct {
	collection *mongo.Collection
}

// NewMongoProfileRepository creates a repository on the connected database
func NewMongoProfileRepository() *MongoProfileRepository {
	return &MongoProfileRepository{
		collection: Database.Collection(profilesCollection),
	}
}

// Get finds a profile by id
func (r *MongoProfileRepository) Get(ctx context.Context, id string) (*profile.Profile, error) {
	var p profile.Profile
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, profile.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Save inserts or replaces the profile document
func (r *MongoProfileRepository) Save(ctx context.Context, p *profile.Profile) error {
	_, err := r.collection.ReplaceOne(
		ctx,
		bson.M{"_id": p.ID},
		p,
		options.Replace().SetUpsert(true),
	)
	return err
}

func (r *MongoProfileRepository) Close() error {
	return Disconnect()
}
