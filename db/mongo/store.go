// Package mongo implements the game store on mongodb.
package mongo

import (
	"context"
	"fmt"

	"github.com/doodlex/doodlex/db"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	databaseName          = "doodlex-db"
	roomsCollectionName   = "rooms"
	historyCollectionName = "game_history"
	roomIDField           = "roomId"
	updatedAtField        = "updatedAt"
	// roomExpirySeconds drops stale room mirrors a day after their last write.
	roomExpirySeconds = 60 * 60 * 24
)

// Store mirrors rooms and game history to mongodb collections.
type Store struct {
	rooms   *mongo.Collection
	history *mongo.Collection
	db.Config
}

// NewStore connects to mongodb at the url and creates a game store.
func NewStore(ctx context.Context, cfg db.Config, databaseURL string) (*Store, error) {
	clientOptions := options.Client()
	clientOptions.ApplyURI(databaseURL)
	ctx, cancelFunc := context.WithTimeout(ctx, cfg.QueryPeriod)
	defer cancelFunc()
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("connecting to mongodb: %w", err)
	}
	database := client.Database(databaseName)
	s := Store{
		rooms:   database.Collection(roomsCollectionName),
		history: database.Collection(historyCollectionName),
		Config:  cfg,
	}
	return &s, nil
}

// Setup initializes the collections with a unique room id index and a TTL
// index that expires stale room mirrors.
func (s *Store) Setup(ctx context.Context) error {
	uniqueOptions := options.Index()
	uniqueOptions.SetUnique(true)
	ttlOptions := options.Index()
	ttlOptions.SetExpireAfterSeconds(roomExpirySeconds)
	models := []mongo.IndexModel{
		{
			Keys:    d(e(roomIDField, 1)),
			Options: uniqueOptions,
		},
		{
			Keys:    d(e(updatedAtField, 1)),
			Options: ttlOptions,
		},
	}
	ctx, cancelFunc := context.WithTimeout(ctx, s.QueryPeriod)
	defer cancelFunc()
	if _, err := s.rooms.Indexes().CreateMany(ctx, models); err != nil {
		return fmt.Errorf("creating room indexes: %w", err)
	}
	return nil
}

// UpsertRoom writes the room mirror keyed by room id.
func (s *Store) UpsertRoom(ctx context.Context, r db.RoomRecord) error {
	filter := d(e(roomIDField, r.RoomID))
	update := d(e("$set", r))
	updateOptions := options.Update()
	updateOptions.SetUpsert(true)
	ctx, cancelFunc := context.WithTimeout(ctx, s.QueryPeriod)
	defer cancelFunc()
	if _, err := s.rooms.UpdateOne(ctx, filter, update, updateOptions); err != nil {
		return fmt.Errorf("upserting room: %w", err)
	}
	return nil
}

// DeleteRoom removes the room mirror.
func (s *Store) DeleteRoom(ctx context.Context, roomID string) error {
	filter := d(e(roomIDField, roomID))
	ctx, cancelFunc := context.WithTimeout(ctx, s.QueryPeriod)
	defer cancelFunc()
	if _, err := s.rooms.DeleteOne(ctx, filter); err != nil {
		return fmt.Errorf("deleting room: %w", err)
	}
	return nil
}

// CreateHistory appends a finished-game document.
func (s *Store) CreateHistory(ctx context.Context, h db.HistoryRecord) error {
	ctx, cancelFunc := context.WithTimeout(ctx, s.QueryPeriod)
	defer cancelFunc()
	if _, err := s.history.InsertOne(ctx, h); err != nil {
		return fmt.Errorf("creating game history: %w", err)
	}
	return nil
}

// d is a helper function to create bson.D elements.
func d(e ...bson.E) bson.D {
	return bson.D(e)
}

// e is a helper function to create bson.E elements.
func e(key string, value interface{}) bson.E {
	return bson.E{Key: key, Value: value}
}
