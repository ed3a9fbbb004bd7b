// Package firestore implements the game store on a google cloud firestore database.
package firestore

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"github.com/doodlex/doodlex/db"
)

// Store mirrors rooms and game history to firestore collections.
type Store struct {
	client *firestore.Client
	db.Config
}

// NewStore creates a game store for the project.
func NewStore(ctx context.Context, cfg db.Config, projectID string) (*Store, error) {
	client, err := firestore.NewClient(ctx, projectID) // do not timeout context - the client is used by the store
	if err != nil {
		return nil, fmt.Errorf("creating firestore client: %w", err)
	}
	s := Store{
		client: client,
		Config: cfg,
	}
	return &s, nil
}

func (s *Store) roomsCollection() *firestore.CollectionRef {
	return s.client.Collection("services").Doc("doodlex").Collection("rooms")
}

func (s *Store) historyCollection() *firestore.CollectionRef {
	return s.client.Collection("services").Doc("doodlex").Collection("game_history")
}

// withTimeoutContext configures the context to timeout when running the function.
func (s *Store) withTimeoutContext(ctx context.Context, f func(ctx context.Context) error) error {
	ctx, cancelFunc := context.WithTimeout(ctx, s.QueryPeriod)
	defer cancelFunc()
	return f(ctx)
}

// UpsertRoom writes the room mirror keyed by room id.
func (s *Store) UpsertRoom(ctx context.Context, r db.RoomRecord) error {
	if err := s.withTimeoutContext(ctx, func(ctx context.Context) error {
		docRef := s.roomsCollection().Doc(r.RoomID)
		_, err := docRef.Set(ctx, r)
		return err
	}); err != nil {
		return fmt.Errorf("upserting room: %w", err)
	}
	return nil
}

// DeleteRoom removes the room mirror.
func (s *Store) DeleteRoom(ctx context.Context, roomID string) error {
	if err := s.withTimeoutContext(ctx, func(ctx context.Context) error {
		docRef := s.roomsCollection().Doc(roomID)
		_, err := docRef.Delete(ctx)
		return err
	}); err != nil {
		return fmt.Errorf("deleting room: %w", err)
	}
	return nil
}

// CreateHistory appends a finished-game document.
func (s *Store) CreateHistory(ctx context.Context, h db.HistoryRecord) error {
	if err := s.withTimeoutContext(ctx, func(ctx context.Context) error {
		docRef := s.historyCollection().NewDoc()
		_, err := docRef.Create(ctx, h)
		return err
	}); err != nil {
		return fmt.Errorf("creating game history: %w", err)
	}
	return nil
}
