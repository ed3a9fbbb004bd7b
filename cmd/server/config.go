package main

import (
	"context"
	crypto_rand "crypto/rand"
	"fmt"
	"log"
	"math/rand"
	"time"

	"golang.org/x/crypto/bcrypt"

	_ "github.com/lib/pq" // register "postgres" database driver from package init() function

	"github.com/doodlex/doodlex/db"
	"github.com/doodlex/doodlex/db/firestore"
	"github.com/doodlex/doodlex/db/mongo"
	"github.com/doodlex/doodlex/db/postgres"
	"github.com/doodlex/doodlex/server"
	"github.com/doodlex/doodlex/server/auth"
	"github.com/doodlex/doodlex/server/gateway"
	"github.com/doodlex/doodlex/server/session"
)

const (
	queryPeriod     = 5 * time.Second
	rejoinWindow    = 5 * time.Minute
	interRoundDelay = 5 * time.Second
	roomExpiry      = 30 * time.Second
)

// createServer wires the store, gateway, and http server from the flags.
func createServer(ctx context.Context, m mainFlags, log *log.Logger) (*server.Server, error) {
	timeFunc := time.Now
	tokenizer, err := tokenizerConfig(timeFunc).NewTokenizer()
	if err != nil {
		return nil, fmt.Errorf("creating rejoin tokenizer: %w", err)
	}
	store, err := createStore(ctx, m, log)
	if err != nil {
		return nil, fmt.Errorf("setting up game store: %w", err)
	}
	sessions, err := session.Config{
		RejoinWindow: rejoinWindow,
		TimeFunc:     timeFunc,
	}.NewDirectory()
	if err != nil {
		return nil, fmt.Errorf("creating session directory: %w", err)
	}
	g, err := gatewayConfig(m, log, timeFunc, tokenizer, store, sessions).NewGateway()
	if err != nil {
		return nil, fmt.Errorf("creating gateway: %w", err)
	}
	adminKeyHash, err := adminKeyHash(m)
	if err != nil {
		return nil, fmt.Errorf("hashing admin key: %w", err)
	}
	cfg := server.Config{
		Port:         m.port,
		StopDur:      time.Second,
		AdminKeyHash: adminKeyHash,
		TimeFunc:     timeFunc,
	}
	return cfg.NewServer(log, g)
}

// tokenizerConfig creates the configuration for the rejoin token reader/writer.
// Tokens outlive the rejoin window slightly so a token is never the limiting factor.
func tokenizerConfig(timeFunc func() time.Time) auth.TokenizerConfig {
	return auth.TokenizerConfig{
		KeyReader: crypto_rand.Reader,
		TimeFunc:  timeFunc,
		ValidDur:  rejoinWindow + time.Minute,
	}
}

// gatewayConfig creates the configuration for the event gateway.
func gatewayConfig(m mainFlags, log *log.Logger, timeFunc func() time.Time,
	tokenizer auth.Tokenizer, store db.GameStore, sessions *session.Directory) gateway.Config {
	return gateway.Config{
		Debug:           m.debugGame,
		Log:             log,
		TimeFunc:        timeFunc,
		Rand:            rand.New(rand.NewSource(timeFunc().UnixNano())),
		Tokenizer:       tokenizer,
		Store:           store,
		Sessions:        sessions,
		GuessLimit:      3,
		GuessWindow:     5 * time.Second,
		StrokeLimit:     100,
		StrokeWindow:    time.Second,
		InterRoundDelay: interRoundDelay,
		RoomExpiry:      roomExpiry,
		ReadWait:        60 * time.Second,
		WriteWait:       10 * time.Second,
		PingPeriod:      54 * time.Second, // readWait * 0.9
	}
}

// createStore connects to the first configured backend, preferring mongodb,
// then postgresql, then firestore.  Without any, room state is memory-only.
func createStore(ctx context.Context, m mainFlags, log *log.Logger) (db.GameStore, error) {
	cfg := db.Config{
		QueryPeriod: queryPeriod,
	}
	switch {
	case len(m.mongoURL) != 0:
		store, err := mongo.NewStore(ctx, cfg, m.mongoURL)
		if err != nil {
			return nil, fmt.Errorf("connecting to mongodb: %w", err)
		}
		if err := store.Setup(ctx); err != nil {
			return nil, fmt.Errorf("setting up mongodb: %w", err)
		}
		log.Printf("mirroring rooms to mongodb")
		return store, nil
	case len(m.postgresURL) != 0:
		store, err := postgres.NewStore(cfg, m.postgresURL)
		if err != nil {
			return nil, fmt.Errorf("opening postgresql: %w", err)
		}
		if err := store.Setup(ctx); err != nil {
			return nil, fmt.Errorf("setting up postgresql: %w", err)
		}
		log.Printf("mirroring rooms to postgresql")
		return store, nil
	case len(m.firestoreProject) != 0:
		store, err := firestore.NewStore(ctx, cfg, m.firestoreProject)
		if err != nil {
			return nil, fmt.Errorf("connecting to firestore: %w", err)
		}
		log.Printf("mirroring rooms to firestore")
		return store, nil
	}
	log.Printf("no store configured, room state is memory-only")
	return db.NoStore{}, nil
}

// adminKeyHash hashes the admin key so the plaintext is not kept in memory.
func adminKeyHash(m mainFlags) ([]byte, error) {
	if len(m.adminKey) == 0 {
		return nil, nil
	}
	return bcrypt.GenerateFromPassword([]byte(m.adminKey), bcrypt.DefaultCost)
}
