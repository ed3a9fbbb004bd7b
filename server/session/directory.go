// Package session maps live connection identity to room membership and tracks
// recently disconnected players eligible for rejoin.  The directory is a
// lookup layer only; rooms remain the single source of gameplay truth.
package session

import (
	"fmt"
	"time"
)

type (
	// Binding ties one connection to a player in a room.
	Binding struct {
		RoomID   string
		PlayerID string
		Name     string
	}

	// Snapshot preserves what a disconnected player needs for rejoin.  The
	// host/drawer flags are informational; roles are re-derived from current
	// room state on rejoin, never restored from here.
	Snapshot struct {
		RoomID         string
		Name           string
		Score          int
		WasHost        bool
		WasDrawer      bool
		DisconnectedAt time.Time
	}

	// Directory is the process-wide registry of connection bindings and
	// pending-rejoin snapshots.  All access happens on the gateway's event
	// goroutine.
	Directory struct {
		bindings map[string]Binding
		byPlayer map[string]string
		pending  map[string]Snapshot
		Config
	}

	// Config contains the properties of a Directory.
	Config struct {
		// RejoinWindow is how long a disconnection snapshot stays redeemable.
		RejoinWindow time.Duration
		// TimeFunc supplies the current time.
		TimeFunc func() time.Time
	}
)

// NewDirectory creates an empty session directory.
func (cfg Config) NewDirectory() (*Directory, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("creating directory: validation: %w", err)
	}
	d := Directory{
		bindings: make(map[string]Binding),
		byPlayer: make(map[string]string),
		pending:  make(map[string]Snapshot),
		Config:   cfg,
	}
	return &d, nil
}

// validate ensures the configuration has no errors.
func (cfg Config) validate() error {
	switch {
	case cfg.RejoinWindow <= 0:
		return fmt.Errorf("positive rejoin window required")
	case cfg.TimeFunc == nil:
		return fmt.Errorf("time func required")
	}
	return nil
}

// Bind associates the connection with the player, replacing any prior binding
// for either side.
func (d *Directory) Bind(connID string, b Binding) {
	if old, ok := d.bindings[connID]; ok {
		delete(d.byPlayer, old.PlayerID)
	}
	d.bindings[connID] = b
	d.byPlayer[b.PlayerID] = connID
}

// Lookup returns the binding for the connection.
func (d *Directory) Lookup(connID string) (Binding, bool) {
	b, ok := d.bindings[connID]
	return b, ok
}

// ConnFor returns the connection currently bound to the player.
func (d *Directory) ConnFor(playerID string) (string, bool) {
	connID, ok := d.byPlayer[playerID]
	return connID, ok
}

// Unbind removes the connection's binding.
func (d *Directory) Unbind(connID string) {
	if b, ok := d.bindings[connID]; ok {
		if d.byPlayer[b.PlayerID] == connID {
			delete(d.byPlayer, b.PlayerID)
		}
		delete(d.bindings, connID)
	}
}

// AddPending records a disconnection snapshot for the player.
func (d *Directory) AddPending(playerID string, s Snapshot) {
	d.pending[playerID] = s
}

// TakePending consumes and returns the player's snapshot if it has not
// expired.  Expired snapshots are purged and reported as absent.
func (d *Directory) TakePending(playerID string) (Snapshot, bool) {
	s, ok := d.pending[playerID]
	if !ok {
		return Snapshot{}, false
	}
	delete(d.pending, playerID)
	if d.TimeFunc().Sub(s.DisconnectedAt) > d.RejoinWindow {
		return Snapshot{}, false
	}
	return s, true
}

// Purge drops all expired snapshots.  Called opportunistically on disconnects
// so the pending map stays bounded.
func (d *Directory) Purge() {
	cutoff := d.TimeFunc().Add(-d.RejoinWindow)
	for playerID, s := range d.pending {
		if s.DisconnectedAt.Before(cutoff) {
			delete(d.pending, playerID)
		}
	}
}

// Connections returns the number of live bindings.
func (d *Directory) Connections() int {
	return len(d.bindings)
}
