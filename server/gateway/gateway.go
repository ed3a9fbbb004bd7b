package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/doodlex/doodlex/chat"
	"github.com/doodlex/doodlex/db"
	"github.com/doodlex/doodlex/game"
	"github.com/doodlex/doodlex/game/word"
	"github.com/doodlex/doodlex/server/auth"
	"github.com/doodlex/doodlex/server/ratelimit"
	"github.com/doodlex/doodlex/server/session"
)

type (
	// Gateway owns every room and connection.  All state is mutated on a single
	// event goroutine that consumes the work queue; sockets, timers, and store
	// writes interact with it only by posting closures.
	Gateway struct {
		clients       map[string]*client
		rooms         map[string]*roomEntry
		playerIDs     map[string]struct{}
		handlers      map[string]eventHandler
		work          chan func()
		stopped       chan struct{}
		upgrader      *websocket.Upgrader
		guessLimiter  *ratelimit.Limiter
		strokeLimiter *ratelimit.Limiter
		connSeq       int64
		connCount     int64
		roomCount     int64
		Config
	}

	// Config contains the properties of a Gateway.
	Config struct {
		// Debug is a flag that causes the gateway to log every event it handles.
		Debug bool
		// Log is used to log errors and other information.
		Log *log.Logger
		// TimeFunc supplies the current time for round timing and scoring.
		TimeFunc func() time.Time
		// Rand is the source for room codes, player ids, and rotation shuffles.
		Rand *rand.Rand
		// Tokenizer issues and reads rejoin tokens.
		Tokenizer auth.Tokenizer
		// Store mirrors room state and records finished games.
		Store db.GameStore
		// Sessions maps connections to room membership.
		Sessions *session.Directory
		// GuessLimit/GuessWindow cap guesses per player.
		GuessLimit  int
		GuessWindow time.Duration
		// StrokeLimit/StrokeWindow cap stroke events per drawer.
		StrokeLimit  int
		StrokeWindow time.Duration
		// InterRoundDelay is the pause between a round ending and the next starting.
		InterRoundDelay time.Duration
		// RoomExpiry is how long a finished room lingers before its sockets are closed.
		RoomExpiry time.Duration
		// ReadWait is the amount of time that can pass between reads before timing out.
		ReadWait time.Duration
		// WriteWait is the amount of time a write can take before timing out.
		WriteWait time.Duration
		// PingPeriod is how often ping messages are sent.  Should be less than ReadWait.
		PingPeriod time.Duration
	}

	// roomEntry couples a room with its word bank and pending timers.
	roomEntry struct {
		room      *game.Room
		bank      *word.Bank
		timers    roomTimers
		hintStage int
		winnerID  string
	}

	eventHandler func(c *client, seq int64, data json.RawMessage)
)

// workQueueSize bounds how many posted closures can be pending before posters block.
const workQueueSize = 256

// NewGateway creates a Gateway from the config.
func (cfg Config) NewGateway() (*Gateway, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("creating gateway: validation: %w", err)
	}
	guessLimiter, err := ratelimit.Config{
		Limit:    cfg.GuessLimit,
		Window:   cfg.GuessWindow,
		TimeFunc: cfg.TimeFunc,
	}.NewLimiter()
	if err != nil {
		return nil, fmt.Errorf("creating guess limiter: %w", err)
	}
	strokeLimiter, err := ratelimit.Config{
		Limit:    cfg.StrokeLimit,
		Window:   cfg.StrokeWindow,
		TimeFunc: cfg.TimeFunc,
	}.NewLimiter()
	if err != nil {
		return nil, fmt.Errorf("creating stroke limiter: %w", err)
	}
	g := Gateway{
		clients:       make(map[string]*client),
		rooms:         make(map[string]*roomEntry),
		playerIDs:     make(map[string]struct{}),
		work:          make(chan func(), workQueueSize),
		stopped:       make(chan struct{}),
		upgrader:      new(websocket.Upgrader),
		guessLimiter:  guessLimiter,
		strokeLimiter: strokeLimiter,
		Config:        cfg,
	}
	g.handlers = map[string]eventHandler{
		eventCreateRoom:        g.handleCreateRoom,
		eventJoinRoom:          g.handleJoinRoom,
		eventRejoinRoom:        g.handleRejoinRoom,
		eventStartRound:        g.handleStartRound,
		eventUpdateSettings:    g.handleUpdateSettings,
		eventStroke:            g.handleStroke,
		eventClearCanvas:       g.handleClearCanvas,
		eventFill:              g.handleFill,
		eventGuess:             g.handleGuess,
		eventChat:              g.handleChat,
		eventLeaveRoom:         g.handleLeaveRoom,
		eventToggleReady:       g.handleToggleReady,
		eventVoiceOffer:        g.voiceSignalHandler(eventVoiceOffer),
		eventVoiceAnswer:       g.voiceSignalHandler(eventVoiceAnswer),
		eventVoiceIceCandidate: g.voiceSignalHandler(eventVoiceIceCandidate),
		eventVoiceMuteStatus:   g.handleVoiceMuteStatus,
		eventVoiceSpeaking:     g.handleVoiceSpeaking,
		eventVoiceJoin:         g.voicePresenceHandler(eventVoiceJoin),
		eventVoiceLeave:        g.voicePresenceHandler(eventVoiceLeave),
		eventHostMutePlayer:    g.handleHostMutePlayer,
	}
	return &g, nil
}

// validate ensures the configuration has no errors.
func (cfg Config) validate() error {
	switch {
	case cfg.Log == nil:
		return fmt.Errorf("log required")
	case cfg.TimeFunc == nil:
		return fmt.Errorf("time func required")
	case cfg.Rand == nil:
		return fmt.Errorf("rand required")
	case cfg.Tokenizer == nil:
		return fmt.Errorf("tokenizer required")
	case cfg.Store == nil:
		return fmt.Errorf("game store required")
	case cfg.Sessions == nil:
		return fmt.Errorf("session directory required")
	case cfg.GuessLimit <= 0 || cfg.GuessWindow <= 0:
		return fmt.Errorf("positive guess limit and window required")
	case cfg.StrokeLimit <= 0 || cfg.StrokeWindow <= 0:
		return fmt.Errorf("positive stroke limit and window required")
	case cfg.InterRoundDelay <= 0:
		return fmt.Errorf("positive inter-round delay required")
	case cfg.RoomExpiry <= 0:
		return fmt.Errorf("positive room expiry required")
	case cfg.ReadWait <= 0:
		return fmt.Errorf("positive read wait period required")
	case cfg.WriteWait <= 0:
		return fmt.Errorf("positive write wait period required")
	case cfg.PingPeriod <= 0:
		return fmt.Errorf("positive ping period required")
	case cfg.PingPeriod >= cfg.ReadWait:
		return fmt.Errorf("ping period should be less than read wait")
	}
	return nil
}

// Run starts the event goroutine.  It stops when the context is cancelled.
func (g *Gateway) Run(ctx context.Context, wg *sync.WaitGroup) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(g.stopped)
		for {
			select {
			case <-ctx.Done():
				return
			case f := <-g.work:
				f()
			}
		}
	}()
}

// post queues the closure for the event goroutine, discarding it if the
// gateway has stopped.
func (g *Gateway) post(f func()) {
	select {
	case g.work <- f:
	case <-g.stopped:
	}
}

// Handle upgrades the http request to a websocket connection and starts
// serving it.
func (g *Gateway) Handle(w http.ResponseWriter, r *http.Request) {
	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.Log.Printf("upgrading connection: %v", err)
		return
	}
	g.serve(newGorillaConn(conn, g.ReadWait, g.WriteWait))
}

// serve registers the connection and starts its read and write pumps.
func (g *Gateway) serve(conn Conn) {
	id := fmt.Sprintf("%v#%v", conn.RemoteAddr(), atomic.AddInt64(&g.connSeq, 1))
	c := &client{
		id:   id,
		conn: conn,
		send: make(chan Response, sendQueueSize),
	}
	g.post(func() {
		g.addClient(c)
	})
	go g.readPump(c)
	go g.writePump(c)
}

// Stats reports the current room and connection counts.
func (g *Gateway) Stats() (rooms, connections int) {
	return int(atomic.LoadInt64(&g.roomCount)), int(atomic.LoadInt64(&g.connCount))
}

// RoomSummaries returns one line of state per room for the admin listing.
func (g *Gateway) RoomSummaries(ctx context.Context) []RoomSummary {
	result := make(chan []RoomSummary, 1)
	g.post(func() {
		summaries := make([]RoomSummary, 0, len(g.rooms))
		for _, entry := range g.rooms {
			r := entry.room
			summaries = append(summaries, RoomSummary{
				RoomID:       r.ID(),
				Stage:        r.Stage(),
				PlayerCount:  r.PlayerCount(),
				CurrentRound: r.CurrentRound(),
				CreatedAt:    r.CreatedAt(),
			})
		}
		result <- summaries
	})
	select {
	case summaries := <-result:
		return summaries
	case <-ctx.Done():
		return nil
	case <-g.stopped:
		return nil
	}
}

// RoomSummary is the admin view of one room.
type RoomSummary struct {
	RoomID       string     `json:"roomId"`
	Stage        game.Stage `json:"stage"`
	PlayerCount  int        `json:"playerCount"`
	CurrentRound int        `json:"currentRound"`
	CreatedAt    time.Time  `json:"createdAt"`
}

func (g *Gateway) addClient(c *client) {
	g.clients[c.id] = c
	atomic.AddInt64(&g.connCount, 1)
	if g.Debug {
		g.Log.Printf("client %v connected", c.id)
	}
}

// removeClient unregisters the client and cleans up its player.  Safe to call
// more than once; only the first call acts.
func (g *Gateway) removeClient(c *client) {
	if _, ok := g.clients[c.id]; !ok {
		return
	}
	delete(g.clients, c.id)
	atomic.AddInt64(&g.connCount, -1)
	close(c.send)
	g.cleanupPlayer(c, true)
	if g.Debug {
		g.Log.Printf("client %v disconnected", c.id)
	}
}

// dispatch routes the event to its handler.  Unknown events are dropped.
func (g *Gateway) dispatch(c *client, req Request) {
	if g.Debug {
		g.Log.Printf("handling %v event from %v", req.Event, c.id)
	}
	h, ok := g.handlers[req.Event]
	if !ok {
		g.Log.Printf("unknown event %q from %v", req.Event, c.id)
		return
	}
	h(c, req.Seq, req.Data)
}

// handleCreateRoom creates a room with the sender as host.
func (g *Gateway) handleCreateRoom(c *client, seq int64, data json.RawMessage) {
	var p createRoomPayload
	if err := json.Unmarshal(data, &p); err != nil {
		g.ackError(c, seq, game.ErrCodeRoomNotFound, "malformed payload")
		return
	}
	roomID := strings.ToUpper(strings.TrimSpace(p.RoomID))
	switch {
	case roomID != "":
		if _, exists := g.rooms[roomID]; exists {
			g.ackError(c, seq, game.ErrCodeRoomExists, "a room with that code already exists")
			return
		}
	default:
		for {
			roomID = game.NewRoomCode(g.Rand)
			if _, exists := g.rooms[roomID]; !exists {
				break
			}
		}
	}
	bank := word.NewBank(g.Rand)
	room, err := game.Config{
		TimeFunc:    g.TimeFunc,
		ShuffleFunc: g.shuffleIDs,
	}.NewRoom(roomID, bank)
	if err != nil {
		g.Log.Printf("creating room %v: %v", roomID, err)
		return
	}
	playerID := g.newPlayerID()
	name := playerName(p.Name)
	player := room.AddPlayer(playerID, name, true)
	entry := &roomEntry{
		room: room,
		bank: bank,
	}
	g.rooms[roomID] = entry
	atomic.AddInt64(&g.roomCount, 1)
	g.Sessions.Bind(c.id, session.Binding{
		RoomID:   roomID,
		PlayerID: playerID,
		Name:     player.Name,
	})
	settings := room.Settings()
	g.sendTo(c, Response{Event: eventAck, Seq: seq, Data: Ack{
		Success:     true,
		RoomID:      roomID,
		PlayerID:    playerID,
		RejoinToken: g.rejoinToken(roomID, playerID),
		Settings:    &settings,
		Room:        g.roomStateFor(entry, playerID),
	}})
	g.persistRoom(entry)
	g.Log.Printf("room %v created by %v", roomID, player.Name)
}

// handleJoinRoom adds the sender to an existing room.  Joins during an active
// round are allowed; the snapshot in the ack rehydrates the canvas.
func (g *Gateway) handleJoinRoom(c *client, seq int64, data json.RawMessage) {
	var p joinRoomPayload
	if err := json.Unmarshal(data, &p); err != nil {
		g.ackError(c, seq, game.ErrCodeRoomNotFound, "malformed payload")
		return
	}
	roomID := strings.ToUpper(strings.TrimSpace(p.RoomID))
	entry, ok := g.rooms[roomID]
	if !ok || entry.room.Stage() == game.StageEnded {
		g.ackError(c, seq, game.ErrCodeRoomNotFound, "room not found")
		return
	}
	room := entry.room
	if room.PlayerCount() >= room.Settings().MaxPlayers {
		g.ackError(c, seq, game.ErrCodeRoomFull, "room is full")
		return
	}
	playerID := g.newPlayerID()
	player := room.AddPlayer(playerID, playerName(p.Name), false)
	if player == nil {
		g.ackError(c, seq, game.ErrCodeRoomFull, "room is full")
		return
	}
	g.Sessions.Bind(c.id, session.Binding{
		RoomID:   roomID,
		PlayerID: playerID,
		Name:     player.Name,
	})
	settings := room.Settings()
	g.sendTo(c, Response{Event: eventAck, Seq: seq, Data: Ack{
		Success:     true,
		RoomID:      roomID,
		PlayerID:    playerID,
		RejoinToken: g.rejoinToken(roomID, playerID),
		Settings:    &settings,
		Room:        g.roomStateFor(entry, playerID),
	}})
	g.broadcastRoomUpdate(entry, playerID)
	g.systemChat(entry, fmt.Sprintf("%v joined the room", player.Name))
	g.persistRoom(entry)
}

// handleRejoinRoom reconnects a recently disconnected player, restoring their
// score when a valid snapshot exists.  Roles (host, drawer) are re-derived
// from current room state, never restored.
func (g *Gateway) handleRejoinRoom(c *client, seq int64, data json.RawMessage) {
	var p rejoinRoomPayload
	if err := json.Unmarshal(data, &p); err != nil {
		g.ackError(c, seq, game.ErrCodeRoomNotFound, "malformed payload")
		return
	}
	roomID := strings.ToUpper(strings.TrimSpace(p.RoomID))
	entry, ok := g.rooms[roomID]
	if !ok || entry.room.Stage() == game.StageEnded {
		g.ackError(c, seq, game.ErrCodeRoomNotFound, "room not found")
		return
	}
	room := entry.room
	verified := false
	if p.Token != "" {
		tokenRoomID, tokenPlayerID, err := g.Tokenizer.Read(p.Token)
		verified = err == nil && tokenRoomID == roomID && tokenPlayerID == p.PlayerID
	}
	// A player still on the roster means the old socket has not been reaped
	// yet; rebind rather than re-add.
	if player, present := room.Player(p.PlayerID); present && verified {
		g.Sessions.Bind(c.id, session.Binding{
			RoomID:   roomID,
			PlayerID: p.PlayerID,
			Name:     player.Name,
		})
		settings := room.Settings()
		g.sendTo(c, Response{Event: eventAck, Seq: seq, Data: Ack{
			Success:     true,
			RoomID:      roomID,
			PlayerID:    p.PlayerID,
			RejoinToken: g.rejoinToken(roomID, p.PlayerID),
			IsRejoin:    true,
			Settings:    &settings,
			Room:        g.roomStateFor(entry, p.PlayerID),
		}})
		return
	}
	snapshot, restored := session.Snapshot{}, false
	if verified {
		snapshot, restored = g.Sessions.TakePending(p.PlayerID)
		restored = restored && snapshot.RoomID == roomID
	}
	if room.PlayerCount() >= room.Settings().MaxPlayers {
		g.ackError(c, seq, game.ErrCodeRoomFull, "room is full")
		return
	}
	playerID, name := g.newPlayerID(), playerName(p.Name)
	if restored {
		playerID, name = p.PlayerID, snapshot.Name
	}
	player := room.AddPlayer(playerID, name, false)
	if player == nil {
		g.ackError(c, seq, game.ErrCodeRoomFull, "room is full")
		return
	}
	if restored {
		player.Score = snapshot.Score
	}
	g.Sessions.Bind(c.id, session.Binding{
		RoomID:   roomID,
		PlayerID: playerID,
		Name:     player.Name,
	})
	settings := room.Settings()
	g.sendTo(c, Response{Event: eventAck, Seq: seq, Data: Ack{
		Success:     true,
		RoomID:      roomID,
		PlayerID:    playerID,
		RejoinToken: g.rejoinToken(roomID, playerID),
		IsRejoin:    restored,
		Settings:    &settings,
		Room:        g.roomStateFor(entry, playerID),
	}})
	g.broadcastRoomUpdate(entry, playerID)
	verb := "joined the room"
	if restored {
		verb = "reconnected"
	}
	g.systemChat(entry, fmt.Sprintf("%v %v", player.Name, verb))
	g.persistRoom(entry)
}

// handleStartRound starts the next round.  Host only.  Starting from a
// finished game resets scores first.
func (g *Gateway) handleStartRound(c *client, seq int64, data json.RawMessage) {
	var p startRoundPayload
	if err := json.Unmarshal(data, &p); err != nil {
		g.ackError(c, seq, game.ErrCodeRoomNotFound, "malformed payload")
		return
	}
	b, entry, ok := g.bindingFor(c)
	if !ok {
		g.ackError(c, seq, game.ErrCodeRoomNotFound, "not in a room")
		return
	}
	room := entry.room
	switch {
	case b.PlayerID != room.HostID():
		g.ackError(c, seq, game.ErrCodeNotHost, "only the host can start a round")
		return
	case room.Stage() == game.StageDrawing:
		g.ackError(c, seq, game.ErrCodeGameInProgress, "a round is already in progress")
		return
	case room.PlayerCount() < 2:
		g.ackError(c, seq, game.ErrCodeNotEnoughPlayers, "at least 2 players are required")
		return
	}
	if room.Stage() == game.StageEnded {
		entry.timers.stopAll()
		room.ResetGame()
	}
	g.sendTo(c, Response{Event: eventAck, Seq: seq, Data: Ack{Success: true}})
	g.beginRound(entry, p.Difficulty)
}

// handleUpdateSettings merges a settings patch.  Host only, outside active rounds.
func (g *Gateway) handleUpdateSettings(c *client, seq int64, data json.RawMessage) {
	var p updateSettingsPayload
	if err := json.Unmarshal(data, &p); err != nil {
		g.ackError(c, seq, game.ErrCodeRoomNotFound, "malformed payload")
		return
	}
	b, entry, ok := g.bindingFor(c)
	if !ok {
		g.ackError(c, seq, game.ErrCodeRoomNotFound, "not in a room")
		return
	}
	room := entry.room
	switch {
	case b.PlayerID != room.HostID():
		g.ackError(c, seq, game.ErrCodeNotHost, "only the host can change settings")
		return
	case room.Stage() == game.StageDrawing:
		g.ackError(c, seq, game.ErrCodeGameInProgress, "settings are locked during a round")
		return
	}
	settings := room.UpdateSettings(p.Settings)
	g.sendTo(c, Response{Event: eventAck, Seq: seq, Data: Ack{
		Success:  true,
		Settings: &settings,
	}})
	g.broadcastRoomUpdate(entry, "")
	g.persistRoom(entry)
}

// handleStroke relays a drawer stroke to the rest of the room and buffers it
// for late joiners.  Invalid, off-turn, and over-limit strokes are dropped
// without a reply.
func (g *Gateway) handleStroke(c *client, _ int64, data json.RawMessage) {
	var p strokePayload
	if err := json.Unmarshal(data, &p); err != nil {
		return
	}
	b, entry, ok := g.bindingFor(c)
	if !ok || entry.room.Stage() != game.StageDrawing || b.PlayerID != entry.room.CurrentDrawerID() {
		return
	}
	if !p.Stroke.Valid() {
		if g.Debug {
			g.Log.Printf("dropping invalid stroke from %v", b.PlayerID)
		}
		return
	}
	if !g.strokeLimiter.Allow(b.PlayerID) {
		return
	}
	entry.room.AddStroke(p.Stroke)
	g.broadcast(entry, Response{Event: eventStroke, Data: p.Stroke}, b.PlayerID)
}

// handleClearCanvas clears the canvas for everyone.  The drawer clears their
// own work; the host may also clear, to moderate.
func (g *Gateway) handleClearCanvas(c *client, _ int64, data json.RawMessage) {
	b, entry, ok := g.bindingFor(c)
	if !ok || entry.room.Stage() != game.StageDrawing {
		return
	}
	if b.PlayerID != entry.room.CurrentDrawerID() && b.PlayerID != entry.room.HostID() {
		return
	}
	entry.room.ClearStrokes()
	g.broadcast(entry, Response{Event: eventClearCanvas}, b.PlayerID)
}

// handleFill relays a flood-fill operation.  Drawer only.  Fills are not
// buffered; late joiners reconstruct from strokes only.
func (g *Gateway) handleFill(c *client, _ int64, data json.RawMessage) {
	var p fillPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return
	}
	b, entry, ok := g.bindingFor(c)
	if !ok || entry.room.Stage() != game.StageDrawing || b.PlayerID != entry.room.CurrentDrawerID() {
		return
	}
	g.broadcast(entry, Response{Event: eventFill, Data: p.Fill}, b.PlayerID)
}

// handleGuess checks a guess against the secret word.  Correct guesses award
// points and are announced without echoing the word; wrong guesses become
// chat.  The drawer and players who already guessed are ignored.
func (g *Gateway) handleGuess(c *client, _ int64, data json.RawMessage) {
	var p textPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return
	}
	b, entry, ok := g.bindingFor(c)
	if !ok {
		return
	}
	room := entry.room
	if room.Stage() != game.StageDrawing || b.PlayerID == room.CurrentDrawerID() || room.HasPlayerGuessed(b.PlayerID) {
		return
	}
	if !g.guessLimiter.Allow(b.PlayerID) {
		g.sendTo(c, Response{Event: eventError, Data: game.NewError(game.ErrCodeRateLimited, "too many guesses, slow down")})
		return
	}
	guess := chat.Clean(p.Text)
	if guess == "" {
		return
	}
	if !strings.EqualFold(guess, room.CurrentWord()) {
		g.broadcast(entry, Response{Event: eventChat, Data: chatMessage{
			ID:      b.PlayerID,
			Name:    room.PlayerName(b.PlayerID),
			Text:    chat.CleanMessage(p.Text),
			TS:      g.TimeFunc().UnixMilli(),
			IsGuess: true,
		}}, "")
		return
	}
	points := room.AwardPoints(b.PlayerID)
	if entry.winnerID == "" {
		entry.winnerID = b.PlayerID
	}
	g.broadcast(entry, Response{Event: eventCorrectGuess, Data: correctGuessPayload{
		PlayerID:      b.PlayerID,
		Name:          room.PlayerName(b.PlayerID),
		PointsAwarded: points,
	}}, "")
	g.broadcastRoomUpdate(entry, "")
	g.persistRoom(entry)
	if room.HasEveryoneGuessed() {
		g.endRound(entry)
	}
}

// handleChat broadcasts a sanitized chat message to the room.
func (g *Gateway) handleChat(c *client, _ int64, data json.RawMessage) {
	var p textPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return
	}
	b, entry, ok := g.bindingFor(c)
	if !ok {
		return
	}
	text := chat.CleanMessage(p.Text)
	if text == "" {
		return
	}
	g.broadcast(entry, Response{Event: eventChat, Data: chatMessage{
		ID:   b.PlayerID,
		Name: entry.room.PlayerName(b.PlayerID),
		Text: text,
		TS:   g.TimeFunc().UnixMilli(),
	}}, "")
}

// handleLeaveRoom removes the sender from their room without closing the socket.
func (g *Gateway) handleLeaveRoom(c *client, _ int64, _ json.RawMessage) {
	g.cleanupPlayer(c, false)
}

// handleToggleReady flips the sender's lobby ready flag.
func (g *Gateway) handleToggleReady(c *client, _ int64, _ json.RawMessage) {
	b, entry, ok := g.bindingFor(c)
	if !ok || entry.room.Stage() != game.StageLobby {
		return
	}
	entry.room.ToggleReady(b.PlayerID)
	g.broadcastRoomUpdate(entry, "")
}

// cleanupPlayer removes the client's player from their room, promoting a new
// host, ending the round, or deleting the room as the roster change demands.
// On disconnects a rejoin snapshot is kept; explicit leaves forfeit it.
func (g *Gateway) cleanupPlayer(c *client, disconnected bool) {
	b, ok := g.Sessions.Lookup(c.id)
	if !ok {
		return
	}
	g.Sessions.Unbind(c.id)
	entry, ok := g.rooms[b.RoomID]
	if !ok {
		return
	}
	room := entry.room
	player, present := room.Player(b.PlayerID)
	if !present {
		return
	}
	if disconnected {
		g.Sessions.AddPending(b.PlayerID, session.Snapshot{
			RoomID:         b.RoomID,
			Name:           player.Name,
			Score:          player.Score,
			WasHost:        player.IsHost,
			WasDrawer:      room.CurrentDrawerID() == b.PlayerID,
			DisconnectedAt: g.TimeFunc(),
		})
		g.Sessions.Purge()
	}
	removal := room.RemovePlayer(b.PlayerID)
	g.guessLimiter.Forget(b.PlayerID)
	g.strokeLimiter.Forget(b.PlayerID)
	if removal.RemainingPlayers == 0 {
		g.deleteRoom(entry)
		return
	}
	verb := "left the room"
	if disconnected {
		verb = "disconnected"
	}
	g.systemChat(entry, fmt.Sprintf("%v %v", removal.PlayerName, verb))
	g.broadcast(entry, Response{Event: eventVoiceLeave, Data: voicePresencePayload{
		PlayerID: b.PlayerID,
	}}, "")
	if removal.WasHost {
		g.broadcast(entry, Response{Event: eventHostChanged, Data: hostChangedPayload{
			NewHostID:   removal.NewHostID,
			NewHostName: room.PlayerName(removal.NewHostID),
		}}, "")
	}
	switch {
	case removal.ShouldEndRound:
		g.endRound(entry)
	case room.Stage() == game.StageDrawing && room.HasEveryoneGuessed():
		g.endRound(entry)
	}
	g.broadcastRoomUpdate(entry, "")
	g.persistRoom(entry)
}

// voiceSignalHandler relays an SDP offer/answer or ICE candidate to one peer.
// The event name passes through unchanged.
func (g *Gateway) voiceSignalHandler(event string) eventHandler {
	return func(c *client, _ int64, data json.RawMessage) {
		var p voiceSignalPayload
		if err := json.Unmarshal(data, &p); err != nil {
			return
		}
		b, entry, ok := g.bindingFor(c)
		if !ok {
			return
		}
		if _, present := entry.room.Player(p.TargetID); !present {
			return
		}
		connID, ok := g.Sessions.ConnFor(p.TargetID)
		if !ok {
			return
		}
		target, ok := g.clients[connID]
		if !ok {
			return
		}
		g.sendTo(target, Response{Event: event, Data: voiceRelayPayload{
			FromID:   b.PlayerID,
			FromName: entry.room.PlayerName(b.PlayerID),
			Payload:  p.Payload,
		}})
	}
}

// handleVoiceMuteStatus tells the room that the sender muted or unmuted.
func (g *Gateway) handleVoiceMuteStatus(c *client, _ int64, data json.RawMessage) {
	var p voiceMutePayload
	if err := json.Unmarshal(data, &p); err != nil {
		return
	}
	b, entry, ok := g.bindingFor(c)
	if !ok {
		return
	}
	g.broadcast(entry, Response{Event: eventVoiceMuteStatus, Data: voiceStatusPayload{
		PlayerID: b.PlayerID,
		IsMuted:  p.IsMuted,
	}}, b.PlayerID)
}

// handleVoiceSpeaking tells the room that the sender started or stopped speaking.
func (g *Gateway) handleVoiceSpeaking(c *client, _ int64, data json.RawMessage) {
	var p voiceSpeakingPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return
	}
	b, entry, ok := g.bindingFor(c)
	if !ok {
		return
	}
	g.broadcast(entry, Response{Event: eventVoiceSpeaking, Data: voiceStatusPayload{
		PlayerID:   b.PlayerID,
		IsSpeaking: p.IsSpeaking,
		AudioLevel: p.AudioLevel,
	}}, b.PlayerID)
}

// voicePresenceHandler announces that the sender joined or left voice chat.
func (g *Gateway) voicePresenceHandler(event string) eventHandler {
	return func(c *client, _ int64, _ json.RawMessage) {
		b, entry, ok := g.bindingFor(c)
		if !ok {
			return
		}
		g.broadcast(entry, Response{Event: event, Data: voicePresencePayload{
			PlayerID: b.PlayerID,
			Name:     entry.room.PlayerName(b.PlayerID),
		}}, b.PlayerID)
	}
}

// handleHostMutePlayer force-mutes or unmutes another player.  Host only.
func (g *Gateway) handleHostMutePlayer(c *client, _ int64, data json.RawMessage) {
	var p hostMutePayload
	if err := json.Unmarshal(data, &p); err != nil {
		return
	}
	b, entry, ok := g.bindingFor(c)
	if !ok || b.PlayerID != entry.room.HostID() {
		return
	}
	if _, present := entry.room.Player(p.TargetPlayerID); !present {
		return
	}
	if connID, ok := g.Sessions.ConnFor(p.TargetPlayerID); ok {
		if target, ok := g.clients[connID]; ok {
			g.sendTo(target, Response{Event: eventHostMutePlayer, Data: hostMutePayload{
				TargetPlayerID: p.TargetPlayerID,
				Mute:           p.Mute,
			}})
		}
	}
	g.broadcast(entry, Response{Event: eventVoiceMuteStatus, Data: voiceStatusPayload{
		PlayerID:     p.TargetPlayerID,
		IsMuted:      p.Mute,
		ForcedByHost: true,
	}}, "")
}

// bindingFor resolves the client's room membership.
func (g *Gateway) bindingFor(c *client) (session.Binding, *roomEntry, bool) {
	b, ok := g.Sessions.Lookup(c.id)
	if !ok {
		return session.Binding{}, nil, false
	}
	entry, ok := g.rooms[b.RoomID]
	if !ok {
		return session.Binding{}, nil, false
	}
	return b, entry, true
}

// broadcast queues the event for every player in the room except one.
func (g *Gateway) broadcast(entry *roomEntry, m Response, exceptPlayerID string) {
	for _, p := range entry.room.PublicPlayers() {
		if p.ID == exceptPlayerID {
			continue
		}
		g.sendToPlayer(p.ID, m)
	}
}

// sendToPlayer queues the event for the player's current connection, if any.
func (g *Gateway) sendToPlayer(playerID string, m Response) {
	connID, ok := g.Sessions.ConnFor(playerID)
	if !ok {
		return
	}
	if c, ok := g.clients[connID]; ok {
		g.sendTo(c, m)
	}
}

// broadcastRoomUpdate sends the public room snapshot to every player except one.
func (g *Gateway) broadcastRoomUpdate(entry *roomEntry, exceptPlayerID string) {
	room := entry.room
	g.broadcast(entry, Response{Event: eventRoomUpdate, Data: roomUpdatePayload{
		RoomID:   room.ID(),
		Players:  room.PublicPlayers(),
		Stage:    room.Stage(),
		HostID:   room.HostID(),
		Settings: room.Settings(),
	}}, exceptPlayerID)
}

// systemChat broadcasts a server-generated chat line.
func (g *Gateway) systemChat(entry *roomEntry, text string) {
	g.broadcast(entry, Response{Event: eventChat, Data: chatMessage{
		ID:       "system",
		Name:     "System",
		Text:     text,
		TS:       g.TimeFunc().UnixMilli(),
		IsSystem: true,
	}}, "")
}

// ackError replies to a request with a structured failure.
func (g *Gateway) ackError(c *client, seq int64, code, message string) {
	g.sendTo(c, Response{Event: eventAck, Seq: seq, Data: Ack{
		Error: game.NewError(code, message),
	}})
}

// roomStateFor builds the join/rejoin snapshot for one player.  Only the
// drawer sees the secret word; guessers get the current hint instead.
func (g *Gateway) roomStateFor(entry *roomEntry, playerID string) *RoomState {
	room := entry.room
	state := RoomState{
		RoomID:   room.ID(),
		Players:  room.PublicPlayers(),
		Stage:    room.Stage(),
		HostID:   room.HostID(),
		Settings: room.Settings(),
	}
	if room.Stage() == game.StageDrawing {
		state.DrawerID = room.CurrentDrawerID()
		state.WordLength = len(room.CurrentWord())
		state.TimeRemaining = room.TimeRemaining()
		state.CurrentRound = room.CurrentRound()
		state.TotalRounds = room.Settings().TotalRounds
		state.Strokes = room.Strokes()
		switch {
		case playerID == room.CurrentDrawerID():
			state.SecretWord = room.CurrentWord()
		case room.Settings().HintsEnabled:
			state.WordHint = entry.bank.HintAt(room.CurrentWord(), entry.hintStage)
		}
	}
	return &state
}

// rejoinToken issues a token or logs and returns "" so a token failure never
// blocks a join.
func (g *Gateway) rejoinToken(roomID, playerID string) string {
	token, err := g.Tokenizer.Create(roomID, playerID)
	if err != nil {
		g.Log.Printf("creating rejoin token for %v in %v: %v", playerID, roomID, err)
		return ""
	}
	return token
}

// newPlayerID generates a player id that is unique for the process lifetime.
func (g *Gateway) newPlayerID() string {
	for {
		id := fmt.Sprintf("%08x", g.Rand.Uint32())
		if _, taken := g.playerIDs[id]; !taken {
			g.playerIDs[id] = struct{}{}
			return id
		}
	}
}

// shuffleIDs reorders player ids in place for the drawer rotation.
func (g *Gateway) shuffleIDs(ids []string) {
	g.Rand.Shuffle(len(ids), func(i, j int) {
		ids[i], ids[j] = ids[j], ids[i]
	})
}

// playerName sanitizes a requested display name, defaulting when empty.
func playerName(name string) string {
	name = chat.Clean(name)
	if name == "" {
		name = "Player"
	}
	return name
}

// persistRoom mirrors the room to the store without blocking the event goroutine.
func (g *Gateway) persistRoom(entry *roomEntry) {
	rec := g.roomRecord(entry.room)
	go func() {
		if err := g.Store.UpsertRoom(context.Background(), rec); err != nil {
			g.Log.Printf("mirroring room %v: %v", rec.RoomID, err)
		}
	}()
}

// roomRecord converts the room to its persisted form.
func (g *Gateway) roomRecord(room *game.Room) db.RoomRecord {
	players := make([]db.PlayerRecord, 0, room.PlayerCount())
	for _, p := range room.PublicPlayers() {
		player, _ := room.Player(p.ID)
		players = append(players, db.PlayerRecord{
			ID:       p.ID,
			Name:     p.Name,
			Score:    p.Score,
			IsHost:   p.IsHost,
			IsReady:  p.IsReady,
			JoinedAt: player.JoinedAt,
		})
	}
	settings := room.Settings()
	return db.RoomRecord{
		RoomID:          room.ID(),
		HostID:          room.HostID(),
		Stage:           string(room.Stage()),
		CurrentDrawerID: room.CurrentDrawerID(),
		CurrentWord:     room.CurrentWord(),
		CurrentRound:    room.CurrentRound(),
		Players:         players,
		Settings: db.SettingsRecord{
			TimeLimit:    settings.TimeLimit,
			TotalRounds:  settings.TotalRounds,
			Difficulty:   string(settings.Difficulty),
			HintsEnabled: settings.HintsEnabled,
		},
		UpdatedAt: g.TimeFunc(),
	}
}
