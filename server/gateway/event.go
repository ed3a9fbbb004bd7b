// Package gateway terminates client event streams, routes inbound events to
// room operations, and fans resulting events out to every socket in a room.
package gateway

import (
	"encoding/json"

	"github.com/doodlex/doodlex/game"
)

type (
	// Request is an inbound client event.  Seq correlates the acknowledgment
	// for request/response style events; fire-and-forget events leave it zero.
	Request struct {
		Event string          `json:"event"`
		Seq   int64           `json:"seq,omitempty"`
		Data  json.RawMessage `json:"data,omitempty"`
	}

	// Response is an outbound event.  Acknowledgments echo the request's Seq.
	Response struct {
		Event string      `json:"event"`
		Seq   int64       `json:"seq,omitempty"`
		Data  interface{} `json:"data,omitempty"`
	}

	// Ack is the structured result of a request/response event.
	Ack struct {
		Success     bool           `json:"success"`
		Error       *game.Error    `json:"error,omitempty"`
		RoomID      string         `json:"roomId,omitempty"`
		PlayerID    string         `json:"playerId,omitempty"`
		RejoinToken string         `json:"rejoinToken,omitempty"`
		IsRejoin    bool           `json:"isRejoin,omitempty"`
		Settings    *game.Settings `json:"settings,omitempty"`
		Room        *RoomState     `json:"room,omitempty"`
	}

	// RoomState is the public snapshot of a room sent on join/rejoin.  The
	// secret word is only populated for the drawer.
	RoomState struct {
		RoomID        string              `json:"roomId"`
		Players       []game.PublicPlayer `json:"players"`
		Stage         game.Stage          `json:"stage"`
		HostID        string              `json:"hostId"`
		Settings      game.Settings       `json:"settings"`
		DrawerID      string              `json:"drawerId,omitempty"`
		SecretWord    string              `json:"secretWord,omitempty"`
		WordHint      string              `json:"wordHint,omitempty"`
		WordLength    int                 `json:"wordLength,omitempty"`
		TimeRemaining int                 `json:"timeRemaining,omitempty"`
		CurrentRound  int                 `json:"currentRound,omitempty"`
		TotalRounds   int                 `json:"totalRounds,omitempty"`
		Strokes       []game.Stroke       `json:"strokes,omitempty"`
	}
)

// Inbound event names.
const (
	eventCreateRoom        = "createRoom"
	eventJoinRoom          = "joinRoom"
	eventRejoinRoom        = "rejoinRoom"
	eventStartRound        = "startRound"
	eventUpdateSettings    = "updateSettings"
	eventStroke            = "stroke"
	eventClearCanvas       = "clearCanvas"
	eventFill              = "fill"
	eventGuess             = "guess"
	eventChat              = "chat"
	eventLeaveRoom         = "leaveRoom"
	eventToggleReady       = "toggleReady"
	eventVoiceOffer        = "voiceOffer"
	eventVoiceAnswer       = "voiceAnswer"
	eventVoiceIceCandidate = "voiceIceCandidate"
	eventVoiceMuteStatus   = "voiceMuteStatus"
	eventVoiceSpeaking     = "voiceSpeaking"
	eventVoiceJoin         = "voiceJoin"
	eventVoiceLeave        = "voiceLeave"
	eventHostMutePlayer    = "hostMutePlayer"
)

// Outbound event names.
const (
	eventAck          = "ack"
	eventRoomUpdate   = "roomUpdate"
	eventHostChanged  = "hostChanged"
	eventRoundStarted = "roundStarted"
	eventHintUpdate   = "hintUpdate"
	eventCorrectGuess = "correctGuess"
	eventRoundEnded   = "roundEnded"
	eventGameOver     = "gameOver"
	eventRoomExpired  = "roomExpired"
	eventError        = "error"
)

type (
	createRoomPayload struct {
		RoomID string `json:"roomId,omitempty"`
		Name   string `json:"name"`
	}

	joinRoomPayload struct {
		RoomID string `json:"roomId"`
		Name   string `json:"name"`
	}

	rejoinRoomPayload struct {
		RoomID   string `json:"roomId"`
		PlayerID string `json:"playerId"`
		Name     string `json:"name"`
		Token    string `json:"token,omitempty"`
	}

	startRoundPayload struct {
		RoomID     string          `json:"roomId"`
		Difficulty game.Difficulty `json:"difficulty,omitempty"`
	}

	updateSettingsPayload struct {
		RoomID   string             `json:"roomId"`
		Settings game.SettingsPatch `json:"settings"`
	}

	strokePayload struct {
		RoomID string      `json:"roomId"`
		Stroke game.Stroke `json:"stroke"`
	}

	roomOnlyPayload struct {
		RoomID string `json:"roomId"`
	}

	fillPayload struct {
		RoomID string          `json:"roomId"`
		Fill   json.RawMessage `json:"fill"`
	}

	textPayload struct {
		RoomID string `json:"roomId"`
		Text   string `json:"text"`
	}

	voiceSignalPayload struct {
		RoomID   string          `json:"roomId"`
		TargetID string          `json:"targetId"`
		Payload  json.RawMessage `json:"payload"`
	}

	voiceMutePayload struct {
		RoomID  string `json:"roomId"`
		IsMuted bool   `json:"isMuted"`
	}

	voiceSpeakingPayload struct {
		RoomID     string  `json:"roomId"`
		IsSpeaking bool    `json:"isSpeaking"`
		AudioLevel float64 `json:"audioLevel,omitempty"`
	}

	hostMutePayload struct {
		RoomID         string `json:"roomId"`
		TargetPlayerID string `json:"targetPlayerId"`
		Mute           bool   `json:"mute"`
	}

	chatMessage struct {
		ID       string `json:"id"`
		Name     string `json:"name"`
		Text     string `json:"text"`
		TS       int64  `json:"ts"`
		IsSystem bool   `json:"isSystem,omitempty"`
		IsGuess  bool   `json:"isGuess,omitempty"`
	}

	roundStartedPayload struct {
		RoomID       string `json:"roomId"`
		DrawerID     string `json:"drawerId"`
		DrawerName   string `json:"drawerName"`
		TimeLimit    int    `json:"timeLimit"`
		Word         string `json:"word,omitempty"`
		WordLength   int    `json:"wordLength"`
		WordHint     string `json:"wordHint,omitempty"`
		HintsEnabled bool   `json:"hintsEnabled"`
		Round        int    `json:"round"`
		TotalRounds  int    `json:"totalRounds"`
		ServerTime   int64  `json:"serverTime"`
		RoundEndTime int64  `json:"roundEndTime"`
	}

	hintUpdatePayload struct {
		Hint  string `json:"hint"`
		Stage int    `json:"stage"`
	}

	correctGuessPayload struct {
		PlayerID      string `json:"playerId"`
		Name          string `json:"name"`
		PointsAwarded int    `json:"pointsAwarded"`
	}

	roundEndedPayload struct {
		Word     string              `json:"word"`
		Scores   []game.PublicPlayer `json:"scores"`
		WinnerID *string             `json:"winnerId"`
	}

	gameOverPayload struct {
		FinalScores  []game.PublicPlayer `json:"finalScores"`
		RoomExpiring bool                `json:"roomExpiring,omitempty"`
		Reason       string              `json:"reason,omitempty"`
	}

	roomUpdatePayload struct {
		RoomID   string              `json:"roomId"`
		Players  []game.PublicPlayer `json:"players"`
		Stage    game.Stage          `json:"stage"`
		HostID   string              `json:"hostId"`
		Settings game.Settings       `json:"settings"`
	}

	hostChangedPayload struct {
		NewHostID   string `json:"newHostId"`
		NewHostName string `json:"newHostName"`
	}

	voiceRelayPayload struct {
		FromID   string          `json:"fromId"`
		FromName string          `json:"fromName,omitempty"`
		Payload  json.RawMessage `json:"payload"`
	}

	voiceStatusPayload struct {
		PlayerID     string  `json:"playerId"`
		IsMuted      bool    `json:"isMuted,omitempty"`
		IsSpeaking   bool    `json:"isSpeaking,omitempty"`
		AudioLevel   float64 `json:"audioLevel,omitempty"`
		ForcedByHost bool    `json:"forcedByHost,omitempty"`
	}

	voicePresencePayload struct {
		PlayerID string `json:"playerId"`
		Name     string `json:"name,omitempty"`
	}
)
