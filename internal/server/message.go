package server

import (
	"encoding/json"
	"time"
)

// Message is the base WebSocket message structure. RequestID is echoed on
// acknowledgements so clients can match responses to requests.
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
	RequestID string          `json:"requestId,omitempty"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(messageType MessageType, data interface{}) (*Message, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return &Message{
		Type:      messageType,
		Data:      dataBytes,
		Timestamp: time.Now(),
	}, nil
}

// Client → Server Messages

// LobbySettingsData carries raw, untrusted settings input. Fields are
// untyped so non-numeric values fall back to defaults instead of failing
// the whole request.
type LobbySettingsData struct {
	StartChips any `json:"startChips"`
	Rounds     any `json:"rounds"`
	SmallBlind any `json:"smallBlind"`
	BigBlind   any `json:"bigBlind"`
}

type CreateLobbyData struct {
	Name     string            `json:"name"`
	Settings LobbySettingsData `json:"settings"`
}

type JoinLobbyData struct {
	LobbyID string `json:"lobbyId"`
	Name    string `json:"name"`
}

type PlayerActionData struct {
	Action string `json:"type"`
	Amount int    `json:"amount,omitempty"`
}

// Server → Client Messages

type LobbyCreatedData struct {
	OK      bool       `json:"ok"`
	Error   string     `json:"error,omitempty"`
	LobbyID string     `json:"lobbyId,omitempty"`
	Me      string     `json:"me,omitempty"`
	Lobby   *LobbyView `json:"lobby,omitempty"`
}

type LobbyJoinedData struct {
	OK    bool       `json:"ok"`
	Error string     `json:"error,omitempty"`
	Me    string     `json:"me,omitempty"`
	Lobby *LobbyView `json:"lobby,omitempty"`
}

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
