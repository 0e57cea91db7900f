package server

// MessageType represents a WebSocket message type with type safety
type MessageType string

// WebSocket message type constants for the client-server protocol
const (
	// Client to server messages
	MessageTypeCreateLobby  MessageType = "create_lobby"
	MessageTypeJoinLobby    MessageType = "join_lobby"
	MessageTypeLeaveLobby   MessageType = "leave_lobby"
	MessageTypeStartGame    MessageType = "start_game"
	MessageTypePlayerAction MessageType = "player_action"

	// Server to client messages
	MessageTypeLobbyCreated MessageType = "lobby_created"
	MessageTypeLobbyJoined  MessageType = "lobby_joined"
	MessageTypeLobbyUpdate  MessageType = "lobby_update"
	MessageTypeGameUpdate   MessageType = "game_update"
	MessageTypeReveal       MessageType = "reveal"
	MessageTypeGameOver     MessageType = "game_over"
	MessageTypeError        MessageType = "error"
)

// String returns the string representation of the message type
func (mt MessageType) String() string {
	return string(mt)
}
