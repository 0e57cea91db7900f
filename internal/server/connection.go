package server

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
)

// Connection represents a WebSocket connection to a client. Each
// connection is one player; the id is assigned at upgrade time.
type Connection struct {
	conn      *websocket.Conn
	send      chan *Message
	playerID  string
	lobbyID   string
	logger    *log.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	mu        sync.RWMutex
	closeOnce sync.Once
	service   *LobbyService
}

// NewConnection creates a new connection wrapper
func NewConnection(conn *websocket.Conn, playerID string, logger *log.Logger, service *LobbyService) *Connection {
	ctx, cancel := context.WithCancel(context.Background())
	return &Connection{
		conn:     conn,
		send:     make(chan *Message, 256),
		playerID: playerID,
		logger:   logger.WithPrefix("conn").With("player", playerID),
		ctx:      ctx,
		cancel:   cancel,
		service:  service,
	}
}

// Start begins handling the connection
func (c *Connection) Start() {
	go c.writePump()
	go c.readPump()
}

// Close closes the connection
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		close(c.send)
		err = c.conn.Close()
	})
	return err
}

// SendMessage queues a message for the client
func (c *Connection) SendMessage(msg *Message) error {
	defer func() {
		if r := recover(); r != nil {
			// Send channel closed during shutdown.
			c.logger.Debug("Attempted to send on closed connection", "error", r)
		}
	}()

	select {
	case c.send <- msg:
		return nil
	case <-c.ctx.Done():
		return c.ctx.Err()
	default:
		c.logger.Warn("Connection send buffer full, closing connection")
		_ = c.Close()
		return ErrConnectionClosed
	}
}

// PlayerID returns the connection's player identifier
func (c *Connection) PlayerID() string {
	return c.playerID
}

// SetLobby associates this connection with a lobby
func (c *Connection) SetLobby(lobbyID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lobbyID = lobbyID
}

// Lobby returns the associated lobby id
func (c *Connection) Lobby() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lobbyID
}

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 8192
)

var ErrConnectionClosed = websocket.ErrCloseSent

// readPump handles incoming messages from the client
func (c *Connection) readPump() {
	defer func() { _ = c.Close() }()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		var msg Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket error", "error", err)
			}
			break
		}

		c.handleMessage(&msg)
	}
}

// writePump handles outgoing messages to the client
func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.Error("Failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}

// handleMessage routes one inbound message to the lobby service
func (c *Connection) handleMessage(msg *Message) {
	c.logger.Debug("Received message", "type", msg.Type)

	switch msg.Type {
	case MessageTypeCreateLobby:
		var data CreateLobbyData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse create lobby data")
			return
		}
		c.handleCreateLobby(data, msg.RequestID)

	case MessageTypeJoinLobby:
		var data JoinLobbyData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse join lobby data")
			return
		}
		c.handleJoinLobby(data, msg.RequestID)

	case MessageTypeLeaveLobby:
		c.handleLeaveLobby()

	case MessageTypeStartGame:
		if err := c.service.StartGame(c.playerID, c.Lobby()); err != nil {
			c.sendError("start_failed", err.Error())
		}

	case MessageTypePlayerAction:
		var data PlayerActionData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse player action data")
			return
		}
		if err := c.service.HandleAction(c.playerID, c.Lobby(), data); err != nil {
			c.sendError("action_rejected", err.Error())
		}

	default:
		c.sendError("unknown_message_type", "Unknown message type: "+msg.Type.String())
	}
}

func (c *Connection) handleCreateLobby(data CreateLobbyData, requestID string) {
	if c.Lobby() != "" {
		c.ack(MessageTypeLobbyCreated, LobbyCreatedData{Error: "already in a lobby"}, requestID)
		return
	}

	result := c.service.CreateLobby(c.playerID, data.Name, data.Settings)
	if result.OK {
		c.SetLobby(result.LobbyID)
	}
	c.ack(MessageTypeLobbyCreated, result, requestID)
}

func (c *Connection) handleJoinLobby(data JoinLobbyData, requestID string) {
	if c.Lobby() != "" {
		c.ack(MessageTypeLobbyJoined, LobbyJoinedData{Error: "already in a lobby"}, requestID)
		return
	}

	result := c.service.JoinLobby(c.playerID, data.LobbyID, data.Name)
	if result.OK {
		c.SetLobby(data.LobbyID)
	}
	c.ack(MessageTypeLobbyJoined, result, requestID)
}

func (c *Connection) handleLeaveLobby() {
	lobbyID := c.Lobby()
	if lobbyID == "" {
		return
	}
	c.SetLobby("")
	c.service.Leave(c.playerID, lobbyID)
}

// ack sends an acknowledgement echoing the request id
func (c *Connection) ack(mt MessageType, data interface{}, requestID string) {
	msg, err := NewMessage(mt, data)
	if err != nil {
		c.logger.Error("Failed to create ack message", "error", err)
		return
	}
	msg.RequestID = requestID
	_ = c.SendMessage(msg)
}

// sendError sends an error notification to this client only
func (c *Connection) sendError(code, message string) {
	errorMsg, err := NewMessage(MessageTypeError, ErrorData{
		Code:    code,
		Message: message,
	})
	if err != nil {
		c.logger.Error("Failed to create error message", "error", err)
		return
	}
	_ = c.SendMessage(errorMsg)
}
