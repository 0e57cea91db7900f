package server

import (
	"fmt"
	rand "math/rand/v2"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/cardtable/holdem/internal/game"
	"github.com/cardtable/holdem/internal/lobbyid"
	"github.com/cardtable/holdem/internal/randutil"
)

// DefaultRevealDelay is how long revealed cards stay on screen before
// the pot moves and the next hand begins.
const DefaultRevealDelay = 6 * time.Second

// Defensive bounds applied to client-supplied lobby settings
const (
	defaultStartChips = 1000
	maxStartChips     = 1_000_000
	defaultRounds     = 0
	maxRounds         = 1000
	defaultSmallBlind = 5
	defaultBigBlind   = 10
	maxBlind          = 100_000
)

// Sender delivers messages to connected clients. The WebSocket server
// implements it; tests substitute a recording fake.
type Sender interface {
	SendToPlayer(playerID string, msg *Message) error
	BroadcastToLobby(lobbyID string, msg *Message)
}

// LobbyService owns the store of live lobbies and drives the game engine
// from inbound client events. Each event is handled to completion under
// one lock, so lobby state transitions are strictly sequential and
// lobbies never observe each other.
type LobbyService struct {
	mu          sync.Mutex
	lobbies     map[string]*game.Lobby
	payouts     map[string]*quartz.Timer // pending payout tasks by lobby id
	sender      Sender
	ids         *lobbyid.Generator
	rng         *rand.Rand
	clock       quartz.Clock
	revealDelay time.Duration
	defaults    game.Settings
	logger      *log.Logger
}

// NewLobbyService creates a lobby service. The clock is injected so tests
// can drive the reveal delay with quartz's mock.
func NewLobbyService(sender Sender, logger *log.Logger, clock quartz.Clock, seed int64) *LobbyService {
	rng := randutil.New(seed)
	return &LobbyService{
		lobbies:     make(map[string]*game.Lobby),
		payouts:     make(map[string]*quartz.Timer),
		sender:      sender,
		ids:         lobbyid.NewGenerator(rng),
		rng:         rng,
		clock:       clock,
		revealDelay: DefaultRevealDelay,
		defaults: game.Settings{
			StartChips: defaultStartChips,
			Rounds:     defaultRounds,
			SmallBlind: defaultSmallBlind,
			BigBlind:   defaultBigBlind,
		},
		logger: logger.WithPrefix("lobby-service"),
	}
}

// SetRevealDelay overrides the pause between reveal and payout
func (s *LobbyService) SetRevealDelay(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revealDelay = d
}

// SetLobbyDefaults overrides the settings used for lobbies created
// without explicit values
func (s *LobbyService) SetLobbyDefaults(defaults game.Settings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.defaults = defaults
}

// CreateLobby allocates a fresh lobby with the creator as host and first
// player. Raw settings are clamped to defensive bounds.
func (s *LobbyService) CreateLobby(playerID, name string, raw LobbySettingsData) LobbyCreatedData {
	s.mu.Lock()
	defer s.mu.Unlock()

	if name == "" {
		return LobbyCreatedData{Error: "name required"}
	}

	settings := normalizeSettings(raw, s.defaults)
	id := s.ids.Generate()
	for s.lobbies[id] != nil {
		id = s.ids.Generate()
	}

	l := game.NewLobby(id, settings, randutil.New(s.rng.Int64()), playerID, name)
	s.lobbies[id] = l

	s.logger.Info("Lobby created", "lobby", id, "host", playerID,
		"startChips", settings.StartChips, "blinds", fmt.Sprintf("%d/%d", settings.SmallBlind, settings.BigBlind))

	return LobbyCreatedData{
		OK:      true,
		LobbyID: id,
		Me:      playerID,
		Lobby:   BuildLobbyView(l, playerID),
	}
}

// JoinLobby seats a player in an existing lobby. Full, started and
// unknown lobbies are rejected.
func (s *LobbyService) JoinLobby(playerID, lobbyID, name string) LobbyJoinedData {
	s.mu.Lock()
	defer s.mu.Unlock()

	if name == "" {
		return LobbyJoinedData{Error: "name required"}
	}
	l := s.lobbies[lobbyID]
	if l == nil {
		return LobbyJoinedData{Error: "lobby not found"}
	}
	if err := l.AddPlayer(playerID, name); err != nil {
		return LobbyJoinedData{Error: err.Error()}
	}

	s.logger.Info("Player joined lobby", "lobby", lobbyID, "player", playerID, "seats", len(l.Players))
	s.broadcastLobbyUpdate(l)

	return LobbyJoinedData{
		OK:    true,
		Me:    playerID,
		Lobby: BuildLobbyView(l, playerID),
	}
}

// Leave removes a player from their lobby: host transfer, seat index
// renormalisation, lobby destruction on last leave, and immediate hand
// resolution when a live hand is left with one contender.
func (s *LobbyService) Leave(playerID, lobbyID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l := s.lobbies[lobbyID]
	if l == nil {
		return
	}
	if seat, _ := l.PlayerByID(playerID); seat < 0 {
		return
	}

	needsResolve := l.RemovePlayer(playerID)
	s.logger.Info("Player left lobby", "lobby", lobbyID, "player", playerID, "remaining", len(l.Players))

	if len(l.Players) == 0 {
		s.destroyLobbyLocked(lobbyID)
		return
	}

	if needsResolve && s.payouts[lobbyID] == nil {
		s.beginShowdownLocked(l)
		return
	}

	s.broadcastLobbyUpdate(l)
	if l.Status == game.StatusPlaying {
		s.broadcastGameUpdate(l)
	}
}

// StartGame begins play; only the host may trigger it
func (s *LobbyService) StartGame(playerID, lobbyID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	l := s.lobbies[lobbyID]
	if l == nil {
		return fmt.Errorf("lobby not found")
	}
	if l.HostID != playerID {
		return fmt.Errorf("only the host can start the game")
	}
	if err := l.StartGame(); err != nil {
		return err
	}

	s.logger.Info("Game started", "lobby", lobbyID, "players", len(l.Players))
	s.broadcastLobbyUpdate(l)
	s.broadcastGameUpdate(l)
	s.checkShowdownLocked(l)
	return nil
}

// HandleAction applies one player action. Rejections surface as errors
// for the caller to report to the single originating actor.
func (s *LobbyService) HandleAction(playerID, lobbyID string, data PlayerActionData) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	l := s.lobbies[lobbyID]
	if l == nil {
		return fmt.Errorf("lobby not found")
	}
	action := game.Action{Type: game.ActionType(data.Action), Amount: data.Amount}
	if err := l.ApplyAction(playerID, action); err != nil {
		return err
	}

	s.broadcastGameUpdate(l)
	s.checkShowdownLocked(l)
	return nil
}

// Lobby returns a lobby by id, for inspection in tests
func (s *LobbyService) Lobby(lobbyID string) *game.Lobby {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lobbies[lobbyID]
}

// checkShowdownLocked starts the reveal/payout sequence when the engine
// has reached showdown and no payout is already pending.
func (s *LobbyService) checkShowdownLocked(l *game.Lobby) {
	if l.Status == game.StatusPlaying && l.Phase == game.Showdown && s.payouts[l.ID] == nil {
		s.beginShowdownLocked(l)
	}
}

// beginShowdownLocked resolves the hand, reveals every hand to the room,
// and schedules the payout. Reveal strictly precedes any chip movement;
// the delay is a presentation accommodation.
func (s *LobbyService) beginShowdownLocked(l *game.Lobby) {
	res := l.ResolveHand()

	s.logger.Info("Hand resolved", "lobby", l.ID, "pot", res.Pot, "winners", len(res.Winners))
	s.broadcast(l.ID, MessageTypeReveal, BuildRevealData(l, res))

	lobbyID := l.ID
	s.payouts[lobbyID] = s.clock.AfterFunc(s.revealDelay, func() {
		s.completePayout(lobbyID, res)
	})
}

// completePayout runs when the reveal delay elapses. The lobby may have
// been destroyed in the meantime; the task then no-ops.
func (s *LobbyService) completePayout(lobbyID string, res game.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.payouts, lobbyID)
	l := s.lobbies[lobbyID]
	if l == nil {
		return
	}

	gameOver := l.Payout(res)
	if gameOver {
		s.logger.Info("Game over", "lobby", lobbyID, "rounds", l.RoundNumber)
		s.broadcast(lobbyID, MessageTypeGameOver, BuildLobbyView(l, ""))
		s.broadcastLobbyUpdate(l)
		return
	}

	l.StartHand()
	s.broadcastGameUpdate(l)
	s.checkShowdownLocked(l)
}

// destroyLobbyLocked removes a lobby and cancels any pending payout so
// the deferred task cannot fire against deleted state.
func (s *LobbyService) destroyLobbyLocked(lobbyID string) {
	if timer := s.payouts[lobbyID]; timer != nil {
		timer.Stop()
		delete(s.payouts, lobbyID)
	}
	delete(s.lobbies, lobbyID)
	s.logger.Info("Lobby destroyed", "lobby", lobbyID)
}

// broadcastLobbyUpdate sends the hands-hidden view to the whole room
func (s *LobbyService) broadcastLobbyUpdate(l *game.Lobby) {
	s.broadcast(l.ID, MessageTypeLobbyUpdate, BuildLobbyView(l, ""))
}

// broadcastGameUpdate sends each seat its own view, revealing only that
// viewer's hole cards.
func (s *LobbyService) broadcastGameUpdate(l *game.Lobby) {
	for _, p := range l.Players {
		msg, err := NewMessage(MessageTypeGameUpdate, BuildLobbyView(l, p.ID))
		if err != nil {
			s.logger.Error("Failed to build game update", "error", err, "lobby", l.ID)
			return
		}
		if err := s.sender.SendToPlayer(p.ID, msg); err != nil {
			s.logger.Debug("Could not deliver game update", "player", p.ID, "error", err)
		}
	}
}

func (s *LobbyService) broadcast(lobbyID string, mt MessageType, data interface{}) {
	msg, err := NewMessage(mt, data)
	if err != nil {
		s.logger.Error("Failed to build broadcast message", "error", err, "type", mt)
		return
	}
	s.sender.BroadcastToLobby(lobbyID, msg)
}

// normalizeSettings clamps raw client input to defensive ranges,
// substituting the configured defaults for anything non-numeric.
func normalizeSettings(raw LobbySettingsData, defaults game.Settings) game.Settings {
	return game.Settings{
		StartChips: clampNumber(raw.StartChips, 1, maxStartChips, defaults.StartChips),
		Rounds:     clampNumber(raw.Rounds, 0, maxRounds, defaults.Rounds),
		SmallBlind: clampNumber(raw.SmallBlind, 0, maxBlind, defaults.SmallBlind),
		BigBlind:   clampNumber(raw.BigBlind, 0, maxBlind, defaults.BigBlind),
	}
}

func clampNumber(v any, lo, hi, def int) int {
	var n int
	switch x := v.(type) {
	case float64: // encoding/json decodes numbers into float64
		n = int(x)
	case int:
		n = x
	default:
		return def
	}
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
