package game

import (
	"fmt"
	rand "math/rand/v2"

	"github.com/cardtable/holdem/internal/deck"
)

// MaxSeats is the table capacity
const MaxSeats = 4

// Lobby is one table instance: its seats, settings and the mutable state
// of the hand in progress. All mutation happens through the engine; seat
// order defines dealer rotation and turn order.
type Lobby struct {
	ID       string
	HostID   string
	Status   Status
	Settings Settings
	Players  []*Player

	RoundNumber        int
	DealerIndex        int
	SmallBlindIndex    int
	BigBlindIndex      int
	CurrentPlayerIndex int

	Deck       *deck.Deck
	Community  []deck.Card
	Pot        int
	CurrentBet int
	Phase      Phase

	rng *rand.Rand
}

// NewLobby creates a lobby with the creator seated as host
func NewLobby(id string, settings Settings, rng *rand.Rand, hostID, hostName string) *Lobby {
	l := &Lobby{
		ID:          id,
		HostID:      hostID,
		Status:      StatusLobby,
		Settings:    settings,
		DealerIndex: -1,
		rng:         rng,
	}
	l.Players = append(l.Players, &Player{
		ID:     hostID,
		Name:   hostName,
		IsHost: true,
		Chips:  settings.StartChips,
	})
	return l
}

// AddPlayer seats a new player. Joins are only accepted while the lobby
// has not started and a seat remains.
func (l *Lobby) AddPlayer(id, name string) error {
	if l.Status != StatusLobby {
		return fmt.Errorf("game already started")
	}
	if len(l.Players) >= MaxSeats {
		return fmt.Errorf("lobby is full")
	}
	l.Players = append(l.Players, &Player{
		ID:    id,
		Name:  name,
		Chips: l.Settings.StartChips,
	})
	return nil
}

// PlayerByID returns the seat index and player for an id, or -1 and nil
func (l *Lobby) PlayerByID(id string) (int, *Player) {
	for i, p := range l.Players {
		if p.ID == id {
			return i, p
		}
	}
	return -1, nil
}

// RemovePlayer splices a seat out of the lobby, transferring host to the
// new first seat when needed and renormalising every seat index against
// the new seat count. It reports whether a hand in progress was driven to
// showdown by the removal, either because at most one non-folded player
// remains or because the leaver was the last seat holding up a completed
// betting round and the runout reached showdown.
func (l *Lobby) RemovePlayer(id string) (needsResolve bool) {
	seat, _ := l.PlayerByID(id)
	if seat < 0 {
		return false
	}
	wasHost := l.Players[seat].IsHost
	l.Players = append(l.Players[:seat], l.Players[seat+1:]...)

	if len(l.Players) == 0 {
		return false
	}

	if wasHost {
		l.Players[0].IsHost = true
		l.HostID = l.Players[0].ID
	}

	n := len(l.Players)
	l.DealerIndex = clampSeat(l.DealerIndex, seat, n)
	l.SmallBlindIndex = clampSeat(l.SmallBlindIndex, seat, n)
	l.BigBlindIndex = clampSeat(l.BigBlindIndex, seat, n)
	l.CurrentPlayerIndex = clampSeat(l.CurrentPlayerIndex, seat, n)

	if l.Status == StatusPlaying && l.Phase != Showdown {
		if l.activeCount() <= 1 {
			l.Phase = Showdown
			return true
		}
		// The leaver may have been the only seat the betting round was
		// still waiting on; advance the street, running the board out
		// when every remaining player is all-in.
		for l.Phase != Showdown && l.bettingRoundComplete() {
			l.advancePhase()
		}
		if l.Phase == Showdown {
			return true
		}
		// Keep the turn off seats that cannot act.
		if l.CurrentPlayerIndex >= 0 {
			if p := l.Players[l.CurrentPlayerIndex]; p.Folded || p.Chips == 0 {
				l.CurrentPlayerIndex = l.nextActorSeat(l.CurrentPlayerIndex)
			}
		}
	}
	return false
}

// clampSeat adjusts an index after the seat at removed was spliced out
func clampSeat(idx, removed, n int) int {
	if idx < 0 {
		return idx
	}
	if idx > removed {
		idx--
	}
	if n == 0 {
		return 0
	}
	return idx % n
}

// StartGame begins play: only meaningful from the lobby (or a finished)
// state. Busted players are topped back up to the starting stack.
func (l *Lobby) StartGame() error {
	if len(l.Players) < 2 {
		return fmt.Errorf("need at least 2 players")
	}
	if l.Status == StatusPlaying {
		return fmt.Errorf("game already in progress")
	}
	l.RoundNumber = 0
	l.DealerIndex = -1
	for _, p := range l.Players {
		if p.Chips <= 0 {
			p.Chips = l.Settings.StartChips
		}
	}
	l.Status = StatusPlaying
	l.StartHand()
	return nil
}

// activeCount is the number of non-folded seats
func (l *Lobby) activeCount() int {
	n := 0
	for _, p := range l.Players {
		if !p.Folded {
			n++
		}
	}
	return n
}

// TotalChips sums every stack plus the pot; conserved by all mutations
// between chip issuance and the end of the game.
func (l *Lobby) TotalChips() int {
	total := l.Pot
	for _, p := range l.Players {
		total += p.Chips
	}
	return total
}
