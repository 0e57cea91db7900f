package server

import (
	"github.com/cardtable/holdem/internal/deck"
	"github.com/cardtable/holdem/internal/game"
)

// HiddenCard is the length-preserving placeholder sent in place of
// another player's hole card, so clients can tell a hand exists without
// seeing it.
const HiddenCard = "??"

type SettingsView struct {
	StartChips int `json:"startChips"`
	Rounds     int `json:"rounds"`
	SmallBlind int `json:"smallBlind"`
	BigBlind   int `json:"bigBlind"`
}

type PlayerView struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	IsHost bool     `json:"isHost"`
	Chips  int      `json:"chips"`
	Folded bool     `json:"folded"`
	Bet    int      `json:"bet"`
	Hand   []string `json:"hand"`
}

// LobbyView is the public state broadcast to clients. Hole cards other
// than the viewer's own are replaced by hidden markers.
type LobbyView struct {
	ID                 string       `json:"id"`
	HostID             string       `json:"hostId"`
	Status             string       `json:"status"`
	Settings           SettingsView `json:"settings"`
	Players            []PlayerView `json:"players"`
	RoundNumber        int          `json:"roundNumber"`
	DealerIndex        int          `json:"dealerIndex"`
	SmallBlindIndex    int          `json:"smallBlindIndex"`
	BigBlindIndex      int          `json:"bigBlindIndex"`
	CurrentPlayerIndex int          `json:"currentPlayerIndex"`
	Community          []string     `json:"community"`
	Pot                int          `json:"pot"`
	CurrentBet         int          `json:"currentBet"`
	Phase              string       `json:"phase"`
}

type RevealPlayer struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Chips  int      `json:"chips"`
	Folded bool     `json:"folded"`
	Hand   []string `json:"hand"`
}

type RevealWinner struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	RankLabel string `json:"rankLabel"`
}

// RevealData shows everyone's real hole cards once per showdown, sent
// before any chips move.
type RevealData struct {
	Players   []RevealPlayer `json:"players"`
	Community []string       `json:"community"`
	Pot       int            `json:"pot"`
	Winners   []RevealWinner `json:"winners"`
}

// BuildLobbyView renders a lobby for one viewer. An empty viewerID hides
// every hand, which is the form used for room-wide lobby updates.
func BuildLobbyView(l *game.Lobby, viewerID string) *LobbyView {
	view := &LobbyView{
		ID:     l.ID,
		HostID: l.HostID,
		Status: string(l.Status),
		Settings: SettingsView{
			StartChips: l.Settings.StartChips,
			Rounds:     l.Settings.Rounds,
			SmallBlind: l.Settings.SmallBlind,
			BigBlind:   l.Settings.BigBlind,
		},
		RoundNumber:        l.RoundNumber,
		DealerIndex:        l.DealerIndex,
		SmallBlindIndex:    l.SmallBlindIndex,
		BigBlindIndex:      l.BigBlindIndex,
		CurrentPlayerIndex: l.CurrentPlayerIndex,
		Community:          cardStrings(l.Community),
		Pot:                l.Pot,
		CurrentBet:         l.CurrentBet,
		Phase:              l.Phase.String(),
	}
	for _, p := range l.Players {
		pv := PlayerView{
			ID:     p.ID,
			Name:   p.Name,
			IsHost: p.IsHost,
			Chips:  p.Chips,
			Folded: p.Folded,
			Bet:    p.Bet,
		}
		if p.ID == viewerID {
			pv.Hand = cardStrings(p.Hand)
		} else {
			pv.Hand = hiddenCards(len(p.Hand))
		}
		view.Players = append(view.Players, pv)
	}
	return view
}

// BuildRevealData renders the showdown reveal from a resolved hand
func BuildRevealData(l *game.Lobby, res game.Result) *RevealData {
	data := &RevealData{
		Community: cardStrings(l.Community),
		Pot:       res.Pot,
	}
	for _, p := range l.Players {
		data.Players = append(data.Players, RevealPlayer{
			ID:     p.ID,
			Name:   p.Name,
			Chips:  p.Chips,
			Folded: p.Folded,
			Hand:   cardStrings(p.Hand),
		})
	}
	for _, w := range res.Winners {
		data.Winners = append(data.Winners, RevealWinner{
			ID:        w.ID,
			Name:      w.Name,
			RankLabel: w.RankLabel,
		})
	}
	return data
}

func cardStrings(cards []deck.Card) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.String()
	}
	return out
}

func hiddenCards(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = HiddenCard
	}
	return out
}
