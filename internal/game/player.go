package game

import "github.com/cardtable/holdem/internal/deck"

// Player is a seat within a lobby. Chips are mutated only by blind
// deduction, wagering and payout.
type Player struct {
	ID       string
	Name     string
	IsHost   bool
	Chips    int
	Folded   bool
	Bet      int // chips committed in the current betting round
	HasActed bool
	Hand     []deck.Card
}

// AllIn reports whether the player has no chips left to act with
func (p *Player) AllIn() bool {
	return p.Chips == 0
}
