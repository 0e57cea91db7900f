package game

import (
	"fmt"

	"github.com/cardtable/holdem/internal/deck"
)

// StartHand deals a fresh hand: new shuffled deck, cleared table state,
// rotated button, blinds posted and first action assigned.
func (l *Lobby) StartHand() {
	l.Deck = deck.NewShuffled(l.rng)
	l.Community = nil
	l.Pot = 0
	l.CurrentBet = 0
	l.Phase = Preflop

	for _, p := range l.Players {
		p.Folded = false
		p.Bet = 0
		p.HasActed = false
		p.Hand = l.Deck.DealN(2)
	}

	n := len(l.Players)
	l.DealerIndex = RotateDealer(l.Players, l.DealerIndex)
	l.SmallBlindIndex = (l.DealerIndex + 1) % n
	l.BigBlindIndex = (l.DealerIndex + 2) % n

	l.postBlind(l.SmallBlindIndex, l.Settings.SmallBlind)
	l.postBlind(l.BigBlindIndex, l.Settings.BigBlind)
	if l.Settings.BigBlind > 0 {
		l.CurrentBet = l.Settings.BigBlind
	} else {
		l.CurrentBet = 0
	}

	l.CurrentPlayerIndex = l.nextActorSeat(l.BigBlindIndex + 1)

	// Blinds can put everyone all-in; run the board out if nobody can act.
	for l.Phase != Showdown && l.bettingRoundComplete() {
		l.advancePhase()
	}
}

// postBlind moves a forced bet into the pot, capped at the payer's stack.
// A short stack posts a partial all-in blind, never going negative.
func (l *Lobby) postBlind(seat, blind int) {
	p := l.Players[seat]
	amt := blind
	if amt > p.Chips {
		amt = p.Chips
	}
	if amt < 0 {
		amt = 0
	}
	l.wager(p, amt)
}

// wager commits chips from a player's stack into the pot
func (l *Lobby) wager(p *Player, amount int) {
	p.Chips -= amount
	p.Bet += amount
	l.Pot += amount
}

// ApplyAction validates and applies one action from the given player.
// Rejected actions return an error and mutate nothing.
func (l *Lobby) ApplyAction(playerID string, a Action) error {
	if l.Status != StatusPlaying || l.Phase == Showdown {
		return fmt.Errorf("no hand in progress")
	}
	seat, p := l.PlayerByID(playerID)
	if seat < 0 {
		return fmt.Errorf("player not in lobby")
	}
	if seat != l.CurrentPlayerIndex {
		return fmt.Errorf("not your turn")
	}

	switch a.Type {
	case ActionFold:
		p.Folded = true
		p.HasActed = true
		if l.activeCount() <= 1 {
			// Everyone else is out; skip straight to resolution.
			l.Phase = Showdown
			return nil
		}

	case ActionCheck:
		if p.Bet != l.CurrentBet {
			return fmt.Errorf("cannot check, %d to call", l.CurrentBet-p.Bet)
		}
		p.HasActed = true

	case ActionCall:
		owed := l.CurrentBet - p.Bet
		if owed > p.Chips {
			owed = p.Chips // partial all-in call
		}
		if owed < 0 {
			owed = 0
		}
		l.wager(p, owed)
		p.HasActed = true

	case ActionBet:
		if a.Amount <= 0 {
			return fmt.Errorf("bet requires a positive amount")
		}
		minAmount := l.Settings.BigBlind
		if l.CurrentBet > 0 {
			minAmount = l.CurrentBet - p.Bet
		}
		if a.Amount < minAmount {
			return fmt.Errorf("bet too small, minimum %d", minAmount)
		}
		amount := a.Amount
		if amount > p.Chips {
			amount = p.Chips // all-in
		}
		l.wager(p, amount)
		if p.Bet > l.CurrentBet {
			// A raise reopens the action for everyone else.
			l.CurrentBet = p.Bet
			for _, other := range l.Players {
				if other != p && !other.Folded {
					other.HasActed = false
				}
			}
		}
		p.HasActed = true

	default:
		return fmt.Errorf("unknown action %q", a.Type)
	}

	l.advanceTurn()
	return nil
}

// advanceTurn moves play to the next seat, or on to the next phase when
// the betting round has completed.
func (l *Lobby) advanceTurn() {
	if !l.bettingRoundComplete() {
		l.CurrentPlayerIndex = l.nextActorSeat(l.CurrentPlayerIndex + 1)
		return
	}
	for l.Phase != Showdown && l.bettingRoundComplete() {
		l.advancePhase()
	}
}

// bettingRoundComplete reports whether every non-folded player is either
// all-in or has matched the current bet after acting. A single remaining
// player trivially completes the round.
func (l *Lobby) bettingRoundComplete() bool {
	if l.activeCount() <= 1 {
		return true
	}
	for _, p := range l.Players {
		if p.Folded || p.Chips == 0 {
			continue
		}
		if p.Bet != l.CurrentBet || !p.HasActed {
			return false
		}
	}
	return true
}

// advancePhase resets the betting round, deals the community cards for
// the next phase and hands first action to the seat after the button.
// Completing the river goes to showdown without dealing.
func (l *Lobby) advancePhase() {
	for _, p := range l.Players {
		p.Bet = 0
		p.HasActed = false
	}
	l.CurrentBet = 0

	switch l.Phase {
	case Preflop:
		l.Phase = Flop
		l.Community = append(l.Community, l.Deck.DealN(3)...)
	case Flop:
		l.Phase = Turn
		l.Community = append(l.Community, l.Deck.DealN(1)...)
	case Turn:
		l.Phase = River
		l.Community = append(l.Community, l.Deck.DealN(1)...)
	case River:
		l.Phase = Showdown
		return
	case Showdown:
		return
	}

	l.CurrentPlayerIndex = l.nextActorSeat(l.DealerIndex + 1)
}

// nextActorSeat finds the next non-folded seat that still has chips to
// act with, falling back to any non-folded seat when the rest of the
// table is all-in.
func (l *Lobby) nextActorSeat(start int) int {
	n := len(l.Players)
	for i := 0; i < n; i++ {
		pos := ((start+i)%n + n) % n
		p := l.Players[pos]
		if !p.Folded && p.Chips > 0 {
			return pos
		}
	}
	return NextActiveSeat(l.Players, start)
}
