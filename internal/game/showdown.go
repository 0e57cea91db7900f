package game

import (
	"github.com/cardtable/holdem/internal/deck"
	"github.com/cardtable/holdem/internal/evaluator"
)

// Winner is one recipient of the pot
type Winner struct {
	ID        string
	Name      string
	RankLabel string
	Rank      *evaluator.HandRank // nil when the pot was uncontested
}

// Result is the outcome of a resolved hand. It is produced once per hand
// and shared by every hand-ending trigger: fold-to-one, forced single
// survivor on disconnect, and full showdown.
type Result struct {
	Winners []Winner
	Pot     int
}

// ResolveHand determines the winners of the current hand. It does not
// move any chips; Payout does, after observers have seen the reveal.
func (l *Lobby) ResolveHand() Result {
	res := Result{Pot: l.Pot}

	var active []*Player
	for _, p := range l.Players {
		if !p.Folded {
			active = append(active, p)
		}
	}

	switch len(active) {
	case 0:
		// Should not happen; award the pot to the dealer seat rather
		// than stranding the lobby.
		if l.DealerIndex >= 0 && l.DealerIndex < len(l.Players) {
			d := l.Players[l.DealerIndex]
			res.Winners = append(res.Winners, Winner{
				ID:        d.ID,
				Name:      d.Name,
				RankLabel: "uncontested",
			})
		}
	case 1:
		res.Winners = append(res.Winners, Winner{
			ID:        active[0].ID,
			Name:      active[0].Name,
			RankLabel: "last remaining player",
		})
	default:
		var best evaluator.HandRank
		ranks := make([]evaluator.HandRank, len(active))
		for i, p := range active {
			cards := make([]deck.Card, 0, 7)
			cards = append(cards, p.Hand...)
			cards = append(cards, l.Community...)
			ranks[i] = evaluator.BestOfSeven(cards)
			if i == 0 || evaluator.Compare(ranks[i], best) > 0 {
				best = ranks[i]
			}
		}
		for i, p := range active {
			if evaluator.Compare(ranks[i], best) == 0 {
				rank := ranks[i]
				res.Winners = append(res.Winners, Winner{
					ID:        p.ID,
					Name:      p.Name,
					RankLabel: rank.Category.String(),
					Rank:      &rank,
				})
			}
		}
	}
	return res
}

// Payout disburses the pot to the winners and advances the round counter,
// reporting whether the game is over. The pot is zeroed the moment it is
// distributed, so a second call pays nothing.
//
// One undivided pot is split evenly among all winners regardless of the
// bet levels all-in players reached; the remainder goes to the first
// winner so no chips are lost. Multi-tier side pots are intentionally
// not computed.
func (l *Lobby) Payout(res Result) (gameOver bool) {
	if l.Pot > 0 && len(l.Players) > 0 {
		var paid []*Player
		for _, w := range res.Winners {
			if _, p := l.PlayerByID(w.ID); p != nil {
				paid = append(paid, p)
			}
		}
		if len(paid) == 0 {
			// Winners left during the reveal delay; the dealer seat
			// takes the orphaned pot.
			dealer := l.DealerIndex
			if dealer < 0 || dealer >= len(l.Players) {
				dealer = 0
			}
			paid = append(paid, l.Players[dealer])
		}
		share := l.Pot / len(paid)
		remainder := l.Pot % len(paid)
		for i, p := range paid {
			p.Chips += share
			if i == 0 {
				p.Chips += remainder
			}
		}
		l.Pot = 0
	}

	l.RoundNumber++

	withChips := 0
	for _, p := range l.Players {
		if p.Chips > 0 {
			withChips++
		}
	}
	rounds := l.Settings.Rounds
	if (rounds > 0 && l.RoundNumber >= rounds) || withChips <= 1 || len(l.Players) < 2 {
		l.Status = StatusFinished
		return true
	}
	return false
}
