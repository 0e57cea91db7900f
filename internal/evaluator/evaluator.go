// Package evaluator ranks poker hands. A rank is a category plus ordered
// tiebreaks, compared lexicographically; seven-card evaluation takes the
// best of the 21 five-card subsets.
package evaluator

import (
	"sort"

	"github.com/cardtable/holdem/internal/deck"
)

// Category is the standard poker hand class, higher is stronger
type Category int

const (
	HighCard Category = iota
	OnePair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
)

// String returns the human-readable category label used in reveals
func (c Category) String() string {
	switch c {
	case HighCard:
		return "High Card"
	case OnePair:
		return "One Pair"
	case TwoPair:
		return "Two Pair"
	case ThreeOfAKind:
		return "Three of a Kind"
	case Straight:
		return "Straight"
	case Flush:
		return "Flush"
	case FullHouse:
		return "Full House"
	case FourOfAKind:
		return "Four of a Kind"
	case StraightFlush:
		return "Straight Flush"
	default:
		return "Unknown"
	}
}

// HandRank is the strength of a five-card hand. Tiebreaks are ordered by
// significance for the category (e.g. two pair: high pair, low pair,
// kicker). Missing trailing tiebreaks compare lower than any real value.
type HandRank struct {
	Category  Category
	Tiebreaks []int
}

// Compare returns -1 if a is weaker than b, 0 if equal, 1 if stronger
func Compare(a, b HandRank) int {
	if a.Category != b.Category {
		if a.Category < b.Category {
			return -1
		}
		return 1
	}
	n := len(a.Tiebreaks)
	if len(b.Tiebreaks) > n {
		n = len(b.Tiebreaks)
	}
	for i := 0; i < n; i++ {
		av, bv := 0, 0
		if i < len(a.Tiebreaks) {
			av = a.Tiebreaks[i]
		}
		if i < len(b.Tiebreaks) {
			bv = b.Tiebreaks[i]
		}
		if av != bv {
			if av < bv {
				return -1
			}
			return 1
		}
	}
	return 0
}

// Evaluate5 ranks exactly five cards
func Evaluate5(cards []deck.Card) HandRank {
	values := make([]int, 5)
	flush := true
	for i, c := range cards {
		values[i] = c.Value()
		if c.Suit != cards[0].Suit {
			flush = false
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(values)))

	straightHigh := straightHighCard(values)

	if flush && straightHigh > 0 {
		return HandRank{StraightFlush, []int{straightHigh}}
	}

	// Group values by multiplicity: counts[value] = occurrences
	counts := map[int]int{}
	for _, v := range values {
		counts[v]++
	}

	// Distinct values sorted by count desc, then value desc, which yields
	// the tiebreak order for every paired category.
	distinct := make([]int, 0, len(counts))
	for v := range counts {
		distinct = append(distinct, v)
	}
	sort.Slice(distinct, func(i, j int) bool {
		if counts[distinct[i]] != counts[distinct[j]] {
			return counts[distinct[i]] > counts[distinct[j]]
		}
		return distinct[i] > distinct[j]
	})

	switch {
	case counts[distinct[0]] == 4:
		return HandRank{FourOfAKind, distinct}
	case counts[distinct[0]] == 3 && counts[distinct[1]] == 2:
		return HandRank{FullHouse, distinct}
	case flush:
		return HandRank{Flush, values}
	case straightHigh > 0:
		return HandRank{Straight, []int{straightHigh}}
	case counts[distinct[0]] == 3:
		return HandRank{ThreeOfAKind, distinct}
	case counts[distinct[0]] == 2 && counts[distinct[1]] == 2:
		return HandRank{TwoPair, distinct}
	case counts[distinct[0]] == 2:
		return HandRank{OnePair, distinct}
	default:
		return HandRank{HighCard, values}
	}
}

// straightHighCard returns the high card of a straight formed by the five
// descending values, or 0 when they do not form one. The wheel
// (A-5-4-3-2) counts as a 5-high straight.
func straightHighCard(desc []int) int {
	run := true
	for i := 1; i < 5; i++ {
		if desc[i] != desc[i-1]-1 {
			run = false
			break
		}
	}
	if run {
		return desc[0]
	}
	if desc[0] == 14 && desc[1] == 5 && desc[2] == 4 && desc[3] == 3 && desc[4] == 2 {
		return 5
	}
	return 0
}

// BestOfSeven returns the strongest five-card rank among all 21 subsets
// of the given seven cards (two hole cards plus the full board).
func BestOfSeven(cards []deck.Card) HandRank {
	if len(cards) <= 5 {
		return Evaluate5(cards)
	}
	best := HandRank{Category: -1}
	subset := make([]deck.Card, 0, 5)
	n := len(cards)
	for mask := 0; mask < 1<<n; mask++ {
		if bitsSet(mask) != 5 {
			continue
		}
		subset = subset[:0]
		for i := 0; i < n; i++ {
			if mask&(1<<i) != 0 {
				subset = append(subset, cards[i])
			}
		}
		rank := Evaluate5(subset)
		if best.Category < 0 || Compare(rank, best) > 0 {
			best = rank
		}
	}
	return best
}

func bitsSet(x int) int {
	n := 0
	for ; x != 0; x &= x - 1 {
		n++
	}
	return n
}
