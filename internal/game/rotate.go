package game

// Seat rotation arithmetic, kept pure so the wrap-around behaviour can be
// tested without a lobby.

// NextActiveSeat returns the first non-folded seat at or after start,
// wrapping around the table. Returns -1 when every seat has folded or the
// table is empty.
func NextActiveSeat(players []*Player, start int) int {
	n := len(players)
	if n == 0 {
		return -1
	}
	for i := 0; i < n; i++ {
		pos := ((start+i)%n + n) % n
		if !players[pos].Folded {
			return pos
		}
	}
	return -1
}

// RotateDealer advances the dealer button one seat, wrapping. A previous
// dealer below zero (no hand played yet) puts the button on seat 0.
func RotateDealer(players []*Player, previousDealer int) int {
	n := len(players)
	if n == 0 {
		return 0
	}
	if previousDealer < 0 {
		return 0
	}
	return (previousDealer + 1) % n
}
