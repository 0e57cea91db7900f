package game

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardtable/holdem/internal/randutil"
)

func newTestLobby(t *testing.T, settings Settings, names ...string) *Lobby {
	t.Helper()
	l := NewLobby("abc234", settings, randutil.New(1), "p1", names[0])
	for i, name := range names[1:] {
		require.NoError(t, l.AddPlayer(fmt.Sprintf("p%d", i+2), name))
	}
	return l
}

func defaultSettings() Settings {
	return Settings{StartChips: 1000, Rounds: 0, SmallBlind: 5, BigBlind: 10}
}

// currentID returns the id of the player whose turn it is
func currentID(l *Lobby) string {
	return l.Players[l.CurrentPlayerIndex].ID
}

// playToShowdown checks or calls every turn until the hand resolves
func playToShowdown(t *testing.T, l *Lobby) {
	t.Helper()
	for i := 0; l.Phase != Showdown; i++ {
		require.Less(t, i, 100, "hand did not finish")
		p := l.Players[l.CurrentPlayerIndex]
		action := Action{Type: ActionCheck}
		if p.Bet != l.CurrentBet {
			action = Action{Type: ActionCall}
		}
		require.NoError(t, l.ApplyAction(p.ID, action))
	}
}

func TestStartHandDealsAndPostsBlinds(t *testing.T) {
	l := newTestLobby(t, defaultSettings(), "Alice", "Bob", "Carol")
	require.NoError(t, l.StartGame())

	assert.Equal(t, StatusPlaying, l.Status)
	assert.Equal(t, Preflop, l.Phase)
	assert.Equal(t, 0, l.DealerIndex)
	assert.Equal(t, 1, l.SmallBlindIndex)
	assert.Equal(t, 2, l.BigBlindIndex)

	assert.Equal(t, 1000, l.Players[0].Chips)
	assert.Equal(t, 995, l.Players[1].Chips)
	assert.Equal(t, 990, l.Players[2].Chips)
	assert.Equal(t, 15, l.Pot)
	assert.Equal(t, 10, l.CurrentBet)

	// First to act is the seat after the big blind.
	assert.Equal(t, 0, l.CurrentPlayerIndex)

	for _, p := range l.Players {
		assert.Len(t, p.Hand, 2)
		assert.False(t, p.Folded)
		assert.False(t, p.HasActed)
	}
	assert.Empty(t, l.Community)
	assert.Equal(t, 46, l.Deck.Remaining())
}

func TestHeadsUpBlindAssignment(t *testing.T) {
	l := newTestLobby(t, defaultSettings(), "Alice", "Bob")
	require.NoError(t, l.StartGame())

	// Dealer seat 0 posts the big blind heads-up; seat 1 the small blind.
	assert.Equal(t, 0, l.DealerIndex)
	assert.Equal(t, 1, l.SmallBlindIndex)
	assert.Equal(t, 0, l.BigBlindIndex)
	assert.Equal(t, 995, l.Players[1].Chips)
	assert.Equal(t, 990, l.Players[0].Chips)
	assert.Equal(t, 1, l.CurrentPlayerIndex)
}

func TestShortStackPostsPartialBlind(t *testing.T) {
	l := newTestLobby(t, defaultSettings(), "Alice", "Bob")
	l.Players[1].Chips = 3
	require.NoError(t, l.StartGame())

	assert.Equal(t, 0, l.Players[1].Chips)
	assert.Equal(t, 3, l.Players[1].Bet)
	assert.Equal(t, 13, l.Pot)
	assert.Equal(t, 10, l.CurrentBet)
}

func TestWrongTurnRejected(t *testing.T) {
	l := newTestLobby(t, defaultSettings(), "Alice", "Bob", "Carol")
	require.NoError(t, l.StartGame())

	pot, chips := l.Pot, l.Players[1].Chips
	err := l.ApplyAction("p2", Action{Type: ActionCall})
	require.Error(t, err)
	assert.Equal(t, pot, l.Pot)
	assert.Equal(t, chips, l.Players[1].Chips)
	assert.Equal(t, 0, l.CurrentPlayerIndex)
}

func TestCheckRequiresMatchedBet(t *testing.T) {
	l := newTestLobby(t, defaultSettings(), "Alice", "Bob", "Carol")
	require.NoError(t, l.StartGame())

	err := l.ApplyAction("p1", Action{Type: ActionCheck})
	require.Error(t, err)
	assert.False(t, l.Players[0].HasActed)
}

func TestCallPaysAmountOwed(t *testing.T) {
	l := newTestLobby(t, defaultSettings(), "Alice", "Bob", "Carol")
	require.NoError(t, l.StartGame())

	require.NoError(t, l.ApplyAction("p1", Action{Type: ActionCall}))
	assert.Equal(t, 990, l.Players[0].Chips)
	assert.Equal(t, 10, l.Players[0].Bet)
	assert.Equal(t, 25, l.Pot)
	assert.Equal(t, 1, l.CurrentPlayerIndex)
}

func TestPartialAllInCallAllowed(t *testing.T) {
	l := newTestLobby(t, defaultSettings(), "Alice", "Bob", "Carol")
	require.NoError(t, l.StartGame())

	l.Players[0].Chips = 4
	require.NoError(t, l.ApplyAction("p1", Action{Type: ActionCall}))
	assert.Equal(t, 0, l.Players[0].Chips)
	assert.Equal(t, 4, l.Players[0].Bet)
	assert.Equal(t, 19, l.Pot)
}

func TestBetRequiresPositiveAmount(t *testing.T) {
	l := newTestLobby(t, defaultSettings(), "Alice", "Bob", "Carol")
	require.NoError(t, l.StartGame())

	require.Error(t, l.ApplyAction("p1", Action{Type: ActionBet}))
	require.Error(t, l.ApplyAction("p1", Action{Type: ActionBet, Amount: -5}))
}

func TestBetBelowCallAmountRejected(t *testing.T) {
	l := newTestLobby(t, defaultSettings(), "Alice", "Bob", "Carol")
	require.NoError(t, l.StartGame())

	// 10 owed to call; a smaller bet is not allowed.
	err := l.ApplyAction("p1", Action{Type: ActionBet, Amount: 5})
	require.Error(t, err)
	assert.Equal(t, 15, l.Pot)
}

func TestOpenBelowBigBlindRejected(t *testing.T) {
	l := newTestLobby(t, defaultSettings(), "Alice", "Bob")
	require.NoError(t, l.StartGame())

	// Play to the flop, where the betting reopens at zero.
	require.NoError(t, l.ApplyAction("p2", Action{Type: ActionCall}))
	require.NoError(t, l.ApplyAction("p1", Action{Type: ActionCheck}))
	require.Equal(t, Flop, l.Phase)
	require.Equal(t, 0, l.CurrentBet)

	err := l.ApplyAction(currentID(l), Action{Type: ActionBet, Amount: 5})
	require.Error(t, err)

	require.NoError(t, l.ApplyAction(currentID(l), Action{Type: ActionBet, Amount: 10}))
	assert.Equal(t, 10, l.CurrentBet)
}

func TestRaiseReopensAction(t *testing.T) {
	l := newTestLobby(t, defaultSettings(), "Alice", "Bob", "Carol")
	require.NoError(t, l.StartGame())

	require.NoError(t, l.ApplyAction("p1", Action{Type: ActionCall}))
	require.NoError(t, l.ApplyAction("p2", Action{Type: ActionCall}))
	require.True(t, l.Players[0].HasActed)
	require.True(t, l.Players[1].HasActed)

	// Big blind raises by 20 on top of the posted 10.
	require.NoError(t, l.ApplyAction("p3", Action{Type: ActionBet, Amount: 20}))
	assert.Equal(t, 30, l.CurrentBet)
	assert.Equal(t, 30, l.Players[2].Bet)
	assert.True(t, l.Players[2].HasActed)
	assert.False(t, l.Players[0].HasActed, "raise must reopen action")
	assert.False(t, l.Players[1].HasActed, "raise must reopen action")
	assert.Equal(t, Preflop, l.Phase)
}

func TestBetCappedAtStack(t *testing.T) {
	l := newTestLobby(t, defaultSettings(), "Alice", "Bob", "Carol")
	require.NoError(t, l.StartGame())

	require.NoError(t, l.ApplyAction("p1", Action{Type: ActionBet, Amount: 5000}))
	assert.Equal(t, 0, l.Players[0].Chips)
	assert.Equal(t, 1000, l.Players[0].Bet)
	assert.Equal(t, 1000, l.CurrentBet)
	assert.Equal(t, 1015, l.Pot)
}

func TestFoldToOneShortCircuitsToShowdown(t *testing.T) {
	l := newTestLobby(t, defaultSettings(), "Alice", "Bob")
	require.NoError(t, l.StartGame())

	require.NoError(t, l.ApplyAction("p2", Action{Type: ActionFold}))
	assert.Equal(t, Showdown, l.Phase)
	assert.Empty(t, l.Community, "no further cards dealt after a fold-out")
}

func TestUnknownActionRejected(t *testing.T) {
	l := newTestLobby(t, defaultSettings(), "Alice", "Bob")
	require.NoError(t, l.StartGame())

	err := l.ApplyAction(currentID(l), Action{Type: "steal"})
	require.Error(t, err)
}

func TestActionAfterShowdownRejected(t *testing.T) {
	l := newTestLobby(t, defaultSettings(), "Alice", "Bob")
	require.NoError(t, l.StartGame())
	playToShowdown(t, l)

	err := l.ApplyAction("p1", Action{Type: ActionCheck})
	require.Error(t, err)
}

func TestPhaseProgressionAndCommunityCounts(t *testing.T) {
	l := newTestLobby(t, defaultSettings(), "Alice", "Bob")
	require.NoError(t, l.StartGame())

	wantCommunity := map[Phase]int{Preflop: 0, Flop: 3, Turn: 4, River: 5, Showdown: 5}
	lastPhase := l.Phase
	for i := 0; l.Phase != Showdown; i++ {
		require.Less(t, i, 100)
		require.GreaterOrEqual(t, l.Phase, lastPhase, "phase must never regress")
		require.Len(t, l.Community, wantCommunity[l.Phase])
		lastPhase = l.Phase

		p := l.Players[l.CurrentPlayerIndex]
		action := Action{Type: ActionCheck}
		if p.Bet != l.CurrentBet {
			action = Action{Type: ActionCall}
		}
		require.NoError(t, l.ApplyAction(p.ID, action))
	}
	assert.Len(t, l.Community, 5)
}

func TestChipConservationThroughHand(t *testing.T) {
	l := newTestLobby(t, defaultSettings(), "Alice", "Bob", "Carol")
	require.NoError(t, l.StartGame())
	total := 3 * 1000
	require.Equal(t, total, l.TotalChips())

	actions := []struct {
		player string
		action Action
	}{
		{"p1", Action{Type: ActionCall}},
		{"p2", Action{Type: ActionBet, Amount: 25}}, // raise to 30
		{"p3", Action{Type: ActionCall}},
		{"p1", Action{Type: ActionCall}},
	}
	for _, step := range actions {
		require.NoError(t, l.ApplyAction(step.player, step.action))
		assert.Equal(t, total, l.TotalChips())
	}
	require.Equal(t, Flop, l.Phase)

	playToShowdown(t, l)
	assert.Equal(t, total, l.TotalChips())

	res := l.ResolveHand()
	l.Payout(res)
	assert.Equal(t, total, l.TotalChips())
	assert.Equal(t, 0, l.Pot)
}

func TestBlindsAllInRunsBoardOut(t *testing.T) {
	l := newTestLobby(t, defaultSettings(), "Alice", "Bob")
	l.Players[0].Chips = 10
	l.Players[1].Chips = 5
	require.NoError(t, l.StartGame())

	// Both blinds put both players all-in; the board runs out unprompted.
	assert.Equal(t, Showdown, l.Phase)
	assert.Len(t, l.Community, 5)
	assert.Equal(t, 15, l.Pot)
}

func TestEndToEndHeadsUpSingleRound(t *testing.T) {
	l := newTestLobby(t, Settings{StartChips: 1000, Rounds: 1, SmallBlind: 5, BigBlind: 10}, "Alice", "Bob")
	require.NoError(t, l.StartGame())

	// Dealer seat 0, small blind seat 1 posts 5, big blind seat 0
	// posts 10.
	require.Equal(t, 0, l.DealerIndex)
	require.Equal(t, 995, l.Players[1].Chips)
	require.Equal(t, 990, l.Players[0].Chips)

	playToShowdown(t, l)
	require.Len(t, l.Community, 5)

	res := l.ResolveHand()
	require.NotEmpty(t, res.Winners)
	gameOver := l.Payout(res)

	assert.True(t, gameOver)
	assert.Equal(t, 1, l.RoundNumber)
	assert.Equal(t, StatusFinished, l.Status)
	assert.Equal(t, 2000, l.TotalChips())
	assert.Equal(t, 0, l.Pot)
}
