package game

// Status is the lifecycle state of a lobby
type Status string

const (
	StatusLobby    Status = "lobby"
	StatusPlaying  Status = "playing"
	StatusFinished Status = "finished"
)

// Phase is the stage of a hand. Transitions are strictly forward.
type Phase int

const (
	Preflop Phase = iota
	Flop
	Turn
	River
	Showdown
)

func (p Phase) String() string {
	return [...]string{"preflop", "flop", "turn", "river", "showdown"}[p]
}

// ActionType is a player action kind
type ActionType string

const (
	ActionFold  ActionType = "fold"
	ActionCheck ActionType = "check"
	ActionCall  ActionType = "call"
	ActionBet   ActionType = "bet"
)

// Action is a requested player action. Amount is only meaningful for bets,
// where it covers both opens and raises.
type Action struct {
	Type   ActionType
	Amount int
}

// Settings is the lobby configuration, immutable once a game starts.
// Rounds of zero means the game runs until one player has all the chips.
// The engine does not enforce any relationship between the blinds.
type Settings struct {
	StartChips int
	Rounds     int
	SmallBlind int
	BigBlind   int
}
