package games

import (
	"encoding/json"
	"errors"
)

// Supported game types. These are the discriminant values stored on a session.
const (
	ConnectFour = "connect_four"
	TriviaQuiz  = "trivia_quiz"
)

// ErrInvalidMove rejects a structurally invalid move (full column, option out
// of range, round already answered). Wrapped with detail via fmt.Errorf("%w").
var ErrInvalidMove = errors.New("invalid move")

// Rules is the per-game capability set. Implementations are pure: they never
// touch storage, and Validate returns a new candidate state without mutating
// the input. State is a JSON document interpreted only by the module that
// produced it.
type Rules interface {
	GameType() string

	// InitialState builds the opening state for a fresh session.
	InitialState() (json.RawMessage, error)

	// Validate checks the actor's move against state and, on acceptance,
	// returns the state with the move applied. Rejections wrap ErrInvalidMove.
	Validate(state json.RawMessage, actor string, move json.RawMessage) (json.RawMessage, error)

	// IsTerminal reports whether state holds a finished game (win or draw).
	IsTerminal(state json.RawMessage) (bool, error)

	// NextTurn decides who holds the turn pointer after lastActor's accepted move.
	NextTurn(state json.RawMessage, participants []string, lastActor string) (string, error)

	// IsTurnHolder reports whether actor may move right now. Alternating games
	// compare against currentTurn; the quiz treats any participant who has not
	// answered the open round as a holder, so currentTurn is advisory there.
	IsTurnHolder(state json.RawMessage, currentTurn, actor string) (bool, error)

	// Score computes each participant's final score from a terminal state.
	Score(state json.RawMessage, participants []string) (map[string]int64, error)
}

// Flat dispatch table keyed on the game type discriminant.
var registry = map[string]Rules{
	ConnectFour: connectFourRules{},
	TriviaQuiz:  triviaQuizRules{},
}

// ForType looks up the rule module for a game type.
func ForType(gameType string) (Rules, bool) {
	r, ok := registry[gameType]
	return r, ok
}
