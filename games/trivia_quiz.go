package games

import (
	"encoding/json"
	"fmt"
	"math/rand"
)

// Number of rounds drawn from the question bank per session.
const triviaQuizRounds = 5

// TriviaQuestion is one round's prompt. Answer indexes into Options.
type TriviaQuestion struct {
	Prompt  string   `json:"prompt"`
	Options []string `json:"options"`
	Answer  int      `json:"answer"`
}

// triviaQuizState holds the drawn questions, the open round index and each
// round's answer set (userID → chosen option). Rounds are simultaneous: a
// round only advances once both members of the pair have answered, so unlike
// the alternating games the turn pointer here means "someone who still owes
// an answer", not an exclusive actor.
type triviaQuizState struct {
	Questions []TriviaQuestion `json:"questions"`
	Round     int              `json:"round"`
	Answers   []map[string]int `json:"answers"`
	Completed bool             `json:"completed"`
}

type triviaQuizMove struct {
	Option int `json:"option"`
}

type triviaQuizRules struct{}

func (triviaQuizRules) GameType() string { return TriviaQuiz }

func (triviaQuizRules) InitialState() (json.RawMessage, error) {
	drawn := drawQuestions(triviaQuizRounds)
	answers := make([]map[string]int, len(drawn))
	for i := range answers {
		answers[i] = map[string]int{}
	}
	return json.Marshal(triviaQuizState{Questions: drawn, Answers: answers})
}

func (triviaQuizRules) Validate(state json.RawMessage, actor string, move json.RawMessage) (json.RawMessage, error) {
	var st triviaQuizState
	if err := json.Unmarshal(state, &st); err != nil {
		return nil, fmt.Errorf("decode trivia state: %w", err)
	}
	if st.Completed || st.Round >= len(st.Questions) {
		return nil, fmt.Errorf("%w: quiz already finished", ErrInvalidMove)
	}
	var mv triviaQuizMove
	if err := json.Unmarshal(move, &mv); err != nil {
		return nil, fmt.Errorf("%w: malformed payload", ErrInvalidMove)
	}
	question := st.Questions[st.Round]
	if mv.Option < 0 || mv.Option >= len(question.Options) {
		return nil, fmt.Errorf("%w: option %d out of range", ErrInvalidMove, mv.Option)
	}
	if _, answered := st.Answers[st.Round][actor]; answered {
		return nil, fmt.Errorf("%w: round %d already answered", ErrInvalidMove, st.Round+1)
	}

	st.Answers[st.Round][actor] = mv.Option

	// Round auto-advances only once both members of the pair have responded.
	if len(st.Answers[st.Round]) == 2 {
		if st.Round == len(st.Questions)-1 {
			st.Completed = true
		} else {
			st.Round++
		}
	}

	return json.Marshal(st)
}

func (triviaQuizRules) IsTerminal(state json.RawMessage) (bool, error) {
	var st triviaQuizState
	if err := json.Unmarshal(state, &st); err != nil {
		return false, fmt.Errorf("decode trivia state: %w", err)
	}
	return st.Completed, nil
}

// NextTurn points at the participant still owing an answer for the open round.
// Right after an accepted move that is always the opponent: either they have
// not answered the same round yet, or the round just advanced and nobody has.
func (triviaQuizRules) NextTurn(state json.RawMessage, participants []string, lastActor string) (string, error) {
	var st triviaQuizState
	if err := json.Unmarshal(state, &st); err != nil {
		return "", fmt.Errorf("decode trivia state: %w", err)
	}
	for _, p := range participants {
		if p == lastActor {
			continue
		}
		if !st.Completed && !triviaAnswered(&st, p) {
			return p, nil
		}
	}
	return lastActor, nil
}

// IsTurnHolder ignores currentTurn: any participant who has not yet answered
// the open round may move, per the simultaneous-round model.
func (triviaQuizRules) IsTurnHolder(state json.RawMessage, _, actor string) (bool, error) {
	var st triviaQuizState
	if err := json.Unmarshal(state, &st); err != nil {
		return false, fmt.Errorf("decode trivia state: %w", err)
	}
	if st.Completed {
		return false, nil
	}
	return !triviaAnswered(&st, actor), nil
}

// Score tallies one point per correctly answered round.
func (triviaQuizRules) Score(state json.RawMessage, participants []string) (map[string]int64, error) {
	var st triviaQuizState
	if err := json.Unmarshal(state, &st); err != nil {
		return nil, fmt.Errorf("decode trivia state: %w", err)
	}
	scores := make(map[string]int64, len(participants))
	for _, p := range participants {
		scores[p] = 0
	}
	for i, q := range st.Questions {
		if i >= len(st.Answers) {
			break
		}
		for userID, option := range st.Answers[i] {
			if option == q.Answer {
				scores[userID]++
			}
		}
	}
	return scores, nil
}

func triviaAnswered(st *triviaQuizState, userID string) bool {
	if st.Round >= len(st.Answers) {
		return true
	}
	_, ok := st.Answers[st.Round][userID]
	return ok
}

// drawQuestions picks n distinct questions from the built-in bank.
func drawQuestions(n int) []TriviaQuestion {
	if n > len(questionBank) {
		n = len(questionBank)
	}
	idx := rand.Perm(len(questionBank))[:n]
	drawn := make([]TriviaQuestion, n)
	for i, j := range idx {
		drawn[i] = questionBank[j]
	}
	return drawn
}
