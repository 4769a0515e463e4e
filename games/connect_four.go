package games

import (
	"encoding/json"
	"fmt"
)

const (
	connectFourRows = 6
	connectFourCols = 7
	connectFourWin  = 4

	// Fixed outcome values fed into the leaderboard.
	connectFourWinScore  = 3
	connectFourDrawScore = 1
	connectFourLossScore = 0
)

// connectFourState is the opaque session state for the grid game.
// Grid is row-major, row 0 at the top; a cell holds the userID of the disc
// owner or "" when empty. Winner/Draw are recorded here by Validate the
// moment the winning disc lands, so the state itself is the audit record.
type connectFourState struct {
	Grid   [][]string `json:"grid"`
	Moves  int        `json:"moves"`
	Winner string     `json:"winner,omitempty"`
	Draw   bool       `json:"draw,omitempty"`
}

type connectFourMove struct {
	Column int `json:"column"`
}

type connectFourRules struct{}

func (connectFourRules) GameType() string { return ConnectFour }

func (connectFourRules) InitialState() (json.RawMessage, error) {
	grid := make([][]string, connectFourRows)
	for r := range grid {
		grid[r] = make([]string, connectFourCols)
	}
	return json.Marshal(connectFourState{Grid: grid})
}

func (connectFourRules) Validate(state json.RawMessage, actor string, move json.RawMessage) (json.RawMessage, error) {
	var st connectFourState
	if err := json.Unmarshal(state, &st); err != nil {
		return nil, fmt.Errorf("decode connect-four state: %w", err)
	}
	var mv connectFourMove
	if err := json.Unmarshal(move, &mv); err != nil {
		return nil, fmt.Errorf("%w: malformed payload", ErrInvalidMove)
	}
	if mv.Column < 0 || mv.Column >= connectFourCols {
		return nil, fmt.Errorf("%w: column %d out of range", ErrInvalidMove, mv.Column)
	}

	// Disc falls to the lowest empty row of the chosen column.
	row := -1
	for r := connectFourRows - 1; r >= 0; r-- {
		if st.Grid[r][mv.Column] == "" {
			row = r
			break
		}
	}
	if row < 0 {
		return nil, fmt.Errorf("%w: column %d is full", ErrInvalidMove, mv.Column)
	}

	st.Grid[row][mv.Column] = actor
	st.Moves++

	if connectsFour(st.Grid, row, mv.Column) {
		st.Winner = actor
	} else if st.Moves == connectFourRows*connectFourCols {
		st.Draw = true
	}

	return json.Marshal(st)
}

func (connectFourRules) IsTerminal(state json.RawMessage) (bool, error) {
	var st connectFourState
	if err := json.Unmarshal(state, &st); err != nil {
		return false, fmt.Errorf("decode connect-four state: %w", err)
	}
	return st.Winner != "" || st.Draw, nil
}

// NextTurn strictly alternates between the two participants.
func (connectFourRules) NextTurn(_ json.RawMessage, participants []string, lastActor string) (string, error) {
	for _, p := range participants {
		if p != lastActor {
			return p, nil
		}
	}
	return "", fmt.Errorf("no opponent found for %s", lastActor)
}

func (connectFourRules) IsTurnHolder(_ json.RawMessage, currentTurn, actor string) (bool, error) {
	return actor == currentTurn, nil
}

func (connectFourRules) Score(state json.RawMessage, participants []string) (map[string]int64, error) {
	var st connectFourState
	if err := json.Unmarshal(state, &st); err != nil {
		return nil, fmt.Errorf("decode connect-four state: %w", err)
	}
	scores := make(map[string]int64, len(participants))
	for _, p := range participants {
		switch {
		case st.Draw:
			scores[p] = connectFourDrawScore
		case p == st.Winner:
			scores[p] = connectFourWinScore
		default:
			scores[p] = connectFourLossScore
		}
	}
	return scores, nil
}

// connectsFour checks the four directions through the just-placed disc.
func connectsFour(grid [][]string, row, col int) bool {
	owner := grid[row][col]
	directions := [4][2]int{
		{0, 1},  // horizontal
		{1, 0},  // vertical
		{1, 1},  // diagonal ↘
		{1, -1}, // diagonal ↙
	}
	for _, d := range directions {
		count := 1
		for _, sign := range [2]int{1, -1} {
			r, c := row+d[0]*sign, col+d[1]*sign
			for r >= 0 && r < connectFourRows && c >= 0 && c < connectFourCols && grid[r][c] == owner {
				count++
				r += d[0] * sign
				c += d[1] * sign
			}
		}
		if count >= connectFourWin {
			return true
		}
	}
	return false
}
