package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"space-games-system/games"
	"space-games-system/models"
	"space-games-system/store"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// MoveNotifier is the optional post-commit hook an external push layer may
// register. The engine never depends on it; clients poll otherwise.
type MoveNotifier func(session *models.GameSession)

// MoveService is the turn arbiter: the only code path that mutates a session's
// state and version. Correctness rests on the store's conditional write, not
// on any held lock.
type MoveService struct {
	Sessions store.SessionStore
	Scores   *ScoreService
	Notifier MoveNotifier

	commitAttempts int
	retryBackoff   time.Duration
}

func NewMoveService(sessions store.SessionStore, scores *ScoreService) *MoveService {
	return &MoveService{
		Sessions:       sessions,
		Scores:         scores,
		commitAttempts: 3,
		retryBackoff:   50 * time.Millisecond,
	}
}

// SubmitMove validates and applies one move. Exactly one of two concurrent
// submissions carrying the same expectedVersion can win; the loser gets
// ErrStaleVersion and must refetch the session before retrying.
func (m *MoveService) SubmitMove(sessionID, actorID string, payload json.RawMessage, expectedVersion int64) (*models.GameSession, error) {
	session, err := m.Sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != models.SessionActive {
		return nil, fmt.Errorf("%w: session is %s, moves are only accepted while active", ErrConflict, session.Status)
	}
	rules, ok := games.ForType(session.GameType)
	if !ok {
		return nil, fmt.Errorf("%w: no rule module for game type %q", ErrInternal, session.GameType)
	}
	if !session.IsParticipant(actorID) {
		return nil, fmt.Errorf("%w: user %s is not a participant", ErrForbidden, actorID)
	}

	currentTurn := ""
	if session.CurrentTurnUserID != nil {
		currentTurn = *session.CurrentTurnUserID
	}
	holder, err := rules.IsTurnHolder(session.State, currentTurn, actorID)
	if err != nil {
		return nil, fmt.Errorf("%w: turn check: %v", ErrInternal, err)
	}
	if !holder {
		return nil, fmt.Errorf("%w: it is %s's turn", ErrTurnViolation, currentTurn)
	}

	// Pre-check only; the conditional write below is the authority.
	if expectedVersion != session.Version {
		return nil, fmt.Errorf("%w: expected %d, session is at %d", store.ErrStaleVersion, expectedVersion, session.Version)
	}

	newState, err := rules.Validate(session.State, actorID, payload)
	if err != nil {
		return nil, err
	}

	session.State = newState
	session.Version = expectedVersion + 1
	session.LastMoveAt = time.Now()

	terminal, err := rules.IsTerminal(newState)
	if err != nil {
		return nil, fmt.Errorf("%w: terminal check: %v", ErrInternal, err)
	}
	if terminal {
		session.Status = models.SessionCompleted
		session.CurrentTurnUserID = nil
	} else {
		next, err := rules.NextTurn(newState, session.ParticipantIDs, actorID)
		if err != nil {
			return nil, fmt.Errorf("%w: next turn: %v", ErrInternal, err)
		}
		session.CurrentTurnUserID = &next
	}

	if err := m.commit(session, expectedVersion); err != nil {
		return nil, err
	}

	if terminal {
		// Insert is deduped on (session, user), so a failed recording here is
		// recoverable by redelivering the completion.
		if err := m.Scores.RecordSessionScores(session); err != nil {
			logrus.Errorf("⚠️ Failed to record scores for completed session %s: %v", session.ID, err)
		}
		logrus.Infof("🏁 Session %s completed at version %d", session.ID, session.Version)
	}

	if m.Notifier != nil {
		m.Notifier(session)
	}
	return session, nil
}

// commit retries transient storage failures a bounded number of times.
// StaleVersion and NotFound are definitive and surface immediately; nothing
// partial is ever persisted.
func (m *MoveService) commit(session *models.GameSession, expectedVersion int64) error {
	var err error
	for attempt := 1; attempt <= m.commitAttempts; attempt++ {
		err = m.Sessions.CommitMove(session, expectedVersion)
		if err == nil || errors.Is(err, store.ErrStaleVersion) || errors.Is(err, store.ErrNotFound) {
			return err
		}
		logrus.Warnf("[MOVE] Commit attempt %d/%d for session %s failed: %v", attempt, m.commitAttempts, session.ID, err)
		if attempt < m.commitAttempts {
			time.Sleep(m.retryBackoff)
		}
	}
	return fmt.Errorf("%w: move commit failed after %d attempts: %v", ErrInternal, m.commitAttempts, err)
}

// --- fiber endpoints ---

type submitMoveRequest struct {
	Payload         json.RawMessage `json:"payload"`
	ExpectedVersion int64           `json:"expected_version"`
}

func (m *MoveService) SubmitMoveEndpoint(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	var req submitMoveRequest
	if err := c.BodyParser(&req); err != nil {
		return httpError(c, fmt.Errorf("%w: invalid request body", ErrValidation))
	}
	if len(req.Payload) == 0 {
		return httpError(c, fmt.Errorf("%w: payload is required", ErrValidation))
	}

	session, err := m.SubmitMove(c.Params("id"), userID, req.Payload, req.ExpectedVersion)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(fiber.Map{
		"version":              session.Version,
		"state":                session.State,
		"status":               session.Status,
		"current_turn_user_id": session.CurrentTurnUserID,
	})
}
