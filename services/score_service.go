package services

import (
	"fmt"

	"space-games-system/games"
	"space-games-system/models"
	"space-games-system/store"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ScoreService records completed-session outcomes and serves the per-space
// leaderboards. It reads terminal state exactly once and never mutates a
// session.
type ScoreService struct {
	Scores store.ScoreStore
}

func NewScoreService(scores store.ScoreStore) *ScoreService {
	return &ScoreService{Scores: scores}
}

// RecordSessionScores writes one ScoreEntry per participant of a completed
// session. The (session, user) dedupe makes redelivery a no-op.
func (s *ScoreService) RecordSessionScores(session *models.GameSession) error {
	if session.Status != models.SessionCompleted {
		return fmt.Errorf("%w: session %s is %s, not completed", ErrConflict, session.ID, session.Status)
	}
	rules, ok := games.ForType(session.GameType)
	if !ok {
		return fmt.Errorf("%w: no rule module for game type %q", ErrInternal, session.GameType)
	}
	scores, err := rules.Score(session.State, session.ParticipantIDs)
	if err != nil {
		return fmt.Errorf("%w: scoring session %s: %v", ErrInternal, session.ID, err)
	}

	for _, userID := range session.ParticipantIDs {
		entry := &models.ScoreEntry{
			ID:        uuid.NewString(),
			SessionID: session.ID,
			UserID:    userID,
			SpaceID:   session.SpaceID,
			GameType:  session.GameType,
			Score:     scores[userID],
			Source:    models.ScoreSourceSession,
		}
		if err := s.Scores.Insert(entry); err != nil {
			return fmt.Errorf("%w: recording score for %s: %v", ErrInternal, userID, err)
		}
	}

	logrus.Infof("🏆 Scores recorded for session %s: %v", session.ID, scores)
	return nil
}

// Leaderboard returns personal bests within the space for one game type.
func (s *ScoreService) Leaderboard(spaceID, gameType string) ([]models.LeaderboardRow, error) {
	if spaceID == "" || gameType == "" {
		return nil, fmt.Errorf("%w: space and game_type are required", ErrValidation)
	}
	return s.Scores.Leaderboard(spaceID, gameType)
}

// SubmitSoloScore is the direct-score interface for the solo minigames in the
// surrounding product. No session, no turn arbitration — the submissionID is
// the dedupe key against client retries.
func (s *ScoreService) SubmitSoloScore(spaceID, gameType, userID string, score int64, submissionID string) (*models.ScoreEntry, error) {
	if spaceID == "" || gameType == "" || userID == "" || submissionID == "" {
		return nil, fmt.Errorf("%w: space, game_type, user and submission_id are required", ErrValidation)
	}
	if score < 0 {
		return nil, fmt.Errorf("%w: score must be non-negative", ErrValidation)
	}

	entry := &models.ScoreEntry{
		ID:        uuid.NewString(),
		SessionID: submissionID,
		UserID:    userID,
		SpaceID:   spaceID,
		GameType:  gameType,
		Score:     score,
		Source:    models.ScoreSourceSolo,
	}
	if err := s.Scores.Insert(entry); err != nil {
		return nil, fmt.Errorf("%w: recording solo score: %v", ErrInternal, err)
	}
	return entry, nil
}

// --- fiber endpoints ---

func (s *ScoreService) LeaderboardEndpoint(c *fiber.Ctx) error {
	rows, err := s.Leaderboard(c.Params("space_id"), c.Params("game_type"))
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(fiber.Map{"leaderboard": rows})
}

type soloScoreRequest struct {
	Score        int64  `json:"score"`
	SubmissionID string `json:"submission_id"`
}

func (s *ScoreService) SubmitSoloScoreEndpoint(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	var req soloScoreRequest
	if err := c.BodyParser(&req); err != nil {
		return httpError(c, fmt.Errorf("%w: invalid request body", ErrValidation))
	}

	entry, err := s.SubmitSoloScore(c.Params("space_id"), c.Params("game_type"), userID, req.Score, req.SubmissionID)
	if err != nil {
		return httpError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(entry)
}
