package services

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"space-games-system/games"
	"space-games-system/models"
	"space-games-system/store"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// SessionService owns every status transition outside of move application:
// create, join, abandon and expire. Move application belongs to MoveService.
type SessionService struct {
	Sessions store.SessionStore
	Pairs    PairingDirectory
}

func NewSessionService(sessions store.SessionStore, pairs PairingDirectory) *SessionService {
	return &SessionService{Sessions: sessions, Pairs: pairs}
}

// CreateSession opens a waiting session for the creator. One unfinished session
// per (space, gameType) involving the caller is allowed at a time.
func (s *SessionService) CreateSession(gameType, creatorID, spaceID string) (*models.GameSession, error) {
	if gameType == "" || creatorID == "" || spaceID == "" {
		return nil, fmt.Errorf("%w: game_type, creator and space are required", ErrValidation)
	}
	rules, ok := games.ForType(gameType)
	if !ok {
		return nil, fmt.Errorf("%w: unknown game type %q", ErrValidation, gameType)
	}

	members, err := s.Pairs.Members(spaceID)
	if err != nil {
		return nil, fmt.Errorf("%w: membership lookup: %v", ErrInternal, err)
	}
	if !slices.Contains(members, creatorID) {
		return nil, fmt.Errorf("%w: user %s is not a member of space %s", ErrForbidden, creatorID, spaceID)
	}
	// A session needs an opponent to join; half-paired spaces can't host one.
	if len(members) < 2 {
		return nil, fmt.Errorf("%w: space %s is not fully paired yet", ErrConflict, spaceID)
	}

	existing, err := s.Sessions.FindOpenSessionFor(spaceID, gameType, creatorID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: open-session lookup: %v", ErrInternal, err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: user %s already has an unfinished %s session in this space", ErrConflict, creatorID, gameType)
	}

	state, err := rules.InitialState()
	if err != nil {
		return nil, fmt.Errorf("%w: initial state: %v", ErrInternal, err)
	}

	session := &models.GameSession{
		ID:             uuid.NewString(),
		SpaceID:        spaceID,
		GameType:       gameType,
		CreatorID:      creatorID,
		ParticipantIDs: []string{creatorID},
		Status:         models.SessionWaiting,
		State:          state,
		Version:        0,
		LastMoveAt:     time.Now(),
	}
	if err := s.Sessions.Create(session); err != nil {
		return nil, fmt.Errorf("%w: create session: %v", ErrInternal, err)
	}

	logrus.Infof("🎮 Session %s created (%s) in space %s by %s", session.ID, gameType, spaceID, creatorID)
	return session, nil
}

// JoinSession lets the space's other paired member enter a waiting session.
// The creator always moves first — deterministic, no random draw.
func (s *SessionService) JoinSession(sessionID, userID string) (*models.GameSession, error) {
	session, err := s.Sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	if session.IsParticipant(userID) {
		return nil, fmt.Errorf("%w: user already joined this session", ErrConflict)
	}
	if session.Status != models.SessionWaiting {
		return nil, fmt.Errorf("%w: session is %s, not open for joining", ErrConflict, session.Status)
	}

	member, err := s.Pairs.IsMember(session.SpaceID, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: membership lookup: %v", ErrInternal, err)
	}
	if !member {
		return nil, fmt.Errorf("%w: user %s is not the paired partner in space %s", ErrForbidden, userID, session.SpaceID)
	}

	session.ParticipantIDs = append(session.ParticipantIDs, userID)
	session.Status = models.SessionActive
	creator := session.CreatorID
	session.CurrentTurnUserID = &creator
	session.LastMoveAt = time.Now()

	if err := s.Sessions.Transition(session, models.SessionWaiting); err != nil {
		return nil, err
	}

	logrus.Infof("🤝 Session %s joined by %s — now active, %s to move", sessionID, userID, creator)
	return session, nil
}

// Abandon terminalizes a waiting/active session on a participant's request.
func (s *SessionService) Abandon(sessionID, userID string) (*models.GameSession, error) {
	session, err := s.Sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	if !session.IsParticipant(userID) {
		return nil, fmt.Errorf("%w: only a participant may abandon the session", ErrForbidden)
	}
	if models.TerminalStatus(session.Status) {
		return nil, fmt.Errorf("%w: session already %s", ErrConflict, session.Status)
	}

	from := session.Status
	session.Status = models.SessionAbandoned
	session.CurrentTurnUserID = nil
	if err := s.Sessions.Transition(session, from); err != nil {
		return nil, err
	}

	logrus.Infof("🏳️ Session %s abandoned by %s", sessionID, userID)
	return session, nil
}

// Expire terminalizes an inactive session. Invoked by the periodic sweep;
// calling it on an already-terminal session is a no-op returning the stored
// record, never an error.
func (s *SessionService) Expire(sessionID string) (*models.GameSession, error) {
	session, err := s.Sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	if models.TerminalStatus(session.Status) {
		return session, nil
	}

	from := session.Status
	session.Status = models.SessionExpired
	session.CurrentTurnUserID = nil
	err = s.Sessions.Transition(session, from)
	if errors.Is(err, store.ErrConflict) {
		// Another transition landed first; the stored record wins.
		return s.Sessions.Get(sessionID)
	}
	if err != nil {
		return nil, err
	}

	logrus.Infof("⌛ Session %s expired (inactive since %s)", sessionID, session.LastMoveAt.Format(time.RFC3339))
	return session, nil
}

// GetSession returns a read-only snapshot; safe to poll at any frequency.
func (s *SessionService) GetSession(sessionID string) (*models.GameSession, error) {
	return s.Sessions.Get(sessionID)
}

// --- fiber endpoints ---

type createSessionRequest struct {
	GameType string `json:"game_type"`
}

func (s *SessionService) CreateSessionEndpoint(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	spaceID := c.Params("space_id")

	var req createSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return httpError(c, fmt.Errorf("%w: invalid request body", ErrValidation))
	}

	session, err := s.CreateSession(req.GameType, userID, spaceID)
	if err != nil {
		return httpError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"session_id": session.ID,
		"status":     session.Status,
		"version":    session.Version,
	})
}

func (s *SessionService) JoinSessionEndpoint(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	session, err := s.JoinSession(c.Params("id"), userID)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(fiber.Map{
		"status":               session.Status,
		"current_turn_user_id": session.CurrentTurnUserID,
		"version":              session.Version,
	})
}

func (s *SessionService) GetSessionEndpoint(c *fiber.Ctx) error {
	session, err := s.GetSession(c.Params("id"))
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(session)
}

func (s *SessionService) AbandonSessionEndpoint(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	session, err := s.Abandon(c.Params("id"), userID)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(session)
}
