package session

import (
	"context"
	"time"

	"bookwidget/internal/domain"
	"bookwidget/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Service owns creation and persistence of widget sessions.
type Service struct {
	repo   domain.SessionRepository
	logger *zerolog.Logger
}

func NewService(repo domain.SessionRepository, logger *zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// Open creates a fresh root-screen selection under a new session ID.
func (s *Service) Open(ctx context.Context, now time.Time) (*models.Selection, error) {
	sel := models.NewSelection(uuid.NewString(), now)
	if err := s.repo.SaveSelection(ctx, sel); err != nil {
		s.logger.Error().Err(err).Str("session_id", sel.SessionID).Msg("failed to save new session")
		return nil, err
	}
	return sel, nil
}

// Get loads the selection for a session, nil when the session is unknown or
// expired.
func (s *Service) Get(ctx context.Context, sessionID string) (*models.Selection, error) {
	sel, err := s.repo.GetSelection(ctx, sessionID)
	if err != nil {
		s.logger.Error().Err(err).Str("session_id", sessionID).Msg("failed to get session")
		return nil, err
	}
	return sel, nil
}

// Save persists the selection after a controller mutation.
func (s *Service) Save(ctx context.Context, sel *models.Selection) error {
	return s.repo.SaveSelection(ctx, sel)
}

// Close discards the session; the widget was closed or abandoned.
func (s *Service) Close(ctx context.Context, sessionID string) error {
	return s.repo.ClearSelection(ctx, sessionID)
}

// CheckRateLimit bounds the action frequency of one session.
func (s *Service) CheckRateLimit(ctx context.Context, sessionID string, limit int, window time.Duration) (bool, error) {
	return s.repo.CheckRateLimit(ctx, sessionID, limit, window)
}
