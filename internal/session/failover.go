package session

import (
	"context"
	"sync/atomic"
	"time"

	"bookwidget/internal/domain"
	"bookwidget/internal/models"

	"github.com/rs/zerolog"
)

// FailoverSessionRepository serves from the primary (Redis) repository and
// degrades to the fallback (memory) when the primary errors, probing for
// recovery after a cool-down.
type FailoverSessionRepository struct {
	primary   domain.SessionRepository
	fallback  domain.SessionRepository
	logger    *zerolog.Logger
	isDown    atomic.Bool
	lastCheck atomic.Int64 // unix nanos of the last failed probe
}

func NewFailoverSessionRepository(primary, fallback domain.SessionRepository, logger *zerolog.Logger) *FailoverSessionRepository {
	return &FailoverSessionRepository{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (r *FailoverSessionRepository) markDown(err error) {
	r.logger.Error().Err(err).Msg("Primary session repository failed, falling back to memory")
	r.isDown.Store(true)
	r.lastCheck.Store(time.Now().UnixNano())
}

func (r *FailoverSessionRepository) shouldProbe() bool {
	return r.isDown.Load() && time.Since(time.Unix(0, r.lastCheck.Load())) > time.Minute
}

func (r *FailoverSessionRepository) GetSelection(ctx context.Context, sessionID string) (*models.Selection, error) {
	if !r.isDown.Load() {
		sel, err := r.primary.GetSelection(ctx, sessionID)
		if err == nil {
			return sel, nil
		}
		r.markDown(err)
	} else if r.shouldProbe() {
		sel, err := r.primary.GetSelection(ctx, sessionID)
		if err == nil {
			r.isDown.Store(false)
			return sel, nil
		}
		r.lastCheck.Store(time.Now().UnixNano())
	}

	return r.fallback.GetSelection(ctx, sessionID)
}

func (r *FailoverSessionRepository) SaveSelection(ctx context.Context, sel *models.Selection) error {
	if !r.isDown.Load() {
		err := r.primary.SaveSelection(ctx, sel)
		if err == nil {
			return nil
		}
		r.markDown(err)
	}

	return r.fallback.SaveSelection(ctx, sel)
}

func (r *FailoverSessionRepository) ClearSelection(ctx context.Context, sessionID string) error {
	if !r.isDown.Load() {
		err := r.primary.ClearSelection(ctx, sessionID)
		if err == nil {
			return nil
		}
		r.markDown(err)
	}

	return r.fallback.ClearSelection(ctx, sessionID)
}

func (r *FailoverSessionRepository) CheckRateLimit(ctx context.Context, sessionID string, limit int, window time.Duration) (bool, error) {
	if !r.isDown.Load() {
		allowed, err := r.primary.CheckRateLimit(ctx, sessionID, limit, window)
		if err == nil {
			return allowed, nil
		}
		r.markDown(err)
	}

	return r.fallback.CheckRateLimit(ctx, sessionID, limit, window)
}
