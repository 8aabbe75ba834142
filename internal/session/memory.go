package session

import (
	"context"
	"sync"
	"time"

	"bookwidget/internal/models"
)

// MemorySessionRepository keeps selections in process memory. It is the
// failover target when Redis is unavailable and the default for single-node
// deployments.
type MemorySessionRepository struct {
	selections sync.Map
	rateLimits sync.Map
	ttl        time.Duration
}

func NewMemorySessionRepository(ttl time.Duration) *MemorySessionRepository {
	return &MemorySessionRepository{
		ttl: ttl,
	}
}

type memoryEntry struct {
	sel       *models.Selection
	expiresAt time.Time
}

func (r *MemorySessionRepository) GetSelection(ctx context.Context, sessionID string) (*models.Selection, error) {
	val, ok := r.selections.Load(sessionID)
	if !ok {
		return nil, nil
	}
	entry := val.(*memoryEntry)
	if r.ttl > 0 && time.Now().After(entry.expiresAt) {
		r.selections.Delete(sessionID)
		return nil, nil
	}
	return entry.sel, nil
}

func (r *MemorySessionRepository) SaveSelection(ctx context.Context, sel *models.Selection) error {
	r.selections.Store(sel.SessionID, &memoryEntry{sel: sel, expiresAt: time.Now().Add(r.ttl)})
	return nil
}

func (r *MemorySessionRepository) ClearSelection(ctx context.Context, sessionID string) error {
	r.selections.Delete(sessionID)
	return nil
}

type rateLimitEntry struct {
	count     int
	expiresAt time.Time
}

func (r *MemorySessionRepository) CheckRateLimit(ctx context.Context, sessionID string, limit int, window time.Duration) (bool, error) {
	now := time.Now()
	val, ok := r.rateLimits.Load(sessionID)

	var entry *rateLimitEntry
	if !ok {
		entry = &rateLimitEntry{
			count:     1,
			expiresAt: now.Add(window),
		}
	} else {
		entry = val.(*rateLimitEntry)
		if now.After(entry.expiresAt) {
			entry.count = 1
			entry.expiresAt = now.Add(window)
		} else {
			entry.count++
		}
	}

	r.rateLimits.Store(sessionID, entry)
	return entry.count <= limit, nil
}
