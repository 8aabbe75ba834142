package session

import (
	"context"
	"testing"
	"time"

	"bookwidget/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorySessionRepository(t *testing.T) {
	repo := NewMemorySessionRepository(time.Hour)
	ctx := context.Background()

	t.Run("SaveAndGet", func(t *testing.T) {
		sel := models.NewSelection("m-1", time.Now())
		sel.Mode = models.ModeRental
		require.NoError(t, repo.SaveSelection(ctx, sel))

		got, err := repo.GetSelection(ctx, "m-1")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, models.ModeRental, got.Mode)
	})

	t.Run("MissingSession", func(t *testing.T) {
		got, err := repo.GetSelection(ctx, "nope")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("Clear", func(t *testing.T) {
		sel := models.NewSelection("m-2", time.Now())
		require.NoError(t, repo.SaveSelection(ctx, sel))
		require.NoError(t, repo.ClearSelection(ctx, "m-2"))

		got, _ := repo.GetSelection(ctx, "m-2")
		assert.Nil(t, got)
	})

	t.Run("RateLimit", func(t *testing.T) {
		allowed, err := repo.CheckRateLimit(ctx, "m-rl", 2, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed)

		allowed, _ = repo.CheckRateLimit(ctx, "m-rl", 2, time.Minute)
		assert.True(t, allowed)

		allowed, _ = repo.CheckRateLimit(ctx, "m-rl", 2, time.Minute)
		assert.False(t, allowed)
	})
}
