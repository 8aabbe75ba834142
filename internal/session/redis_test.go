package session

import (
	"context"
	"testing"
	"time"

	"bookwidget/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisSessionRepository(t *testing.T) {
	s, err := miniredis.Run()
	require.NoError(t, err)
	defer s.Close()

	client := redis.NewClient(&redis.Options{
		Addr: s.Addr(),
	})
	defer client.Close()

	repo := NewRedisSessionRepository(client, time.Hour)
	ctx := context.Background()

	t.Run("SaveAndGetSelection", func(t *testing.T) {
		sel := models.NewSelection("sess-1", time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC))
		sel.Mode = models.ModeService
		sel.Step = models.StepServiceLocation
		sel.Location = &models.Location{ID: 1, Code: "BA", Name: "Bratislava"}

		err := repo.SaveSelection(ctx, sel)
		require.NoError(t, err)

		got, err := repo.GetSelection(ctx, "sess-1")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, models.ModeService, got.Mode)
		assert.Equal(t, models.StepServiceLocation, got.Step)
		require.NotNil(t, got.Location)
		assert.Equal(t, "BA", got.Location.Code)
		assert.Equal(t, 7, got.ServiceCursor.Month)
	})

	t.Run("GetNonExistentSelection", func(t *testing.T) {
		got, err := repo.GetSelection(ctx, "missing")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("ClearSelection", func(t *testing.T) {
		sel := models.NewSelection("sess-2", time.Now())
		require.NoError(t, repo.SaveSelection(ctx, sel))

		require.NoError(t, repo.ClearSelection(ctx, "sess-2"))

		got, _ := repo.GetSelection(ctx, "sess-2")
		assert.Nil(t, got)
	})

	t.Run("ExpiresWithTTL", func(t *testing.T) {
		sel := models.NewSelection("sess-3", time.Now())
		require.NoError(t, repo.SaveSelection(ctx, sel))

		s.FastForward(2 * time.Hour)

		got, err := repo.GetSelection(ctx, "sess-3")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("RateLimit", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			allowed, err := repo.CheckRateLimit(ctx, "sess-rl", 3, time.Minute)
			require.NoError(t, err)
			assert.True(t, allowed)
		}
		allowed, err := repo.CheckRateLimit(ctx, "sess-rl", 3, time.Minute)
		require.NoError(t, err)
		assert.False(t, allowed)
	})
}

func TestRedisSessionRepositoryNilClient(t *testing.T) {
	repo := NewRedisSessionRepository(nil, time.Hour)
	ctx := context.Background()

	_, err := repo.GetSelection(ctx, "x")
	assert.Error(t, err)
	assert.Error(t, repo.SaveSelection(ctx, models.NewSelection("x", time.Now())))
	assert.Error(t, repo.ClearSelection(ctx, "x"))
}
