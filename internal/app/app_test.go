package app

import (
	"context"
	"io"
	"log"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Galen-Chu/spiritual-g-code/internal/config"
	"github.com/Galen-Chu/spiritual-g-code/internal/domain"
)

func discard() *log.Logger { return log.New(io.Discard, "", 0) }

func TestOpenStores_Memory(t *testing.T) {
	stores, cleanup, err := OpenStores(context.Background(), config.StorageConfig{UseMemory: true}, discard())
	require.NoError(t, err)
	defer cleanup()

	assert.NotNil(t, stores.Users)
	assert.NotNil(t, stores.NatalCharts)
	assert.NotNil(t, stores.DailyGCodes)
	assert.NotNil(t, stores.JobProgress)
}

func TestOpenStores_BadPostgresDSN(t *testing.T) {
	_, _, err := OpenStores(context.Background(), config.StorageConfig{PostgresDSN: "://bad"}, discard())
	assert.Error(t, err)
}

func TestNewService_FromDefaults(t *testing.T) {
	cfg, err := config.Load(viper.New())
	require.NoError(t, err)

	stores, cleanup, err := OpenStores(context.Background(), cfg.Storage, discard())
	require.NoError(t, err)
	defer cleanup()

	svc, err := NewService(cfg, stores, discard())
	require.NoError(t, err)

	ctx := context.Background()
	u := domain.NewUser("galen", time.Date(1990, 1, 15, 0, 0, 0, 0, time.UTC), "14:30", "Taipei, Taiwan", "")
	require.NoError(t, svc.CreateUser(ctx, u))

	g, err := svc.DailyGCode(ctx, u.ID, time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, g.Score, 1)
	assert.LessOrEqual(t, g.Score, 100)
}
