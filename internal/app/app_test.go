package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/law-makers/campaigner/internal/auth"
	"github.com/law-makers/campaigner/internal/campaign"
	"github.com/law-makers/campaigner/internal/config"
	"github.com/law-makers/campaigner/internal/retry"
)

func TestNew_RequiresConfig(t *testing.T) {
	_, err := New(context.Background(), nil)
	assert.Error(t, err)
}

func TestNew_ConfiguresLogging(t *testing.T) {
	cfg := config.Default()
	cfg.LogLevel = "warn"
	cfg.JSONLog = true

	a, err := New(context.Background(), cfg)
	require.NoError(t, err)
	defer a.Close(context.Background())

	assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())
	assert.NotNil(t, a.RateLimiter)
	assert.NotNil(t, a.Metrics)
	assert.Equal(t, retry.DefaultConfig(), a.StartRetry)
	assert.Nil(t, a.Session, "browser starts on demand")
}

func TestCredentialStore_Backends(t *testing.T) {
	cfg := config.Default()
	cfg.SecretBackend = config.BackendFile
	a, err := New(context.Background(), cfg)
	require.NoError(t, err)

	store, err := a.CredentialStore(context.Background())
	require.NoError(t, err)
	assert.IsType(t, &auth.FileStore{}, store)

	cfg.SecretBackend = config.BackendSecretsManager
	_, err = a.WritableCredentialStore()
	assert.Error(t, err)
}

func TestNewDelay_Seeded(t *testing.T) {
	cfg := config.Default()
	cfg.Seed = 42
	a, err := New(context.Background(), cfg)
	require.NoError(t, err)

	p := cfg.Paces.Page
	assert.Equal(t, a.NewDelay().Sample(p), a.NewDelay().Sample(p))
}

func TestSeededStreamsDiffer(t *testing.T) {
	cfg := config.Default()
	cfg.Seed = 9
	a, err := New(context.Background(), cfg)
	require.NoError(t, err)

	order := campaign.NewRandStream(cfg.Seed, campaign.StreamOrder)
	delay := campaign.NewRandStream(cfg.Seed, campaign.StreamDelay)
	assert.NotEqual(t, order.Uint64(), delay.Uint64())

	p := campaign.Pace{Mean: 5 * time.Second, Spread: 2 * time.Second}
	assert.Equal(t, campaign.NewDelay(campaign.NewRandStream(cfg.Seed, campaign.StreamDelay)).Sample(p), a.NewDelay().Sample(p))
}

func TestLaunchRetryable(t *testing.T) {
	missing := &exec.Error{Name: "google-chrome", Err: exec.ErrNotFound}
	assert.False(t, launchRetryable(fmt.Errorf("failed to start browser: %w", missing)))
	assert.False(t, launchRetryable(&fs.PathError{Op: "fork/exec", Path: "/opt/chrome", Err: fs.ErrNotExist}))
	assert.False(t, launchRetryable(context.Canceled))
	assert.True(t, launchRetryable(errors.New("websocket url timeout reached")))
}
