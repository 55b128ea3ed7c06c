// Package app provides the core application initialization and lifecycle management.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/law-makers/campaigner/internal/auth"
	"github.com/law-makers/campaigner/internal/browser"
	"github.com/law-makers/campaigner/internal/campaign"
	"github.com/law-makers/campaigner/internal/config"
	"github.com/law-makers/campaigner/internal/metrics"
	"github.com/law-makers/campaigner/internal/ratelimit"
	"github.com/law-makers/campaigner/internal/retry"
)

// Application holds all application dependencies and manages their lifecycle.
//
// It is created once at startup and shared across all CLI commands.
// Use Close() to ensure proper resource cleanup on shutdown.
type Application struct {
	Config      *config.Config
	Logger      *zerolog.Logger
	RateLimiter ratelimit.Limiter
	Metrics     *metrics.Recorder

	// StartRetry governs how often a failed Chrome launch is retried
	StartRetry retry.Config

	// Session is started lazily by EnsureBrowser
	Session   *browser.Session
	sessionMu sync.Mutex

	startTime time.Time
}

// New creates and initializes a new Application with all dependencies.
//
// The browser is not started here; commands that need one call EnsureBrowser.
func New(ctx context.Context, cfg *config.Config) (*Application, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	logLevel, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		logLevel = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(logLevel)

	var logWriter io.Writer
	if cfg.JSONLog {
		// JSON logs to stderr
		logWriter = os.Stderr
	} else {
		logWriter = zerolog.ConsoleWriter{Out: os.Stderr, NoColor: cfg.NoColor, TimeFormat: time.TimeOnly}
	}

	logger := zerolog.New(logWriter).With().Timestamp().Logger()
	log.Logger = logger

	logger.Debug().
		Str("level", cfg.LogLevel).
		Bool("json", cfg.JSONLog).
		Msg("Logger initialized")

	limiter := ratelimit.NewHostLimiter(cfg.NavigationRPS, cfg.NavigationBurst)
	logger.Debug().
		Float64("rps", cfg.NavigationRPS).
		Int("burst", cfg.NavigationBurst).
		Msg("Navigation limiter initialized")

	return &Application{
		Config:      cfg,
		Logger:      &logger,
		RateLimiter: limiter,
		Metrics:     metrics.New(),
		StartRetry:  retry.DefaultConfig(),
		startTime:   time.Now(),
	}, nil
}

// EnsureBrowser lazily starts the Chrome session if it has not already been started
func (a *Application) EnsureBrowser(ctx context.Context) (*browser.Session, error) {
	if a == nil {
		return nil, fmt.Errorf("application is nil")
	}

	a.sessionMu.Lock()
	defer a.sessionMu.Unlock()

	if a.Session != nil {
		return a.Session, nil
	}

	a.Logger.Debug().Msg("Starting browser on demand")
	opts := browser.SessionOptions{
		Headless:   a.Config.Headless,
		ChromePath: a.Config.ChromePath,
		UserAgent:  a.Config.UserAgent,
		Proxy:      a.Config.Proxy,
		Timeout:    a.Config.Timeout,
		Limiter:    a.RateLimiter,
	}

	var session *browser.Session
	err := retry.WithRetry(ctx, a.StartRetry, func() error {
		var err error
		session, err = browser.NewSession(opts)
		if err != nil && !launchRetryable(err) {
			return retry.Permanent(err)
		}
		return err
	})
	if err != nil {
		a.Logger.Warn().Err(err).Msg("Failed to start browser")
		return nil, err
	}

	a.Session = session
	a.Logger.Info().Bool("headless", a.Config.Headless).Msg("Browser started")
	return session, nil
}

// launchRetryable reports whether a failed Chrome launch may succeed on a
// second try. A missing or unrunnable binary never will.
func launchRetryable(err error) bool {
	switch {
	case errors.Is(err, exec.ErrNotFound),
		errors.Is(err, fs.ErrNotExist),
		errors.Is(err, fs.ErrPermission),
		errors.Is(err, context.Canceled):
		return false
	}
	return true
}

// CredentialStore returns the configured credential backend
func (a *Application) CredentialStore(ctx context.Context) (auth.CredentialStore, error) {
	switch a.Config.SecretBackend {
	case config.BackendSecretsManager:
		return auth.NewSecretsManagerStore(ctx,
			auth.WithRegion(a.Config.AWSRegion),
			auth.WithSecretPrefix(a.Config.SecretPrefix),
		)
	default:
		return a.WritableCredentialStore()
	}
}

// WritableCredentialStore returns a local backend that can also store credentials
func (a *Application) WritableCredentialStore() (auth.WritableStore, error) {
	switch a.Config.SecretBackend {
	case config.BackendFile:
		return auth.NewFileStore("")
	case config.BackendKeyring:
		return auth.LocalStore()
	}
	return nil, fmt.Errorf("secret backend %q is read-only", a.Config.SecretBackend)
}

// NewDelay creates the delay model seeded from the config
func (a *Application) NewDelay() *campaign.Delay {
	return campaign.NewDelay(campaign.NewRandStream(a.Config.Seed, campaign.StreamDelay))
}

// Close gracefully shuts down the application and all its resources.
// Any errors during shutdown are logged but do not prevent other shutdown steps.
func (a *Application) Close(ctx context.Context) error {
	a.Logger.Debug().Msg("Shutting down application")

	a.sessionMu.Lock()
	if a.Session != nil {
		if err := a.Session.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Error closing browser")
		}
		a.Session = nil
	}
	a.sessionMu.Unlock()

	a.Logger.Debug().Dur("uptime", a.Uptime()).Msg("Application shutdown complete")
	return nil
}

// Uptime returns how long the application has been running.
func (a *Application) Uptime() time.Duration {
	return time.Since(a.startTime)
}
