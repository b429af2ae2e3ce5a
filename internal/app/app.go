// Package app drives the tracking session: it reads sensor ticks, runs the
// fusion pipeline and publishes the results.
package app

import (
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ayusman/handfusion/internal/fusion"
	"github.com/ayusman/handfusion/internal/metrics"
	"github.com/ayusman/handfusion/internal/sensor"
	"github.com/ayusman/handfusion/internal/store"
)

// Loop timing defaults.
const (
	// DefaultIdleFPS is the tick rate while no target skeleton is tracked.
	DefaultIdleFPS = 5
	// DefaultIdleTimeout is how long the target may be missing before
	// switching back to idle mode.
	DefaultIdleTimeout = 2 * time.Second
	// DefaultCheckpointEvery is the number of ticks between session saves.
	DefaultCheckpointEvery = 300
	// DefaultJPEGQuality is used for published views.
	DefaultJPEGQuality = 80
)

var (
	// ErrNoSource is returned when the app has no sensor source.
	ErrNoSource = errors.New("app: no sensor source")
	// ErrNoOrchestrator is returned when the app has no fusion orchestrator.
	ErrNoOrchestrator = errors.New("app: no fusion orchestrator")
	// ErrStopped is returned when starting an app that was already stopped.
	ErrStopped = errors.New("app: stopped")
)

// Publisher receives the encoded views and summary of each tick.
type Publisher interface {
	Publish(frames map[string][]byte, s fusion.Summary)
	WatchedViews() []string
}

// Observer is notified of each tick's summary.
type Observer interface {
	Observe(s fusion.Summary)
}

// Config holds the dependencies and tuning of the driver loop. Publisher,
// Observer, Metrics and Store are optional.
type Config struct {
	Source       sensor.Source
	Orchestrator *fusion.Orchestrator
	Publisher    Publisher
	Observer     Observer
	Metrics      *metrics.Metrics
	Store        *store.Store
	Logger       *slog.Logger

	// SessionID identifies the session; empty generates one.
	SessionID string
	// ProfileID is recorded with the session when a profile is in use.
	ProfileID string
	// FPS is the active tick rate; zero uses the source rate.
	FPS             int
	IdleFPS         int
	IdleTimeout     time.Duration
	CheckpointEvery int64
	JPEGQuality     int
}

// Status is a point-in-time view of the running session.
type Status struct {
	SessionID string         `json:"session_id"`
	Running   bool           `json:"running"`
	Enabled   bool           `json:"enabled"`
	Active    bool           `json:"active"`
	Degraded  bool           `json:"degraded"`
	Ticks     int64          `json:"ticks"`
	Errors    int64          `json:"errors"`
	Last      fusion.Summary `json:"last"`
}

// App is the tracking session driver.
type App struct {
	config    Config
	logger    *slog.Logger
	sessionID string

	mu      sync.RWMutex
	enabled bool
	active  bool
	ticks   int64
	errs    int64
	last    fusion.Summary
	stopped bool
	stopCh  chan struct{}
	done    chan struct{}
}

// New creates a new App with the given configuration.
func New(config Config) (*App, error) {
	if config.Source == nil {
		return nil, ErrNoSource
	}
	if config.Orchestrator == nil {
		return nil, ErrNoOrchestrator
	}
	if config.Logger == nil {
		config.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if config.SessionID == "" {
		config.SessionID = uuid.New().String()
	}
	if config.FPS <= 0 {
		config.FPS = config.Source.FPS()
	}
	if config.FPS <= 0 {
		config.FPS = sensor.DefaultFPS
	}
	if config.IdleFPS <= 0 {
		config.IdleFPS = DefaultIdleFPS
	}
	if config.IdleFPS > config.FPS {
		config.IdleFPS = config.FPS
	}
	if config.IdleTimeout <= 0 {
		config.IdleTimeout = DefaultIdleTimeout
	}
	if config.CheckpointEvery <= 0 {
		config.CheckpointEvery = DefaultCheckpointEvery
	}
	if config.JPEGQuality <= 0 || config.JPEGQuality > 100 {
		config.JPEGQuality = DefaultJPEGQuality
	}

	return &App{
		config:    config,
		logger:    config.Logger.With("component", "app"),
		sessionID: config.SessionID,
		enabled:   true,
	}, nil
}

// SessionID returns the identifier of this tracking session.
func (a *App) SessionID() string {
	return a.sessionID
}

// SetEnabled enables or disables tick processing. A disabled app keeps
// running but skips ticks.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.enabled = enabled
}

// IsEnabled returns whether tick processing is enabled.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// Status returns the current session status.
func (a *App) Status() Status {
	session := a.config.Orchestrator.Session()

	a.mu.RLock()
	defer a.mu.RUnlock()
	return Status{
		SessionID: a.sessionID,
		Running:   a.stopCh != nil && !isClosed(a.done),
		Enabled:   a.enabled,
		Active:    a.active,
		Degraded:  session.Degraded(),
		Ticks:     a.ticks,
		Errors:    a.errs,
		Last:      a.last,
	}
}

func isClosed(ch <-chan struct{}) bool {
	select {
	case <-ch:
		return true
	default:
		return false
	}
}

// Start opens the source, records the session and begins the tick loop.
// Starting a running app is a no-op; a stopped app cannot be restarted.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopped {
		return ErrStopped
	}
	if a.stopCh != nil {
		return nil
	}

	if err := a.config.Source.Open(); err != nil {
		return err
	}

	session := a.config.Orchestrator.Session()
	if a.config.Metrics != nil {
		a.config.Metrics.SetSkinModelLoaded(!session.Degraded())
	}
	if a.config.Store != nil {
		rec := &store.Session{
			ID:              a.sessionID,
			ProfileID:       a.config.ProfileID,
			SkinModelLoaded: !session.Degraded(),
		}
		if err := a.config.Store.Sessions().Start(rec); err != nil {
			a.logger.Warn("failed to record session", "error", err)
		}
	}

	a.stopCh = make(chan struct{})
	a.done = make(chan struct{})
	go a.runLoop(a.stopCh, a.done)

	a.logger.Info("tracking session started",
		"session", a.sessionID,
		"fps", a.config.FPS,
		"idle_fps", a.config.IdleFPS,
		"degraded", session.Degraded(),
	)
	return nil
}

// Done returns a channel closed when the tick loop exits, or nil if the app
// was never started.
func (a *App) Done() <-chan struct{} {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.done
}

// Stop halts the tick loop, waits for the in-flight tick to finish and
// releases the source and pipeline buffers.
func (a *App) Stop() {
	a.mu.Lock()
	stopCh, done := a.stopCh, a.done
	a.stopCh = nil
	if stopCh != nil {
		a.stopped = true
	}
	a.mu.Unlock()

	if stopCh == nil {
		return
	}
	close(stopCh)
	<-done

	if err := a.config.Source.Close(); err != nil {
		a.logger.Warn("error closing source", "error", err)
	}
	if err := a.config.Orchestrator.Close(); err != nil {
		a.logger.Warn("error closing orchestrator", "error", err)
	}

	a.mu.RLock()
	ticks := a.ticks
	a.mu.RUnlock()

	if a.config.Store != nil {
		if err := a.config.Store.Sessions().Finish(a.sessionID, ticks, time.Now()); err != nil {
			a.logger.Warn("failed to finish session record", "error", err)
		}
	}

	a.logger.Info("tracking session stopped", "session", a.sessionID, "ticks", ticks)
}
