package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"catalogsearch/internal/models"
	"catalogsearch/internal/repositories"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Rebuild triggers, recorded on each SyncRun.
const (
	TriggerColdStart = "cold-start"
	TriggerStale     = "stale"
	TriggerCorrupt   = "corrupt"
	TriggerManual    = "manual"
	TriggerCron      = "cron"
	TriggerSchedule  = "schedule"
	TriggerEvent     = "event"
)

// DefaultStaleAfter is the snapshot age past which a rebuild is requested.
const DefaultStaleAfter = 24 * time.Hour

// Rebuilder replaces the stored snapshot.
type Rebuilder interface {
	Rebuild(ctx context.Context, trigger string) (*models.SyncRun, error)
}

// FreshnessMonitor hands out the current snapshot and schedules rebuilds
// when it is absent or stale, without making the caller wait.
//
// At most one rebuild runs at a time: background triggers are dropped while
// one is in flight, and synchronous callers join the running rebuild.
type FreshnessMonitor struct {
	store          repositories.SnapshotRepository
	rebuilder      Rebuilder
	staleAfter     time.Duration
	rebuildTimeout time.Duration
	logger         *zap.Logger
	now            func() time.Time

	group    singleflight.Group
	inFlight atomic.Bool

	// mu orders wg.Add against Shutdown's wg.Wait.
	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// MonitorConfig tunes a FreshnessMonitor. Zero values select defaults.
type MonitorConfig struct {
	StaleAfter     time.Duration
	RebuildTimeout time.Duration
	Logger         *zap.Logger
	Now            func() time.Time
}

// NewFreshnessMonitor creates a new FreshnessMonitor.
func NewFreshnessMonitor(store repositories.SnapshotRepository, rebuilder Rebuilder, cfg MonitorConfig) *FreshnessMonitor {
	m := &FreshnessMonitor{
		store:          store,
		rebuilder:      rebuilder,
		staleAfter:     cfg.StaleAfter,
		rebuildTimeout: cfg.RebuildTimeout,
		logger:         cfg.Logger,
		now:            cfg.Now,
	}
	if m.staleAfter <= 0 {
		m.staleAfter = DefaultStaleAfter
	}
	if m.rebuildTimeout <= 0 {
		m.rebuildTimeout = 5 * time.Minute
	}
	if m.logger == nil {
		m.logger = zap.NewNop()
	}
	if m.now == nil {
		m.now = time.Now
	}
	return m
}

// Current returns the stored snapshot and its state. An absent snapshot
// returns (nil, CacheAbsent, nil); absent, stale and corrupt snapshots each
// start a background rebuild. The call never waits for a rebuild.
func (m *FreshnessMonitor) Current(ctx context.Context) (*models.CatalogSnapshot, models.CacheState, error) {
	snapshot, state, err := m.Peek(ctx)
	switch {
	case err != nil:
		if errors.Is(err, repositories.ErrSnapshotCorrupt) {
			m.TriggerRebuild(TriggerCorrupt)
		}
	case state == models.CacheAbsent:
		m.logger.Info("Catalog snapshot not found, triggering initial sync")
		m.TriggerRebuild(TriggerColdStart)
	case state == models.CacheStale:
		m.logger.Info("Catalog snapshot is stale, triggering background sync",
			zap.Time("last_sync", snapshot.LastSyncedAt),
			zap.Duration("stale_after", m.staleAfter),
		)
		m.TriggerRebuild(TriggerStale)
	}
	return snapshot, state, err
}

// Peek reads the stored snapshot and classifies it like Current, but never
// starts a rebuild.
func (m *FreshnessMonitor) Peek(ctx context.Context) (*models.CatalogSnapshot, models.CacheState, error) {
	snapshot, ok, err := m.store.Read(ctx)
	if err != nil {
		return nil, "", err
	}
	if !ok {
		return nil, models.CacheAbsent, nil
	}
	if snapshot.IsStale(m.now(), m.staleAfter) {
		return snapshot, models.CacheStale, nil
	}
	return snapshot, models.CacheFresh, nil
}

// TriggerRebuild starts a rebuild in the background and returns true, or
// returns false if one is already running. Failures are logged only.
func (m *FreshnessMonitor) TriggerRebuild(trigger string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		m.logger.Debug("Monitor shut down, trigger dropped", zap.String("trigger", trigger))
		return false
	}
	if !m.inFlight.CompareAndSwap(false, true) {
		m.logger.Debug("Rebuild already in flight, trigger dropped", zap.String("trigger", trigger))
		return false
	}

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		defer m.inFlight.Store(false)

		ctx, cancel := context.WithTimeout(context.Background(), m.rebuildTimeout)
		defer cancel()

		if _, err := m.RebuildNow(ctx, trigger); err != nil {
			m.logger.Error("Background catalog sync failed", zap.String("trigger", trigger), zap.Error(err))
		}
	}()
	return true
}

// RebuildNow runs a rebuild and waits for it. Concurrent callers share the
// result of a single rebuild.
func (m *FreshnessMonitor) RebuildNow(ctx context.Context, trigger string) (*models.SyncRun, error) {
	v, err, shared := m.group.Do("rebuild", func() (interface{}, error) {
		return m.rebuilder.Rebuild(ctx, trigger)
	})
	if shared {
		m.logger.Debug("Joined in-flight rebuild", zap.String("trigger", trigger))
	}
	run, _ := v.(*models.SyncRun)
	return run, err
}

// Rebuilding reports whether a background rebuild is in flight.
func (m *FreshnessMonitor) Rebuilding() bool {
	return m.inFlight.Load()
}

// StaleAfter returns the staleness threshold.
func (m *FreshnessMonitor) StaleAfter() time.Duration {
	return m.staleAfter
}

// Wait blocks until background rebuilds have finished. Triggers arriving
// during or after Wait may start new ones; use Shutdown to stop them.
func (m *FreshnessMonitor) Wait() {
	m.wg.Wait()
}

// Shutdown rejects further background triggers and waits for the running
// rebuild, if any.
func (m *FreshnessMonitor) Shutdown() {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	m.wg.Wait()
}
