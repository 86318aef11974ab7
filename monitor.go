package auth

import (
	"context"
	"sync"
	"time"
)

const (
	defaultMonitorInterval  = 5 * time.Minute
	defaultRefreshThreshold = 5 * time.Minute
)

// RefreshSignal is invoked when the active token's remaining lifetime drops
// below the refresh threshold. It is an extension point: the engine does not
// implement token renewal itself.
type RefreshSignal func(remaining time.Duration)

// Monitor periodically re-validates the active session straight from
// storage, so tampering or expiry is caught even when the in-memory
// snapshot still looks healthy. An invalid token forces a logout; a token
// close to expiry raises the refresh signal.
type Monitor struct {
	manager  *SessionManager
	store    TokenStore
	interval time.Duration
	refresh  time.Duration
	logger   Logger
	now      func() time.Time
	onSignal RefreshSignal

	mu     sync.Mutex
	cancel context.CancelFunc
}

// MonitorOption customizes monitor construction.
type MonitorOption func(*Monitor)

// WithMonitorInterval overrides the tick interval.
func WithMonitorInterval(interval time.Duration) MonitorOption {
	return func(mon *Monitor) {
		if interval > 0 {
			mon.interval = interval
		}
	}
}

// WithRefreshThreshold overrides the remaining lifetime below which the
// refresh signal fires.
func WithRefreshThreshold(threshold time.Duration) MonitorOption {
	return func(mon *Monitor) {
		if threshold > 0 {
			mon.refresh = threshold
		}
	}
}

// WithMonitorClock injects a custom clock (useful for tests).
func WithMonitorClock(clock func() time.Time) MonitorOption {
	return func(mon *Monitor) {
		if clock != nil {
			mon.now = clock
		}
	}
}

// WithMonitorLogger overrides the default logger.
func WithMonitorLogger(logger Logger) MonitorOption {
	return func(mon *Monitor) {
		if logger != nil {
			mon.logger = logger
		}
	}
}

// WithRefreshSignal registers the needs-refresh callback.
func WithRefreshSignal(signal RefreshSignal) MonitorOption {
	return func(mon *Monitor) {
		mon.onSignal = signal
	}
}

// NewMonitor returns a monitor bound to the manager and its storage.
func NewMonitor(manager *SessionManager, store TokenStore, opts ...MonitorOption) *Monitor {
	mon := &Monitor{
		manager:  manager,
		store:    store,
		interval: defaultMonitorInterval,
		refresh:  defaultRefreshThreshold,
		logger:   defLogger{},
		now:      time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(mon)
		}
	}
	return mon
}

// Start launches the tick loop. Calling Start on a running monitor is a
// no-op.
func (mon *Monitor) Start(ctx context.Context) {
	mon.mu.Lock()
	defer mon.mu.Unlock()
	if mon.cancel != nil {
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	mon.cancel = cancel
	go mon.run(runCtx)
}

// Stop cancels the tick loop. It is safe to call on a stopped monitor.
func (mon *Monitor) Stop() {
	mon.mu.Lock()
	defer mon.mu.Unlock()
	if mon.cancel != nil {
		mon.cancel()
		mon.cancel = nil
	}
}

func (mon *Monitor) run(ctx context.Context) {
	ticker := time.NewTicker(mon.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			mon.tick(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// tick re-derives validity from storage, not from the cached snapshot. The
// storage read happens immediately before acting so a forced logout cannot
// clobber a login that just persisted a fresh token.
func (mon *Monitor) tick(ctx context.Context) {
	if !mon.manager.Current().Authenticated {
		return
	}

	token, err := mon.store.GetToken(ctx)
	if err != nil {
		mon.logger.Error("monitor failed to read token storage: %v", err)
		return
	}

	if token == "" || !isTokenValidAt(token, mon.now()) {
		mon.logger.Info("session no longer valid, forcing logout")
		mon.manager.Logout(ctx)
		return
	}

	remaining, bounded := TokenRemaining(token, mon.now())
	if bounded && remaining < mon.refresh {
		mon.logger.Info("session expires in %s, refresh needed", remaining)
		if mon.onSignal != nil {
			mon.onSignal(remaining)
		}
	}
}
