package auth

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/uptrace/bun"
)

var _ Config = (*SimpleConfig)(nil)

// SimpleConfig is a plain-struct Config for callers that do not carry their
// own configuration container. Zero fields fall back to defaults.
type SimpleConfig struct {
	BaseURL          string        `json:"base_url"`
	RequestTimeout   time.Duration `json:"request_timeout"`
	MonitorInterval  time.Duration `json:"monitor_interval"`
	RefreshThreshold time.Duration `json:"refresh_threshold"`
	StorageDSN       string        `json:"storage_dsn"`
}

func (c SimpleConfig) GetBaseURL() string { return c.BaseURL }

func (c SimpleConfig) GetRequestTimeout() time.Duration {
	if c.RequestTimeout <= 0 {
		return 10 * time.Second
	}
	return c.RequestTimeout
}

func (c SimpleConfig) GetMonitorInterval() time.Duration {
	if c.MonitorInterval <= 0 {
		return defaultMonitorInterval
	}
	return c.MonitorInterval
}

func (c SimpleConfig) GetRefreshThreshold() time.Duration {
	if c.RefreshThreshold <= 0 {
		return defaultRefreshThreshold
	}
	return c.RefreshThreshold
}

func (c SimpleConfig) GetStorageDSN() string { return c.StorageDSN }

// Client bundles the wired session engine: storage, gateway, state machine,
// monitor, and route guard. The monitor follows the session: it starts when
// a transition settles authenticated and stops when the session ends.
type Client struct {
	Store   *BunTokenStore
	Gateway *HTTPGateway
	Manager *SessionManager
	Monitor *Monitor
	Guard   *RouteGuard

	db *bun.DB

	mu     sync.Mutex
	closed bool
}

// NewClient wires the full engine from configuration. The returned client
// owns the storage handle; call Close when done.
func NewClient(ctx context.Context, cfg Config, opts ...ClientOption) (*Client, error) {
	options := &clientOptions{logger: defLogger{}}
	for _, opt := range opts {
		if opt != nil {
			opt(options)
		}
	}

	db, err := OpenStorage(cfg.GetStorageDSN())
	if err != nil {
		return nil, err
	}

	store := NewBunTokenStore(db, WithStoreLogger(options.logger))
	if err := store.Init(ctx); err != nil {
		db.Close()
		return nil, err
	}

	gateway := NewHTTPGateway(GatewayConfig{
		BaseURL:    cfg.GetBaseURL(),
		HTTPClient: &http.Client{Timeout: cfg.GetRequestTimeout()},
		Logger:     options.logger,
	})

	managerOpts := []SessionManagerOption{WithManagerLogger(options.logger)}
	managerOpts = append(managerOpts, options.managerOpts...)
	manager := NewSessionManager(store, gateway, managerOpts...)

	monitorOpts := []MonitorOption{
		WithMonitorInterval(cfg.GetMonitorInterval()),
		WithRefreshThreshold(cfg.GetRefreshThreshold()),
		WithMonitorLogger(options.logger),
	}
	monitorOpts = append(monitorOpts, options.monitorOpts...)
	monitor := NewMonitor(manager, store, monitorOpts...)

	client := &Client{
		Store:   store,
		Gateway: gateway,
		Manager: manager,
		Monitor: monitor,
		Guard:   NewRouteGuard(manager, options.guardOpts...),
		db:      db,
	}

	manager.Subscribe(func(s Session) {
		// A transition that settles after Close must not revive the monitor.
		if s.Loading || client.isClosed() {
			return
		}
		if s.Authenticated {
			monitor.Start(context.Background())
		} else {
			monitor.Stop()
		}
	})

	return client, nil
}

// Close stops the monitor and releases the storage handle. It is safe to
// call more than once.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	c.Monitor.Stop()
	return c.db.Close()
}

func (c *Client) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

type clientOptions struct {
	logger      Logger
	managerOpts []SessionManagerOption
	monitorOpts []MonitorOption
	guardOpts   []RouteGuardOption
}

// ClientOption customizes NewClient wiring.
type ClientOption func(*clientOptions)

// WithClientLogger sets the logger shared by every component.
func WithClientLogger(logger Logger) ClientOption {
	return func(o *clientOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithClientManagerOptions forwards options to the session manager.
func WithClientManagerOptions(opts ...SessionManagerOption) ClientOption {
	return func(o *clientOptions) {
		o.managerOpts = append(o.managerOpts, opts...)
	}
}

// WithClientMonitorOptions forwards options to the monitor.
func WithClientMonitorOptions(opts ...MonitorOption) ClientOption {
	return func(o *clientOptions) {
		o.monitorOpts = append(o.monitorOpts, opts...)
	}
}

// WithClientGuardOptions forwards options to the route guard.
func WithClientGuardOptions(opts ...RouteGuardOption) ClientOption {
	return func(o *clientOptions) {
		o.guardOpts = append(o.guardOpts, opts...)
	}
}
