package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/rhuss/credentialwatch/pkg/debug"
	"github.com/rhuss/credentialwatch/pkg/observability"
	"github.com/rhuss/credentialwatch/pkg/tools"
)

// Client is the single point of access to every configured endpoint. It
// owns one session per reachable endpoint and a flattened catalog of their
// tools, resolves logical operation names against that catalog, and falls
// back to canned responses when a name cannot be resolved.
//
// Connect, Close and Refresh are serialized with each other. CallTool,
// Tools, EndpointFor and Status only take a read lock and may run
// concurrently.
type Client struct {
	cfg    Config
	dial   Dialer
	logger *slog.Logger

	// lifecycle serializes Connect, Close and Refresh.
	lifecycle sync.Mutex

	mu        sync.RWMutex
	connected bool
	mock      bool
	sessions  map[string]*session
	remote    map[string][]remoteTool
	lastErr   map[string]string
	catalog   map[string]tools.Descriptor
	names     []string
}

// Option configures a Client.
type Option func(*Client)

// WithDialer replaces the transport factory.
func WithDialer(d Dialer) Option {
	return func(c *Client) { c.dial = d }
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a Client for cfg. Call Connect before use; an unconnected
// client answers every call with mock data.
func New(cfg Config, opts ...Option) *Client {
	c := &Client{
		cfg:  cfg.withDefaults(),
		dial: DialHTTP,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	c.reset()
	return c
}

// reset clears all connection state. Caller must hold mu or own c exclusively.
func (c *Client) reset() {
	c.connected = false
	c.mock = false
	c.sessions = make(map[string]*session)
	c.remote = make(map[string][]remoteTool)
	c.lastErr = make(map[string]string)
	c.catalog = make(map[string]tools.Descriptor)
	c.names = nil
}

// Connect attempts every configured endpoint once and discovers its tools.
// Endpoints that fail are logged and left without a session. Calling
// Connect on a connected client is a no-op, and concurrent callers collapse
// into a single attempt.
//
// If the network is considered restricted (see MockPolicy) no connection is
// attempted and the client switches to mock mode.
//
// The only error returned is cancellation of ctx, which leaves the client
// not connected.
func (c *Client) Connect(ctx context.Context) error {
	c.lifecycle.Lock()
	defer c.lifecycle.Unlock()

	c.mu.RLock()
	connected := c.connected
	c.mu.RUnlock()
	if connected {
		return nil
	}

	if c.cfg.restrictedNetwork() {
		c.mu.Lock()
		c.connected = true
		c.mock = true
		c.mu.Unlock()
		c.logger.Warn("restricted network detected, tool client running in mock mode",
			"policy", string(c.cfg.MockMode),
			"endpoints", len(c.cfg.Endpoints),
		)
		return nil
	}

	type attempt struct {
		sess  *session
		tools []remoteTool
		err   error
	}
	attempts := make([]attempt, len(c.cfg.Endpoints))

	var wg sync.WaitGroup
	for i, ep := range c.cfg.Endpoints {
		wg.Add(1)
		go func(i int, ep Endpoint) {
			defer wg.Done()
			s, rt, err := c.connectEndpoint(ctx, ep)
			attempts[i] = attempt{sess: s, tools: rt, err: err}
		}(i, ep)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		for _, a := range attempts {
			if a.sess != nil {
				_ = a.sess.close()
			}
		}
		return fmt.Errorf("connecting tool client: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for i, ep := range c.cfg.Endpoints {
		a := attempts[i]
		if a.err != nil {
			observability.EndpointConnectsTotal.WithLabelValues(ep.Name, observability.StatusError).Inc()
			c.logger.Warn("endpoint unreachable, continuing without it",
				"endpoint", ep.Name,
				"url", ep.URL,
				"error", a.err,
			)
			c.lastErr[ep.Name] = a.err.Error()
			continue
		}
		observability.EndpointConnectsTotal.WithLabelValues(ep.Name, observability.StatusSuccess).Inc()
		c.sessions[ep.Name] = a.sess
		c.remote[ep.Name] = a.tools
		c.logger.Info("discovered tools",
			"endpoint", ep.Name,
			"count", len(a.tools),
		)
	}

	c.rebuildCatalog()
	c.connected = true
	return nil
}

// connectEndpoint opens a session to ep and lists its tools, bounded by the
// connect timeout.
func (c *Client) connectEndpoint(ctx context.Context, ep Endpoint) (*session, []remoteTool, error) {
	debug.Log("mcp", "connecting", "endpoint", ep.Name, "url", ep.URL, "transport", ep.Transport)

	s, err := c.openWithTimeout(ctx, ep)
	if err != nil {
		return nil, nil, err
	}

	listCtx, cancel := context.WithTimeout(ctx, c.cfg.ConnectTimeout)
	defer cancel()
	rt, err := s.listTools(listCtx)
	if err != nil {
		_ = s.close()
		return nil, nil, err
	}
	return s, rt, nil
}

// openWithTimeout performs the handshake. The session must outlive ctx, so
// the handshake runs on a context detached from ctx and is abandoned (and
// its session closed once established) if the timeout or ctx fires first.
func (c *Client) openWithTimeout(ctx context.Context, ep Endpoint) (*session, error) {
	type opened struct {
		sess *session
		err  error
	}
	done := make(chan opened, 1)

	go func() {
		sessCtx := context.WithoutCancel(ctx)
		transport, err := c.dial(sessCtx, ep, c.cfg.AuthToken)
		if err != nil {
			done <- opened{err: fmt.Errorf("creating transport for %q: %w", ep.Name, err)}
			return
		}
		s, err := openSession(sessCtx, ep.Name, transport)
		done <- opened{sess: s, err: err}
	}()

	timer := time.NewTimer(c.cfg.ConnectTimeout)
	defer timer.Stop()

	select {
	case o := <-done:
		return o.sess, o.err
	case <-timer.C:
	case <-ctx.Done():
	}

	go func() {
		if o := <-done; o.sess != nil {
			_ = o.sess.close()
		}
	}()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("connecting to endpoint %q: timed out after %s", ep.Name, c.cfg.ConnectTimeout)
}

// rebuildCatalog flattens the per-endpoint tool lists into the catalog.
// Endpoints are visited in configuration order; the first endpoint to
// expose a name keeps it, later ones are qualified with their endpoint
// name. Caller must hold mu.
func (c *Client) rebuildCatalog() {
	catalog := make(map[string]tools.Descriptor)
	for _, ep := range c.cfg.Endpoints {
		for _, rt := range c.remote[ep.Name] {
			name := rt.name
			if _, taken := catalog[name]; taken {
				name = ep.Name + "_" + rt.name
				if _, taken := catalog[name]; taken {
					c.logger.Warn("duplicate tool name, ignoring", "tool", rt.name, "endpoint", ep.Name)
					continue
				}
				c.logger.Warn("duplicate tool name, qualifying with endpoint",
					"tool", rt.name,
					"endpoint", ep.Name,
					"qualified", name,
				)
			}
			catalog[name] = tools.Descriptor{
				Name:        name,
				Endpoint:    ep.Name,
				RemoteName:  rt.name,
				Description: rt.description,
				InputSchema: rt.schema,
			}
		}
	}

	names := make([]string, 0, len(catalog))
	for name := range catalog {
		names = append(names, name)
	}
	sort.Strings(names)

	c.catalog = catalog
	c.names = names
}

// Refresh re-lists the tools of every live session and replaces the
// catalog. An endpoint whose listing fails keeps its previous tools.
// Sessions are not re-established.
func (c *Client) Refresh(ctx context.Context) error {
	c.lifecycle.Lock()
	defer c.lifecycle.Unlock()

	c.mu.RLock()
	if !c.connected || c.mock {
		c.mu.RUnlock()
		return nil
	}
	sessions := make(map[string]*session, len(c.sessions))
	for name, s := range c.sessions {
		sessions[name] = s
	}
	c.mu.RUnlock()

	observability.CatalogRefreshesTotal.Inc()

	listed := make(map[string][]remoteTool, len(sessions))
	var errs []error
	for name, s := range sessions {
		listCtx, cancel := context.WithTimeout(ctx, c.cfg.ConnectTimeout)
		rt, err := s.listTools(listCtx)
		cancel()
		if err != nil {
			errs = append(errs, err)
			continue
		}
		listed[name] = rt
	}

	c.mu.Lock()
	for name, rt := range listed {
		c.remote[name] = rt
		delete(c.lastErr, name)
	}
	c.rebuildCatalog()
	count := len(c.catalog)
	c.mu.Unlock()

	c.logger.Info("refreshed tool catalog", "tools", count, "failed_endpoints", len(errs))
	return errors.Join(errs...)
}

// Close releases every session and forgets the catalog. It is safe to call
// on a client that never connected.
func (c *Client) Close() error {
	c.lifecycle.Lock()
	defer c.lifecycle.Unlock()

	c.mu.Lock()
	sessions := c.sessions
	c.reset()
	c.mu.Unlock()

	var errs []error
	for name, s := range sessions {
		if err := s.close(); err != nil {
			c.logger.Warn("failed to close endpoint session", "endpoint", name, "error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// CallTool resolves operation against the catalog and invokes it.
//
// The endpoint hint is only used to select a mock response. When the client
// is not connected, is in mock mode, or operation cannot be resolved even
// after one catalog refresh, the mock response for (endpoint, operation)
// is returned instead. A resolved tool that fails returns a
// *tools.InvocationError.
func (c *Client) CallTool(ctx context.Context, endpoint, operation string, args map[string]any) (any, error) {
	c.mu.RLock()
	connected, mock := c.connected, c.mock
	c.mu.RUnlock()

	if !connected || mock {
		return c.mockCall(endpoint, operation, args, "not connected"), nil
	}

	d, ok := c.lookup(operation)
	if !ok {
		debug.Log("mcp", "tool not in catalog, refreshing", "operation", operation)
		if err := c.Refresh(ctx); err != nil {
			c.logger.Warn("catalog refresh failed", "error", err)
		}
		d, ok = c.lookup(operation)
	}
	if !ok {
		return c.mockCall(endpoint, operation, args, "unresolved"), nil
	}

	c.mu.RLock()
	s := c.sessions[d.Endpoint]
	c.mu.RUnlock()
	if s == nil {
		return c.mockCall(endpoint, operation, args, "session closed"), nil
	}

	debug.Log("mcp", "calling tool", "endpoint", d.Endpoint, "operation", operation, "tool", d.Name)

	callCtx, cancel := context.WithTimeout(ctx, c.cfg.CallTimeout)
	defer cancel()

	start := time.Now()
	out, err := s.call(callCtx, d.RemoteName, args)
	observability.ToolCallDuration.WithLabelValues(d.Endpoint, operation).Observe(time.Since(start).Seconds())

	if err != nil {
		observability.ToolCallsTotal.WithLabelValues(d.Endpoint, operation, observability.StatusError).Inc()
		ierr := &tools.InvocationError{Endpoint: d.Endpoint, Operation: operation, Tool: d.Name, Err: err}
		c.logger.Error("tool invocation failed",
			"endpoint", d.Endpoint,
			"operation", operation,
			"tool", d.Name,
			"error", err,
		)
		return nil, ierr
	}

	observability.ToolCallsTotal.WithLabelValues(d.Endpoint, operation, observability.StatusSuccess).Inc()
	return out, nil
}

func (c *Client) mockCall(endpoint, operation string, args map[string]any, reason string) map[string]any {
	observability.ToolCallsTotal.WithLabelValues(endpoint, operation, observability.StatusMock).Inc()
	c.logger.Warn("using mock response", "endpoint", endpoint, "operation", operation, "reason", reason)
	return tools.MockResponse(endpoint, operation, args)
}

// lookup resolves operation against the current catalog.
func (c *Client) lookup(operation string) (tools.Descriptor, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	name, ok := tools.Resolve(c.names, operation)
	if !ok {
		return tools.Descriptor{}, false
	}
	return c.catalog[name], true
}

// Tools returns the catalog sorted by name. While the catalog is empty
// (not connected, mock mode, or no endpoint reachable) the mock catalog is
// returned so callers can still advertise the known operations.
func (c *Client) Tools() []tools.Descriptor {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.mock || len(c.names) == 0 {
		return tools.MockCatalog()
	}
	out := make([]tools.Descriptor, 0, len(c.names))
	for _, name := range c.names {
		out = append(out, c.catalog[name])
	}
	return out
}

// EndpointFor returns the endpoint owning the named catalog entry, or
// tools.ErrToolNotFound.
func (c *Client) EndpointFor(name string) (string, error) {
	c.mu.RLock()
	d, ok := c.catalog[name]
	c.mu.RUnlock()
	if ok {
		return d.Endpoint, nil
	}
	for _, d := range tools.MockCatalog() {
		if d.Name == name {
			return d.Endpoint, nil
		}
	}
	return "", fmt.Errorf("%w: %s", tools.ErrToolNotFound, name)
}

// MockMode reports whether the client short-circuited into mock mode.
func (c *Client) MockMode() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.mock
}

// EndpointStatus describes one endpoint registration.
type EndpointStatus struct {
	Name      string `json:"name"`
	URL       string `json:"url"`
	Connected bool   `json:"connected"`
	Tools     int    `json:"tools"`
	Error     string `json:"error,omitempty"`
}

// Status is a snapshot of the client state.
type Status struct {
	Connected bool             `json:"connected"`
	MockMode  bool             `json:"mock_mode"`
	Endpoints []EndpointStatus `json:"endpoints"`
}

// Status returns a snapshot of the connection state of every endpoint.
func (c *Client) Status() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()

	st := Status{Connected: c.connected, MockMode: c.mock}
	for _, ep := range c.cfg.Endpoints {
		_, live := c.sessions[ep.Name]
		st.Endpoints = append(st.Endpoints, EndpointStatus{
			Name:      ep.Name,
			URL:       ep.URL,
			Connected: live,
			Tools:     len(c.remote[ep.Name]),
			Error:     c.lastErr[ep.Name],
		})
	}
	return st
}
