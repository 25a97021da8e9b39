package mcp

import (
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/rhuss/credentialwatch/pkg/tools"
)

// Transport types accepted by Endpoint.Transport.
const (
	TransportSSE        = "sse"
	TransportStreamable = "streamable-http"
)

// MockPolicy controls when the client short-circuits into mock mode.
type MockPolicy string

const (
	// MockAuto engages mock mode when running in a hosted environment
	// and every endpoint address points at the loopback interface.
	MockAuto MockPolicy = "auto"
	// MockOn always engages mock mode.
	MockOn MockPolicy = "on"
	// MockOff never engages mock mode.
	MockOff MockPolicy = "off"
)

// Default timeouts.
const (
	DefaultConnectTimeout = 10 * time.Second
	DefaultCallTimeout    = 30 * time.Second
)

// Endpoint describes a single endpoint registration.
type Endpoint struct {
	// Name is the logical name for this endpoint ("directory",
	// "credentials", "alerts"). It is used for logging, mock dispatch and
	// qualifying duplicate tool names.
	Name string `json:"name" yaml:"name"`

	// Transport is the transport type to use: "sse" or "streamable-http".
	// If empty, defaults to "sse".
	Transport string `json:"transport" yaml:"transport"`

	// URL is the endpoint address.
	URL string `json:"url" yaml:"url"`

	// Headers contains additional HTTP headers to send with requests.
	Headers map[string]string `json:"headers,omitempty" yaml:"headers"`
}

// Config holds the configuration for the tool client.
type Config struct {
	// Endpoints is the fixed set of endpoints to connect to. Order
	// determines which endpoint keeps a bare tool name on collisions.
	Endpoints []Endpoint

	// AuthToken, when set, is sent as "Authorization: Bearer <token>" on
	// every endpoint connection.
	AuthToken string

	ConnectTimeout time.Duration
	CallTimeout    time.Duration

	MockMode MockPolicy

	// Hosted reports whether the process runs in a hosted environment
	// with restricted outbound networking.
	Hosted bool
}

// DefaultEndpoints returns the local development endpoint registrations.
func DefaultEndpoints() []Endpoint {
	return []Endpoint{
		{Name: tools.EndpointDirectory, Transport: TransportSSE, URL: "http://localhost:8001/sse"},
		{Name: tools.EndpointCredentials, Transport: TransportSSE, URL: "http://localhost:8002/sse"},
		{Name: tools.EndpointAlerts, Transport: TransportSSE, URL: "http://localhost:8003/sse"},
	}
}

// NormalizeURL returns the canonical form of an endpoint address: trimmed,
// without a trailing slash, and ending in the transport path suffix
// ("/sse" or "/mcp").
func NormalizeURL(raw, transport string) string {
	u := strings.TrimRight(strings.TrimSpace(raw), "/")
	if u == "" {
		return ""
	}
	suffix := "/sse"
	if transport == TransportStreamable {
		suffix = "/mcp"
	}
	if !strings.HasSuffix(u, suffix) {
		u += suffix
	}
	return u
}

// withDefaults fills zero values.
func (c Config) withDefaults() Config {
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = DefaultConnectTimeout
	}
	if c.CallTimeout <= 0 {
		c.CallTimeout = DefaultCallTimeout
	}
	if c.MockMode == "" {
		c.MockMode = MockAuto
	}
	eps := make([]Endpoint, len(c.Endpoints))
	for i, ep := range c.Endpoints {
		if ep.Transport == "" {
			ep.Transport = TransportSSE
		}
		ep.URL = NormalizeURL(ep.URL, ep.Transport)
		eps[i] = ep
	}
	c.Endpoints = eps
	return c
}

// restrictedNetwork reports whether mock mode should be engaged.
func (c Config) restrictedNetwork() bool {
	switch c.MockMode {
	case MockOn:
		return true
	case MockOff:
		return false
	}
	if !c.Hosted || len(c.Endpoints) == 0 {
		return false
	}
	for _, ep := range c.Endpoints {
		if !isLoopback(ep.URL) {
			return false
		}
	}
	return true
}

func isLoopback(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	host := u.Hostname()
	if strings.EqualFold(host, "localhost") {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && (ip.IsLoopback() || ip.IsUnspecified())
}
