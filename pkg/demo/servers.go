package demo

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Endpoint names served by this package.
const (
	Directory   = "directory"
	Credentials = "credentials"
	Alerts      = "alerts"
)

const dateLayout = "2006-01-02"

var severities = map[string]bool{"critical": true, "high": true, "medium": true, "low": true}

type providerOut struct {
	ProviderID int    `json:"provider_id"`
	NPI        string `json:"npi"`
	Name       string `json:"name"`
	Taxonomy   string `json:"taxonomy"`
	State      string `json:"state"`
	Status     string `json:"status"`
}

type licenseOut struct {
	CredentialID  string `json:"credential_id"`
	Credential    string `json:"credential"`
	ExpiresOn     string `json:"expires_on"`
	DaysRemaining int    `json:"days_remaining"`
}

type searchIn struct {
	Query string `json:"query" jsonschema:"name, specialty or two-letter state to search for"`
}

type searchOut struct {
	Providers []providerOut `json:"providers"`
}

type npiIn struct {
	NPI string `json:"npi" jsonschema:"10-digit National Provider Identifier"`
}

type providerDetailOut struct {
	ProviderID int          `json:"provider_id"`
	NPI        string       `json:"npi"`
	Name       string       `json:"name"`
	Taxonomy   string       `json:"taxonomy"`
	Status     string       `json:"status"`
	Licenses   []licenseOut `json:"licenses"`
}

type expiringIn struct {
	WindowDays int `json:"window_days,omitempty" jsonschema:"look-ahead window in days, default 90"`
}

type expiringItem struct {
	ProviderID    int    `json:"provider_id"`
	Name          string `json:"name"`
	Credential    string `json:"credential"`
	CredentialID  string `json:"credential_id"`
	ExpiresOn     string `json:"expires_on"`
	DaysRemaining int    `json:"days_remaining"`
}

type expiringOut struct {
	Expiring []expiringItem `json:"expiring"`
}

type snapshotIn struct {
	ProviderID int `json:"provider_id" jsonschema:"provider id"`
}

type snapshotOut struct {
	ProviderID  int          `json:"provider_id"`
	Name        string       `json:"name"`
	Status      string       `json:"status"`
	Credentials []licenseOut `json:"credentials"`
}

type logAlertIn struct {
	ProviderID   int    `json:"provider_id" jsonschema:"provider id"`
	CredentialID string `json:"credential_id,omitempty" jsonschema:"credential id"`
	Severity     string `json:"severity" jsonschema:"one of critical, high, medium, low"`
	Message      string `json:"message" jsonschema:"alert text"`
}

type logAlertOut struct {
	Success bool `json:"success"`
	AlertID int  `json:"alert_id"`
}

type openAlertsIn struct {
	ProviderID int    `json:"provider_id,omitempty" jsonschema:"only alerts for this provider"`
	Severity   string `json:"severity,omitempty" jsonschema:"only alerts of this severity"`
}

type alertOut struct {
	AlertID      int    `json:"alert_id"`
	ProviderID   int    `json:"provider_id"`
	CredentialID string `json:"credential_id"`
	Severity     string `json:"severity"`
	Message      string `json:"message"`
	CreatedAt    string `json:"created_at"`
}

type openAlertsOut struct {
	Alerts []alertOut `json:"alerts"`
}

func newServer(endpoint string) *mcp.Server {
	return mcp.NewServer(&mcp.Implementation{Name: "credentialwatch-demo-" + endpoint, Version: "v1.0.0"}, nil)
}

// NewDirectoryServer serves provider search and NPI lookup.
func NewDirectoryServer(r *Roster) *mcp.Server {
	s := newServer(Directory)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "directory_search_providers",
		Description: "Search the provider directory by name, specialty or state.",
	}, func(_ context.Context, _ *mcp.CallToolRequest, in searchIn) (*mcp.CallToolResult, searchOut, error) {
		out := searchOut{Providers: make([]providerOut, 0)}
		for _, p := range r.Search(in.Query) {
			out.Providers = append(out.Providers, toProviderOut(p))
		}
		return nil, out, nil
	})

	mcp.AddTool(s, &mcp.Tool{
		Name:        "directory_get_provider_by_npi",
		Description: "Look up a provider by National Provider Identifier.",
	}, func(_ context.Context, _ *mcp.CallToolRequest, in npiIn) (*mcp.CallToolResult, providerDetailOut, error) {
		p, err := r.ByNPI(in.NPI)
		if err != nil {
			return nil, providerDetailOut{}, err
		}
		return nil, providerDetailOut{
			ProviderID: p.ID,
			NPI:        p.NPI,
			Name:       p.Name,
			Taxonomy:   p.Specialty,
			Status:     p.Status,
			Licenses:   licenses(r, p.ID),
		}, nil
	})

	return s
}

// NewCredentialsServer serves expiring credential listings and provider
// snapshots.
func NewCredentialsServer(r *Roster) *mcp.Server {
	s := newServer(Credentials)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "credentials_list_expiring_credentials",
		Description: "List credentials expiring within a window of days, soonest first.",
	}, func(_ context.Context, _ *mcp.CallToolRequest, in expiringIn) (*mcp.CallToolResult, expiringOut, error) {
		window := in.WindowDays
		if window <= 0 {
			window = 90
		}
		out := expiringOut{Expiring: make([]expiringItem, 0)}
		for _, c := range r.Expiring(window) {
			p, err := r.ByID(c.ProviderID)
			if err != nil {
				return nil, expiringOut{}, err
			}
			out.Expiring = append(out.Expiring, expiringItem{
				ProviderID:    p.ID,
				Name:          p.Name,
				Credential:    c.Kind,
				CredentialID:  c.ID,
				ExpiresOn:     c.ExpiresOn.Format(dateLayout),
				DaysRemaining: r.DaysRemaining(c),
			})
		}
		return nil, out, nil
	})

	mcp.AddTool(s, &mcp.Tool{
		Name:        "credentials_get_provider_snapshot",
		Description: "Return a provider's status and credential summary.",
	}, func(_ context.Context, _ *mcp.CallToolRequest, in snapshotIn) (*mcp.CallToolResult, snapshotOut, error) {
		p, err := r.ByID(in.ProviderID)
		if err != nil {
			return nil, snapshotOut{}, err
		}
		return nil, snapshotOut{
			ProviderID:  p.ID,
			Name:        p.Name,
			Status:      p.Status,
			Credentials: licenses(r, p.ID),
		}, nil
	})

	return s
}

// NewAlertsServer serves the alert log.
func NewAlertsServer(r *Roster) *mcp.Server {
	s := newServer(Alerts)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "alerts_log_alert",
		Description: "Record an alert about an expiring credential.",
	}, func(_ context.Context, _ *mcp.CallToolRequest, in logAlertIn) (*mcp.CallToolResult, logAlertOut, error) {
		severity := strings.ToLower(strings.TrimSpace(in.Severity))
		if !severities[severity] {
			return nil, logAlertOut{}, fmt.Errorf("unknown severity %q", in.Severity)
		}
		if strings.TrimSpace(in.Message) == "" {
			return nil, logAlertOut{}, fmt.Errorf("message is required")
		}
		a := r.LogAlert(Alert{
			ProviderID:   in.ProviderID,
			CredentialID: in.CredentialID,
			Severity:     severity,
			Message:      in.Message,
		})
		return nil, logAlertOut{Success: true, AlertID: a.ID}, nil
	})

	mcp.AddTool(s, &mcp.Tool{
		Name:        "alerts_get_open_alerts",
		Description: "List open credential alerts, optionally filtered by provider or severity.",
	}, func(_ context.Context, _ *mcp.CallToolRequest, in openAlertsIn) (*mcp.CallToolResult, openAlertsOut, error) {
		out := openAlertsOut{Alerts: make([]alertOut, 0)}
		for _, a := range r.OpenAlerts(in.ProviderID, in.Severity) {
			out.Alerts = append(out.Alerts, alertOut{
				AlertID:      a.ID,
				ProviderID:   a.ProviderID,
				CredentialID: a.CredentialID,
				Severity:     a.Severity,
				Message:      a.Message,
				CreatedAt:    a.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
			})
		}
		return nil, out, nil
	})

	return s
}

// NewServer returns the server for the named endpoint.
func NewServer(endpoint string, r *Roster) (*mcp.Server, error) {
	switch endpoint {
	case Directory:
		return NewDirectoryServer(r), nil
	case Credentials:
		return NewCredentialsServer(r), nil
	case Alerts:
		return NewAlertsServer(r), nil
	default:
		return nil, fmt.Errorf("unknown endpoint %q", endpoint)
	}
}

// Handler serves s over HTTP. Transport "sse" (the default) expects the
// handler to be mounted at /sse; "streamable-http" at /mcp.
func Handler(s *mcp.Server, transport string) (http.Handler, error) {
	getServer := func(*http.Request) *mcp.Server { return s }
	switch transport {
	case "", "sse":
		return mcp.NewSSEHandler(getServer, nil), nil
	case "streamable-http":
		return mcp.NewStreamableHTTPHandler(getServer, nil), nil
	default:
		return nil, fmt.Errorf("unsupported transport %q", transport)
	}
}

func toProviderOut(p Provider) providerOut {
	return providerOut{
		ProviderID: p.ID,
		NPI:        p.NPI,
		Name:       p.Name,
		Taxonomy:   p.Specialty,
		State:      p.State,
		Status:     p.Status,
	}
}

func licenses(r *Roster, providerID int) []licenseOut {
	out := make([]licenseOut, 0)
	for _, c := range r.CredentialsOf(providerID) {
		out = append(out, licenseOut{
			CredentialID:  c.ID,
			Credential:    c.Kind,
			ExpiresOn:     c.ExpiresOn.Format(dateLayout),
			DaysRemaining: r.DaysRemaining(c),
		})
	}
	return out
}
