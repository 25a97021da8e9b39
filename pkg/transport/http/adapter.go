package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rhuss/credentialwatch/pkg/api"
	"github.com/rhuss/credentialwatch/pkg/observability"
	"github.com/rhuss/credentialwatch/pkg/sweep"
	"github.com/rhuss/credentialwatch/pkg/tools"
	toolmcp "github.com/rhuss/credentialwatch/pkg/tools/mcp"
	"github.com/rhuss/credentialwatch/pkg/transport"
)

// Sweeper runs expiry sweeps.
type Sweeper interface {
	Run(ctx context.Context, windowDays int) (sweep.Result, error)
}

// Conversation answers conversation turns.
type Conversation interface {
	Turn(ctx context.Context, message string, history []api.Exchange) (string, error)
}

// ToolDirectory is the view of the tool client the adapter needs. Connect
// is called before every sweep and turn and must be idempotent.
type ToolDirectory interface {
	Connect(ctx context.Context) error
	Tools() []tools.Descriptor
	Status() toolmcp.Status
}

// Config holds configuration for the HTTP adapter.
type Config struct {
	MaxBodySize       int64
	DefaultWindowDays int
	MetricsEnabled    bool
	MetricsPath       string
	Logger            *slog.Logger
}

// DefaultConfig returns the default adapter configuration.
func DefaultConfig() Config {
	return Config{
		MaxBodySize:       1 << 20, // 1 MB
		DefaultWindowDays: sweep.DefaultWindowDays,
		MetricsEnabled:    true,
		MetricsPath:       "/metrics",
	}
}

// Adapter serves the sweep, chat and tool catalog endpoints over HTTP.
type Adapter struct {
	sweeper      Sweeper
	conversation Conversation
	tools        ToolDirectory
	mux          *http.ServeMux
	config       Config
	logger       *slog.Logger
}

// NewAdapter creates an HTTP adapter. A nil conversation disables
// POST /api/chat (it answers 404).
func NewAdapter(sw Sweeper, conv Conversation, td ToolDirectory, cfg Config) *Adapter {
	if cfg.MaxBodySize <= 0 {
		cfg.MaxBodySize = DefaultConfig().MaxBodySize
	}
	if cfg.DefaultWindowDays <= 0 {
		cfg.DefaultWindowDays = sweep.DefaultWindowDays
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	a := &Adapter{
		sweeper:      sw,
		conversation: conv,
		tools:        td,
		mux:          http.NewServeMux(),
		config:       cfg,
		logger:       logger,
	}

	a.mux.HandleFunc("POST /api/sweep", a.handleSweep)
	a.mux.HandleFunc("POST /api/chat", a.handleChat)
	a.mux.HandleFunc("GET /api/tools", a.handleTools)
	a.mux.HandleFunc("GET /healthz", a.handleHealth)
	if cfg.MetricsEnabled {
		path := cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		a.mux.Handle("GET "+path, promhttp.Handler())
	}

	return a
}

// Handler returns the http.Handler for this adapter with the default
// middleware chain applied. Metrics wrap the mux directly so the matched
// route pattern is visible to them.
func (a *Adapter) Handler() http.Handler {
	return transport.Chain(
		transport.Recovery(a.logger),
		transport.RequestID(),
		transport.Logging(a.logger),
	)(observability.MetricsMiddleware(a.mux))
}

// handleSweep handles POST /api/sweep. An empty body runs a sweep with
// the default window.
func (a *Adapter) handleSweep(w http.ResponseWriter, r *http.Request) {
	var req api.SweepRequest
	if !a.decode(w, r, &req, true) {
		return
	}
	if apiErr := api.ValidateSweepRequest(&req); apiErr != nil {
		transport.WriteAPIError(w, apiErr)
		return
	}

	ctx := r.Context()
	if err := a.tools.Connect(ctx); err != nil {
		transport.WriteError(w, err)
		return
	}

	windowDays := req.WindowDays
	if windowDays == 0 {
		windowDays = a.config.DefaultWindowDays
	}

	res, err := a.sweeper.Run(ctx, windowDays)
	if err != nil {
		transport.WriteError(w, err)
		return
	}

	transport.WriteJSON(w, http.StatusOK, api.SweepResponse{
		RunID:         res.RunID,
		Summary:       res.Summary,
		AlertsCreated: res.AlertsCreated,
		Errors:        nonNil(res.Errors),
		ItemsScanned:  res.ItemsScanned,
		WindowDays:    res.WindowDays,
	})
}

// handleChat handles POST /api/chat.
func (a *Adapter) handleChat(w http.ResponseWriter, r *http.Request) {
	if a.conversation == nil {
		transport.WriteAPIError(w, api.NewNotFoundError("chat is not configured: no language model available"))
		return
	}

	var req api.ChatRequest
	if !a.decode(w, r, &req, false) {
		return
	}
	if apiErr := api.ValidateChatRequest(&req); apiErr != nil {
		transport.WriteAPIError(w, apiErr)
		return
	}

	ctx := r.Context()
	if err := a.tools.Connect(ctx); err != nil {
		transport.WriteError(w, err)
		return
	}

	reply, err := a.conversation.Turn(ctx, req.Message, req.History)
	if err != nil {
		a.logger.Warn("chat turn failed",
			"request_id", transport.RequestIDFromContext(ctx),
			"error", err,
		)
		transport.WriteError(w, err)
		return
	}

	transport.WriteJSON(w, http.StatusOK, api.ChatResponse{Reply: reply})
}

// handleTools handles GET /api/tools.
func (a *Adapter) handleTools(w http.ResponseWriter, r *http.Request) {
	st := a.tools.Status()

	resp := api.ToolsResponse{
		Connected: st.Connected,
		MockMode:  st.MockMode,
		Endpoints: make([]api.EndpointInfo, 0, len(st.Endpoints)),
		Tools:     make([]api.ToolInfo, 0),
	}
	for _, ep := range st.Endpoints {
		resp.Endpoints = append(resp.Endpoints, api.EndpointInfo{
			Name:      ep.Name,
			URL:       ep.URL,
			Connected: ep.Connected,
			Tools:     ep.Tools,
			Error:     ep.Error,
		})
	}
	for _, d := range a.tools.Tools() {
		resp.Tools = append(resp.Tools, api.ToolInfo{
			Name:        d.Name,
			Endpoint:    d.Endpoint,
			Description: d.Description,
			InputSchema: d.InputSchema,
		})
	}

	transport.WriteJSON(w, http.StatusOK, resp)
}

// handleHealth handles GET /healthz.
func (a *Adapter) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, "ok")
}

// decode reads a JSON request body into v. It writes the error response
// and returns false on failure. With allowEmpty an absent body leaves v
// at its zero value.
func (a *Adapter) decode(w http.ResponseWriter, r *http.Request, v any, allowEmpty bool) bool {
	if ct := r.Header.Get("Content-Type"); ct != "" && !isJSON(ct) {
		transport.WriteErrorResponse(w,
			api.NewInvalidRequestError("content_type", "Content-Type must be application/json"),
			http.StatusUnsupportedMediaType,
		)
		return false
	}

	r.Body = http.MaxBytesReader(w, r.Body, a.config.MaxBodySize)

	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if allowEmpty && errors.Is(err, io.EOF) {
			return true
		}
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			transport.WriteErrorResponse(w,
				api.NewInvalidRequestError("body", fmt.Sprintf("request body too large (max %d bytes)", a.config.MaxBodySize)),
				http.StatusRequestEntityTooLarge,
			)
			return false
		}
		transport.WriteErrorResponse(w,
			api.NewInvalidRequestError("body", "invalid JSON: "+err.Error()),
			http.StatusBadRequest,
		)
		return false
	}
	return true
}

func isJSON(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	return err == nil && mediaType == "application/json"
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
