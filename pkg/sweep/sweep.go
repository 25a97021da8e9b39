package sweep

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/rhuss/credentialwatch/pkg/debug"
	"github.com/rhuss/credentialwatch/pkg/observability"
	"github.com/rhuss/credentialwatch/pkg/tools"
)

// DefaultWindowDays is the look-ahead window used when none is given.
const DefaultWindowDays = 90

// ToolCaller invokes a logical operation on an endpoint.
type ToolCaller interface {
	CallTool(ctx context.Context, endpoint, operation string, args map[string]any) (any, error)
}

// State is the working state of one sweep run.
type State struct {
	RunID         string
	WindowDays    int
	Items         []Item
	AlertsCreated int
	Errors        []string
	Summary       string
}

// Result is the outcome of a sweep run.
type Result struct {
	RunID         string   `json:"run_id"`
	Summary       string   `json:"summary"`
	AlertsCreated int      `json:"alerts_created"`
	Errors        []string `json:"errors"`
	ItemsScanned  int      `json:"items_scanned"`
	WindowDays    int      `json:"window_days"`
}

// Pipeline runs expiry sweeps against a tool client.
type Pipeline struct {
	tools  ToolCaller
	logger *slog.Logger
}

// New creates a Pipeline. A nil logger means slog.Default().
func New(tc ToolCaller, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{tools: tc, logger: logger}
}

// Run executes fetch, alert and summarize for the given window. A
// non-positive window uses DefaultWindowDays.
//
// Tool failures never fail the run; they are reported in Result.Errors.
// The returned error is non-nil only if ctx ends before all items were
// processed, in which case the partial result is still returned.
func (p *Pipeline) Run(ctx context.Context, windowDays int) (Result, error) {
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}
	st := &State{RunID: uuid.NewString(), WindowDays: windowDays, Errors: []string{}}

	p.logger.Info("sweep started", "run_id", st.RunID, "window_days", windowDays)

	p.fetch(ctx, st)
	err := p.alert(ctx, st)
	p.summarize(st)

	status := observability.StatusSuccess
	if len(st.Errors) > 0 || err != nil {
		status = observability.StatusError
	}
	observability.SweepRunsTotal.WithLabelValues(status).Inc()

	p.logger.Info("sweep finished",
		"run_id", st.RunID,
		"items", len(st.Items),
		"alerts_created", st.AlertsCreated,
		"errors", len(st.Errors),
	)

	return Result{
		RunID:         st.RunID,
		Summary:       st.Summary,
		AlertsCreated: st.AlertsCreated,
		Errors:        st.Errors,
		ItemsScanned:  len(st.Items),
		WindowDays:    st.WindowDays,
	}, err
}

// fetch loads the expiring items into the state.
func (p *Pipeline) fetch(ctx context.Context, st *State) {
	result, err := p.tools.CallTool(ctx, tools.EndpointCredentials, tools.OpListExpiringCredentials,
		map[string]any{"window_days": st.WindowDays})
	if err != nil {
		st.Errors = append(st.Errors, fmt.Sprintf("Failed to fetch expiring credentials: %v", err))
		return
	}

	items, bad := decodeItems(result)
	st.Items = items
	st.Errors = append(st.Errors, bad...)
	debug.Log("sweep", "fetched expiring items", "run_id", st.RunID, "count", len(items))
}

// alert raises one alert per item.
func (p *Pipeline) alert(ctx context.Context, st *State) error {
	for _, it := range st.Items {
		if err := ctx.Err(); err != nil {
			st.Errors = append(st.Errors, fmt.Sprintf("Sweep interrupted: %v", err))
			return err
		}

		severity := Classify(it.DaysRemaining)
		_, err := p.tools.CallTool(ctx, tools.EndpointAlerts, tools.OpLogAlert, map[string]any{
			"provider_id":   it.ProviderID,
			"credential_id": it.CredentialID,
			"severity":      string(severity),
			"message":       it.Message(),
		})
		if err != nil {
			p.logger.Warn("failed to create alert", "run_id", st.RunID, "item", it.String(), "error", err)
			st.Errors = append(st.Errors, fmt.Sprintf("Failed to create alert for %s: %v", it, err))
			continue
		}

		st.AlertsCreated++
		observability.SweepAlertsTotal.WithLabelValues(string(severity)).Inc()
	}
	return nil
}

func (p *Pipeline) summarize(st *State) {
	st.Summary = fmt.Sprintf("Sweep completed. Scanned %d expiring items. Created %d alerts.",
		len(st.Items), st.AlertsCreated)
	if len(st.Errors) > 0 {
		st.Summary += fmt.Sprintf(" Encountered %d errors.", len(st.Errors))
	}
}
