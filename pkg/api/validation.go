package api

import (
	"fmt"
	"strings"
)

// Request limits.
const (
	MaxWindowDays    = 3650
	MaxMessageLength = 32 * 1024
	MaxHistory       = 200
)

// ValidateSweepRequest checks a SweepRequest. It returns an *APIError
// describing the first failure, or nil if the request is valid.
func ValidateSweepRequest(req *SweepRequest) *APIError {
	if req.WindowDays < 0 {
		return NewInvalidRequestError("window_days", "window_days must not be negative")
	}
	if req.WindowDays > MaxWindowDays {
		return NewInvalidRequestError("window_days",
			fmt.Sprintf("window_days exceeds maximum of %d", MaxWindowDays))
	}
	return nil
}

// ValidateChatRequest checks a ChatRequest. It returns an *APIError
// describing the first failure, or nil if the request is valid.
func ValidateChatRequest(req *ChatRequest) *APIError {
	if strings.TrimSpace(req.Message) == "" {
		return NewInvalidRequestError("message", "message is required")
	}
	if len(req.Message) > MaxMessageLength {
		return NewInvalidRequestError("message",
			fmt.Sprintf("message exceeds maximum of %d bytes", MaxMessageLength))
	}
	if len(req.History) > MaxHistory {
		return NewInvalidRequestError("history",
			fmt.Sprintf("history exceeds maximum of %d exchanges", MaxHistory))
	}
	return nil
}
