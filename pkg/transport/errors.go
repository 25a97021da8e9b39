package transport

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rhuss/credentialwatch/pkg/api"
	"github.com/rhuss/credentialwatch/pkg/engine"
	"github.com/rhuss/credentialwatch/pkg/tools"
)

// HTTPStatusFromError maps an APIError type to the corresponding HTTP status
// code.
func HTTPStatusFromError(err *api.APIError) int {
	switch err.Type {
	case api.ErrorTypeInvalidRequest:
		return http.StatusBadRequest
	case api.ErrorTypeNotFound:
		return http.StatusNotFound
	case api.ErrorTypeTooManyRequests:
		return http.StatusTooManyRequests
	case api.ErrorTypeLoopExceeded:
		return http.StatusUnprocessableEntity
	case api.ErrorTypeToolInvocationFailed:
		return http.StatusBadGateway
	case api.ErrorTypeServerError, api.ErrorTypeModelError:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// ToAPIError classifies err as an APIError. APIErrors anywhere in the
// chain are returned as is.
func ToAPIError(err error) *api.APIError {
	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	var invErr *tools.InvocationError
	switch {
	case errors.Is(err, engine.ErrLoopExceeded):
		return api.NewLoopExceededError(err.Error())
	case errors.As(err, &invErr):
		return api.NewToolInvocationError(invErr.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return api.NewServerError("request timed out")
	default:
		return api.NewServerError(err.Error())
	}
}

// WriteErrorResponse writes a JSON error response using the ErrorResponse
// wrapper format from pkg/api.
func WriteErrorResponse(w http.ResponseWriter, apiErr *api.APIError, statusCode int) {
	WriteJSON(w, statusCode, api.ErrorResponse{Error: apiErr})
}

// WriteAPIError writes an APIError response, deriving the HTTP status code
// from the error type.
func WriteAPIError(w http.ResponseWriter, apiErr *api.APIError) {
	WriteErrorResponse(w, apiErr, HTTPStatusFromError(apiErr))
}

// WriteError classifies err and writes it as an error response.
func WriteError(w http.ResponseWriter, err error) {
	WriteAPIError(w, ToAPIError(err))
}

// WriteJSON writes v as a JSON body with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(v)
}
