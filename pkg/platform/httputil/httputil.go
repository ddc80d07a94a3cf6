// Package httputil holds the JSON request/response helpers shared by every handler.
package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	dErrors "familyhub/pkg/domain-errors"
	"familyhub/pkg/requestcontext"
)

const maxBodyBytes = 1 << 20

// Validatable is implemented by request DTOs. Validate normalizes the request in
// place and stores parsed values so handlers never re-check optional fields.
type Validatable interface {
	Validate() error
}

type errorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError maps a coded error to its HTTP status. Internal and integrity errors
// never expose their message.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	status, name := statusFor(code)

	resp := errorResponse{Error: name}
	if status < http.StatusInternalServerError {
		if de, ok := dErrors.As(err); ok {
			resp.ErrorDescription = de.Message
		}
	}
	WriteJSON(w, status, resp)
}

// WriteServiceError logs err at a level matching its class and writes the mapped
// response. Integrity errors are flagged for alerting.
func WriteServiceError(ctx context.Context, w http.ResponseWriter, logger *slog.Logger, msg string, err error) {
	requestID := requestcontext.RequestID(ctx)
	code := dErrors.CodeOf(err)
	status, _ := statusFor(code)
	switch {
	case code == dErrors.CodeIntegrity:
		logger.ErrorContext(ctx, msg,
			"error", err,
			"request_id", requestID,
			"alert", true,
		)
	case status >= http.StatusInternalServerError:
		logger.ErrorContext(ctx, msg,
			"error", err,
			"request_id", requestID,
		)
	default:
		logger.WarnContext(ctx, msg,
			"error", err,
			"request_id", requestID,
		)
	}
	WriteError(w, err)
}

func statusFor(code dErrors.Code) (int, string) {
	switch code {
	case dErrors.CodeValidation, dErrors.CodeInvalidInput:
		return http.StatusBadRequest, "validation_error"
	case dErrors.CodeBadRequest:
		return http.StatusBadRequest, "bad_request"
	case dErrors.CodeInvalidState:
		return http.StatusBadRequest, "invalid_state"
	case dErrors.CodeUnauthorized:
		return http.StatusUnauthorized, "unauthorized"
	case dErrors.CodeForbidden:
		return http.StatusForbidden, "forbidden"
	case dErrors.CodeNotFound:
		return http.StatusNotFound, "not_found"
	case dErrors.CodeConflict:
		return http.StatusConflict, "conflict"
	case dErrors.CodeTimeout:
		return http.StatusGatewayTimeout, "timeout"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// DecodeJSON decodes a bounded JSON body into v, rejecting unknown fields.
func DecodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return dErrors.New(dErrors.CodeBadRequest, "request body is required")
		}
		return dErrors.New(dErrors.CodeBadRequest, "invalid JSON body")
	}
	return nil
}

// DecodeAndPrepare decodes the body into T and runs its Validate method. On failure
// it writes the error response and returns false.
func DecodeAndPrepare[T any, PT interface {
	*T
	Validatable
}](w http.ResponseWriter, r *http.Request, logger *slog.Logger, ctx context.Context, requestID string) (*T, bool) {
	req := PT(new(T))
	if err := DecodeJSON(r, req); err != nil {
		logger.WarnContext(ctx, "failed to decode request",
			"error", err,
			"request_id", requestID,
		)
		WriteError(w, err)
		return nil, false
	}
	if err := req.Validate(); err != nil {
		logger.WarnContext(ctx, "invalid request",
			"error", err,
			"request_id", requestID,
		)
		WriteError(w, err)
		return nil, false
	}
	return (*T)(req), true
}
