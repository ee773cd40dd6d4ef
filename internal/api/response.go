// EFTP Registry - Technical and Vocational Education Data Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eftp-registry

package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/eftp-registry/internal/auth"
	"github.com/tomtom215/eftp-registry/internal/logging"
	"github.com/tomtom215/eftp-registry/internal/models"
	"github.com/tomtom215/eftp-registry/internal/validation"
)

// Error codes returned in APIError.Code.
const (
	CodeValidation   = "VALIDATION_ERROR"
	CodeNotFound     = "NOT_FOUND"
	CodeNotAvailable = "NOT_AVAILABLE"
	CodeFileMissing  = "FILE_MISSING"
	CodeProtected    = "REFERENCED_ENTITY_PROTECTED"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"
	CodeToolFailure  = "EXTERNAL_TOOL_FAILURE"
	CodeInternal     = "INTERNAL_ERROR"
)

// APIResponse is the envelope of every JSON response.
type APIResponse struct {
	Success  bool        `json:"success"`
	Data     interface{} `json:"data"`
	Error    *APIError   `json:"error,omitempty"`
	Metadata Metadata    `json:"metadata"`
}

// Metadata carries response bookkeeping.
type Metadata struct {
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id,omitempty"`
	Count     *int      `json:"count,omitempty"`
}

// APIError is the machine-readable error body.
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// sanitizeLogValue escapes control characters so client input cannot
// forge log lines.
func sanitizeLogValue(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			fmt.Fprintf(&b, "\\x%02x", r)
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func newMetadata(r *http.Request) Metadata {
	return Metadata{
		Timestamp: time.Now().UTC(),
		RequestID: logging.RequestIDFromContext(r.Context()),
	}
}

func respondJSON(w http.ResponseWriter, status int, response *APIResponse) {
	data, err := json.Marshal(response)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}

// respondData writes a success envelope.
func respondData(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	respondJSON(w, status, &APIResponse{Success: true, Data: data, Metadata: newMetadata(r)})
}

// respondList writes a success envelope with the item count in metadata.
func respondList(w http.ResponseWriter, r *http.Request, data interface{}, count int) {
	md := newMetadata(r)
	md.Count = &count
	respondJSON(w, http.StatusOK, &APIResponse{Success: true, Data: data, Metadata: md})
}

func respondError(w http.ResponseWriter, r *http.Request, status int, apiErr *APIError, err error) {
	if err != nil {
		ev := logging.Ctx(r.Context()).Warn()
		if status >= http.StatusInternalServerError {
			ev = logging.Ctx(r.Context()).Error()
		}
		ev.Str("code", apiErr.Code).
			Str("path", sanitizeLogValue(r.URL.Path)).
			Str("error", sanitizeLogValue(err.Error())).
			Msg("API error")
	}
	respondJSON(w, status, &APIResponse{Success: false, Error: apiErr, Metadata: newMetadata(r)})
}

// respondDomainError maps the registry's error taxonomy to HTTP.
func respondDomainError(w http.ResponseWriter, r *http.Request, err error) {
	status, apiErr := classifyError(err)
	respondError(w, r, status, apiErr, err)
}

func classifyError(err error) (int, *APIError) {
	var (
		reqErr       *validation.RequestValidationError
		fieldErr     *models.ValidationError
		protectedErr *models.ProtectedError
	)
	switch {
	case errors.As(err, &reqErr):
		v := reqErr.ToAPIError()
		return http.StatusBadRequest, &APIError{Code: v.Code, Message: v.Message, Details: v.Details}
	case errors.As(err, &fieldErr):
		apiErr := &APIError{Code: CodeValidation, Message: err.Error()}
		if fieldErr.Field != "" {
			apiErr.Details = map[string]interface{}{"field": fieldErr.Field}
		}
		return http.StatusBadRequest, apiErr
	case errors.As(err, &protectedErr):
		return http.StatusConflict, &APIError{Code: CodeProtected, Message: err.Error(), Details: map[string]interface{}{
			"entity":     protectedErr.Entity,
			"code":       protectedErr.Code,
			"references": protectedErr.References,
		}}
	case errors.Is(err, models.ErrValidation):
		return http.StatusBadRequest, &APIError{Code: CodeValidation, Message: err.Error()}
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound, &APIError{Code: CodeNotFound, Message: err.Error()}
	case errors.Is(err, models.ErrNotAvailable):
		return http.StatusConflict, &APIError{Code: CodeNotAvailable, Message: err.Error()}
	case errors.Is(err, models.ErrFileMissing):
		return http.StatusGone, &APIError{Code: CodeFileMissing, Message: err.Error()}
	case errors.Is(err, models.ErrReferencedEntityProtected):
		return http.StatusConflict, &APIError{Code: CodeProtected, Message: err.Error()}
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrNoCredentials),
		errors.Is(err, auth.ErrTokenRevoked):
		return http.StatusUnauthorized, &APIError{Code: CodeUnauthorized, Message: err.Error()}
	case errors.Is(err, models.ErrExternalToolFailure):
		return http.StatusBadGateway, &APIError{Code: CodeToolFailure, Message: err.Error()}
	}
	return http.StatusInternalServerError, &APIError{Code: CodeInternal, Message: "Internal server error"}
}

// decodeJSON reads a bounded JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return models.NewValidationError("body", "invalid JSON: %v", err)
	}
	return nil
}

// pathInt64 parses a positive integer URL parameter.
func pathInt64(value, name string) (int64, error) {
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil || id <= 0 {
		return 0, models.NewValidationError(name, "must be a positive integer")
	}
	return id, nil
}

// getIntParam extracts an integer query parameter with a default value.
func getIntParam(r *http.Request, key string, defaultValue int) int {
	value := r.URL.Query().Get(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}
