// Package apiutil holds the request/response plumbing shared by all API
// modules: JSON rendering, the HTTP error taxonomy and pagination parsing.
package apiutil

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
)

// maxBodyBytes caps JSON request bodies. Roster payloads are small; anything
// bigger is abuse.
const maxBodyBytes = 1 << 20

// errorBody is the JSON envelope for error responses.
type errorBody struct {
	Error string `json:"error"`
}

// JSON writes data as a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// Error writes err as a JSON error response. HTTPError values keep their
// status and key; anything else becomes a 500 with the detail logged, not
// leaked.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	var httpErr HTTPError
	if !errors.As(err, &httpErr) {
		slog.Default().LogAttrs(r.Context(), slog.LevelError, "unhandled request error",
			slog.String("path", r.URL.Path),
			slog.Any("error", err),
		)
		httpErr = ErrInternalServerError
	}
	JSON(w, httpErr.Code, errorBody{Error: httpErr.Key})
}

// Decode reads a JSON request body into v, limited to maxBodyBytes.
func Decode(r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Join(ErrBadRequest, err)
	}
	return nil
}
